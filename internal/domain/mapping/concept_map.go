package mapping

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ConceptMap is a stored FHIR ConceptMap document assembled from the
// records of one run. Groups holds the serialized group list.
type ConceptMap struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MapID     string         `gorm:"column:map_id;not null;uniqueIndex" json:"map_id"`
	URL       string         `gorm:"column:url;not null" json:"url"`
	Name      string         `gorm:"column:name;not null" json:"name"`
	Title     string         `gorm:"column:title" json:"title,omitempty"`
	Status    string         `gorm:"column:status;not null;default:'active'" json:"status"`
	SourceURI string         `gorm:"column:source_uri;not null" json:"source_uri"`
	TargetURI string         `gorm:"column:target_uri;not null" json:"target_uri"`
	JobID     string         `gorm:"column:job_id;not null;index" json:"job_id"`
	Date      time.Time      `gorm:"column:date;not null" json:"date"`
	Groups    datatypes.JSON `gorm:"column:groups;type:jsonb" json:"groups,omitempty"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (ConceptMap) TableName() string { return "concept_maps" }

// Group collects the mappings between one source and one target system.
type Group struct {
	Source  string    `json:"source"`
	Target  string    `json:"target"`
	Element []Element `json:"element"`
}

// Element is one source concept with every target it maps to.
type Element struct {
	Code    string        `json:"code"`
	Display string        `json:"display,omitempty"`
	Target  []TargetEntry `json:"target,omitempty"`
}

// TargetEntry is a single mapped target with its review annotation.
type TargetEntry struct {
	Code        string      `json:"code"`
	Display     string      `json:"display,omitempty"`
	Equivalence Equivalence `json:"equivalence"`
	Comment     string      `json:"comment,omitempty"`
}
