package terminology

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Term is one NAMASTE catalog concept as imported from the source
// CodeSystems. Designations and Properties keep the raw FHIR sub-documents;
// synonym/category extraction happens when a mapping run loads the term.
type Term struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Code         string         `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Display      string         `gorm:"column:display;not null" json:"display"`
	Definition   string         `gorm:"column:definition" json:"definition,omitempty"`
	System       string         `gorm:"column:system;not null;index" json:"system"`
	Designations datatypes.JSON `gorm:"column:designations;type:jsonb" json:"designations,omitempty"`
	Properties   datatypes.JSON `gorm:"column:properties;type:jsonb" json:"properties,omitempty"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Term) TableName() string { return "namaste_terms" }

// Designation mirrors a FHIR concept designation (alternate-script value).
type Designation struct {
	Language string `json:"language,omitempty"`
	Use      string `json:"use,omitempty"`
	Value    string `json:"value"`
}

// Property mirrors a FHIR concept property entry.
type Property struct {
	Code        string `json:"code"`
	ValueString string `json:"valueString,omitempty"`
	ValueCode   string `json:"valueCode,omitempty"`
}

// Concept is the in-memory view of a Term that a mapping run works on.
// Read-only once loaded.
type Concept struct {
	Code       string
	Display    string
	Definition string
	System     string
	Synonyms   []string
	Categories []string
	Properties map[string]string
}
