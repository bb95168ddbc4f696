package mapping

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Record is a persisted concept mapping. The four-part identity
// (source system, source code, target system, target code) is unique; a
// rerun that rediscovers a pairing updates the existing row in place.
type Record struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	SourceSystem     string `gorm:"column:source_system;not null;uniqueIndex:uq_concept_mapping_identity,priority:1" json:"source_system"`
	SourceCode       string `gorm:"column:source_code;not null;uniqueIndex:uq_concept_mapping_identity,priority:2;index" json:"source_code"`
	TargetSystem     string `gorm:"column:target_system;not null;uniqueIndex:uq_concept_mapping_identity,priority:3" json:"target_system"`
	TargetCode       string `gorm:"column:target_code;not null;uniqueIndex:uq_concept_mapping_identity,priority:4;index" json:"target_code"`
	SourceDisplay    string `gorm:"column:source_display" json:"source_display,omitempty"`
	TargetDisplay    string `gorm:"column:target_display" json:"target_display,omitempty"`
	TargetDefinition string `gorm:"column:target_definition" json:"target_definition,omitempty"`

	LexicalScore    float64 `gorm:"column:lexical_score;not null;default:0" json:"lexical_score"`
	DefinitionScore float64 `gorm:"column:definition_score;not null;default:0" json:"definition_score"`
	SynonymScore    float64 `gorm:"column:synonym_score;not null;default:0" json:"synonym_score"`
	CategoryScore   float64 `gorm:"column:category_score;not null;default:0" json:"category_score"`
	ValidationScore float64 `gorm:"column:validation_score;not null;default:0" json:"validation_score"`
	AggregateScore  float64 `gorm:"column:aggregate_score;not null;default:0;index" json:"aggregate_score"`

	Tier        Tier           `gorm:"column:tier;not null;index" json:"tier"`
	Equivalence Equivalence    `gorm:"column:equivalence;not null" json:"equivalence"`
	Evidence    datatypes.JSON `gorm:"column:evidence;type:jsonb" json:"evidence,omitempty"`

	JobID          string `gorm:"column:job_id;not null;index" json:"job_id"`
	NamasteRelease string `gorm:"column:namaste_release" json:"namaste_release,omitempty"`
	WhoRelease     string `gorm:"column:who_release" json:"who_release,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Record) TableName() string { return "concept_mappings" }
