package mapping

import (
	"time"

	"github.com/google/uuid"
)

// Validation is one expert review of a NAMASTE-to-ICD pairing. Scores for
// the same pairing are averaged pairwise in submission order when the
// scorer consults them.
type Validation struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	NamasteCode     string    `gorm:"column:namaste_code;not null;index:idx_validation_pair,priority:1" json:"namaste_code"`
	ICDCode         string    `gorm:"column:icd_code;not null;index:idx_validation_pair,priority:2" json:"icd_code"`
	ValidationScore float64   `gorm:"column:validation_score;not null" json:"validation_score"`
	ClinicalNotes   string    `gorm:"column:clinical_notes" json:"clinical_notes,omitempty"`
	ReviewerID      string    `gorm:"column:reviewer_id" json:"reviewer_id,omitempty"`
	CreatedAt       time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Validation) TableName() string { return "mapping_validations" }
