package terminology

import (
	"time"

	"github.com/google/uuid"
)

// Entity is a cached WHO ICD-11 registry entry. Rows come from bulk release
// imports and from write-through of remote search hits; together they back
// the local full-text index the candidate generator consults first.
type Entity struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Code         string    `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Title        string    `gorm:"column:title;not null" json:"title"`
	Definition   string    `gorm:"column:definition" json:"definition,omitempty"`
	ChapterNo    string    `gorm:"column:chapter_no;index" json:"chapter_no,omitempty"`
	TM2Category  string    `gorm:"column:tm2_category" json:"tm2_category,omitempty"`
	IsTM2Related bool      `gorm:"column:is_tm2_related;not null;default:false" json:"is_tm2_related"`
	Score        float64   `gorm:"column:score;not null;default:0" json:"score"`
	FetchedAt    time.Time `gorm:"column:fetched_at;not null;default:now()" json:"fetched_at"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Entity) TableName() string { return "icd_entities" }

// TM2 reports whether the cached entry belongs to the traditional medicine
// chapter rather than the biomedical classification.
func (e *Entity) TM2() bool {
	return e.IsTM2Related || e.TM2Category != ""
}
