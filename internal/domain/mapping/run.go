package mapping

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	RunStatusQueued    = "queued"
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

const (
	RunTypeComprehensive = "comprehensive"
	RunTypeRegistrySync  = "registry-sync"
)

// RunPointerLatest names the pointer row that tracks the most recent
// completed run.
const RunPointerLatest = "latest"

// Run is one mapping job: queued over HTTP, claimed and executed by a
// worker, then finalized with its statistics.
type Run struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	JobID   string    `gorm:"column:job_id;not null;uniqueIndex" json:"job_id"`
	RunType string    `gorm:"column:run_type;not null;default:'comprehensive'" json:"run_type"`
	Status  string    `gorm:"column:status;not null;default:'queued';index" json:"status"`

	ForceRefresh bool `gorm:"column:force_refresh;not null;default:false" json:"force_refresh"`

	TermsProcessed    int     `gorm:"column:terms_processed;not null;default:0" json:"terms_processed"`
	TermsUnmatched    int     `gorm:"column:terms_unmatched;not null;default:0" json:"terms_unmatched"`
	RecordsCreated    int     `gorm:"column:records_created;not null;default:0" json:"records_created"`
	DirectMatches     int     `gorm:"column:direct_matches;not null;default:0" json:"direct_matches"`
	BiomedicalMatches int     `gorm:"column:biomedical_matches;not null;default:0" json:"biomedical_matches"`
	AverageConfidence float64 `gorm:"column:average_confidence;not null;default:0" json:"average_confidence"`

	TierBreakdown datatypes.JSON `gorm:"column:tier_breakdown;type:jsonb" json:"tier_breakdown,omitempty"`
	Statistics    datatypes.JSON `gorm:"column:statistics;type:jsonb" json:"statistics,omitempty"`

	NamasteRelease string `gorm:"column:namaste_release" json:"namaste_release,omitempty"`
	WhoRelease     string `gorm:"column:who_release" json:"who_release,omitempty"`

	Attempts    int        `gorm:"column:attempts;not null;default:0" json:"attempts"`
	LastError   string     `gorm:"column:last_error" json:"last_error,omitempty"`
	LastErrorAt *time.Time `gorm:"column:last_error_at" json:"last_error_at,omitempty"`
	LockedAt    *time.Time `gorm:"column:locked_at" json:"locked_at,omitempty"`
	HeartbeatAt *time.Time `gorm:"column:heartbeat_at" json:"heartbeat_at,omitempty"`
	StartedAt   *time.Time `gorm:"column:started_at" json:"started_at,omitempty"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Run) TableName() string { return "mapping_runs" }

// RunPointer is a named reference to a run, e.g. the latest completed one.
type RunPointer struct {
	Name      string    `gorm:"column:name;primaryKey" json:"name"`
	JobID     string    `gorm:"column:job_id;not null" json:"job_id"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (RunPointer) TableName() string { return "mapping_run_pointers" }
