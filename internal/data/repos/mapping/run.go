package mapping

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/ayurmap/termbridge-backend/internal/domain"
	"github.com/ayurmap/termbridge-backend/internal/pkg/dbctx"
	"github.com/ayurmap/termbridge-backend/internal/platform/logger"
)

type RunRepo interface {
	Create(dbc dbctx.Context, run *types.MappingRun) error
	GetByJobID(dbc dbctx.Context, jobID string) (*types.MappingRun, error)
	List(dbc dbctx.Context, limit int) ([]*types.MappingRun, error)
	ClaimNextRunnable(dbc dbctx.Context, maxAttempts int, retryDelay time.Duration, staleRunning time.Duration) (*types.MappingRun, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Heartbeat(dbc dbctx.Context, id uuid.UUID) error
	SetLatest(dbc dbctx.Context, jobID string) error
	Latest(dbc dbctx.Context) (*types.MappingRun, error)
}

type runRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRunRepo(db *gorm.DB, baseLog *logger.Logger) RunRepo {
	return &runRepo{
		db:  db,
		log: baseLog.With("repo", "RunRepo"),
	}
}

func (r *runRepo) Create(dbc dbctx.Context, run *types.MappingRun) error {
	if run == nil {
		return fmt.Errorf("missing run")
	}
	if strings.TrimSpace(run.JobID) == "" {
		return fmt.Errorf("missing job_id")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).Create(run).Error
}

func (r *runRepo) GetByJobID(dbc dbctx.Context, jobID string) (*types.MappingRun, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, fmt.Errorf("missing job_id")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var run types.MappingRun
	err := transaction.WithContext(dbc.Ctx).
		Where("job_id = ?", jobID).
		Limit(1).
		Find(&run).Error
	if err != nil {
		return nil, err
	}
	if run.ID == uuid.Nil {
		return nil, nil
	}
	return &run, nil
}

func (r *runRepo) List(dbc dbctx.Context, limit int) ([]*types.MappingRun, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.MappingRun
	if err := transaction.WithContext(dbc.Ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ClaimNextRunnable picks the oldest runnable run and marks it running.
// SKIP LOCKED keeps concurrent workers from double-claiming; a failed run
// under the attempt cap becomes runnable again after retryDelay, and a
// running run whose heartbeat went stale is reclaimed.
func (r *runRepo) ClaimNextRunnable(dbc dbctx.Context, maxAttempts int, retryDelay time.Duration, staleRunning time.Duration) (*types.MappingRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now()
	retryCutoff := now.Add(-retryDelay)
	staleCutoff := now.Add(-staleRunning)
	var claimed *types.MappingRun
	err := transaction.WithContext(dbc.Ctx).Transaction(func(txx *gorm.DB) error {
		var run types.MappingRun
		q := txx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where(`
        (
          status = ?
          OR (
            status = ?
            AND attempts < ?
            AND (last_error_at IS NULL OR last_error_at < ?)
          )
          OR (
            status = ?
            AND heartbeat_at IS NOT NULL
            AND heartbeat_at < ?
          )
        )
      `, types.RunStatusQueued, types.RunStatusFailed, maxAttempts, retryCutoff, types.RunStatusRunning, staleCutoff).
			Order("created_at ASC")
		qErr := q.First(&run).Error
		if errors.Is(qErr, gorm.ErrRecordNotFound) {
			return nil
		}
		if qErr != nil {
			return qErr
		}
		uErr := txx.Model(&types.MappingRun{}).
			Where("id = ?", run.ID).
			Updates(map[string]interface{}{
				"status":       types.RunStatusRunning,
				"attempts":     gorm.Expr("attempts + 1"),
				"locked_at":    now,
				"heartbeat_at": now,
				"updated_at":   now,
			}).Error
		if uErr != nil {
			return uErr
		}
		claimed = &run
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (r *runRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.MappingRun{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *runRepo) Heartbeat(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	now := time.Now()
	return transaction.WithContext(dbc.Ctx).
		Model(&types.MappingRun{}).
		Where("id = ? AND status = ?", id, types.RunStatusRunning).
		Updates(map[string]interface{}{
			"heartbeat_at": now,
			"updated_at":   now,
		}).Error
}

// SetLatest points the latest marker at the given job.
func (r *runRepo) SetLatest(dbc dbctx.Context, jobID string) error {
	if strings.TrimSpace(jobID) == "" {
		return fmt.Errorf("missing job_id")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	pointer := &types.MappingRunPointer{
		Name:      types.RunPointerLatest,
		JobID:     jobID,
		UpdatedAt: time.Now().UTC(),
	}
	return transaction.WithContext(dbc.Ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"job_id", "updated_at"}),
	}).Create(pointer).Error
}

func (r *runRepo) Latest(dbc dbctx.Context) (*types.MappingRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var pointer types.MappingRunPointer
	err := transaction.WithContext(dbc.Ctx).
		Where("name = ?", types.RunPointerLatest).
		Limit(1).
		Find(&pointer).Error
	if err != nil {
		return nil, err
	}
	if pointer.JobID == "" {
		return nil, nil
	}
	return r.GetByJobID(dbc, pointer.JobID)
}
