package mapping

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/ayurmap/termbridge-backend/internal/domain"
	"github.com/ayurmap/termbridge-backend/internal/pkg/dbctx"
	"github.com/ayurmap/termbridge-backend/internal/platform/logger"
)

type RecordRepo interface {
	UpsertBatch(dbc dbctx.Context, rows []*types.MappingRecord) error
	ListByJobID(dbc dbctx.Context, jobID string) ([]*types.MappingRecord, error)
	ListBySourceCode(dbc dbctx.Context, sourceCode string) ([]*types.MappingRecord, error)
	CountByJobID(dbc dbctx.Context, jobID string) (int64, error)
	DeleteByJobID(dbc dbctx.Context, jobID string) (int64, error)
}

type recordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecordRepo(db *gorm.DB, baseLog *logger.Logger) RecordRepo {
	return &recordRepo{
		db:  db,
		log: baseLog.With("repo", "RecordRepo"),
	}
}

// UpsertBatch persists mappings idempotently on the four-part identity.
// Reruns refresh scores and the owning job while created_at keeps the
// first discovery time.
func (r *recordRepo) UpsertBatch(dbc dbctx.Context, rows []*types.MappingRecord) error {
	if len(rows) == 0 {
		return nil
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row == nil {
			continue
		}
		row.UpdatedAt = now
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
	}
	return transaction.WithContext(dbc.Ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "source_system"},
			{Name: "source_code"},
			{Name: "target_system"},
			{Name: "target_code"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"source_display",
			"target_display",
			"target_definition",
			"lexical_score",
			"definition_score",
			"synonym_score",
			"category_score",
			"validation_score",
			"aggregate_score",
			"tier",
			"equivalence",
			"evidence",
			"job_id",
			"namaste_release",
			"who_release",
			"updated_at",
		}),
	}).Create(&rows).Error
}

// ListByJobID returns a job's mappings ordered for group assembly: by
// system pair, then source code, best aggregate first.
func (r *recordRepo) ListByJobID(dbc dbctx.Context, jobID string) ([]*types.MappingRecord, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, fmt.Errorf("missing job_id")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.MappingRecord
	if err := transaction.WithContext(dbc.Ctx).
		Where("job_id = ?", jobID).
		Order("source_system ASC, target_system ASC, source_code ASC, aggregate_score DESC, target_code ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *recordRepo) ListBySourceCode(dbc dbctx.Context, sourceCode string) ([]*types.MappingRecord, error) {
	if strings.TrimSpace(sourceCode) == "" {
		return nil, fmt.Errorf("missing source_code")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.MappingRecord
	if err := transaction.WithContext(dbc.Ctx).
		Where("source_code = ?", sourceCode).
		Order("aggregate_score DESC, target_code ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *recordRepo) CountByJobID(dbc dbctx.Context, jobID string) (int64, error) {
	if strings.TrimSpace(jobID) == "" {
		return 0, fmt.Errorf("missing job_id")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.MappingRecord{}).
		Where("job_id = ?", jobID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteByJobID clears a job's mappings ahead of a forced rebuild.
func (r *recordRepo) DeleteByJobID(dbc dbctx.Context, jobID string) (int64, error) {
	if strings.TrimSpace(jobID) == "" {
		return 0, fmt.Errorf("missing job_id")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("job_id = ?", jobID).
		Delete(&types.MappingRecord{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
