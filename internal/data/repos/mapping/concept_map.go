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

type ConceptMapRepo interface {
	Upsert(dbc dbctx.Context, doc *types.ConceptMapDoc) error
	GetByMapID(dbc dbctx.Context, mapID string) (*types.ConceptMapDoc, error)
}

type conceptMapRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConceptMapRepo(db *gorm.DB, baseLog *logger.Logger) ConceptMapRepo {
	return &conceptMapRepo{
		db:  db,
		log: baseLog.With("repo", "ConceptMapRepo"),
	}
}

func (r *conceptMapRepo) Upsert(dbc dbctx.Context, doc *types.ConceptMapDoc) error {
	if doc == nil {
		return fmt.Errorf("missing concept map")
	}
	if strings.TrimSpace(doc.MapID) == "" {
		return fmt.Errorf("missing map_id")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now().UTC()
	doc.UpdatedAt = now
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	return transaction.WithContext(dbc.Ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "map_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"url",
			"name",
			"title",
			"status",
			"source_uri",
			"target_uri",
			"job_id",
			"date",
			"groups",
			"updated_at",
		}),
	}).Create(doc).Error
}

func (r *conceptMapRepo) GetByMapID(dbc dbctx.Context, mapID string) (*types.ConceptMapDoc, error) {
	if strings.TrimSpace(mapID) == "" {
		return nil, fmt.Errorf("missing map_id")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var doc types.ConceptMapDoc
	err := transaction.WithContext(dbc.Ctx).
		Where("map_id = ?", mapID).
		Limit(1).
		Find(&doc).Error
	if err != nil {
		return nil, err
	}
	if doc.MapID == "" {
		return nil, nil
	}
	return &doc, nil
}
