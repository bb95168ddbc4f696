package terminology

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

type EntityRepo interface {
	UpsertBatch(dbc dbctx.Context, rows []*types.ICDEntity) error
	GetByCode(dbc dbctx.Context, code string) (*types.ICDEntity, error)
	Count(dbc dbctx.Context) (int64, error)
	SearchText(dbc dbctx.Context, query string, limit int) ([]EntityHit, error)
}

// EntityHit pairs a cached registry entry with its full-text rank for the
// query that found it.
type EntityHit struct {
	Entity *types.ICDEntity
	Rank   float64
}

type entityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEntityRepo(db *gorm.DB, baseLog *logger.Logger) EntityRepo {
	return &entityRepo{
		db:  db,
		log: baseLog.With("repo", "EntityRepo"),
	}
}

// UpsertBatch writes registry entries through to the local cache keyed by
// code. Remote search hits land here so later runs can resolve them
// without calling out.
func (r *entityRepo) UpsertBatch(dbc dbctx.Context, rows []*types.ICDEntity) error {
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
		if row.FetchedAt.IsZero() {
			row.FetchedAt = now
		}
	}
	return transaction.WithContext(dbc.Ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title",
			"definition",
			"chapter_no",
			"tm2_category",
			"is_tm2_related",
			"score",
			"fetched_at",
			"updated_at",
		}),
	}).Create(&rows).Error
}

func (r *entityRepo) GetByCode(dbc dbctx.Context, code string) (*types.ICDEntity, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("missing code")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var entity types.ICDEntity
	err := transaction.WithContext(dbc.Ctx).
		Where("code = ?", code).
		Limit(1).
		Find(&entity).Error
	if err != nil {
		return nil, err
	}
	if entity.Code == "" {
		return nil, nil
	}
	return &entity, nil
}

func (r *entityRepo) Count(dbc dbctx.Context) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.ICDEntity{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SearchText ranks cached entries against the query with ts_rank over
// title and definition together.
func (r *entityRepo) SearchText(dbc dbctx.Context, query string, limit int) ([]EntityHit, error) {
	if strings.TrimSpace(query) == "" {
		return []EntityHit{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 5
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	sql := fmt.Sprintf(`
		SELECT icd_entities.*,
		       ts_rank(to_tsvector('english', coalesce(title, '') || ' ' || coalesce(definition, '')), plainto_tsquery('english', ?)) AS rank
		FROM icd_entities
		WHERE to_tsvector('english', coalesce(title, '') || ' ' || coalesce(definition, '')) @@ plainto_tsquery('english', ?)
		ORDER BY rank DESC,
		         icd_entities.code ASC
		LIMIT %d;
	`, limit)

	type row struct {
		types.ICDEntity
		Rank float64 `gorm:"column:rank"`
	}
	var rows []row
	if err := transaction.WithContext(dbc.Ctx).Raw(sql, query, query).Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]EntityHit, 0, len(rows))
	for i := range rows {
		e := rows[i].ICDEntity
		out = append(out, EntityHit{Entity: &e, Rank: rows[i].Rank})
	}
	return out, nil
}
