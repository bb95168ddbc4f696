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

type TermRepo interface {
	UpsertBatch(dbc dbctx.Context, rows []*types.NamasteTerm) error
	GetByCode(dbc dbctx.Context, code string) (*types.NamasteTerm, error)
	ListAll(dbc dbctx.Context) ([]*types.NamasteTerm, error)
	ListBySystem(dbc dbctx.Context, systemFragment string) ([]*types.NamasteTerm, error)
	Count(dbc dbctx.Context) (int64, error)
	SearchText(dbc dbctx.Context, query string, limit int) ([]*types.NamasteTerm, error)
	SearchPrefix(dbc dbctx.Context, prefix string, limit int) ([]*types.NamasteTerm, error)
}

type termRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTermRepo(db *gorm.DB, baseLog *logger.Logger) TermRepo {
	return &termRepo{
		db:  db,
		log: baseLog.With("repo", "TermRepo"),
	}
}

func (r *termRepo) UpsertBatch(dbc dbctx.Context, rows []*types.NamasteTerm) error {
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
		Columns: []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"display",
			"definition",
			"system",
			"designations",
			"properties",
			"updated_at",
		}),
	}).Create(&rows).Error
}

func (r *termRepo) GetByCode(dbc dbctx.Context, code string) (*types.NamasteTerm, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("missing code")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var term types.NamasteTerm
	err := transaction.WithContext(dbc.Ctx).
		Where("code = ?", code).
		Limit(1).
		Find(&term).Error
	if err != nil {
		return nil, err
	}
	if term.Code == "" {
		return nil, nil
	}
	return &term, nil
}

// ListAll returns every catalog term ordered by code so runs process the
// catalog in a stable order.
func (r *termRepo) ListAll(dbc dbctx.Context) ([]*types.NamasteTerm, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.NamasteTerm
	if err := transaction.WithContext(dbc.Ctx).
		Order("code ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListBySystem returns catalog terms whose owning system matches the given
// namespace fragment, ordered by code.
func (r *termRepo) ListBySystem(dbc dbctx.Context, systemFragment string) ([]*types.NamasteTerm, error) {
	if strings.TrimSpace(systemFragment) == "" {
		return nil, fmt.Errorf("missing system fragment")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.NamasteTerm
	if err := transaction.WithContext(dbc.Ctx).
		Where("system ILIKE ?", "%"+systemFragment+"%").
		Order("code ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *termRepo) Count(dbc dbctx.Context) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.NamasteTerm{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *termRepo) SearchText(dbc dbctx.Context, query string, limit int) ([]*types.NamasteTerm, error) {
	if strings.TrimSpace(query) == "" {
		return []*types.NamasteTerm{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	sql := fmt.Sprintf(`
		SELECT namaste_terms.*,
		       ts_rank(to_tsvector('english', coalesce(display, '') || ' ' || coalesce(definition, '')), plainto_tsquery('english', ?)) AS rank
		FROM namaste_terms
		WHERE to_tsvector('english', coalesce(display, '') || ' ' || coalesce(definition, '')) @@ plainto_tsquery('english', ?)
		ORDER BY rank DESC,
		         namaste_terms.code ASC
		LIMIT %d;
	`, limit)

	type row struct {
		types.NamasteTerm
		Rank float64 `gorm:"column:rank"`
	}
	var rows []row
	if err := transaction.WithContext(dbc.Ctx).Raw(sql, query, query).Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*types.NamasteTerm, 0, len(rows))
	for i := range rows {
		t := rows[i].NamasteTerm
		out = append(out, &t)
	}
	return out, nil
}

// SearchPrefix is the fallback for short queries that full-text search
// cannot rank, matching on display or code prefix.
func (r *termRepo) SearchPrefix(dbc dbctx.Context, prefix string, limit int) ([]*types.NamasteTerm, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []*types.NamasteTerm{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.NamasteTerm
	pattern := prefix + "%"
	if err := transaction.WithContext(dbc.Ctx).
		Where("display ILIKE ? OR code ILIKE ?", pattern, pattern).
		Order("code ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
