package mapping

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	types "github.com/ayurmap/termbridge-backend/internal/domain"
	"github.com/ayurmap/termbridge-backend/internal/pkg/dbctx"
	"github.com/ayurmap/termbridge-backend/internal/platform/logger"
)

type ValidationRepo interface {
	Create(dbc dbctx.Context, v *types.MappingValidation) error
	ListAll(dbc dbctx.Context) ([]*types.MappingValidation, error)
}

type validationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewValidationRepo(db *gorm.DB, baseLog *logger.Logger) ValidationRepo {
	return &validationRepo{
		db:  db,
		log: baseLog.With("repo", "ValidationRepo"),
	}
}

func (r *validationRepo) Create(dbc dbctx.Context, v *types.MappingValidation) error {
	if v == nil {
		return fmt.Errorf("missing validation")
	}
	if strings.TrimSpace(v.NamasteCode) == "" || strings.TrimSpace(v.ICDCode) == "" {
		return fmt.Errorf("missing validation pair")
	}
	if v.ValidationScore < 0 || v.ValidationScore > 1 {
		return fmt.Errorf("validation_score out of range")
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).Create(v).Error
}

// ListAll returns every review in submission order so the scorer can fold
// repeat reviews of a pair into a running average.
func (r *validationRepo) ListAll(dbc dbctx.Context) ([]*types.MappingValidation, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.MappingValidation
	if err := transaction.WithContext(dbc.Ctx).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
