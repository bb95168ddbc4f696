package repos

import (
	"github.com/ayurmap/termbridge-backend/internal/data/repos/mapping"
	"github.com/ayurmap/termbridge-backend/internal/data/repos/terminology"
	"github.com/ayurmap/termbridge-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type TermRepo = terminology.TermRepo
type EntityRepo = terminology.EntityRepo
type EntityHit = terminology.EntityHit

type RecordRepo = mapping.RecordRepo
type RunRepo = mapping.RunRepo
type ValidationRepo = mapping.ValidationRepo
type ConceptMapRepo = mapping.ConceptMapRepo

func NewTermRepo(db *gorm.DB, baseLog *logger.Logger) TermRepo {
	return terminology.NewTermRepo(db, baseLog)
}

func NewEntityRepo(db *gorm.DB, baseLog *logger.Logger) EntityRepo {
	return terminology.NewEntityRepo(db, baseLog)
}

func NewRecordRepo(db *gorm.DB, baseLog *logger.Logger) RecordRepo {
	return mapping.NewRecordRepo(db, baseLog)
}

func NewRunRepo(db *gorm.DB, baseLog *logger.Logger) RunRepo {
	return mapping.NewRunRepo(db, baseLog)
}

func NewValidationRepo(db *gorm.DB, baseLog *logger.Logger) ValidationRepo {
	return mapping.NewValidationRepo(db, baseLog)
}

func NewConceptMapRepo(db *gorm.DB, baseLog *logger.Logger) ConceptMapRepo {
	return mapping.NewConceptMapRepo(db, baseLog)
}
