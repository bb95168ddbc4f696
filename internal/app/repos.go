package app

import (
	"gorm.io/gorm"

	"github.com/ayurmap/termbridge-backend/internal/data/repos"
	"github.com/ayurmap/termbridge-backend/internal/platform/logger"
)

type Repos struct {
	Terms       repos.TermRepo
	Entities    repos.EntityRepo
	Records     repos.RecordRepo
	Runs        repos.RunRepo
	Validations repos.ValidationRepo
	ConceptMaps repos.ConceptMapRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Terms:       repos.NewTermRepo(db, log),
		Entities:    repos.NewEntityRepo(db, log),
		Records:     repos.NewRecordRepo(db, log),
		Runs:        repos.NewRunRepo(db, log),
		Validations: repos.NewValidationRepo(db, log),
		ConceptMaps: repos.NewConceptMapRepo(db, log),
	}
}
