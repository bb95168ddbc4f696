package app

import (
	"gorm.io/gorm"

	"github.com/ayurmap/termbridge-backend/internal/http/handlers"
	"github.com/ayurmap/termbridge-backend/internal/platform/logger"
)

type Handlers struct {
	Mapping *handlers.MappingHandler
	Health  *handlers.HealthHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, cfg Config, clients Clients, reposet Repos, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Mapping: handlers.NewMappingHandler(handlers.MappingHandlerDeps{
			Runs:        reposet.Runs,
			Validations: reposet.Validations,
			ConceptMaps: reposet.ConceptMaps,
			Tables:      services.Tables,
			WhoRelease:  cfg.WhoRelease,
		}, log),
		Health: handlers.NewHealthHandler(db, clients.Cache, cfg.Environment, log),
	}
}
