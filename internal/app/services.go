package app

import (
	"fmt"

	"github.com/ayurmap/termbridge-backend/internal/jobs"
	"github.com/ayurmap/termbridge-backend/internal/mapping"
	"github.com/ayurmap/termbridge-backend/internal/mapping/rules"
	"github.com/ayurmap/termbridge-backend/internal/platform/logger"
)

type Services struct {
	Tables       *rules.Tables
	Engine       *mapping.Engine
	RegistrySync *mapping.RegistrySync
	Worker       *jobs.Worker
}

func wireServices(log *logger.Logger, cfg Config, clients Clients, reposet Repos) (Services, error) {
	log.Info("Wiring services...")

	tables := rules.Current(log)
	scorer := mapping.NewScorer(mapping.DefaultScoringConfig(), tables)

	// Strategy order fixes candidate precedence: the local index wins ties
	// over live registry hits, and the semantic bridge only backfills.
	strategies := []mapping.Strategy{
		mapping.NewLocalIndexStrategy(reposet.Entities, log),
		mapping.NewRemoteRegistryStrategy(clients.Registry, reposet.Entities, log),
		mapping.NewSemanticBridgeStrategy(tables, log),
	}

	engine := mapping.NewEngine(
		mapping.EngineConfig{WhoRelease: cfg.WhoRelease},
		mapping.EngineDeps{
			Terms:       reposet.Terms,
			Records:     reposet.Records,
			Runs:        reposet.Runs,
			Validations: reposet.Validations,
			ConceptMaps: reposet.ConceptMaps,
			Strategies:  strategies,
			Scorer:      scorer,
			Tables:      tables,
		},
		log,
	)
	registrySync := mapping.NewRegistrySync(clients.Registry, reposet.Entities, reposet.Runs, log)

	registry := jobs.NewRegistry()
	if err := registry.Register(engine); err != nil {
		return Services{}, fmt.Errorf("register mapping engine: %w", err)
	}
	if err := registry.Register(registrySync); err != nil {
		return Services{}, fmt.Errorf("register registry sync: %w", err)
	}
	worker := jobs.NewWorker(reposet.Runs, registry, jobs.WorkerConfig{
		PollInterval: cfg.WorkerInterval,
	}, log)

	return Services{
		Tables:       tables,
		Engine:       engine,
		RegistrySync: registrySync,
		Worker:       worker,
	}, nil
}
