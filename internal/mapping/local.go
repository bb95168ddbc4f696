package mapping

import (
	"context"

	"github.com/ayurmap/termbridge-backend/internal/data/repos"
	types "github.com/ayurmap/termbridge-backend/internal/domain"
	"github.com/ayurmap/termbridge-backend/internal/pkg/dbctx"
	"github.com/ayurmap/termbridge-backend/internal/platform/logger"
)

const localHitsPerTerm = 5

// localIndexStrategy consults the cached registry entries through the
// Postgres full-text index. Cheapest source of candidates, runs first.
type localIndexStrategy struct {
	entities repos.EntityRepo
	log      *logger.Logger
}

func NewLocalIndexStrategy(entities repos.EntityRepo, baseLog *logger.Logger) Strategy {
	return &localIndexStrategy{
		entities: entities,
		log:      baseLog.With("strategy", "local_index"),
	}
}

func (s *localIndexStrategy) Name() string { return "local_index" }

// Generate runs every search term against the local index. A term whose
// search fails is logged and skipped.
func (s *localIndexStrategy) Generate(ctx context.Context, concept types.SourceConcept, searchTerms []string) ([]types.MappingCandidate, error) {
	dbc := dbctx.Context{Ctx: ctx}
	candidates := make([]types.MappingCandidate, 0, len(searchTerms))
	for _, term := range searchTerms {
		if err := ctx.Err(); err != nil {
			return candidates, err
		}
		hits, err := s.entities.SearchText(dbc, term, localHitsPerTerm)
		if err != nil {
			s.log.Warn("local index search failed", "term", term, "error", err)
			continue
		}
		for _, hit := range hits {
			entity := hit.Entity
			if entity == nil || entity.Code == "" {
				continue
			}
			targetSystem := types.SystemICD11MMS
			if entity.TM2() {
				targetSystem = types.SystemICD11TM2
			}
			candidates = append(candidates, types.MappingCandidate{
				SourceCode:       concept.Code,
				SourceDisplay:    concept.Display,
				SourceSystem:     concept.System,
				TargetCode:       entity.Code,
				TargetDisplay:    entity.Title,
				TargetSystem:     targetSystem,
				TargetDefinition: entity.Definition,
			})
		}
	}
	return candidates, nil
}
