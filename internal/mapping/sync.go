package mapping

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/ayurmap/termbridge-backend/internal/data/repos"
	types "github.com/ayurmap/termbridge-backend/internal/domain"
	"github.com/ayurmap/termbridge-backend/internal/pkg/dbctx"
	"github.com/ayurmap/termbridge-backend/internal/platform/icd"
	"github.com/ayurmap/termbridge-backend/internal/platform/logger"
)

// syncKeywords are the bulk queries a registry sync walks to seed the
// local entity cache with the traditional-medicine neighborhood.
var syncKeywords = []string{
	"acupuncture", "cupping", "moxibustion", "traditional",
	"complementary", "herbal", "massage", "meditation",
	"homeopathy", "naturopathy", "chiropractic", "osteopathy",
}

const syncHitsPerKeyword = 50

// RegistrySync bulk-imports traditional-medicine entries from the WHO
// registry into the local entity cache, giving the local index strategy
// rows to match before any live search has run.
type RegistrySync struct {
	client   icd.Client
	entities repos.EntityRepo
	runs     repos.RunRepo
	log      *logger.Logger
}

func NewRegistrySync(client icd.Client, entities repos.EntityRepo, runs repos.RunRepo, baseLog *logger.Logger) *RegistrySync {
	return &RegistrySync{
		client:   client,
		entities: entities,
		runs:     runs,
		log:      baseLog.With("service", "RegistrySync"),
	}
}

// Type names the run type this runner executes.
func (s *RegistrySync) Type() string { return types.RunTypeRegistrySync }

func (s *RegistrySync) Run(ctx context.Context, run *types.MappingRun) error {
	if run == nil {
		return fmt.Errorf("missing run")
	}
	dbc := dbctx.Context{Ctx: ctx}
	log := s.log.With("job_id", run.JobID)

	var rows []*types.ICDEntity
	seen := map[string]bool{}
	failedKeywords := 0
	for _, keyword := range syncKeywords {
		if err := ctx.Err(); err != nil {
			return err
		}
		entities, err := s.client.Search(ctx, icd.SearchRequest{
			Query:       keyword,
			Limit:       syncHitsPerKeyword,
			Flexisearch: true,
			TMOnly:      true,
		})
		if err != nil {
			log.Warn("registry sync search failed", "keyword", keyword, "error", err)
			failedKeywords++
			continue
		}
		now := time.Now().UTC()
		for _, entity := range entities {
			code := entity.Code
			if code == "" {
				code = entity.EntityID
			}
			if code == "" || seen[code] {
				continue
			}
			seen[code] = true
			rows = append(rows, &types.ICDEntity{
				Code:         code,
				Title:        entity.Title,
				Definition:   entity.Definition,
				ChapterNo:    entity.Chapter,
				IsTM2Related: entity.TM2Related(),
				Score:        entity.Score,
				FetchedAt:    now,
			})
		}
	}
	if failedKeywords == len(syncKeywords) {
		return fmt.Errorf("registry unreachable: all %d sync searches failed", failedKeywords)
	}

	if err := s.entities.UpsertBatch(dbc, rows); err != nil {
		return fmt.Errorf("store synced entities: %w", err)
	}

	now := time.Now().UTC()
	statsJSON, _ := json.Marshal(map[string]interface{}{
		"keywords":        len(syncKeywords),
		"keywords_failed": failedKeywords,
		"entities_stored": len(rows),
	})
	if err := s.runs.UpdateFields(dbc, run.ID, map[string]interface{}{
		"status":       types.RunStatusCompleted,
		"statistics":   datatypes.JSON(statsJSON),
		"completed_at": now,
		"last_error":   "",
	}); err != nil {
		return fmt.Errorf("finalize sync run: %w", err)
	}

	log.Info("registry sync completed",
		"entities_stored", len(rows),
		"keywords_failed", failedKeywords,
	)
	return nil
}
