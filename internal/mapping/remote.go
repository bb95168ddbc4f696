package mapping

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/ayurmap/termbridge-backend/internal/data/repos"
	types "github.com/ayurmap/termbridge-backend/internal/domain"
	"github.com/ayurmap/termbridge-backend/internal/pkg/dbctx"
	"github.com/ayurmap/termbridge-backend/internal/platform/icd"
	"github.com/ayurmap/termbridge-backend/internal/platform/logger"
)

const (
	remoteHitsPerTerm   = 10
	remoteTermPause     = 200 * time.Millisecond
	remoteChapterFilter = "TM1,TM2"
)

// remoteRegistryStrategy queries the WHO registry live. Each term is first
// searched inside the traditional-medicine chapters and falls back to an
// unfiltered search when that returns nothing. TM2-related hits are
// returned ahead of biomedical ones, and every hit is written through to
// the local entity cache so later runs can resolve it offline.
type remoteRegistryStrategy struct {
	client   icd.Client
	entities repos.EntityRepo
	log      *logger.Logger
	limit    int
	pause    time.Duration
}

func NewRemoteRegistryStrategy(client icd.Client, entities repos.EntityRepo, baseLog *logger.Logger) Strategy {
	return &remoteRegistryStrategy{
		client:   client,
		entities: entities,
		log:      baseLog.With("strategy", "who_registry"),
		limit:    remoteHitsPerTerm,
		pause:    remoteTermPause,
	}
}

func (s *remoteRegistryStrategy) Name() string { return "who_registry" }

func (s *remoteRegistryStrategy) Generate(ctx context.Context, concept types.SourceConcept, searchTerms []string) ([]types.MappingCandidate, error) {
	var tm2Bucket, otherBucket []types.MappingCandidate
	seenCodes := map[string]bool{}
	var fetched []*types.ICDEntity
	fetchedSeen := map[string]bool{}

	for _, term := range searchTerms {
		if err := ctx.Err(); err != nil {
			break
		}
		if utf8.RuneCountInString(term) < 3 {
			continue
		}
		entities, err := s.client.Search(ctx, icd.SearchRequest{
			Query:         term,
			Limit:         s.limit,
			ChapterFilter: remoteChapterFilter,
			Flexisearch:   true,
		})
		if err == nil && len(entities) == 0 {
			entities, err = s.client.Search(ctx, icd.SearchRequest{
				Query:       term,
				Limit:       s.limit,
				Flexisearch: true,
			})
		}
		if err != nil {
			s.log.Warn("registry search failed", "term", term, "error", err)
			continue
		}

		now := time.Now().UTC()
		for _, entity := range entities {
			targetCode := entity.Code
			if targetCode == "" {
				targetCode = entity.EntityID
			}
			if targetCode == "" {
				continue
			}
			if !fetchedSeen[targetCode] {
				fetchedSeen[targetCode] = true
				fetched = append(fetched, &types.ICDEntity{
					Code:         targetCode,
					Title:        entity.Title,
					Definition:   entity.Definition,
					ChapterNo:    entity.Chapter,
					IsTM2Related: entity.TM2Related(),
					Score:        entity.Score,
					FetchedAt:    now,
				})
			}
			if seenCodes[targetCode] {
				continue
			}
			seenCodes[targetCode] = true

			candidate := types.MappingCandidate{
				SourceCode:       concept.Code,
				SourceDisplay:    concept.Display,
				SourceSystem:     concept.System,
				TargetCode:       targetCode,
				TargetDisplay:    entity.Title,
				TargetDefinition: entity.Definition,
			}
			if entity.TM2Related() {
				candidate.TargetSystem = types.SystemICD11TM2
				tm2Bucket = append(tm2Bucket, candidate)
			} else {
				candidate.TargetSystem = types.SystemICD11MMS
				otherBucket = append(otherBucket, candidate)
			}
		}

		if s.pause > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(s.pause):
			}
		}
	}

	s.writeThrough(ctx, fetched)
	return append(tm2Bucket, otherBucket...), nil
}

// writeThrough persists fetched registry entries to the local cache.
// Failures are logged, not returned.
func (s *remoteRegistryStrategy) writeThrough(ctx context.Context, fetched []*types.ICDEntity) {
	if s.entities == nil || len(fetched) == 0 {
		return
	}
	if err := s.entities.UpsertBatch(dbctx.Context{Ctx: ctx}, fetched); err != nil {
		s.log.Warn("entity write-through failed", "count", len(fetched), "error", err)
	}
}
