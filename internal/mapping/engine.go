package mapping

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/ayurmap/termbridge-backend/internal/data/repos"
	types "github.com/ayurmap/termbridge-backend/internal/domain"
	"github.com/ayurmap/termbridge-backend/internal/mapping/rules"
	"github.com/ayurmap/termbridge-backend/internal/pkg/dbctx"
	"github.com/ayurmap/termbridge-backend/internal/platform/logger"
)

const (
	defaultSearchTermsPerCode = 12
	defaultSystemFragment     = "namaste"
	defaultHeartbeatEvery     = 20
)

// EngineConfig bounds one comprehensive mapping run.
type EngineConfig struct {
	// SearchTermsPerCode caps the expanded query list per concept.
	SearchTermsPerCode int
	// MaxCandidates caps deduplicated candidates per concept.
	MaxCandidates int
	// WhoRelease stamps records when the claimed run carries none.
	WhoRelease string
	// SystemFragment selects which catalog terms are mapped.
	SystemFragment string
	// HeartbeatEvery is the concept interval between run heartbeats.
	HeartbeatEvery int
}

func (c EngineConfig) withDefaults() EngineConfig {
	if c.SearchTermsPerCode <= 0 {
		c.SearchTermsPerCode = defaultSearchTermsPerCode
	}
	if c.MaxCandidates <= 0 {
		c.MaxCandidates = MaxCandidatesPerTerm
	}
	if c.SystemFragment == "" {
		c.SystemFragment = defaultSystemFragment
	}
	if c.HeartbeatEvery <= 0 {
		c.HeartbeatEvery = defaultHeartbeatEvery
	}
	return c
}

// EngineDeps collects the stores and strategies a run needs.
type EngineDeps struct {
	Terms       repos.TermRepo
	Records     repos.RecordRepo
	Runs        repos.RunRepo
	Validations repos.ValidationRepo
	ConceptMaps repos.ConceptMapRepo
	Strategies  []Strategy
	Scorer      *Scorer
	Tables      *rules.Tables
}

// Engine executes comprehensive mapping runs: load the catalog, generate
// and score candidates concept by concept, persist the survivors, then
// assemble the run's ConceptMap and statistics. Concepts are processed
// strictly sequentially; failure after a partial write leaves the
// persisted records in place.
type Engine struct {
	cfg  EngineConfig
	deps EngineDeps
	log  *logger.Logger
}

func NewEngine(cfg EngineConfig, deps EngineDeps, baseLog *logger.Logger) *Engine {
	return &Engine{
		cfg:  cfg.withDefaults(),
		deps: deps,
		log:  baseLog.With("service", "MappingEngine"),
	}
}

// Type names the run type this engine executes.
func (e *Engine) Type() string { return types.RunTypeComprehensive }

type runStats struct {
	termsProcessed int
	termsUnmatched int
	recordsCreated int
	aggregateSum   float64
	tierCounts     map[string]int
	namasteRelease string
	whoRelease     string
}

func (e *Engine) Run(ctx context.Context, run *types.MappingRun) error {
	if run == nil {
		return fmt.Errorf("missing run")
	}
	dbc := dbctx.Context{Ctx: ctx}
	log := e.log.With("job_id", run.JobID)

	if run.ForceRefresh {
		purged, err := e.deps.Records.DeleteByJobID(dbc, run.JobID)
		if err != nil {
			return fmt.Errorf("purge previous records: %w", err)
		}
		if purged > 0 {
			log.Info("purged previous records", "count", purged)
		}
	}

	termRows, err := e.deps.Terms.ListBySystem(dbc, e.cfg.SystemFragment)
	if err != nil {
		return fmt.Errorf("load terms: %w", err)
	}
	concepts := ConceptsFromTerms(termRows)

	reviews, err := e.deps.Validations.ListAll(dbc)
	if err != nil {
		return fmt.Errorf("load validations: %w", err)
	}
	validations := foldValidationScores(reviews)

	stats := runStats{
		tierCounts:     map[string]int{},
		namasteRelease: run.NamasteRelease,
		whoRelease:     run.WhoRelease,
	}
	if stats.namasteRelease == "" {
		stats.namasteRelease = time.Now().UTC().Format("20060102")
	}
	if stats.whoRelease == "" {
		stats.whoRelease = e.cfg.WhoRelease
	}

	log.Info("mapping run started",
		"concepts", len(concepts),
		"force_refresh", run.ForceRefresh,
		"who_release", stats.whoRelease,
	)

	for i := range concepts {
		if err := ctx.Err(); err != nil {
			return err
		}
		concept := concepts[i]
		if err := e.mapConcept(ctx, dbc, concept, run.JobID, validations[concept.Code], &stats); err != nil {
			return err
		}
		if stats.termsProcessed%e.cfg.HeartbeatEvery == 0 {
			if err := e.deps.Runs.Heartbeat(dbc, run.ID); err != nil {
				log.Warn("heartbeat failed", "error", err)
			}
		}
	}

	return e.finalize(dbc, run, stats)
}

// mapConcept runs the full pipeline for one source concept: term
// expansion, candidate generation, dedupe, scoring, persistence.
func (e *Engine) mapConcept(ctx context.Context, dbc dbctx.Context, concept types.SourceConcept, jobID string, scores map[string]float64, stats *runStats) error {
	searchTerms := capTerms(BuildSearchTerms(concept, e.deps.Tables), e.cfg.SearchTermsPerCode)

	var candidates []types.MappingCandidate
	for _, strategy := range e.deps.Strategies {
		generated, err := strategy.Generate(ctx, concept, searchTerms)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			e.log.Warn("candidate strategy failed",
				"strategy", strategy.Name(),
				"source_code", concept.Code,
				"error", err,
			)
		}
		candidates = append(candidates, generated...)
	}
	candidates = DedupeCandidates(candidates, e.cfg.MaxCandidates)

	augmented := augmentSynonyms(concept.Synonyms, searchTerms)
	minAggregate := e.deps.Scorer.Config().MinAggregate

	survivors := make([]*types.MappingRecord, 0, len(candidates))
	for idx := range candidates {
		candidate := &candidates[idx]
		e.deps.Scorer.Score(concept, candidate, augmented, scores)
		if candidate.Tier == types.TierUnmappable && candidate.AggregateScore < minAggregate {
			continue
		}
		survivors = append(survivors, recordFromCandidate(candidate, jobID, stats.namasteRelease, stats.whoRelease))
	}

	if len(survivors) == 0 {
		stats.termsUnmatched++
	} else {
		if err := e.deps.Records.UpsertBatch(dbc, survivors); err != nil {
			return fmt.Errorf("persist records for %s: %w", concept.Code, err)
		}
		for _, rec := range survivors {
			stats.tierCounts[string(rec.Tier)]++
			stats.aggregateSum += rec.AggregateScore
			stats.recordsCreated++
		}
	}
	stats.termsProcessed++

	e.log.Debug("concept mapped",
		"source_code", concept.Code,
		"search_terms", len(searchTerms),
		"records", len(survivors),
	)
	return nil
}

// finalize assembles the run's ConceptMap, stores it under both the
// job-scoped and the alias map id, and completes the run row.
func (e *Engine) finalize(dbc dbctx.Context, run *types.MappingRun, stats runStats) error {
	records, err := e.deps.Records.ListByJobID(dbc, run.JobID)
	if err != nil {
		return fmt.Errorf("load run records: %w", err)
	}
	now := time.Now().UTC()
	doc, err := BuildConceptMap(records, run.JobID, now)
	if err != nil {
		return err
	}
	if err := e.deps.ConceptMaps.Upsert(dbc, doc); err != nil {
		return fmt.Errorf("store concept map: %w", err)
	}
	alias := *doc
	alias.ID = uuid.UUID{}
	alias.MapID = ConceptMapAliasID
	alias.CreatedAt = time.Time{}
	if err := e.deps.ConceptMaps.Upsert(dbc, &alias); err != nil {
		return fmt.Errorf("store concept map alias: %w", err)
	}

	average := 0.0
	if stats.recordsCreated > 0 {
		average = stats.aggregateSum / float64(stats.recordsCreated)
	}
	mapped := stats.termsProcessed - stats.termsUnmatched
	successRate := 0.0
	if stats.termsProcessed > 0 {
		successRate = float64(mapped) / float64(stats.termsProcessed)
	}
	tierJSON, _ := json.Marshal(stats.tierCounts)
	statsJSON, _ := json.Marshal(map[string]interface{}{
		"total_terms":  stats.termsProcessed,
		"mapped_terms": mapped,
		"success_rate": round3(successRate),
	})

	updates := map[string]interface{}{
		"status":             types.RunStatusCompleted,
		"terms_processed":    stats.termsProcessed,
		"terms_unmatched":    stats.termsUnmatched,
		"records_created":    stats.recordsCreated,
		"direct_matches":     stats.tierCounts[string(types.TierDirectMatch)],
		"biomedical_matches": stats.tierCounts[string(types.TierBiomedical)],
		"average_confidence": round3(average),
		"tier_breakdown":     datatypes.JSON(tierJSON),
		"statistics":         datatypes.JSON(statsJSON),
		"namaste_release":    stats.namasteRelease,
		"who_release":        stats.whoRelease,
		"completed_at":       now,
		"last_error":         "",
	}
	if err := e.deps.Runs.UpdateFields(dbc, run.ID, updates); err != nil {
		return fmt.Errorf("finalize run: %w", err)
	}
	if err := e.deps.Runs.SetLatest(dbc, run.JobID); err != nil {
		return fmt.Errorf("advance latest pointer: %w", err)
	}

	e.log.Info("mapping run completed",
		"job_id", run.JobID,
		"terms_processed", stats.termsProcessed,
		"terms_unmatched", stats.termsUnmatched,
		"records_created", stats.recordsCreated,
		"average_confidence", round3(average),
	)
	return nil
}

// recordFromCandidate freezes a scored candidate into its persisted form.
func recordFromCandidate(candidate *types.MappingCandidate, jobID, namasteRelease, whoRelease string) *types.MappingRecord {
	evidence, _ := json.Marshal(candidate.Evidence)
	return &types.MappingRecord{
		SourceSystem:     candidate.SourceSystem,
		SourceCode:       candidate.SourceCode,
		TargetSystem:     candidate.TargetSystem,
		TargetCode:       candidate.TargetCode,
		SourceDisplay:    candidate.SourceDisplay,
		TargetDisplay:    candidate.TargetDisplay,
		TargetDefinition: candidate.TargetDefinition,
		LexicalScore:     candidate.LexicalScore,
		DefinitionScore:  candidate.DefinitionScore,
		SynonymScore:     candidate.SynonymScore,
		CategoryScore:    candidate.CategoryScore,
		ValidationScore:  candidate.ValidationScore,
		AggregateScore:   candidate.AggregateScore,
		Tier:             candidate.Tier,
		Equivalence:      candidate.Equivalence,
		Evidence:         datatypes.JSON(evidence),
		JobID:            jobID,
		NamasteRelease:   namasteRelease,
		WhoRelease:       whoRelease,
	}
}

// foldValidationScores collapses repeated reviews of the same pairing into
// a running pairwise average in submission order: each new score replaces
// the held value with (held+score)/2.
func foldValidationScores(reviews []*types.MappingValidation) map[string]map[string]float64 {
	folded := map[string]map[string]float64{}
	for _, review := range reviews {
		if review == nil || review.NamasteCode == "" || review.ICDCode == "" {
			continue
		}
		byTarget, ok := folded[review.NamasteCode]
		if !ok {
			byTarget = map[string]float64{}
			folded[review.NamasteCode] = byTarget
		}
		if held, ok := byTarget[review.ICDCode]; ok {
			byTarget[review.ICDCode] = (held + review.ValidationScore) / 2
		} else {
			byTarget[review.ICDCode] = review.ValidationScore
		}
	}
	return folded
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
