package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/ayurmap/termbridge-backend/internal/data/repos"
	types "github.com/ayurmap/termbridge-backend/internal/domain"
	"github.com/ayurmap/termbridge-backend/internal/pkg/dbctx"
	apperrors "github.com/ayurmap/termbridge-backend/internal/pkg/errors"
	"github.com/ayurmap/termbridge-backend/internal/platform/logger"
)

const (
	defaultPollInterval = 1 * time.Second
	defaultMaxAttempts  = 5
	defaultRetryDelay   = 30 * time.Second
	defaultStaleRunning = 2 * time.Minute
)

type WorkerConfig struct {
	PollInterval time.Duration
	MaxAttempts  int
	RetryDelay   time.Duration
	StaleRunning time.Duration
}

func (c WorkerConfig) withDefaults() WorkerConfig {
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = defaultRetryDelay
	}
	if c.StaleRunning <= 0 {
		c.StaleRunning = defaultStaleRunning
	}
	return c
}

// Worker claims runnable runs from the database and dispatches them to
// the registered runner for their run type. Claiming uses SKIP LOCKED,
// so multiple workers can poll the same table without double-claiming.
type Worker struct {
	runs     repos.RunRepo
	registry *Registry
	cfg      WorkerConfig
	log      *logger.Logger
}

func NewWorker(runs repos.RunRepo, registry *Registry, cfg WorkerConfig, baseLog *logger.Logger) *Worker {
	return &Worker{
		runs:     runs,
		registry: registry,
		cfg:      cfg.withDefaults(),
		log:      baseLog.With("component", "MappingWorker"),
	}
}

func (w *Worker) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(w.cfg.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.tick(ctx)
			}
		}
	}()
}

func (w *Worker) tick(ctx context.Context) {
	dbc := dbctx.Context{Ctx: ctx}
	run, err := w.runs.ClaimNextRunnable(dbc, w.cfg.MaxAttempts, w.cfg.RetryDelay, w.cfg.StaleRunning)
	if err != nil {
		w.log.Warn("claim failed", "error", err)
		return
	}
	if run == nil {
		return
	}
	runner, ok := w.registry.Get(run.RunType)
	if !ok {
		w.log.Warn("no runner registered", "run_type", run.RunType, "job_id", run.JobID)
		w.fail(run, fmt.Errorf("no runner registered for run_type=%s", run.RunType))
		return
	}
	w.execute(ctx, run, runner)
}

// execute dispatches one claimed run. A runner panic is treated like a
// returned error; success finalization is the runner's job.
func (w *Worker) execute(ctx context.Context, run *types.MappingRun, runner Runner) {
	w.log.Info("run claimed",
		"job_id", run.JobID,
		"run_type", run.RunType,
		"attempt", run.Attempts+1,
	)
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("runner panic", "job_id", run.JobID, "run_type", run.RunType, "panic", r)
			w.fail(run, fmt.Errorf("panic: %v", r))
		}
	}()
	if err := runner.Run(ctx, run); err != nil {
		w.log.Error("run failed",
			"job_id", run.JobID,
			"run_type", run.RunType,
			"error", err,
			"retryable", apperrors.IsRetryable(err),
		)
		w.fail(run, err)
	}
}

// fail records the failure on the run row. The write uses a fresh
// short-lived context so a cancelled run context cannot also block the
// status update; records persisted before the failure stay in place.
func (w *Worker) fail(run *types.MappingRun, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":        types.RunStatusFailed,
		"last_error":    cause.Error(),
		"last_error_at": now,
	}
	if err := w.runs.UpdateFields(dbctx.Context{Ctx: ctx}, run.ID, updates); err != nil {
		w.log.Error("marking run failed failed", "job_id", run.JobID, "error", err)
	}
}
