package jobs

import (
	"context"
	"fmt"
	"sync"

	types "github.com/ayurmap/termbridge-backend/internal/domain"
)

// Runner executes one run type end to end. A runner owns success
// finalization of the run row; the worker only records failures.
type Runner interface {
	Type() string
	Run(ctx context.Context, run *types.MappingRun) error
}

type Registry struct {
	mu      sync.RWMutex
	runners map[string]Runner
}

func NewRegistry() *Registry {
	return &Registry{runners: make(map[string]Runner)}
}

func (r *Registry) Register(runner Runner) error {
	if runner == nil {
		return fmt.Errorf("nil runner")
	}
	t := runner.Type()
	if t == "" {
		return fmt.Errorf("runner Type() is empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.runners[t]; exists {
		return fmt.Errorf("runner already registered for run_type=%s", t)
	}
	r.runners[t] = runner
	return nil
}

func (r *Registry) Get(runType string) (Runner, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	runner, ok := r.runners[runType]
	return runner, ok
}
