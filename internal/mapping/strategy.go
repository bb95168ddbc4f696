package mapping

import (
	"context"

	types "github.com/ayurmap/termbridge-backend/internal/domain"
)

// Strategy generates target candidates for one source concept. Strategies
// run in registration order and degrade independently: a failing strategy
// is logged and skipped, never aborting the run.
type Strategy interface {
	Name() string
	Generate(ctx context.Context, concept types.SourceConcept, searchTerms []string) ([]types.MappingCandidate, error)
}
