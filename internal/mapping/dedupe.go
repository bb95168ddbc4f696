package mapping

import types "github.com/ayurmap/termbridge-backend/internal/domain"

// MaxCandidatesPerTerm bounds how many deduplicated candidates one concept
// carries into scoring.
const MaxCandidatesPerTerm = 15

// DedupeCandidates drops candidates without a target code and keeps the
// first occurrence per code across strategies, capped at max. Strategy
// order therefore decides which system a shared code lands in.
func DedupeCandidates(candidates []types.MappingCandidate, max int) []types.MappingCandidate {
	deduped := make([]types.MappingCandidate, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, candidate := range candidates {
		if candidate.TargetCode == "" || seen[candidate.TargetCode] {
			continue
		}
		seen[candidate.TargetCode] = true
		deduped = append(deduped, candidate)
		if max > 0 && len(deduped) >= max {
			break
		}
	}
	return deduped
}
