package mapping

import (
	"fmt"
	"testing"

	types "github.com/ayurmap/termbridge-backend/internal/domain"
)

func TestDedupeCandidatesFirstWins(t *testing.T) {
	candidates := []types.MappingCandidate{
		{TargetCode: "SK25.0", TargetSystem: types.SystemICD11TM2},
		{TargetCode: ""},
		{TargetCode: "SK25.0", TargetSystem: types.SystemICD11MMS},
		{TargetCode: "5C80", TargetSystem: types.SystemICD11MMS},
	}
	deduped := DedupeCandidates(candidates, MaxCandidatesPerTerm)
	if len(deduped) != 2 {
		t.Fatalf("got %d candidates, want 2: %+v", len(deduped), deduped)
	}
	if deduped[0].TargetSystem != types.SystemICD11TM2 {
		t.Fatalf("earlier strategy must win the shared code: %+v", deduped[0])
	}
	if deduped[1].TargetCode != "5C80" {
		t.Fatalf("unexpected second candidate: %+v", deduped[1])
	}
}

func TestDedupeCandidatesCap(t *testing.T) {
	candidates := make([]types.MappingCandidate, 0, 40)
	for i := 0; i < 40; i++ {
		candidates = append(candidates, types.MappingCandidate{TargetCode: fmt.Sprintf("C%02d", i)})
	}
	deduped := DedupeCandidates(candidates, MaxCandidatesPerTerm)
	if len(deduped) != MaxCandidatesPerTerm {
		t.Fatalf("got %d candidates, want %d", len(deduped), MaxCandidatesPerTerm)
	}
	if deduped[0].TargetCode != "C00" || deduped[14].TargetCode != "C14" {
		t.Fatalf("cap must keep the leading candidates: %+v", deduped)
	}
}
