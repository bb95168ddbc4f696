package mapping

import (
	"context"
	"testing"

	types "github.com/ayurmap/termbridge-backend/internal/domain"
)

func TestBridgeStrategyMatchesMarker(t *testing.T) {
	strategy := NewSemanticBridgeStrategy(testTables(t), testLog(t))
	concept := types.SourceConcept{
		Code:    "AYU-099",
		Display: "Ama accumulation disorder",
		System:  types.SystemNamaste,
	}
	candidates, err := strategy.Generate(context.Background(), concept, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(candidates) == 0 {
		t.Fatalf("known marker must produce at least one bridge candidate")
	}
	first := candidates[0]
	if first.TargetSystem != types.SystemSemanticBridge {
		t.Fatalf("target system = %q", first.TargetSystem)
	}
	if first.TargetCode != "XK7G.3" {
		t.Fatalf("target code = %q, want XK7G.3", first.TargetCode)
	}
	if first.TargetDefinition != first.TargetDisplay {
		t.Fatalf("bridge definition should mirror its display: %+v", first)
	}
	if first.SourceCode != "AYU-099" || first.SourceDisplay != "Ama accumulation disorder" {
		t.Fatalf("source identity not carried: %+v", first)
	}
}

func TestBridgeStrategyDiacriticDisplay(t *testing.T) {
	strategy := NewSemanticBridgeStrategy(testTables(t), testLog(t))
	concept := types.SourceConcept{Code: "AYU-098", Display: "Vāta vyādhi"}
	candidates, err := strategy.Generate(context.Background(), concept, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(candidates) != 1 || candidates[0].TargetCode != "XK7G.0" {
		t.Fatalf("diacritic display should match the vata bridge: %+v", candidates)
	}
}

func TestBridgeStrategyNoMarker(t *testing.T) {
	strategy := NewSemanticBridgeStrategy(testTables(t), testLog(t))
	concept := types.SourceConcept{Code: "AYU-097", Display: "Fracture of humerus"}
	candidates, err := strategy.Generate(context.Background(), concept, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(candidates) != 0 {
		t.Fatalf("no marker should mean no candidates: %+v", candidates)
	}
}
