package mapping

import (
	"context"
	"strings"

	types "github.com/ayurmap/termbridge-backend/internal/domain"
	"github.com/ayurmap/termbridge-backend/internal/mapping/rules"
	"github.com/ayurmap/termbridge-backend/internal/pkg/textnorm"
	"github.com/ayurmap/termbridge-backend/internal/platform/logger"
)

// semanticBridgeStrategy matches concept displays against the curated
// bridge table. Bridges catch traditional-medicine constructs that have no
// registry entry of their own and map them to extension codes.
type semanticBridgeStrategy struct {
	tables *rules.Tables
	log    *logger.Logger
}

func NewSemanticBridgeStrategy(tables *rules.Tables, baseLog *logger.Logger) Strategy {
	return &semanticBridgeStrategy{
		tables: tables,
		log:    baseLog.With("strategy", "semantic_bridge"),
	}
}

func (s *semanticBridgeStrategy) Name() string { return "semantic_bridge" }

// Generate checks every bridge marker against both the diacritic-stripped
// and the fully normalized display.
func (s *semanticBridgeStrategy) Generate(ctx context.Context, concept types.SourceConcept, searchTerms []string) ([]types.MappingCandidate, error) {
	asciiDisplay := textnorm.StripDiacritics(strings.ToLower(concept.Display))
	normalizedDisplay := textnorm.Normalize(concept.Display)

	var candidates []types.MappingCandidate
	for _, bridge := range s.tables.Bridges {
		if !strings.Contains(asciiDisplay, bridge.Marker) && !strings.Contains(normalizedDisplay, bridge.Marker) {
			continue
		}
		candidates = append(candidates, types.MappingCandidate{
			SourceCode:       concept.Code,
			SourceDisplay:    concept.Display,
			SourceSystem:     concept.System,
			TargetCode:       bridge.Code,
			TargetDisplay:    bridge.Display,
			TargetSystem:     types.SystemSemanticBridge,
			TargetDefinition: bridge.Display,
		})
	}
	return candidates, nil
}
