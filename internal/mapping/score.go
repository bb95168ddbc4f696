package mapping

import (
	"strings"

	types "github.com/ayurmap/termbridge-backend/internal/domain"
	"github.com/ayurmap/termbridge-backend/internal/mapping/rules"
	"github.com/ayurmap/termbridge-backend/internal/pkg/textnorm"
)

// ScoringConfig holds the aggregation weights and the tier thresholds.
type ScoringConfig struct {
	LexicalWeight    float64
	DefinitionWeight float64
	SynonymWeight    float64
	CategoryWeight   float64
	ValidationWeight float64

	// TM2 targets earn a synonym-driven boost on top of the weighted sum,
	// and a floor once the synonym evidence clears the gate.
	TMSynonymBoost   float64
	TMSynonymGate    float64
	TMAggregateFloor float64

	TMDirectThreshold   float64
	BiomedicalThreshold float64
	BridgeThreshold     float64
	MinAggregate        float64
}

// DefaultScoringConfig returns the production weights. They sum to 1.0
// before the TM2 boost.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		LexicalWeight:    0.35,
		DefinitionWeight: 0.25,
		SynonymWeight:    0.20,
		CategoryWeight:   0.15,
		ValidationWeight: 0.05,

		TMSynonymBoost:   0.15,
		TMSynonymGate:    0.40,
		TMAggregateFloor: 0.60,

		TMDirectThreshold:   0.70,
		BiomedicalThreshold: 0.60,
		BridgeThreshold:     0.40,
		MinAggregate:        0.35,
	}
}

// SubScores carries the five similarity dimensions prior to aggregation.
type SubScores struct {
	Lexical    float64
	Definition float64
	Synonym    float64
	Category   float64
	Validation float64
}

// Aggregate combines the sub-scores with the configured weights, applies
// the TM2 boost when the target lives in the traditional-medicine module,
// and clamps once at the end.
func (c ScoringConfig) Aggregate(sub SubScores, targetSystem string) float64 {
	aggregate := c.LexicalWeight*sub.Lexical +
		c.DefinitionWeight*sub.Definition +
		c.SynonymWeight*sub.Synonym +
		c.CategoryWeight*sub.Category +
		c.ValidationWeight*sub.Validation
	if targetSystem == types.SystemICD11TM2 {
		aggregate += c.TMSynonymBoost * sub.Synonym
		if sub.Synonym >= c.TMSynonymGate && aggregate < c.TMAggregateFloor {
			aggregate = c.TMAggregateFloor
		}
	}
	return clamp01(aggregate)
}

// Assign places a scored candidate on the tier ladder. Rules are checked
// top to bottom and the first match wins.
func (c ScoringConfig) Assign(targetSystem string, aggregate, synonym float64) (types.MatchTier, types.Equivalence) {
	switch {
	case targetSystem == types.SystemICD11TM2 && synonym >= c.TMSynonymGate && aggregate >= c.TMAggregateFloor:
		return types.TierDirectMatch, types.EquivalenceEquivalent
	case targetSystem == types.SystemICD11TM2 && aggregate >= c.TMDirectThreshold:
		return types.TierDirectMatch, types.EquivalenceEquivalent
	case targetSystem == types.SystemICD11MMS && aggregate >= c.BiomedicalThreshold:
		return types.TierBiomedical, types.EquivalenceRelatedTo
	case targetSystem == types.SystemSemanticBridge && aggregate >= c.BridgeThreshold:
		return types.TierSemanticBridge, types.EquivalenceNarrower
	case aggregate >= c.MinAggregate:
		return types.TierBiomedical, types.EquivalenceInexact
	default:
		return types.TierUnmappable, types.EquivalenceUnmatched
	}
}

// Scorer fills the similarity dimensions of generated candidates.
type Scorer struct {
	cfg    ScoringConfig
	tables *rules.Tables
}

func NewScorer(cfg ScoringConfig, tables *rules.Tables) *Scorer {
	return &Scorer{cfg: cfg, tables: tables}
}

func (s *Scorer) Config() ScoringConfig { return s.cfg }

// Score computes every dimension for one candidate in place. synonyms is
// the augmented synonym list of the source concept and validations holds
// the folded expert scores keyed by target code.
func (s *Scorer) Score(concept types.SourceConcept, candidate *types.MappingCandidate, synonyms []string, validations map[string]float64) {
	sub := SubScores{
		Lexical:    lexicalSimilarity(concept.Display, candidate.TargetDisplay),
		Definition: definitionSimilarity(concept, candidate),
		Synonym:    synonymSimilarity(candidate.TargetDisplay, synonyms),
		Category:   s.categoryAlignment(concept.Display, candidate.TargetDisplay),
		Validation: validations[candidate.TargetCode],
	}
	candidate.LexicalScore = sub.Lexical
	candidate.DefinitionScore = sub.Definition
	candidate.SynonymScore = sub.Synonym
	candidate.CategoryScore = sub.Category
	candidate.ValidationScore = sub.Validation
	candidate.AggregateScore = s.cfg.Aggregate(sub, candidate.TargetSystem)
	candidate.Tier, candidate.Equivalence = s.cfg.Assign(candidate.TargetSystem, candidate.AggregateScore, sub.Synonym)
	candidate.Evidence = map[string]float64{
		"lexical":    sub.Lexical,
		"definition": sub.Definition,
		"synonym":    sub.Synonym,
		"category":   sub.Category,
		"validation": sub.Validation,
	}
}

// lexicalSimilarity averages token Jaccard and bigram Dice over the
// normalized displays.
func lexicalSimilarity(a, b string) float64 {
	normA := textnorm.Normalize(a)
	normB := textnorm.Normalize(b)
	if normA == "" || normB == "" {
		return 0
	}
	jaccard := textnorm.Jaccard(textnorm.Tokens(normA), textnorm.Tokens(normB))
	dice := textnorm.DiceBigram(normA, normB)
	return (jaccard + dice) / 2
}

// definitionSimilarity compares definitions, falling back to displays on
// either side when a definition is missing.
func definitionSimilarity(concept types.SourceConcept, candidate *types.MappingCandidate) float64 {
	source := concept.Definition
	if source == "" {
		source = concept.Display
	}
	target := candidate.TargetDefinition
	if target == "" {
		target = candidate.TargetDisplay
	}
	if source == "" || target == "" {
		return 0
	}
	return tfidfCosine(source, target)
}

// synonymSimilarity is the best bigram Dice between the target display and
// any synonym.
func synonymSimilarity(targetDisplay string, synonyms []string) float64 {
	normTarget := textnorm.Normalize(targetDisplay)
	if normTarget == "" {
		return 0
	}
	best := 0.0
	for _, syn := range synonyms {
		normSyn := textnorm.Normalize(syn)
		if normSyn == "" {
			continue
		}
		if score := textnorm.DiceBigram(normTarget, normSyn); score > best {
			best = score
		}
	}
	return best
}

// categoryAlignment is the share of hint groups whose keywords show up in
// both displays. The target side is matched normalized, the source side
// only lowercased.
func (s *Scorer) categoryAlignment(sourceDisplay, targetDisplay string) float64 {
	if len(s.tables.CategoryHints) == 0 {
		return 0
	}
	normTarget := textnorm.Normalize(targetDisplay)
	loweredSource := strings.ToLower(sourceDisplay)
	matches := 0
	for _, hint := range s.tables.CategoryHints {
		if containsAny(normTarget, hint.Keywords) && containsAny(loweredSource, hint.Keywords) {
			matches++
		}
	}
	return float64(matches) / float64(len(s.tables.CategoryHints))
}

func containsAny(text string, keywords []string) bool {
	if text == "" {
		return false
	}
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
