package mapping

// Tier labels how a candidate mapping was established.
type Tier string

const (
	TierDirectMatch    Tier = "DIRECT_MATCH"
	TierBiomedical     Tier = "BIOMEDICAL"
	TierSemanticBridge Tier = "SEMANTIC_BRIDGE"
	TierUnmappable     Tier = "UNMAPPABLE"
)

// Equivalence follows the FHIR ConceptMap equivalence value set.
type Equivalence string

const (
	EquivalenceEquivalent Equivalence = "equivalent"
	EquivalenceRelatedTo  Equivalence = "relatedto"
	EquivalenceNarrower   Equivalence = "narrower"
	EquivalenceInexact    Equivalence = "inexact"
	EquivalenceUnmatched  Equivalence = "unmatched"
)

// Candidate is one scored source-to-target pairing produced during a run.
// Generation fills the identity fields, scoring fills the rest.
type Candidate struct {
	SourceCode    string `json:"source_code"`
	SourceDisplay string `json:"source_display"`
	SourceSystem  string `json:"source_system"`

	TargetCode       string `json:"target_code"`
	TargetDisplay    string `json:"target_display"`
	TargetSystem     string `json:"target_system"`
	TargetDefinition string `json:"target_definition,omitempty"`

	LexicalScore    float64 `json:"lexical_score"`
	DefinitionScore float64 `json:"definition_score"`
	SynonymScore    float64 `json:"synonym_score"`
	CategoryScore   float64 `json:"category_score"`
	ValidationScore float64 `json:"validation_score"`
	AggregateScore  float64 `json:"aggregate_score"`

	Tier        Tier        `json:"tier"`
	Equivalence Equivalence `json:"equivalence"`

	// Evidence records the raw sub-scores keyed by dimension so reviewers
	// can see why a pairing landed in its tier.
	Evidence map[string]float64 `json:"evidence,omitempty"`
}
