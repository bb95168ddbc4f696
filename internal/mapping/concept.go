package mapping

import (
	"encoding/json"
	"strings"

	types "github.com/ayurmap/termbridge-backend/internal/domain"
)

// scriptPropertyCodes are the property codes whose valueString carries an
// alternate-script rendering of the display. These feed the synonym list.
var scriptPropertyCodes = map[string]bool{
	"diacritical": true,
	"devanagari":  true,
	"arabic":      true,
	"tamil":       true,
}

// categoryPropertyCodes (compared lowercased) mark properties that classify
// the concept rather than rename it.
var categoryPropertyCodes = map[string]bool{
	"dosha":    true,
	"category": true,
	"system":   true,
}

// ConceptFromTerm projects a stored term into the read-only view a mapping
// run works on: designation values and script-property values become
// synonyms, classification properties become categories, and every
// valueString lands in the property map. Malformed JSON sub-documents are
// ignored rather than failing the run.
func ConceptFromTerm(term *types.NamasteTerm) types.SourceConcept {
	concept := types.SourceConcept{
		Code:       term.Code,
		Display:    term.Display,
		Definition: term.Definition,
		System:     term.System,
		Properties: map[string]string{},
	}
	if concept.System == "" {
		concept.System = types.SystemNamaste
	}

	if len(term.Designations) > 0 {
		var designations []types.TermDesignation
		if err := json.Unmarshal(term.Designations, &designations); err == nil {
			for _, d := range designations {
				if strings.TrimSpace(d.Value) != "" {
					concept.Synonyms = append(concept.Synonyms, d.Value)
				}
			}
		}
	}

	if len(term.Properties) > 0 {
		var properties []types.TermProperty
		if err := json.Unmarshal(term.Properties, &properties); err == nil {
			for _, p := range properties {
				if scriptPropertyCodes[p.Code] && strings.TrimSpace(p.ValueString) != "" {
					concept.Synonyms = append(concept.Synonyms, p.ValueString)
				}
				if categoryPropertyCodes[strings.ToLower(p.Code)] {
					value := p.ValueString
					if value == "" {
						value = p.ValueCode
					}
					if strings.TrimSpace(value) != "" {
						concept.Categories = append(concept.Categories, value)
					}
				}
				if strings.TrimSpace(p.ValueString) != "" {
					concept.Properties[p.Code] = p.ValueString
				}
			}
		}
	}

	return concept
}

// ConceptsFromTerms converts a term listing, skipping rows without a code or
// display and keeping the first row per code.
func ConceptsFromTerms(terms []*types.NamasteTerm) []types.SourceConcept {
	concepts := make([]types.SourceConcept, 0, len(terms))
	seen := make(map[string]bool, len(terms))
	for _, term := range terms {
		if term == nil {
			continue
		}
		if strings.TrimSpace(term.Code) == "" || strings.TrimSpace(term.Display) == "" {
			continue
		}
		if seen[term.Code] {
			continue
		}
		seen[term.Code] = true
		concepts = append(concepts, ConceptFromTerm(term))
	}
	return concepts
}
