package mapping

import (
	"testing"

	types "github.com/ayurmap/termbridge-backend/internal/domain"
	"gorm.io/datatypes"
)

func TestConceptFromTermExtraction(t *testing.T) {
	term := &types.NamasteTerm{
		Code:       "AYU-001",
		Display:    "Vata dosha imbalance",
		Definition: "Vata dosha imbalance affecting bodily functions",
		System:     types.SystemNamaste,
		Designations: datatypes.JSON([]byte(`[
			{"language": "en", "value": "Vata imbalance"},
			{"language": "sa", "value": ""}
		]`)),
		Properties: datatypes.JSON([]byte(`[
			{"code": "diacritical", "valueString": "vāta vikāra"},
			{"code": "devanagari", "valueString": "वात विकार"},
			{"code": "dosha", "valueString": "Vata"},
			{"code": "SYSTEM", "valueCode": "ayurveda"},
			{"code": "note", "valueString": "chronic"}
		]`)),
	}

	concept := ConceptFromTerm(term)
	if concept.Code != "AYU-001" || concept.Display != "Vata dosha imbalance" {
		t.Fatalf("identity not carried over: %+v", concept)
	}
	wantSynonyms := []string{"Vata imbalance", "vāta vikāra", "वात विकार"}
	if len(concept.Synonyms) != len(wantSynonyms) {
		t.Fatalf("synonyms = %v, want %v", concept.Synonyms, wantSynonyms)
	}
	for i, want := range wantSynonyms {
		if concept.Synonyms[i] != want {
			t.Fatalf("synonyms[%d] = %q, want %q", i, concept.Synonyms[i], want)
		}
	}
	wantCategories := []string{"Vata", "ayurveda"}
	if len(concept.Categories) != len(wantCategories) {
		t.Fatalf("categories = %v, want %v", concept.Categories, wantCategories)
	}
	for i, want := range wantCategories {
		if concept.Categories[i] != want {
			t.Fatalf("categories[%d] = %q, want %q", i, concept.Categories[i], want)
		}
	}
	if concept.Properties["dosha"] != "Vata" || concept.Properties["note"] != "chronic" {
		t.Fatalf("properties = %v", concept.Properties)
	}
	if _, ok := concept.Properties["SYSTEM"]; ok {
		t.Fatalf("valueCode-only property should not land in the property map: %v", concept.Properties)
	}
}

func TestConceptFromTermMalformedJSON(t *testing.T) {
	term := &types.NamasteTerm{
		Code:         "AYU-002",
		Display:      "Pitta disorder",
		Designations: datatypes.JSON([]byte(`{"not": "a list"`)),
		Properties:   datatypes.JSON([]byte(`also broken`)),
	}
	concept := ConceptFromTerm(term)
	if len(concept.Synonyms) != 0 || len(concept.Categories) != 0 || len(concept.Properties) != 0 {
		t.Fatalf("malformed sub-documents should extract nothing: %+v", concept)
	}
	if concept.System != types.SystemNamaste {
		t.Fatalf("system fallback = %q", concept.System)
	}
}

func TestConceptsFromTermsDedupe(t *testing.T) {
	terms := []*types.NamasteTerm{
		nil,
		{Code: "AYU-001", Display: "Vata dosha imbalance"},
		{Code: "", Display: "orphan"},
		{Code: "AYU-002", Display: "   "},
		{Code: "AYU-001", Display: "duplicate wins nothing"},
		{Code: "AYU-003", Display: "Kapha accumulation"},
	}
	concepts := ConceptsFromTerms(terms)
	if len(concepts) != 2 {
		t.Fatalf("got %d concepts, want 2: %+v", len(concepts), concepts)
	}
	if concepts[0].Code != "AYU-001" || concepts[0].Display != "Vata dosha imbalance" {
		t.Fatalf("first occurrence should win: %+v", concepts[0])
	}
	if concepts[1].Code != "AYU-003" {
		t.Fatalf("unexpected second concept: %+v", concepts[1])
	}
}
