package mapping

import (
	"strings"
	"testing"
	"unicode/utf8"

	types "github.com/ayurmap/termbridge-backend/internal/domain"
	"github.com/ayurmap/termbridge-backend/internal/mapping/rules"
	"github.com/ayurmap/termbridge-backend/internal/platform/logger"
)

func testLog(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func testTables(t *testing.T) *rules.Tables {
	t.Helper()
	return rules.Current(testLog(t))
}

func TestBuildSearchTermsExpandsDoshaConcept(t *testing.T) {
	concept := types.SourceConcept{
		Code:       "AYU-001",
		Display:    "Vata dosha imbalance",
		Definition: "Vata dosha imbalance affecting bodily functions",
		Synonyms:   []string{"Vata imbalance"},
		Categories: []string{"dosha"},
	}
	terms := BuildSearchTerms(concept, testTables(t))

	if len(terms) == 0 || terms[0] != "Vata dosha imbalance" {
		t.Fatalf("display must lead the term list, got %v", terms)
	}
	for _, want := range []string{
		"wind disorder", "constitutional pattern",
		"vata dosha", "pitta dosha", "kapha dosha",
		"traditional medicine", "ayurveda",
		"Vata imbalance",
	} {
		if !containsTerm(terms, want) {
			t.Fatalf("missing %q in %v", want, terms)
		}
	}

	seen := map[string]bool{}
	for _, term := range terms {
		lowered := strings.ToLower(term)
		if seen[lowered] {
			t.Fatalf("duplicate term %q in %v", term, terms)
		}
		seen[lowered] = true
		if utf8.RuneCountInString(term) < 3 {
			t.Fatalf("term %q shorter than 3 runes", term)
		}
	}
}

func TestBuildSearchTermsSimpleTerm(t *testing.T) {
	concept := types.SourceConcept{Code: "AYU-100", Display: "Simple term"}
	terms := BuildSearchTerms(concept, testTables(t))
	if len(terms) < 3 {
		t.Fatalf("want display plus anchors at minimum, got %v", terms)
	}
	if terms[0] != "Simple term" {
		t.Fatalf("terms[0] = %q", terms[0])
	}
	if !containsTerm(terms, "traditional medicine") || !containsTerm(terms, "ayurveda") {
		t.Fatalf("anchors missing: %v", terms)
	}
	if containsTerm(terms, "vata dosha") {
		t.Fatalf("dosha expansions should not fire for %v", terms)
	}
}

func TestBuildSearchTermsDiacriticVariants(t *testing.T) {
	concept := types.SourceConcept{Code: "AYU-101", Display: "Vāta vikāra"}
	terms := BuildSearchTerms(concept, testTables(t))
	if terms[0] != "Vāta vikāra" {
		t.Fatalf("literal form must come first: %v", terms)
	}
	if !containsTerm(terms, "Vata vikara") {
		t.Fatalf("ascii variant missing: %v", terms)
	}
	// The stripped variant contains "vata" and triggers its expansions.
	if !containsTerm(terms, "wind dosha") {
		t.Fatalf("expansions should fire on the ascii variant: %v", terms)
	}
}

func TestBuildSearchTermsDropsShortSeeds(t *testing.T) {
	concept := types.SourceConcept{Code: "AYU-102", Display: "Om"}
	terms := BuildSearchTerms(concept, testTables(t))
	if containsTerm(terms, "Om") {
		t.Fatalf("two-rune display must be dropped: %v", terms)
	}
	if len(terms) != 2 {
		t.Fatalf("want only the anchors, got %v", terms)
	}
}

func TestCapTerms(t *testing.T) {
	terms := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		terms = append(terms, strings.Repeat("x", i+3))
	}
	if got := capTerms(terms, 12); len(got) != 12 {
		t.Fatalf("cap 12 returned %d", len(got))
	}
	if got := capTerms(terms, 0); len(got) != 20 {
		t.Fatalf("cap 0 must not truncate, returned %d", len(got))
	}
	if got := capTerms(terms, 50); len(got) != 20 {
		t.Fatalf("cap above length must not pad, returned %d", len(got))
	}
}

func TestAugmentSynonyms(t *testing.T) {
	augmented := augmentSynonyms(
		[]string{"Vata imbalance", "", "vata imbalance"},
		[]string{"Vata dosha imbalance", "VATA IMBALANCE", "wind disorder"},
	)
	want := []string{"Vata imbalance", "Vata dosha imbalance", "wind disorder"}
	if len(augmented) != len(want) {
		t.Fatalf("augmented = %v, want %v", augmented, want)
	}
	for i := range want {
		if augmented[i] != want[i] {
			t.Fatalf("augmented[%d] = %q, want %q", i, augmented[i], want[i])
		}
	}
}

func containsTerm(terms []string, want string) bool {
	for _, term := range terms {
		if strings.EqualFold(term, want) {
			return true
		}
	}
	return false
}
