package mapping

import (
	"math"
	"testing"
)

func TestTfidfCosineIdenticalTexts(t *testing.T) {
	text := "Vata dosha imbalance affecting bodily functions"
	got := tfidfCosine(text, text)
	if math.Abs(got-1) > 1e-9 {
		t.Fatalf("identical texts = %v, want 1", got)
	}
}

func TestTfidfCosineDisjointTexts(t *testing.T) {
	got := tfidfCosine("vata wind movement", "fracture humerus displacement")
	if got != 0 {
		t.Fatalf("disjoint texts = %v, want 0", got)
	}
}

func TestTfidfCosinePartialOverlap(t *testing.T) {
	got := tfidfCosine("vata disorder", "vata imbalance")
	if got <= 0.3 || got >= 0.4 {
		t.Fatalf("partial overlap = %v, want in (0.3, 0.4)", got)
	}
}

func TestTfidfCosineStopWordsOnly(t *testing.T) {
	if got := tfidfCosine("the and of", "vata imbalance"); got != 0 {
		t.Fatalf("stop-word-only side = %v, want 0", got)
	}
	if got := tfidfCosine("", "vata"); got != 0 {
		t.Fatalf("empty side = %v, want 0", got)
	}
}

func TestTfidfTokensFiltering(t *testing.T) {
	tokens := tfidfTokens("The fire of Agni, a metabolic-system force!")
	// "the", "of", "a", "fire" and "system" sit on the stop list; single
	// letters never tokenize.
	want := []string{"agni", "metabolic", "force"}
	if len(tokens) != len(want) {
		t.Fatalf("tokens = %v, want %v", tokens, want)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Fatalf("tokens[%d] = %q, want %q", i, tokens[i], want[i])
		}
	}
}
