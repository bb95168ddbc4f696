package textnorm

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestStripDiacritics(t *testing.T) {
	cases := map[string]string{
		"vāta":        "vata",
		"Āma doṣa":    "Ama dosa",
		"plain ascii": "plain ascii",
		"वात":         "",
	}
	for in, want := range cases {
		if got := StripDiacritics(in); got != want {
			t.Fatalf("StripDiacritics(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"doShAvasthA (vAta)":     "doshavastha vata",
		"  Vata -- imbalance!  ": "vata imbalance",
		"Āma":                    "ama",
		"":                       "",
		"???":                    "",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBigrams(t *testing.T) {
	if got := Bigrams("a"); got != nil {
		t.Fatalf("Bigrams of single rune should be nil, got %v", got)
	}
	got := Bigrams("vata")
	want := []string{"va", "at", "ta"}
	if len(got) != len(want) {
		t.Fatalf("Bigrams(vata) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Bigrams(vata)[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDiceBigram(t *testing.T) {
	if got := DiceBigram("vata", "vata"); !almostEqual(got, 1.0) {
		t.Fatalf("identical strings should score 1.0, got %f", got)
	}
	if got := DiceBigram("", "vata"); got != 0 {
		t.Fatalf("empty input should score 0, got %f", got)
	}
	if got := DiceBigram("a", "ab"); got != 0 {
		t.Fatalf("single-rune input has no bigrams, got %f", got)
	}
	// vata: {va,at,ta}; pitta: {pi,it,tt,ta}; one shared bigram.
	if got, want := DiceBigram("vata", "pitta"), 2.0/7.0; !almostEqual(got, want) {
		t.Fatalf("DiceBigram(vata, pitta) = %f, want %f", got, want)
	}
	// Repeated bigrams count toward length but intersect once.
	if got, want := DiceBigram("aaa", "aa"), 2.0/3.0; !almostEqual(got, want) {
		t.Fatalf("DiceBigram(aaa, aa) = %f, want %f", got, want)
	}
}

func TestJaccard(t *testing.T) {
	if got := Jaccard(nil, []string{"vata"}); got != 0 {
		t.Fatalf("empty side should score 0, got %f", got)
	}
	got := Jaccard([]string{"vata", "dosha"}, []string{"vata"})
	if !almostEqual(got, 0.5) {
		t.Fatalf("Jaccard overlap = %f, want 0.5", got)
	}
	got = Jaccard([]string{"vata", "vata", "dosha"}, []string{"dosha", "vata"})
	if !almostEqual(got, 1.0) {
		t.Fatalf("duplicate tokens should not change set semantics, got %f", got)
	}
}
