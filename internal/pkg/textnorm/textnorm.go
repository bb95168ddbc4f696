package textnorm

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// StripDiacritics decomposes value (NFKD) and keeps only the ASCII runes,
// so "vāta" becomes "vata" and non-Latin script drops out entirely.
func StripDiacritics(value string) string {
	decomposed := norm.NFKD.String(value)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Normalize lowercases, strips diacritics, flattens every non-alphanumeric
// run to a single space, and trims. The result is the canonical form all
// similarity math operates on.
func Normalize(value string) string {
	value = StripDiacritics(strings.ToLower(value))
	var b strings.Builder
	b.Grow(len(value))
	lastSpace := true
	for _, r := range value {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if alnum {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// Tokens splits a normalized string into its whitespace tokens.
func Tokens(normalized string) []string {
	return strings.Fields(normalized)
}

// Bigrams returns the overlapping two-rune slices of text. Strings shorter
// than two runes produce none.
func Bigrams(text string) []string {
	runes := []rune(text)
	if len(runes) < 2 {
		return nil
	}
	out := make([]string, 0, len(runes)-1)
	for i := 0; i+1 < len(runes); i++ {
		out = append(out, string(runes[i:i+2]))
	}
	return out
}

// DiceBigram is the bigram Dice coefficient over two already-normalized
// strings: 2 * |distinct shared bigrams| / (total bigrams of a + of b).
func DiceBigram(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	bigramsA := Bigrams(a)
	bigramsB := Bigrams(b)
	if len(bigramsA) == 0 || len(bigramsB) == 0 {
		return 0
	}
	setA := make(map[string]struct{}, len(bigramsA))
	for _, g := range bigramsA {
		setA[g] = struct{}{}
	}
	seen := make(map[string]struct{}, len(bigramsB))
	overlap := 0
	for _, g := range bigramsB {
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		if _, ok := setA[g]; ok {
			overlap++
		}
	}
	score := float64(2*overlap) / float64(len(bigramsA)+len(bigramsB))
	return clamp01(score)
}

// Jaccard is set overlap over the union of two token slices.
func Jaccard(tokensA, tokensB []string) float64 {
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}
	setA := make(map[string]struct{}, len(tokensA))
	for _, t := range tokensA {
		setA[t] = struct{}{}
	}
	setB := make(map[string]struct{}, len(tokensB))
	for _, t := range tokensB {
		setB[t] = struct{}{}
	}
	intersection := 0
	for t := range setB {
		if _, ok := setA[t]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
