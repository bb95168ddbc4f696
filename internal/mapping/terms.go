package mapping

import (
	"sort"
	"strings"
	"unicode/utf8"

	types "github.com/ayurmap/termbridge-backend/internal/domain"
	"github.com/ayurmap/termbridge-backend/internal/mapping/rules"
	"github.com/ayurmap/termbridge-backend/internal/pkg/textnorm"
)

const (
	seedSynonymLimit    = 5
	definitionSeedRunes = 80
	minSearchTermRunes  = 3
)

// BuildSearchTerms expands one concept into the query list the candidate
// strategies run. Seeds are the display, a definition excerpt, the leading
// synonyms, the categories and the property values. Every seed contributes
// its literal form plus a diacritic-stripped variant, clinical synonym
// expansions fire on compacted substring triggers, the dosha triple joins
// when any seed mentions a dosha, and the traditional-medicine anchors
// close the list. Duplicates are dropped case-insensitively keeping the
// first casing seen; terms shorter than three characters are discarded.
// The caller caps the result, not the builder.
func BuildSearchTerms(concept types.SourceConcept, tables *rules.Tables) []string {
	seeds := make([]string, 0, 8)
	seeds = append(seeds, concept.Display)
	if concept.Definition != "" {
		seeds = append(seeds, excerpt(concept.Definition, definitionSeedRunes))
	}
	synonyms := concept.Synonyms
	if len(synonyms) > seedSynonymLimit {
		synonyms = synonyms[:seedSynonymLimit]
	}
	seeds = append(seeds, synonyms...)
	seeds = append(seeds, concept.Categories...)
	seeds = append(seeds, propertyValues(concept.Properties)...)

	bucket := make([]string, 0, len(seeds)*2)
	seen := make(map[string]bool, len(seeds)*2)
	for _, seed := range seeds {
		stripped := strings.TrimSpace(seed)
		if stripped == "" {
			continue
		}
		for _, variant := range seedVariants(stripped) {
			lowered := strings.ToLower(variant)
			if seen[lowered] {
				continue
			}
			seen[lowered] = true
			bucket = append(bucket, variant)
			bucket = appendClinicalExpansions(bucket, lowered, tables)
		}
	}

	for key := range seen {
		if strings.Contains(key, "dosha") {
			bucket = append(bucket, tables.DoshaExpansions...)
			break
		}
	}
	bucket = append(bucket, tables.Anchors...)

	deduped := make([]string, 0, len(bucket))
	final := make(map[string]bool, len(bucket))
	for _, candidate := range bucket {
		lowered := strings.ToLower(candidate)
		if final[lowered] || utf8.RuneCountInString(lowered) < minSearchTermRunes {
			continue
		}
		final[lowered] = true
		deduped = append(deduped, candidate)
	}
	return deduped
}

// seedVariants returns the literal seed, then its diacritic-stripped form
// when stripping changes it. Non-Latin seeds strip to nothing and only
// contribute their literal form.
func seedVariants(seed string) []string {
	ascii := strings.TrimSpace(textnorm.StripDiacritics(seed))
	if ascii == "" || ascii == seed {
		return []string{seed}
	}
	return []string{seed, ascii}
}

// appendClinicalExpansions adds the expansion list of every trigger found
// inside the space-compacted seed. Expansions bypass the seen set so a
// later seed can still contribute its literal form.
func appendClinicalExpansions(bucket []string, lowered string, tables *rules.Tables) []string {
	compact := strings.ReplaceAll(lowered, " ", "")
	for _, entry := range tables.ClinicalSynonyms {
		if strings.Contains(compact, entry.Trigger) {
			bucket = append(bucket, entry.Expansions...)
		}
	}
	return bucket
}

// propertyValues returns the map values ordered by key so term expansion
// stays deterministic between runs.
func propertyValues(properties map[string]string) []string {
	if len(properties) == 0 {
		return nil
	}
	keys := make([]string, 0, len(properties))
	for key := range properties {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	values := make([]string, 0, len(keys))
	for _, key := range keys {
		values = append(values, properties[key])
	}
	return values
}

// excerpt returns the first n code points of text.
func excerpt(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

// capTerms bounds the query list a run actually executes.
func capTerms(terms []string, max int) []string {
	if max > 0 && len(terms) > max {
		return terms[:max]
	}
	return terms
}

// SuggestSearchTerms expands an ad-hoc display string the way a run
// expands a catalog concept, capped like a run caps its queries.
func SuggestSearchTerms(display string, tables *rules.Tables) []string {
	concept := types.SourceConcept{Code: "adhoc", Display: display}
	return capTerms(BuildSearchTerms(concept, tables), defaultSearchTermsPerCode)
}

// augmentSynonyms joins the concept synonyms with the built search terms
// for synonym scoring, skipping blanks and case-insensitive duplicates.
func augmentSynonyms(synonyms, searchTerms []string) []string {
	out := make([]string, 0, len(synonyms)+len(searchTerms))
	seen := make(map[string]bool, len(synonyms)+len(searchTerms))
	appendValue := func(value string) {
		if value == "" {
			return
		}
		lowered := strings.ToLower(value)
		if seen[lowered] {
			return
		}
		seen[lowered] = true
		out = append(out, value)
	}
	for _, value := range synonyms {
		appendValue(value)
	}
	for _, value := range searchTerms {
		appendValue(value)
	}
	return out
}
