package mapping

import types "github.com/ayurmap/termbridge-backend/internal/domain"

// Translation is one resolved pairing pulled out of a stored concept map.
type Translation struct {
	SourceCode    string `json:"source_code"`
	SourceDisplay string `json:"source_display,omitempty"`
	TargetCode    string `json:"target_code"`
	TargetDisplay string `json:"target_display,omitempty"`
	Equivalence   string `json:"equivalence"`
	Confidence    string `json:"confidence,omitempty"`
}

// Translate walks a concept map's groups and collects every pairing for
// sourceCode. Forward reads elements whose code matches; reverse reads
// targets whose code matches and flips the pairing so the caller always
// sees source-to-target in the direction asked for.
func Translate(groups []types.ConceptMapGroup, sourceCode string, reverse bool) []Translation {
	var translations []Translation
	for _, group := range groups {
		for _, element := range group.Element {
			if !reverse {
				if element.Code != sourceCode {
					continue
				}
				for _, target := range element.Target {
					translations = append(translations, Translation{
						SourceCode:    sourceCode,
						SourceDisplay: element.Display,
						TargetCode:    target.Code,
						TargetDisplay: target.Display,
						Equivalence:   equivalenceOrInexact(target.Equivalence),
						Confidence:    target.Comment,
					})
				}
				continue
			}
			for _, target := range element.Target {
				if target.Code != sourceCode {
					continue
				}
				translations = append(translations, Translation{
					SourceCode:    sourceCode,
					SourceDisplay: target.Display,
					TargetCode:    element.Code,
					TargetDisplay: element.Display,
					Equivalence:   equivalenceOrInexact(target.Equivalence),
					Confidence:    target.Comment,
				})
			}
		}
	}
	return translations
}

func equivalenceOrInexact(equivalence types.Equivalence) string {
	if equivalence == "" {
		return string(types.EquivalenceInexact)
	}
	return string(equivalence)
}
