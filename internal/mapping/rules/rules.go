// Package rules carries the static lookup tables the mapping engine draws
// on: the semantic-bridge code table, the clinical synonym expansions, and
// the category hint groups. The tables ship embedded and can be swapped at
// deploy time without touching generation or scoring logic.
package rules

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ayurmap/termbridge-backend/internal/platform/logger"
)

const rulesPathEnv = "MAPPING_RULES_YAML"

//go:embed tables.yaml
var tablesFS embed.FS

// Bridge maps a traditional-medicine lexical marker to a fixed custom code
// on the semantic-bridge system.
type Bridge struct {
	Marker  string `yaml:"marker"`
	Code    string `yaml:"code"`
	Display string `yaml:"display"`
}

// SynonymExpansion adds clinical vocabulary for search terms containing the
// trigger as a substring.
type SynonymExpansion struct {
	Trigger    string   `yaml:"trigger"`
	Expansions []string `yaml:"expansions"`
}

// CategoryHint groups keywords whose co-occurrence in source and target
// displays counts toward the category sub-score.
type CategoryHint struct {
	Group    string   `yaml:"group"`
	Keywords []string `yaml:"keywords"`
}

// Tables is the full rule set. Slices keep file order so generation and
// scoring stay deterministic.
type Tables struct {
	Bridges          []Bridge           `yaml:"bridges"`
	ClinicalSynonyms []SynonymExpansion `yaml:"clinical_synonyms"`
	CategoryHints    []CategoryHint     `yaml:"category_hints"`
	DoshaExpansions  []string           `yaml:"dosha_expansions"`
	Anchors          []string           `yaml:"anchors"`
}

var (
	tablesOnce  sync.Once
	tablesCache *Tables
	tablesErr   error
)

// Current returns the process-wide rule tables, loaded once. A file path in
// MAPPING_RULES_YAML overrides the embedded copy; if the override cannot be
// read or fails validation, the embedded tables are used instead.
func Current(log *logger.Logger) *Tables {
	tablesOnce.Do(func() {
		tablesCache, tablesErr = loadTables(log)
	})
	if tablesErr != nil {
		if log != nil {
			log.Error("rule tables unavailable", "error", tablesErr)
		}
		return &Tables{}
	}
	return tablesCache
}

func loadTables(log *logger.Logger) (*Tables, error) {
	if path := strings.TrimSpace(os.Getenv(rulesPathEnv)); path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if t, perr := parseTables(data); perr == nil {
				return t, nil
			} else if log != nil {
				log.Warn("rule table override invalid, using embedded tables", "path", path, "error", perr)
			}
		} else if log != nil {
			log.Warn("rule table override unreadable, using embedded tables", "path", path, "error", err)
		}
	}

	data, err := tablesFS.ReadFile("tables.yaml")
	if err != nil {
		return nil, err
	}
	return parseTables(data)
}

func parseTables(data []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	if err := validateTables(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

func validateTables(t *Tables) error {
	if t == nil {
		return errors.New("missing tables")
	}
	if len(t.Bridges) == 0 {
		return errors.New("no bridges defined")
	}
	seenMarkers := map[string]bool{}
	for _, b := range t.Bridges {
		marker := strings.TrimSpace(b.Marker)
		if marker == "" || strings.TrimSpace(b.Code) == "" {
			return fmt.Errorf("bridge with empty marker or code: %+v", b)
		}
		if seenMarkers[marker] {
			return fmt.Errorf("duplicate bridge marker: %s", marker)
		}
		seenMarkers[marker] = true
	}

	if len(t.ClinicalSynonyms) == 0 {
		return errors.New("no clinical synonyms defined")
	}
	seenTriggers := map[string]bool{}
	for _, s := range t.ClinicalSynonyms {
		trigger := strings.TrimSpace(s.Trigger)
		if trigger == "" || len(s.Expansions) == 0 {
			return fmt.Errorf("synonym entry with empty trigger or expansions: %+v", s)
		}
		if seenTriggers[trigger] {
			return fmt.Errorf("duplicate synonym trigger: %s", trigger)
		}
		seenTriggers[trigger] = true
	}

	if len(t.CategoryHints) == 0 {
		return errors.New("no category hints defined")
	}
	for _, h := range t.CategoryHints {
		if strings.TrimSpace(h.Group) == "" || len(h.Keywords) == 0 {
			return fmt.Errorf("category hint with empty group or keywords: %+v", h)
		}
	}

	if len(t.Anchors) == 0 {
		return errors.New("no anchors defined")
	}
	return nil
}
