package icd

import (
	"encoding/json"
	"strings"
)

// Entity is one registry entry as returned by the WHO ICD-11 API, reduced
// to the fields the mapper consumes.
type Entity struct {
	EntityID   string  `json:"entity_id"`
	Code       string  `json:"code"`
	Title      string  `json:"title"`
	Definition string  `json:"definition"`
	Chapter    string  `json:"chapter"`
	StemID     string  `json:"stem_id,omitempty"`
	Score      float64 `json:"score,omitempty"`
}

// tmKeywords marks traditional medicine entries that live outside the TM
// chapters, e.g. foundation entities without a chapter number.
var tmKeywords = []string{
	"traditional medicine",
	"ayurveda",
	"unani",
	"siddha",
	"homeopathy",
	"naturopathy",
	"yoga",
	"acupuncture",
	"traditional chinese medicine",
	"tcm",
	"complementary medicine",
	"alternative medicine",
	"integrative medicine",
	"traditional healing",
	"herbal medicine",
	"traditional therapy",
}

// TM2Related reports whether the entry belongs to the traditional medicine
// module, by chapter when present, otherwise by keyword scan over title
// and definition.
func (e Entity) TM2Related() bool {
	chapter := strings.ToUpper(strings.TrimSpace(e.Chapter))
	switch chapter {
	case "26", "27", "TM1", "TM2", "TM1 TM2":
		return true
	}

	title := strings.ToLower(e.Title)
	definition := strings.ToLower(e.Definition)
	for _, kw := range tmKeywords {
		if strings.Contains(title, kw) || strings.Contains(definition, kw) {
			return true
		}
	}
	return false
}

// langValue decodes WHO language-tagged strings, which arrive either as
// {"@value": "..."} objects or as plain strings.
type langValue string

func (v *langValue) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*v = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = langValue(s)
		return nil
	}
	var obj struct {
		Value string `json:"@value"`
		En    string `json:"en"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		// Unexpected shape, e.g. a number. Treat as absent.
		*v = ""
		return nil
	}
	if obj.Value != "" {
		*v = langValue(obj.Value)
	} else {
		*v = langValue(obj.En)
	}
	return nil
}

// codeRange decodes the codeRange field, an object with a start code on
// range entities but occasionally a bare string.
type codeRange struct {
	Start string
}

func (r *codeRange) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		r.Start = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		r.Start = s
		return nil
	}
	var obj struct {
		Start string `json:"start"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		r.Start = ""
		return nil
	}
	r.Start = obj.Start
	return nil
}

type searchEntity struct {
	AtID       string    `json:"@id"`
	ID         string    `json:"id"`
	Title      langValue `json:"title"`
	Definition langValue `json:"definition"`
	TheCode    string    `json:"theCode"`
	Chapter    string    `json:"chapter"`
	StemID     string    `json:"stemId"`
	CodeRange  codeRange `json:"codeRange"`
	Score      float64   `json:"score"`
}

type searchResponse struct {
	DestinationEntities []searchEntity `json:"destinationEntities"`
	Error               bool           `json:"error"`
	ErrorMessage        string         `json:"errorMessage"`
}

func (se searchEntity) toEntity() Entity {
	uri := se.AtID
	if uri == "" {
		uri = se.ID
	}
	entityID := uri
	if i := strings.LastIndex(uri, "/"); i >= 0 {
		entityID = uri[i+1:]
	}

	code := se.TheCode
	if code == "" {
		code = se.CodeRange.Start
	}

	return Entity{
		EntityID:   entityID,
		Code:       code,
		Title:      string(se.Title),
		Definition: string(se.Definition),
		Chapter:    se.Chapter,
		StemID:     se.StemID,
		Score:      se.Score,
	}
}
