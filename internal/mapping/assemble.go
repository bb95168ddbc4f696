package mapping

import (
	"encoding/json"
	"fmt"
	"time"

	types "github.com/ayurmap/termbridge-backend/internal/domain"
)

const (
	conceptMapSlug  = "namaste-who-dual-coding"
	conceptMapName  = "NAMASTEWHODualCodingConceptMap"
	conceptMapTitle = "NAMASTE - ICD-11 Dual Coding ConceptMap"
)

// ConceptMapAliasID is the stable map id that always resolves to the most
// recent completed run's document.
const ConceptMapAliasID = conceptMapSlug

// BuildConceptMap assembles the FHIR ConceptMap document for one run's
// records. Groups are keyed by source and target system in first-seen
// order; within a group, records sharing a source code merge into a single
// element carrying one target per record. Every target repeats the
// aggregate score and tier in its comment for reviewers.
func BuildConceptMap(records []*types.MappingRecord, jobID string, now time.Time) (*types.ConceptMapDoc, error) {
	type groupKey struct {
		source string
		target string
	}
	var order []groupKey
	groups := map[groupKey]*types.ConceptMapGroup{}
	elementIndex := map[groupKey]map[string]int{}

	for _, rec := range records {
		if rec == nil {
			continue
		}
		key := groupKey{source: rec.SourceSystem, target: rec.TargetSystem}
		group, ok := groups[key]
		if !ok {
			group = &types.ConceptMapGroup{Source: rec.SourceSystem, Target: rec.TargetSystem}
			groups[key] = group
			elementIndex[key] = map[string]int{}
			order = append(order, key)
		}
		index, ok := elementIndex[key][rec.SourceCode]
		if !ok {
			group.Element = append(group.Element, types.ConceptMapElement{
				Code:    rec.SourceCode,
				Display: rec.SourceDisplay,
			})
			index = len(group.Element) - 1
			elementIndex[key][rec.SourceCode] = index
		}
		group.Element[index].Target = append(group.Element[index].Target, types.ConceptMapTarget{
			Code:        rec.TargetCode,
			Display:     rec.TargetDisplay,
			Equivalence: rec.Equivalence,
			Comment:     fmt.Sprintf("score=%.2f; tier=%s", rec.AggregateScore, rec.Tier),
		})
	}

	assembled := make([]types.ConceptMapGroup, 0, len(order))
	for _, key := range order {
		assembled = append(assembled, *groups[key])
	}
	raw, err := json.Marshal(assembled)
	if err != nil {
		return nil, fmt.Errorf("marshal concept map groups: %w", err)
	}

	return &types.ConceptMapDoc{
		MapID:     conceptMapSlug + "-" + jobID,
		URL:       types.SystemNamaste + "/ConceptMap/" + conceptMapSlug + "/" + jobID,
		Name:      conceptMapName,
		Title:     conceptMapTitle,
		Status:    "active",
		SourceURI: types.SystemNamaste,
		TargetURI: types.SystemICD11Release,
		JobID:     jobID,
		Date:      now,
		Groups:    raw,
	}, nil
}

// DecodeGroups unpacks the stored group list of a concept map document.
func DecodeGroups(doc *types.ConceptMapDoc) ([]types.ConceptMapGroup, error) {
	if doc == nil || len(doc.Groups) == 0 {
		return nil, nil
	}
	var groups []types.ConceptMapGroup
	if err := json.Unmarshal(doc.Groups, &groups); err != nil {
		return nil, fmt.Errorf("decode concept map groups: %w", err)
	}
	return groups, nil
}
