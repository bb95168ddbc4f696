package mapping

import (
	"context"
	"testing"
	"time"

	"github.com/ayurmap/termbridge-backend/internal/data/repos/testutil"
	types "github.com/ayurmap/termbridge-backend/internal/domain"
	"github.com/ayurmap/termbridge-backend/internal/pkg/dbctx"
)

func TestRecordRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewRecordRepo(db, testutil.Logger(t))

	firstSeen := time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond)
	r1 := &types.MappingRecord{
		SourceSystem:   types.SystemNamaste,
		SourceCode:     "AYU-001",
		SourceDisplay:  "Vata dosha imbalance",
		TargetSystem:   types.SystemICD11TM2,
		TargetCode:     "SK25.0",
		TargetDisplay:  "Vata pattern disorder",
		AggregateScore: 0.74,
		Tier:           types.TierDirectMatch,
		Equivalence:    types.EquivalenceEquivalent,
		JobID:          "job-a",
		CreatedAt:      firstSeen,
	}
	r2 := &types.MappingRecord{
		SourceSystem:   types.SystemNamaste,
		SourceCode:     "AYU-001",
		TargetSystem:   types.SystemICD11MMS,
		TargetCode:     "DA42",
		AggregateScore: 0.41,
		Tier:           types.TierBiomedical,
		Equivalence:    types.EquivalenceInexact,
		JobID:          "job-a",
	}
	if err := repo.UpsertBatch(dbc, []*types.MappingRecord{r1, r2}); err != nil {
		t.Fatalf("UpsertBatch: %v", err)
	}

	// A rerun that rediscovers the pairing refreshes scores and job but
	// keeps the original created_at.
	if err := repo.UpsertBatch(dbc, []*types.MappingRecord{{
		SourceSystem:   types.SystemNamaste,
		SourceCode:     "AYU-001",
		TargetSystem:   types.SystemICD11TM2,
		TargetCode:     "SK25.0",
		TargetDisplay:  "Vata pattern disorder, unspecified",
		AggregateScore: 0.81,
		Tier:           types.TierDirectMatch,
		Equivalence:    types.EquivalenceEquivalent,
		JobID:          "job-b",
	}}); err != nil {
		t.Fatalf("UpsertBatch rerun: %v", err)
	}

	if count, err := repo.CountByJobID(dbc, "job-b"); err != nil || count != 1 {
		t.Fatalf("CountByJobID job-b: count=%d err=%v", count, err)
	}
	rows, err := repo.ListByJobID(dbc, "job-b")
	if err != nil || len(rows) != 1 {
		t.Fatalf("ListByJobID: err=%v len=%d", err, len(rows))
	}
	got := rows[0]
	if got.AggregateScore != 0.81 || got.TargetDisplay != "Vata pattern disorder, unspecified" {
		t.Fatalf("rerun did not refresh: %+v", got)
	}
	if got.CreatedAt.After(firstSeen.Add(time.Minute)) {
		t.Fatalf("created_at not preserved: %v", got.CreatedAt)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Fatalf("updated_at not advanced: created=%v updated=%v", got.CreatedAt, got.UpdatedAt)
	}

	bySource, err := repo.ListBySourceCode(dbc, "AYU-001")
	if err != nil || len(bySource) != 2 {
		t.Fatalf("ListBySourceCode: err=%v len=%d", err, len(bySource))
	}
	if bySource[0].TargetCode != "SK25.0" {
		t.Fatalf("ListBySourceCode order: %+v", bySource[0])
	}

	deleted, err := repo.DeleteByJobID(dbc, "job-a")
	if err != nil || deleted != 1 {
		t.Fatalf("DeleteByJobID: n=%d err=%v", deleted, err)
	}
	if count, err := repo.CountByJobID(dbc, "job-a"); err != nil || count != 0 {
		t.Fatalf("CountByJobID after delete: count=%d err=%v", count, err)
	}
}
