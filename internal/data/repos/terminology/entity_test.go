package terminology

import (
	"context"
	"testing"

	"github.com/ayurmap/termbridge-backend/internal/data/repos/testutil"
	types "github.com/ayurmap/termbridge-backend/internal/domain"
	"github.com/ayurmap/termbridge-backend/internal/pkg/dbctx"
)

func TestEntityRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewEntityRepo(db, testutil.Logger(t))

	e1 := &types.ICDEntity{
		Code:         "SK25.0",
		Title:        "Vata pattern disorder",
		Definition:   "Traditional medicine pattern with wind dominance and movement irregularity",
		ChapterNo:    "26",
		IsTM2Related: true,
	}
	e2 := &types.ICDEntity{
		Code:       "DA42",
		Title:      "Gastric ulcer",
		Definition: "Ulceration of the gastric mucosa",
		ChapterNo:  "13",
	}
	if err := repo.UpsertBatch(dbc, []*types.ICDEntity{e1, e2}); err != nil {
		t.Fatalf("UpsertBatch: %v", err)
	}

	got, err := repo.GetByCode(dbc, "SK25.0")
	if err != nil || got == nil {
		t.Fatalf("GetByCode: got=%v err=%v", got, err)
	}
	if !got.TM2() {
		t.Fatalf("expected SK25.0 to be TM2 related")
	}
	if got2, err := repo.GetByCode(dbc, "DA42"); err != nil || got2 == nil || got2.TM2() {
		t.Fatalf("GetByCode DA42: got=%v err=%v", got2, err)
	}

	// Write-through refresh keeps one row per code.
	e1b := &types.ICDEntity{
		Code:       "SK25.0",
		Title:      "Vata pattern disorder, unspecified",
		Definition: "Traditional medicine pattern with wind dominance",
		ChapterNo:  "26",
	}
	if err := repo.UpsertBatch(dbc, []*types.ICDEntity{e1b}); err != nil {
		t.Fatalf("UpsertBatch refresh: %v", err)
	}
	if count, err := repo.Count(dbc); err != nil || count != 2 {
		t.Fatalf("Count: count=%d err=%v", count, err)
	}

	hits, err := repo.SearchText(dbc, "wind pattern", 5)
	if err != nil {
		t.Fatalf("SearchText: %v", err)
	}
	if len(hits) != 1 || hits[0].Entity.Code != "SK25.0" {
		t.Fatalf("SearchText hits: %+v", hits)
	}
	if hits[0].Rank <= 0 {
		t.Fatalf("SearchText rank: %f", hits[0].Rank)
	}

	if hits, err := repo.SearchText(dbc, "   ", 5); err != nil || len(hits) != 0 {
		t.Fatalf("SearchText blank: err=%v len=%d", err, len(hits))
	}
}
