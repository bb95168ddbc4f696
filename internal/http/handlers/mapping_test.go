package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/ayurmap/termbridge-backend/internal/domain"
	"github.com/ayurmap/termbridge-backend/internal/mapping"
	"github.com/ayurmap/termbridge-backend/internal/mapping/rules"
	"github.com/ayurmap/termbridge-backend/internal/pkg/dbctx"
	"github.com/ayurmap/termbridge-backend/internal/platform/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fakeRunStore struct {
	created []*types.MappingRun
	latest  *types.MappingRun
	byJobID map[string]*types.MappingRun
	err     error
}

func (f *fakeRunStore) Create(_ dbctx.Context, run *types.MappingRun) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, run)
	return nil
}
func (f *fakeRunStore) GetByJobID(_ dbctx.Context, jobID string) (*types.MappingRun, error) {
	return f.byJobID[jobID], f.err
}
func (f *fakeRunStore) List(dbctx.Context, int) ([]*types.MappingRun, error) { return nil, nil }
func (f *fakeRunStore) ClaimNextRunnable(dbctx.Context, int, time.Duration, time.Duration) (*types.MappingRun, error) {
	return nil, nil
}
func (f *fakeRunStore) UpdateFields(dbctx.Context, uuid.UUID, map[string]interface{}) error {
	return nil
}
func (f *fakeRunStore) Heartbeat(dbctx.Context, uuid.UUID) error { return nil }
func (f *fakeRunStore) SetLatest(dbctx.Context, string) error    { return nil }
func (f *fakeRunStore) Latest(dbctx.Context) (*types.MappingRun, error) {
	return f.latest, f.err
}

type fakeValidationStore struct {
	rows []*types.MappingValidation
}

func (f *fakeValidationStore) Create(_ dbctx.Context, v *types.MappingValidation) error {
	f.rows = append(f.rows, v)
	return nil
}
func (f *fakeValidationStore) ListAll(dbctx.Context) ([]*types.MappingValidation, error) {
	return f.rows, nil
}

type fakeConceptMapStore struct {
	docs map[string]*types.ConceptMapDoc
}

func (f *fakeConceptMapStore) Upsert(_ dbctx.Context, doc *types.ConceptMapDoc) error {
	if f.docs == nil {
		f.docs = map[string]*types.ConceptMapDoc{}
	}
	f.docs[doc.MapID] = doc
	return nil
}
func (f *fakeConceptMapStore) GetByMapID(_ dbctx.Context, mapID string) (*types.ConceptMapDoc, error) {
	return f.docs[mapID], nil
}

type mappingHarness struct {
	runs        *fakeRunStore
	validations *fakeValidationStore
	maps        *fakeConceptMapStore
	router      *gin.Engine
}

func newMappingHarness(t *testing.T) *mappingHarness {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	tables := rules.Current(log)
	h := &mappingHarness{
		runs:        &fakeRunStore{byJobID: map[string]*types.MappingRun{}},
		validations: &fakeValidationStore{},
		maps:        &fakeConceptMapStore{},
	}
	handler := NewMappingHandler(MappingHandlerDeps{
		Runs:        h.runs,
		Validations: h.validations,
		ConceptMaps: h.maps,
		Tables:      tables,
		WhoRelease:  "release/11/2023-01/mms",
	}, log)

	r := gin.New()
	m := r.Group("/api/v1/mapping")
	m.POST("/trigger", handler.TriggerMapping)
	m.POST("/sync", handler.TriggerSync)
	m.GET("/status", handler.GetStatus)
	m.GET("/runs/:jobID", handler.GetRun)
	m.POST("/validate", handler.SubmitValidation)
	m.POST("/translate", handler.TranslateCode)
	m.GET("/conceptmap", handler.GetConceptMap)
	m.GET("/search-suggestions/:display", handler.SearchSuggestions)
	h.router = r
	return h
}

func (h *mappingHarness) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, decoded
}

func (h *mappingHarness) seedConceptMap(t *testing.T) {
	t.Helper()
	records := []*types.MappingRecord{
		{
			SourceSystem: types.SystemNamaste, SourceCode: "AYU-001", SourceDisplay: "Vata dosha imbalance",
			TargetSystem: types.SystemICD11TM2, TargetCode: "SK25.0", TargetDisplay: "Vata pattern disorder",
			Equivalence: types.EquivalenceEquivalent, Tier: types.TierDirectMatch, AggregateScore: 0.91,
		},
		{
			SourceSystem: types.SystemNamaste, SourceCode: "AYU-001", SourceDisplay: "Vata dosha imbalance",
			TargetSystem: types.SystemICD11MMS, TargetCode: "8A00", TargetDisplay: "Movement disorder",
			Equivalence: types.EquivalenceRelatedTo, Tier: types.TierBiomedical, AggregateScore: 0.64,
		},
		{
			SourceSystem: types.SystemNamaste, SourceCode: "AYU-002", SourceDisplay: "Pitta excess",
			TargetSystem: types.SystemICD11TM2, TargetCode: "SP90", TargetDisplay: "Pitta pattern",
			Equivalence: types.EquivalenceEquivalent, Tier: types.TierDirectMatch, AggregateScore: 0.88,
		},
	}
	doc, err := mapping.BuildConceptMap(records, "jobseed", time.Now().UTC())
	if err != nil {
		t.Fatalf("build concept map: %v", err)
	}
	doc.MapID = mapping.ConceptMapAliasID
	h.maps.docs = map[string]*types.ConceptMapDoc{doc.MapID: doc}
}

func TestTriggerMappingQueuesRun(t *testing.T) {
	h := newMappingHarness(t)
	w, body := h.do(t, http.MethodPost, "/api/v1/mapping/trigger?force_refresh=true", nil)

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if len(h.runs.created) != 1 {
		t.Fatalf("created runs = %d", len(h.runs.created))
	}
	run := h.runs.created[0]
	if run.RunType != types.RunTypeComprehensive || run.Status != types.RunStatusQueued {
		t.Fatalf("run = %+v", run)
	}
	if !run.ForceRefresh {
		t.Fatalf("force_refresh flag was dropped")
	}
	if run.NamasteRelease != time.Now().UTC().Format("20060102") {
		t.Fatalf("namaste release = %q", run.NamasteRelease)
	}
	if run.WhoRelease != "release/11/2023-01/mms" {
		t.Fatalf("who release = %q", run.WhoRelease)
	}
	jobID, _ := body["job_id"].(string)
	if !regexp.MustCompile(`^[0-9a-f]{32}$`).MatchString(jobID) {
		t.Fatalf("job_id = %q, want 32 hex chars", jobID)
	}
}

func TestTriggerSyncQueuesRegistrySync(t *testing.T) {
	h := newMappingHarness(t)
	w, _ := h.do(t, http.MethodPost, "/api/v1/mapping/sync", nil)

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d", w.Code)
	}
	if len(h.runs.created) != 1 || h.runs.created[0].RunType != types.RunTypeRegistrySync {
		t.Fatalf("created = %+v", h.runs.created)
	}
}

func TestStatusNotStarted(t *testing.T) {
	h := newMappingHarness(t)
	w, body := h.do(t, http.MethodGet, "/api/v1/mapping/status", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["status"] != "not_started" {
		t.Fatalf("body = %v", body)
	}
}

func TestStatusReturnsLatestRun(t *testing.T) {
	h := newMappingHarness(t)
	h.runs.latest = &types.MappingRun{
		ID:      uuid.New(),
		JobID:   "job42",
		RunType: types.RunTypeComprehensive,
		Status:  types.RunStatusCompleted,
	}
	w, body := h.do(t, http.MethodGet, "/api/v1/mapping/status", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["status"] != types.RunStatusCompleted {
		t.Fatalf("status field = %v", body["status"])
	}
	run, _ := body["run"].(map[string]interface{})
	if run["job_id"] != "job42" {
		t.Fatalf("run = %v", run)
	}
}

func TestGetRunNotFound(t *testing.T) {
	h := newMappingHarness(t)
	w, body := h.do(t, http.MethodGet, "/api/v1/mapping/runs/nosuchjob", nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	errObj, _ := body["error"].(map[string]interface{})
	if errObj["code"] != "run_not_found" {
		t.Fatalf("error = %v", errObj)
	}
}

func TestSubmitValidationRejectsOutOfRangeScore(t *testing.T) {
	h := newMappingHarness(t)
	w, body := h.do(t, http.MethodPost, "/api/v1/mapping/validate", map[string]interface{}{
		"namaste_code":     "AYU-001",
		"who_code":         "SK25.0",
		"validation_score": 1.5,
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	errObj, _ := body["error"].(map[string]interface{})
	if errObj["code"] != "invalid_score" {
		t.Fatalf("error = %v", errObj)
	}
	if len(h.validations.rows) != 0 {
		t.Fatalf("rejected score must not be stored")
	}
}

func TestSubmitValidationStoresReview(t *testing.T) {
	h := newMappingHarness(t)
	w, _ := h.do(t, http.MethodPost, "/api/v1/mapping/validate", map[string]interface{}{
		"namaste_code":     "AYU-001",
		"who_code":         "SK25.0",
		"validation_score": 0.85,
		"clinical_notes":   "Consistent with vata presentation",
		"reviewer_id":      "dr-rao",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(h.validations.rows) != 1 {
		t.Fatalf("rows = %d", len(h.validations.rows))
	}
	v := h.validations.rows[0]
	if v.NamasteCode != "AYU-001" || v.ICDCode != "SK25.0" || v.ValidationScore != 0.85 {
		t.Fatalf("stored = %+v", v)
	}
	if v.ReviewerID != "dr-rao" {
		t.Fatalf("reviewer = %q", v.ReviewerID)
	}
}

func TestTranslateForward(t *testing.T) {
	h := newMappingHarness(t)
	h.seedConceptMap(t)
	w, body := h.do(t, http.MethodPost, "/api/v1/mapping/translate", map[string]interface{}{
		"source_system": "namaste",
		"source_code":   "AYU-001",
		"target_system": "who-tm2",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if body["success"] != true {
		t.Fatalf("body = %v", body)
	}
	translations, _ := body["translations"].([]interface{})
	if len(translations) != 2 {
		t.Fatalf("translations = %v", translations)
	}
	first, _ := translations[0].(map[string]interface{})
	if first["target_code"] != "SK25.0" || first["equivalence"] != "equivalent" {
		t.Fatalf("first translation = %v", first)
	}
}

func TestTranslateReverse(t *testing.T) {
	h := newMappingHarness(t)
	h.seedConceptMap(t)
	w, body := h.do(t, http.MethodPost, "/api/v1/mapping/translate", map[string]interface{}{
		"source_system": "who-tm2",
		"source_code":   "SK25.0",
		"target_system": "namaste",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	translations, _ := body["translations"].([]interface{})
	if len(translations) != 1 {
		t.Fatalf("translations = %v", translations)
	}
	entry, _ := translations[0].(map[string]interface{})
	if entry["target_code"] != "AYU-001" || entry["source_display"] != "Vata pattern disorder" {
		t.Fatalf("entry = %v", entry)
	}
}

func TestTranslateWithoutConceptMap(t *testing.T) {
	h := newMappingHarness(t)
	w, body := h.do(t, http.MethodPost, "/api/v1/mapping/translate", map[string]interface{}{
		"source_system": "namaste",
		"source_code":   "AYU-001",
		"target_system": "who-tm2",
	})

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	errObj, _ := body["error"].(map[string]interface{})
	if errObj["code"] != "conceptmap_not_found" {
		t.Fatalf("error = %v", errObj)
	}
}

func TestTranslateUnknownCode(t *testing.T) {
	h := newMappingHarness(t)
	h.seedConceptMap(t)
	w, body := h.do(t, http.MethodPost, "/api/v1/mapping/translate", map[string]interface{}{
		"source_system": "namaste",
		"source_code":   "AYU-999",
		"target_system": "who-tm2",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["success"] != false {
		t.Fatalf("body = %v", body)
	}
}

func TestTranslateUnsupportedDirection(t *testing.T) {
	h := newMappingHarness(t)
	h.seedConceptMap(t)
	w, body := h.do(t, http.MethodPost, "/api/v1/mapping/translate", map[string]interface{}{
		"source_system": "namaste",
		"source_code":   "AYU-001",
		"target_system": "namaste",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["success"] != false {
		t.Fatalf("unsupported direction must yield no translations: %v", body)
	}
}

func TestGetConceptMapDocument(t *testing.T) {
	h := newMappingHarness(t)
	h.seedConceptMap(t)
	w, body := h.do(t, http.MethodGet, "/api/v1/mapping/conceptmap", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["resourceType"] != "ConceptMap" || body["id"] != mapping.ConceptMapAliasID {
		t.Fatalf("body = %v", body)
	}
	groups, _ := body["group"].([]interface{})
	if len(groups) != 2 {
		t.Fatalf("groups = %v", groups)
	}
}

func TestGetConceptMapMissing(t *testing.T) {
	h := newMappingHarness(t)
	w, _ := h.do(t, http.MethodGet, "/api/v1/mapping/conceptmap", nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestSearchSuggestions(t *testing.T) {
	h := newMappingHarness(t)
	w, body := h.do(t, http.MethodGet, "/api/v1/mapping/search-suggestions/Vata%20dosha%20imbalance", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	suggestions, _ := body["suggestions"].([]interface{})
	if len(suggestions) == 0 || len(suggestions) > 12 {
		t.Fatalf("suggestions = %v", suggestions)
	}
	if suggestions[0] != "Vata dosha imbalance" {
		t.Fatalf("first suggestion = %v", suggestions[0])
	}
	count, ok := body["count"].(float64)
	if !ok || int(count) != len(suggestions) {
		t.Fatalf("count mismatch: %v", body["count"])
	}
}
