package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ayurmap/termbridge-backend/internal/data/repos"
	types "github.com/ayurmap/termbridge-backend/internal/domain"
	"github.com/ayurmap/termbridge-backend/internal/http/response"
	"github.com/ayurmap/termbridge-backend/internal/mapping"
	"github.com/ayurmap/termbridge-backend/internal/mapping/rules"
	"github.com/ayurmap/termbridge-backend/internal/pkg/dbctx"
	"github.com/ayurmap/termbridge-backend/internal/platform/logger"
)

const (
	systemKeyNamaste = "namaste"
	systemKeyWhoTM2  = "who-tm2"
)

type MappingHandlerDeps struct {
	Runs        repos.RunRepo
	Validations repos.ValidationRepo
	ConceptMaps repos.ConceptMapRepo
	Tables      *rules.Tables
	WhoRelease  string
}

type MappingHandler struct {
	deps MappingHandlerDeps
	log  *logger.Logger
}

func NewMappingHandler(deps MappingHandlerDeps, baseLog *logger.Logger) *MappingHandler {
	return &MappingHandler{
		deps: deps,
		log:  baseLog.With("handler", "MappingHandler"),
	}
}

func newJobID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (h *MappingHandler) queueRun(c *gin.Context, runType string, forceRefresh bool) (*types.MappingRun, bool) {
	run := &types.MappingRun{
		JobID:          newJobID(),
		RunType:        runType,
		Status:         types.RunStatusQueued,
		ForceRefresh:   forceRefresh,
		NamasteRelease: time.Now().UTC().Format("20060102"),
		WhoRelease:     h.deps.WhoRelease,
	}
	if err := h.deps.Runs.Create(dbctx.Context{Ctx: c.Request.Context()}, run); err != nil {
		h.log.Error("queueing run failed", "run_type", runType, "error", err)
		response.RespondError(c, http.StatusInternalServerError, "queue_run_failed", err)
		return nil, false
	}
	return run, true
}

// POST /api/v1/mapping/trigger
func (h *MappingHandler) TriggerMapping(c *gin.Context) {
	forceRefresh, _ := strconv.ParseBool(c.Query("force_refresh"))
	run, ok := h.queueRun(c, types.RunTypeComprehensive, forceRefresh)
	if !ok {
		return
	}
	response.RespondAccepted(c, gin.H{
		"success": true,
		"status":  "started",
		"job_id":  run.JobID,
		"message": "Comprehensive NAMASTE-WHO mapping queued",
		"parameters": gin.H{
			"force_refresh":   run.ForceRefresh,
			"namaste_release": run.NamasteRelease,
			"who_release":     run.WhoRelease,
		},
		"timestamp": time.Now().UTC(),
		"note":      "Check /api/v1/mapping/status for progress updates",
	})
}

// POST /api/v1/mapping/sync
func (h *MappingHandler) TriggerSync(c *gin.Context) {
	run, ok := h.queueRun(c, types.RunTypeRegistrySync, false)
	if !ok {
		return
	}
	response.RespondAccepted(c, gin.H{
		"success":   true,
		"status":    "started",
		"job_id":    run.JobID,
		"message":   "WHO registry sync queued",
		"timestamp": time.Now().UTC(),
		"note":      "Check /api/v1/mapping/runs/" + run.JobID + " for progress",
	})
}

// GET /api/v1/mapping/status
func (h *MappingHandler) GetStatus(c *gin.Context) {
	run, err := h.deps.Runs.Latest(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "status_lookup_failed", err)
		return
	}
	if run == nil {
		response.RespondOK(c, gin.H{
			"status":    "not_started",
			"message":   "No mapping operations have been performed yet",
			"timestamp": time.Now().UTC(),
		})
		return
	}
	response.RespondOK(c, gin.H{
		"status":    run.Status,
		"run":       run,
		"timestamp": time.Now().UTC(),
	})
}

// GET /api/v1/mapping/runs/:jobID
func (h *MappingHandler) GetRun(c *gin.Context) {
	jobID := strings.TrimSpace(c.Param("jobID"))
	if jobID == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_job_id", fmt.Errorf("missing job id"))
		return
	}
	run, err := h.deps.Runs.GetByJobID(dbctx.Context{Ctx: c.Request.Context()}, jobID)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "run_lookup_failed", err)
		return
	}
	if run == nil {
		response.RespondError(c, http.StatusNotFound, "run_not_found", fmt.Errorf("no run with job id %q", jobID))
		return
	}
	response.RespondOK(c, gin.H{"run": run})
}

type validateRequest struct {
	NamasteCode     string  `json:"namaste_code"`
	WhoCode         string  `json:"who_code"`
	ValidationScore float64 `json:"validation_score"`
	ClinicalNotes   string  `json:"clinical_notes"`
	ReviewerID      string  `json:"reviewer_id"`
}

// POST /api/v1/mapping/validate
func (h *MappingHandler) SubmitValidation(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	req.NamasteCode = strings.TrimSpace(req.NamasteCode)
	req.WhoCode = strings.TrimSpace(req.WhoCode)
	if req.NamasteCode == "" || req.WhoCode == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_codes", fmt.Errorf("namaste_code and who_code are required"))
		return
	}
	if req.ValidationScore < 0 || req.ValidationScore > 1 {
		response.RespondError(c, http.StatusBadRequest, "invalid_score", fmt.Errorf("validation_score must be between 0 and 1"))
		return
	}
	v := &types.MappingValidation{
		NamasteCode:     req.NamasteCode,
		ICDCode:         req.WhoCode,
		ValidationScore: req.ValidationScore,
		ClinicalNotes:   strings.TrimSpace(req.ClinicalNotes),
		ReviewerID:      strings.TrimSpace(req.ReviewerID),
	}
	if err := h.deps.Validations.Create(dbctx.Context{Ctx: c.Request.Context()}, v); err != nil {
		response.RespondError(c, http.StatusInternalServerError, "validation_store_failed", err)
		return
	}
	response.RespondOK(c, gin.H{
		"success":    true,
		"message":    "Validation recorded; future runs will fold it into scoring",
		"validation": v,
	})
}

type translateRequest struct {
	SourceSystem string `json:"source_system"`
	SourceCode   string `json:"source_code"`
	TargetSystem string `json:"target_system"`
}

// POST /api/v1/mapping/translate
func (h *MappingHandler) TranslateCode(c *gin.Context) {
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	req.SourceSystem = strings.ToLower(strings.TrimSpace(req.SourceSystem))
	req.SourceCode = strings.TrimSpace(req.SourceCode)
	req.TargetSystem = strings.ToLower(strings.TrimSpace(req.TargetSystem))
	if req.SourceCode == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_source_code", fmt.Errorf("source_code is required"))
		return
	}

	doc, err := h.deps.ConceptMaps.GetByMapID(dbctx.Context{Ctx: c.Request.Context()}, mapping.ConceptMapAliasID)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "conceptmap_lookup_failed", err)
		return
	}
	if doc == nil {
		response.RespondError(c, http.StatusNotFound, "conceptmap_not_found", fmt.Errorf("concept map not found; run comprehensive mapping first"))
		return
	}
	groups, err := mapping.DecodeGroups(doc)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "conceptmap_decode_failed", err)
		return
	}

	var translations []mapping.Translation
	switch {
	case req.SourceSystem == systemKeyNamaste && req.TargetSystem == systemKeyWhoTM2:
		translations = mapping.Translate(groups, req.SourceCode, false)
	case req.SourceSystem == systemKeyWhoTM2 && req.TargetSystem == systemKeyNamaste:
		translations = mapping.Translate(groups, req.SourceCode, true)
	}

	if len(translations) == 0 {
		response.RespondOK(c, gin.H{
			"success":      false,
			"message":      fmt.Sprintf("No translation found for code %q from %q to %q", req.SourceCode, req.SourceSystem, req.TargetSystem),
			"translations": []mapping.Translation{},
			"timestamp":    time.Now().UTC(),
		})
		return
	}
	response.RespondOK(c, gin.H{
		"success":       true,
		"source_system": req.SourceSystem,
		"target_system": req.TargetSystem,
		"translations":  translations,
		"total_matches": len(translations),
		"timestamp":     time.Now().UTC(),
	})
}

// GET /api/v1/mapping/conceptmap
func (h *MappingHandler) GetConceptMap(c *gin.Context) {
	doc, err := h.deps.ConceptMaps.GetByMapID(dbctx.Context{Ctx: c.Request.Context()}, mapping.ConceptMapAliasID)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "conceptmap_lookup_failed", err)
		return
	}
	if doc == nil {
		response.RespondError(c, http.StatusNotFound, "conceptmap_not_found", fmt.Errorf("concept map not found; run comprehensive mapping first"))
		return
	}
	groups := json.RawMessage(doc.Groups)
	if len(groups) == 0 {
		groups = json.RawMessage("[]")
	}
	response.RespondOK(c, gin.H{
		"resourceType": "ConceptMap",
		"id":           doc.MapID,
		"url":          doc.URL,
		"name":         doc.Name,
		"title":        doc.Title,
		"status":       doc.Status,
		"date":         doc.Date,
		"sourceUri":    doc.SourceURI,
		"targetUri":    doc.TargetURI,
		"group":        groups,
	})
}

// GET /api/v1/mapping/search-suggestions/:display
func (h *MappingHandler) SearchSuggestions(c *gin.Context) {
	display := strings.TrimSpace(c.Param("display"))
	if display == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_display", fmt.Errorf("display string is required"))
		return
	}
	terms := mapping.SuggestSearchTerms(display, h.deps.Tables)
	response.RespondOK(c, gin.H{
		"display":     display,
		"suggestions": terms,
		"count":       len(terms),
	})
}
