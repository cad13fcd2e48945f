package server

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"github.com/TailoredAgents/joslyn-api/internal/auth"
	"github.com/TailoredAgents/joslyn-api/internal/models"
	"github.com/TailoredAgents/joslyn-api/internal/pricing"
	"github.com/TailoredAgents/joslyn-api/internal/telemetry"
	"github.com/TailoredAgents/joslyn-api/internal/tenant"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type recordUsageRequest struct {
	Model        string `json:"model"`
	InputTokens  int64  `json:"input_tokens"`
	OutputTokens int64  `json:"output_tokens"`
	CachedTokens int64  `json:"cached_tokens"`
}

// handleRecordUsage prices one model invocation and persists the usage
// record. Cost is computed synchronously so the stored record is complete
// and immutable from the moment it exists.
func (s *Server) handleRecordUsage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	m := telemetry.GetMetrics()

	orgID, ok := tenant.FromContext(ctx)
	if !ok {
		writeError(w, http.StatusBadRequest, "org_context_required")
		return
	}

	var req recordUsageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Model == "" {
		writeError(w, http.StatusBadRequest, "model_required")
		return
	}
	if req.InputTokens < 0 || req.OutputTokens < 0 || req.CachedTokens < 0 {
		writeError(w, http.StatusBadRequest, "invalid_token_counts")
		return
	}

	usage := pricing.Usage{
		Model:        req.Model,
		InputTokens:  req.InputTokens,
		OutputTokens: req.OutputTokens,
		CachedTokens: req.CachedTokens,
	}

	if _, ok := s.config.Rates.Resolve(req.Model); !ok {
		m.RateTableMissTotal.Add(ctx, 1)
		zerolog.Ctx(ctx).Warn().
			Str("model", req.Model).
			Msg("No rate for model and no default entry, cost degrades to zero")
	}

	costCents := pricing.ComputeCostCents(usage, s.config.Rates)

	record := &models.UsageRecord{
		OrgID:        &orgID,
		Model:        req.Model,
		InputTokens:  req.InputTokens,
		OutputTokens: req.OutputTokens,
		CachedTokens: req.CachedTokens,
		CostCents:    costCents,
	}
	if principal := auth.PrincipalFromContext(ctx); principal != nil {
		record.UserID = &principal.UserID
	}

	if err := s.stores.Usage.Record(ctx, record); err != nil {
		handleError(w, r, err)
		return
	}

	m.UsageRecordsTotal.Add(ctx, 1)
	m.UsageCostCents.Add(ctx, costCents)

	writeJSON(w, http.StatusOK, map[string]any{
		"usage_id":   record.UsageID,
		"cost_cents": costCents,
	})
}

// handleAdminUsage reports aggregate usage and event counts. It is guarded
// by a static API key rather than organization membership because operators
// query across organizations.
func (s *Server) handleAdminUsage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if s.config.AdminAPIKey == "" {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	key := r.Header.Get("X-Admin-Api-Key")
	if subtle.ConstantTimeCompare([]byte(key), []byte(s.config.AdminAPIKey)) != 1 {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	// Optional org_id filter; default window is the last 30 days.
	var orgID *uuid.UUID
	if raw := r.URL.Query().Get("org_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_org_id")
			return
		}
		orgID = &parsed
	}

	to := time.Now()
	from := to.AddDate(0, 0, -30)
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_from")
			return
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_to")
			return
		}
		to = parsed
	}

	summary, err := s.stores.Usage.Summarize(ctx, orgID, from, to)
	if err != nil {
		handleError(w, r, err)
		return
	}

	eventCounts, err := s.stores.Events.CountByType(ctx, orgID, from, to)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"from": from.Format(time.RFC3339),
		"to":   to.Format(time.RFC3339),
		"usage": map[string]int64{
			"records":       summary.Records,
			"input_tokens":  summary.InputTokens,
			"output_tokens": summary.OutputTokens,
			"cached_tokens": summary.CachedTokens,
			"cost_cents":    summary.CostCents,
		},
		"events": eventCounts,
	})
}
