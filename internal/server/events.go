package server

import (
	"encoding/json"
	"net/http"

	"github.com/TailoredAgents/joslyn-api/internal/auth"
	httpmiddleware "github.com/TailoredAgents/joslyn-api/internal/http"
	"github.com/TailoredAgents/joslyn-api/internal/models"
	"github.com/TailoredAgents/joslyn-api/internal/telemetry"
	"github.com/TailoredAgents/joslyn-api/internal/tenant"
	"github.com/rs/zerolog"
)

type consentRequest struct {
	ChildID string `json:"child_id"`
	Consent bool   `json:"consent"`
}

// handleConsent records a meeting consent grant or withdrawal as a ledger
// event. Requires an organization scope; the child identifier is required
// but not resolved against a roster here.
func (s *Server) handleConsent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orgID, ok := tenant.FromContext(ctx)
	if !ok {
		writeError(w, http.StatusBadRequest, "org_context_required")
		return
	}

	var req consentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ChildID == "" {
		writeError(w, http.StatusBadRequest, "child_id_required")
		return
	}

	event := &models.Event{
		OrgID: &orgID,
		Type:  models.EventTypeMeetingConsent,
		Payload: models.ConsentPayload{
			ChildID: req.ChildID,
			Consent: req.Consent,
			IP:      httpmiddleware.ClientIPFromContext(ctx),
		},
	}
	if principal := auth.PrincipalFromContext(ctx); principal != nil {
		event.UserID = &principal.UserID
	}

	if err := s.appendEvent(w, r, event); err != nil {
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleFeedback appends a free-form feedback submission to the ledger.
// Feedback may arrive anonymously and outside any organization scope.
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var submission map[string]any
	if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	event := &models.Event{
		Type:    models.EventTypeUserFeedback,
		Payload: models.FeedbackPayload{Submission: submission},
	}
	if orgID, ok := tenant.FromContext(ctx); ok {
		event.OrgID = &orgID
	}
	if principal := auth.PrincipalFromContext(ctx); principal != nil {
		event.UserID = &principal.UserID
	}

	if err := s.appendEvent(w, r, event); err != nil {
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// appendEvent writes an event to the ledger, maintaining the append metrics.
// On failure it writes the error response and returns the error.
func (s *Server) appendEvent(w http.ResponseWriter, r *http.Request, event *models.Event) error {
	ctx := r.Context()
	m := telemetry.GetMetrics()

	if err := s.stores.Events.Append(ctx, event); err != nil {
		m.EventAppendErrorsTotal.Add(ctx, 1)
		handleError(w, r, err)
		return err
	}

	m.EventsAppendedTotal.Add(ctx, 1)

	zerolog.Ctx(ctx).Debug().
		Str("event_id", event.EventID.String()).
		Str("type", string(event.Type)).
		Msg("Event appended")

	return nil
}

// handleWhoami reports the authenticated principal, the resolved
// organization scope, and the stored membership role (not the claimed one).
// Useful for debugging auth configuration.
func (s *Server) handleWhoami(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal := auth.PrincipalFromContext(ctx)
	if principal == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	resp := map[string]any{
		"ok":      true,
		"user_id": principal.UserID,
		"email":   principal.Email,
	}
	if orgID, ok := tenant.FromContext(ctx); ok {
		resp["org_id"] = orgID
		if m, err := s.stores.Memberships.Get(ctx, orgID, principal.UserID); err == nil {
			resp["membership_role"] = m.Role
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
