package server

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/TailoredAgents/joslyn-api/internal/auth"
	"github.com/TailoredAgents/joslyn-api/internal/models"
	"github.com/TailoredAgents/joslyn-api/internal/queue"
	"github.com/TailoredAgents/joslyn-api/internal/store"
	"github.com/TailoredAgents/joslyn-api/internal/tenant"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type bootstrapRequest struct {
	Name string `json:"name"`
	Plan string `json:"plan"`
}

// handleBootstrap performs first-login organization setup: it upserts the
// organization, grants the caller the owner role, records the fact in the
// ledger, and queues storage provisioning. The upsert semantics make
// concurrent bootstraps of the same organization safe.
func (s *Server) handleBootstrap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal := auth.PrincipalFromContext(ctx)
	if principal == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orgID, ok := tenant.FromContext(ctx)
	if !ok {
		writeError(w, http.StatusBadRequest, "org_context_unresolved")
		return
	}

	var req bootstrapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if req.Name == "" {
		req.Name = "My Organization"
	}

	org := &models.Organization{OrgID: orgID, Name: req.Name}
	if err := s.stores.Organizations.Upsert(ctx, org); err != nil {
		handleError(w, r, err)
		return
	}

	membership := &models.Membership{
		OrgID:  orgID,
		UserID: principal.UserID,
		Role:   models.RoleOwner,
	}
	if err := s.stores.Memberships.Upsert(ctx, membership); err != nil {
		handleError(w, r, err)
		return
	}

	event := &models.Event{
		OrgID:   &orgID,
		UserID:  &principal.UserID,
		Type:    models.EventTypeOrgBootstrapped,
		Payload: models.OrgBootstrappedPayload{Name: req.Name, Plan: req.Plan},
	}
	if err := s.appendEvent(w, r, event); err != nil {
		return
	}

	if err := s.enqueueJob(ctx, queue.ProvisionBucketJob{OrgID: orgID}); err != nil {
		handleError(w, r, err)
		return
	}

	zerolog.Ctx(ctx).Info().
		Str("org_id", orgID.String()).
		Str("user_id", principal.UserID.String()).
		Msg("Organization bootstrapped")

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "org_id": orgID})
}

type createInviteRequest struct {
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

// handleCreateInvite issues an invite into the scoped organization. Only
// owners and admins may invite.
func (s *Server) handleCreateInvite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orgID, ok := tenant.FromContext(ctx)
	if !ok {
		writeError(w, http.StatusBadRequest, "org_context_required")
		return
	}

	principal := auth.PrincipalFromContext(ctx)
	err := s.guard.RequireRole(ctx, orgID, principal, []models.Role{models.RoleOwner, models.RoleAdmin})
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req createInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "email_required")
		return
	}
	if !req.Role.Valid() {
		writeError(w, http.StatusBadRequest, "invalid_role")
		return
	}

	token, err := generateInviteToken()
	if err != nil {
		handleError(w, r, err)
		return
	}

	invite := &models.Invite{
		InviteID: uuid.New(),
		OrgID:    orgID,
		Email:    req.Email,
		Role:     req.Role,
		Token:    token,
	}
	if err := s.stores.Invites.Create(ctx, invite); err != nil {
		handleError(w, r, err)
		return
	}

	event := &models.Event{
		OrgID:   &orgID,
		UserID:  &principal.UserID,
		Type:    models.EventTypeInviteCreated,
		Payload: models.InviteCreatedPayload{Email: req.Email, Role: req.Role},
	}
	if err := s.appendEvent(w, r, event); err != nil {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"invite_id": invite.InviteID,
		"token":     invite.Token,
	})
}

type acceptInviteRequest struct {
	Token string `json:"token"`
}

// handleAcceptInvite redeems an invite token, granting the caller the
// invited role. Redeeming an already-accepted invite is rejected.
func (s *Server) handleAcceptInvite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal := auth.PrincipalFromContext(ctx)
	if principal == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req acceptInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeError(w, http.StatusBadRequest, "token_required")
		return
	}

	invite, err := s.stores.Invites.GetByToken(ctx, req.Token)
	if err != nil {
		if errors.Is(err, store.ErrInviteNotFound) {
			writeError(w, http.StatusNotFound, "invite_not_found")
			return
		}
		handleError(w, r, err)
		return
	}

	if invite.Accepted() {
		writeError(w, http.StatusConflict, "invite_already_accepted")
		return
	}

	membership := &models.Membership{
		OrgID:  invite.OrgID,
		UserID: principal.UserID,
		Role:   invite.Role,
	}
	if err := s.stores.Memberships.Upsert(ctx, membership); err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.stores.Invites.MarkAccepted(ctx, invite.InviteID); err != nil {
		handleError(w, r, err)
		return
	}

	zerolog.Ctx(ctx).Info().
		Str("org_id", invite.OrgID.String()).
		Str("user_id", principal.UserID.String()).
		Str("role", string(invite.Role)).
		Msg("Invite accepted")

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "org_id": invite.OrgID})
}

// generateInviteToken returns a 32-character random hex token.
func generateInviteToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate invite token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
