package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/TailoredAgents/joslyn-api/internal/auth"
	"github.com/TailoredAgents/joslyn-api/internal/models"
	"github.com/TailoredAgents/joslyn-api/internal/queue"
	"github.com/TailoredAgents/joslyn-api/internal/telemetry"
	"github.com/TailoredAgents/joslyn-api/internal/tenant"
	"github.com/rs/zerolog"
)

type scanDocumentRequest struct {
	FileID string `json:"file_id"`
}

// handleScanDocument queues a document scan for the scoped organization.
// Any member role may request a scan. Enqueue failure surfaces to the
// caller as 503; the job is never silently dropped.
func (s *Server) handleScanDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orgID, ok := tenant.FromContext(ctx)
	if !ok {
		writeError(w, http.StatusBadRequest, "org_context_required")
		return
	}

	principal := auth.PrincipalFromContext(ctx)
	err := s.guard.RequireRole(ctx, orgID, principal, []models.Role{
		models.RoleOwner, models.RoleAdmin, models.RoleMember, models.RoleParent,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req scanDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FileID == "" {
		writeError(w, http.StatusBadRequest, "file_id_required")
		return
	}

	job := queue.ScanDocumentJob{OrgID: orgID, FileID: req.FileID}
	if err := s.enqueueJob(ctx, job); err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]bool{"ok": true})
}

// enqueueJob hands a job to the queue, maintaining the enqueue metrics.
func (s *Server) enqueueJob(ctx context.Context, job queue.Job) error {
	m := telemetry.GetMetrics()

	if err := s.queue.Enqueue(ctx, job); err != nil {
		m.EnqueueFailuresTotal.Add(ctx, 1)
		return err
	}

	m.JobsEnqueuedTotal.Add(ctx, 1)

	zerolog.Ctx(ctx).Debug().
		Str("job_type", job.JobType()).
		Msg("Job enqueued")

	return nil
}
