// Package tenant resolves the organization scope of a request and carries it
// through the request context. The scope is request-local by construction;
// nothing here is process-wide mutable state.
package tenant

import (
	"context"
	"net/http"

	"github.com/TailoredAgents/joslyn-api/internal/auth"
	"github.com/google/uuid"
)

type contextKey int

const orgContextKey contextKey = iota

// WithOrg returns a context scoped to the given organization.
func WithOrg(ctx context.Context, orgID uuid.UUID) context.Context {
	return context.WithValue(ctx, orgContextKey, orgID)
}

// FromContext returns the organization scope established by Middleware.
// The second return is false for intentionally unscoped requests.
func FromContext(ctx context.Context) (uuid.UUID, bool) {
	orgID, ok := ctx.Value(orgContextKey).(uuid.UUID)
	return orgID, ok
}

// Resolve derives the organization scope for a request. Precedence: the
// authenticated principal's org claim, then the X-Org-Id header, then the
// org_id query parameter. Identifiers that don't parse as UUIDs are ignored
// rather than trusted. Returns false when the request is unscoped.
func Resolve(r *http.Request, principal *auth.Principal) (uuid.UUID, bool) {
	if principal != nil && principal.OrgID != uuid.Nil {
		return principal.OrgID, true
	}

	if header := r.Header.Get("X-Org-Id"); header != "" {
		if orgID, err := uuid.Parse(header); err == nil {
			return orgID, true
		}
	}

	if query := r.URL.Query().Get("org_id"); query != "" {
		if orgID, err := uuid.Parse(query); err == nil {
			return orgID, true
		}
	}

	return uuid.Nil, false
}

// Middleware establishes the organization scope before any data access runs.
// Resolution happens once per request; if an earlier middleware already set
// the scope it is left untouched, so re-entry is idempotent. Requests that
// resolve to no organization proceed unscoped; handlers that require a
// tenant must fail closed via FromContext.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if _, ok := FromContext(ctx); ok {
				next.ServeHTTP(w, r)
				return
			}

			if orgID, ok := Resolve(r, auth.PrincipalFromContext(ctx)); ok {
				ctx = WithOrg(ctx, orgID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
