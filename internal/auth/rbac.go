package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/TailoredAgents/joslyn-api/internal/models"
	"github.com/TailoredAgents/joslyn-api/internal/store"
	"github.com/google/uuid"
)

// ErrForbidden is returned when a principal is authenticated but lacks a
// required role in the organization.
var ErrForbidden = errors.New("forbidden")

// Guard checks role membership for privileged operations. Every check does a
// fresh membership lookup; role changes take effect on the next request.
type Guard struct {
	memberships store.MembershipStore
}

// NewGuard creates a guard backed by the given membership store.
func NewGuard(memberships store.MembershipStore) *Guard {
	return &Guard{memberships: memberships}
}

// RequireRole confirms the principal holds one of the allowed roles in the
// organization. A nil principal fails with ErrUnauthorized; a missing
// membership or a role outside allowedRoles fails with ErrForbidden. The
// guard does not infer hierarchy between roles; callers pass the exact
// acceptable set.
func (g *Guard) RequireRole(ctx context.Context, orgID uuid.UUID, principal *Principal, allowedRoles []models.Role) error {
	if principal == nil {
		return fmt.Errorf("%w: not authenticated", ErrUnauthorized)
	}

	m, err := g.memberships.Get(ctx, orgID, principal.UserID)
	if err != nil {
		if errors.Is(err, store.ErrMembershipNotFound) {
			return fmt.Errorf("%w: insufficient_role", ErrForbidden)
		}
		return fmt.Errorf("failed to look up membership: %w", err)
	}

	if !slices.Contains(allowedRoles, m.Role) {
		return fmt.Errorf("%w: insufficient_role", ErrForbidden)
	}

	return nil
}
