package store

import (
	"context"
	"errors"

	"github.com/TailoredAgents/joslyn-api/internal/models"
	"github.com/google/uuid"
)

// Sentinel errors for membership store operations
var (
	ErrMembershipNotFound = errors.New("membership not found")
)

// MembershipStore defines the interface for membership storage operations.
// A membership relates a user to an organization with exactly one role; the
// (org, user) pair is unique.
type MembershipStore interface {
	// Upsert creates the membership or replaces its role. The invariant of
	// at most one active role per (org, user) pair is enforced here.
	Upsert(ctx context.Context, m *models.Membership) error

	// Get retrieves the membership for (orgID, userID).
	// Returns ErrMembershipNotFound if no membership exists.
	Get(ctx context.Context, orgID, userID uuid.UUID) (*models.Membership, error)
}
