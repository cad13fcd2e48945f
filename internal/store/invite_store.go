package store

import (
	"context"
	"errors"

	"github.com/TailoredAgents/joslyn-api/internal/models"
	"github.com/google/uuid"
)

// Sentinel errors for invite store operations
var (
	ErrInviteNotFound = errors.New("invite not found")
)

// InviteStore persists pending organization invites.
type InviteStore interface {
	// Create stores a new invite and assigns its CreatedAt. The caller
	// supplies InviteID and the redemption token.
	Create(ctx context.Context, invite *models.Invite) error

	// GetByToken retrieves an invite by its redemption token.
	// Returns ErrInviteNotFound if no invite matches.
	GetByToken(ctx context.Context, token string) (*models.Invite, error)

	// MarkAccepted records the redemption time for an invite. Accepting an
	// already-accepted invite keeps the first acceptance time.
	// Returns ErrInviteNotFound if the invite doesn't exist.
	MarkAccepted(ctx context.Context, inviteID uuid.UUID) error
}
