package memory

import (
	"context"
	"sync"
	"time"

	"github.com/TailoredAgents/joslyn-api/internal/models"
	"github.com/TailoredAgents/joslyn-api/internal/store"
	"github.com/google/uuid"
)

// InviteStore implements store.InviteStore using in-memory storage.
type InviteStore struct {
	mu sync.RWMutex

	invites map[uuid.UUID]*models.Invite // invite_id -> Invite
	byToken map[string]uuid.UUID         // token -> invite_id
}

// NewInviteStore creates a new in-memory invite store.
func NewInviteStore() *InviteStore {
	return &InviteStore{
		invites: make(map[uuid.UUID]*models.Invite),
		byToken: make(map[string]uuid.UUID),
	}
}

// Create persists a new invite. The store assigns CreatedAt.
func (s *InviteStore) Create(ctx context.Context, invite *models.Invite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	invite.CreatedAt = time.Now()

	clone := *invite
	s.invites[invite.InviteID] = &clone
	s.byToken[invite.Token] = invite.InviteID

	return nil
}

// GetByToken retrieves an invite by its opaque token.
func (s *InviteStore) GetByToken(ctx context.Context, token string) (*models.Invite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inviteID, exists := s.byToken[token]
	if !exists {
		return nil, store.ErrInviteNotFound
	}

	clone := *s.invites[inviteID]
	return &clone, nil
}

// MarkAccepted stamps the invite as accepted. Accepting twice is a no-op;
// the first acceptance time is kept.
func (s *InviteStore) MarkAccepted(ctx context.Context, inviteID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	invite, exists := s.invites[inviteID]
	if !exists {
		return store.ErrInviteNotFound
	}

	if invite.AcceptedAt == nil {
		now := time.Now()
		invite.AcceptedAt = &now
	}

	return nil
}
