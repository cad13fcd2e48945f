package memory

import (
	"context"
	"sync"
	"time"

	"github.com/TailoredAgents/joslyn-api/internal/models"
	"github.com/TailoredAgents/joslyn-api/internal/store"
	"github.com/google/uuid"
)

type membershipKey struct {
	orgID  uuid.UUID
	userID uuid.UUID
}

// MembershipStore implements store.MembershipStore using in-memory storage.
// The map key enforces the one-role-per-(org,user) invariant.
type MembershipStore struct {
	mu sync.RWMutex

	memberships map[membershipKey]*models.Membership
}

// NewMembershipStore creates a new in-memory membership store.
func NewMembershipStore() *MembershipStore {
	return &MembershipStore{
		memberships: make(map[membershipKey]*models.Membership),
	}
}

// Upsert creates the membership or replaces its role.
func (s *MembershipStore) Upsert(ctx context.Context, m *models.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := membershipKey{orgID: m.OrgID, userID: m.UserID}
	now := time.Now()

	if existing, exists := s.memberships[key]; exists {
		existing.Role = m.Role
		existing.UpdatedAt = now
		m.CreatedAt = existing.CreatedAt
		m.UpdatedAt = now
		return nil
	}

	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now

	clone := *m
	s.memberships[key] = &clone

	return nil
}

// Get retrieves the membership for (orgID, userID).
func (s *MembershipStore) Get(ctx context.Context, orgID, userID uuid.UUID) (*models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, exists := s.memberships[membershipKey{orgID: orgID, userID: userID}]
	if !exists {
		return nil, store.ErrMembershipNotFound
	}

	clone := *m
	return &clone, nil
}
