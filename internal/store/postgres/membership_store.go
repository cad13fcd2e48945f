package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/TailoredAgents/joslyn-api/internal/models"
	"github.com/TailoredAgents/joslyn-api/internal/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// MembershipStore implements store.MembershipStore using PostgreSQL.
// The (org_id, user_id) primary key enforces one role per user per org.
type MembershipStore struct {
	pool *pgxpool.Pool
}

// NewMembershipStore creates a new PostgreSQL-backed membership store.
func NewMembershipStore(pool *pgxpool.Pool) *MembershipStore {
	return &MembershipStore{
		pool: pool,
	}
}

// Upsert creates the membership or replaces its role.
func (s *MembershipStore) Upsert(ctx context.Context, m *models.Membership) error {
	now := time.Now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now

	query := `
		INSERT INTO org_members (
			org_id, user_id, role, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5
		)
		ON CONFLICT (org_id, user_id) DO UPDATE SET
			role = EXCLUDED.role,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.pool.Exec(ctx, query,
		m.OrgID,
		m.UserID,
		m.Role,
		m.CreatedAt,
		m.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert membership: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("org_id", m.OrgID.String()).
		Str("user_id", m.UserID.String()).
		Str("role", string(m.Role)).
		Msg("Upserted membership")

	return nil
}

// Get retrieves the membership for (orgID, userID).
func (s *MembershipStore) Get(ctx context.Context, orgID, userID uuid.UUID) (*models.Membership, error) {
	query := `
		SELECT org_id, user_id, role, created_at, updated_at
		FROM org_members
		WHERE org_id = $1 AND user_id = $2
	`

	var m models.Membership
	err := s.pool.QueryRow(ctx, query, orgID, userID).Scan(
		&m.OrgID,
		&m.UserID,
		&m.Role,
		&m.CreatedAt,
		&m.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	return &m, nil
}
