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

// InviteStore implements store.InviteStore using PostgreSQL.
type InviteStore struct {
	pool *pgxpool.Pool
}

// NewInviteStore creates a new PostgreSQL-backed invite store.
func NewInviteStore(pool *pgxpool.Pool) *InviteStore {
	return &InviteStore{
		pool: pool,
	}
}

// Create persists a new invite.
func (s *InviteStore) Create(ctx context.Context, invite *models.Invite) error {
	invite.CreatedAt = time.Now()

	query := `
		INSERT INTO invites (
			invite_id, org_id, email, role, token, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
	`

	_, err := s.pool.Exec(ctx, query,
		invite.InviteID,
		invite.OrgID,
		invite.Email,
		invite.Role,
		invite.Token,
		invite.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invite token already exists: %w", err)
		}
		return fmt.Errorf("failed to create invite: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("invite_id", invite.InviteID.String()).
		Str("org_id", invite.OrgID.String()).
		Str("role", string(invite.Role)).
		Msg("Created invite")

	return nil
}

// GetByToken retrieves an invite by its opaque token.
func (s *InviteStore) GetByToken(ctx context.Context, token string) (*models.Invite, error) {
	query := `
		SELECT invite_id, org_id, email, role, token, created_at, accepted_at
		FROM invites
		WHERE token = $1
	`

	var invite models.Invite
	err := s.pool.QueryRow(ctx, query, token).Scan(
		&invite.InviteID,
		&invite.OrgID,
		&invite.Email,
		&invite.Role,
		&invite.Token,
		&invite.CreatedAt,
		&invite.AcceptedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}

	return &invite, nil
}

// MarkAccepted stamps the invite as accepted. The first acceptance time is
// kept if called more than once.
func (s *InviteStore) MarkAccepted(ctx context.Context, inviteID uuid.UUID) error {
	query := `
		UPDATE invites SET accepted_at = COALESCE(accepted_at, $2)
		WHERE invite_id = $1
	`

	result, err := s.pool.Exec(ctx, query, inviteID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to mark invite accepted: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrInviteNotFound
	}

	return nil
}
