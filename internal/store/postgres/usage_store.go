package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/TailoredAgents/joslyn-api/internal/models"
	"github.com/TailoredAgents/joslyn-api/internal/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// UsageStore implements store.UsageStore using PostgreSQL.
type UsageStore struct {
	pool *pgxpool.Pool
}

// NewUsageStore creates a new PostgreSQL-backed usage store.
func NewUsageStore(pool *pgxpool.Pool) *UsageStore {
	return &UsageStore{
		pool: pool,
	}
}

// Record persists a usage record. The store assigns UsageID and CreatedAt.
func (s *UsageStore) Record(ctx context.Context, record *models.UsageRecord) error {
	usageID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate usage id: %w", err)
	}

	record.UsageID = usageID
	record.CreatedAt = time.Now()

	query := `
		INSERT INTO usage_records (
			usage_id, org_id, user_id, model,
			input_tokens, output_tokens, cached_tokens, cost_cents, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`

	_, err = s.pool.Exec(ctx, query,
		record.UsageID,
		record.OrgID,
		record.UserID,
		record.Model,
		record.InputTokens,
		record.OutputTokens,
		record.CachedTokens,
		record.CostCents,
		record.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to record usage: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("usage_id", record.UsageID.String()).
		Str("model", record.Model).
		Int64("cost_cents", record.CostCents).
		Msg("Recorded usage")

	return nil
}

// Summarize aggregates usage for an organization within [from, to). A nil
// orgID aggregates across all organizations.
func (s *UsageStore) Summarize(ctx context.Context, orgID *uuid.UUID, from, to time.Time) (*store.UsageSummary, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(input_tokens), 0),
			COALESCE(SUM(output_tokens), 0),
			COALESCE(SUM(cached_tokens), 0),
			COALESCE(SUM(cost_cents), 0)
		FROM usage_records
		WHERE ($1::uuid IS NULL OR org_id = $1)
		  AND created_at >= $2 AND created_at < $3
	`

	var summary store.UsageSummary
	err := s.pool.QueryRow(ctx, query, orgID, from, to).Scan(
		&summary.Records,
		&summary.InputTokens,
		&summary.OutputTokens,
		&summary.CachedTokens,
		&summary.CostCents,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to summarize usage: %w", err)
	}

	return &summary, nil
}
