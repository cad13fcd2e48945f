package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/TailoredAgents/joslyn-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// EventStore implements store.EventStore using PostgreSQL. Only INSERT and
// SELECT statements exist here; the ledger is append-only.
type EventStore struct {
	pool *pgxpool.Pool
}

// NewEventStore creates a new PostgreSQL-backed event store.
func NewEventStore(pool *pgxpool.Pool) *EventStore {
	return &EventStore{
		pool: pool,
	}
}

// Append records an event. The store assigns EventID and CreatedAt and
// serializes the typed payload to JSONB at this boundary.
func (s *EventStore) Append(ctx context.Context, event *models.Event) error {
	eventID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate event id: %w", err)
	}

	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	event.EventID = eventID
	event.CreatedAt = time.Now()

	query := `
		INSERT INTO events (
			event_id, org_id, user_id, type, payload, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
	`

	_, err = s.pool.Exec(ctx, query,
		event.EventID,
		event.OrgID,
		event.UserID,
		event.Type,
		payload,
		event.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to append event: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("event_id", event.EventID.String()).
		Str("type", string(event.Type)).
		Msg("Appended event")

	return nil
}

// CountByType counts events grouped by type within [from, to). A nil orgID
// counts across all organizations.
func (s *EventStore) CountByType(ctx context.Context, orgID *uuid.UUID, from, to time.Time) (map[models.EventType]int64, error) {
	query := `
		SELECT type, COUNT(*)
		FROM events
		WHERE ($1::uuid IS NULL OR org_id = $1)
		  AND created_at >= $2 AND created_at < $3
		GROUP BY type
	`

	rows, err := s.pool.Query(ctx, query, orgID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.EventType]int64)
	for rows.Next() {
		var eventType models.EventType
		var count int64
		if err := rows.Scan(&eventType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan event count: %w", err)
		}
		counts[eventType] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event counts: %w", err)
	}

	return counts, nil
}
