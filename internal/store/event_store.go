package store

import (
	"context"
	"time"

	"github.com/TailoredAgents/joslyn-api/internal/models"
	"github.com/google/uuid"
)

// EventStore is the append-only ledger of immutable events. The interface
// deliberately has no update or delete methods; append is the only write.
type EventStore interface {
	// Append writes one event and assigns its EventID and CreatedAt.
	// Concurrent appends are independent; within one organization the
	// server-assigned timestamps reflect observed arrival order.
	Append(ctx context.Context, event *models.Event) error

	// CountByType returns per-type event counts in [from, to), scoped to
	// orgID when non-nil. Used by the usage report.
	CountByType(ctx context.Context, orgID *uuid.UUID, from, to time.Time) (map[models.EventType]int64, error)
}
