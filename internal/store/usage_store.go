package store

import (
	"context"
	"time"

	"github.com/TailoredAgents/joslyn-api/internal/models"
	"github.com/google/uuid"
)

// UsageSummary aggregates usage records over a reporting window.
type UsageSummary struct {
	Records      int64
	InputTokens  int64
	OutputTokens int64
	CachedTokens int64
	CostCents    int64
}

// UsageStore persists usage/cost records. Records are immutable once written.
type UsageStore interface {
	// Record writes one usage record and assigns its UsageID and CreatedAt.
	Record(ctx context.Context, record *models.UsageRecord) error

	// Summarize aggregates records in [from, to), scoped to orgID when
	// non-nil.
	Summarize(ctx context.Context, orgID *uuid.UUID, from, to time.Time) (*UsageSummary, error)
}
