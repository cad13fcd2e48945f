package models

import (
	"time"

	"github.com/google/uuid"
)

// UsageRecord measures one resource-consuming model invocation. The cost is
// computed synchronously when the invocation completes and is immutable
// afterwards.
type UsageRecord struct {
	UsageID      uuid.UUID // UUIDv7
	OrgID        *uuid.UUID
	UserID       *uuid.UUID
	Model        string
	InputTokens  int64
	OutputTokens int64
	CachedTokens int64
	CostCents    int64
	CreatedAt    time.Time
}
