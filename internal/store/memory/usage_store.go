package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/TailoredAgents/joslyn-api/internal/models"
	"github.com/TailoredAgents/joslyn-api/internal/store"
	"github.com/google/uuid"
)

// UsageStore implements store.UsageStore using in-memory storage.
type UsageStore struct {
	mu sync.RWMutex

	records []*models.UsageRecord
}

// NewUsageStore creates a new in-memory usage store.
func NewUsageStore() *UsageStore {
	return &UsageStore{}
}

// Record persists a usage record. The store assigns UsageID and CreatedAt.
func (s *UsageStore) Record(ctx context.Context, record *models.UsageRecord) error {
	usageID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate usage id: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record.UsageID = usageID
	record.CreatedAt = time.Now()

	clone := *record
	s.records = append(s.records, &clone)

	return nil
}

// Summarize aggregates usage for an organization within [from, to). A nil
// orgID aggregates across all organizations.
func (s *UsageStore) Summarize(ctx context.Context, orgID *uuid.UUID, from, to time.Time) (*store.UsageSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := &store.UsageSummary{}
	for _, record := range s.records {
		if orgID != nil && (record.OrgID == nil || *record.OrgID != *orgID) {
			continue
		}
		if record.CreatedAt.Before(from) || !record.CreatedAt.Before(to) {
			continue
		}

		summary.Records++
		summary.InputTokens += record.InputTokens
		summary.OutputTokens += record.OutputTokens
		summary.CachedTokens += record.CachedTokens
		summary.CostCents += record.CostCents
	}

	return summary, nil
}
