package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/TailoredAgents/joslyn-api/internal/models"
	"github.com/google/uuid"
)

// EventStore implements store.EventStore using in-memory storage. The
// backing slice is append-only; nothing ever removes or rewrites entries.
type EventStore struct {
	mu sync.RWMutex

	events []*models.Event
}

// NewEventStore creates a new in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{}
}

// Append records an event. The store assigns EventID and CreatedAt; any
// values the caller set on those fields are overwritten.
func (s *EventStore) Append(ctx context.Context, event *models.Event) error {
	eventID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate event id: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	event.EventID = eventID
	event.CreatedAt = time.Now()

	// Clone to avoid external modifications
	clone := *event
	s.events = append(s.events, &clone)

	return nil
}

// CountByType counts events grouped by type within [from, to). A nil orgID
// counts across all organizations.
func (s *EventStore) CountByType(ctx context.Context, orgID *uuid.UUID, from, to time.Time) (map[models.EventType]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[models.EventType]int64)
	for _, event := range s.events {
		if orgID != nil && (event.OrgID == nil || *event.OrgID != *orgID) {
			continue
		}
		if event.CreatedAt.Before(from) || !event.CreatedAt.Before(to) {
			continue
		}
		counts[event.Type]++
	}

	return counts, nil
}

// Len reports the number of appended events. Used in tests.
func (s *EventStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.events)
}
