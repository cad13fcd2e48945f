package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates the kinds of facts the ledger records.
type EventType string

const (
	EventTypeMeetingConsent  EventType = "meeting_consent"
	EventTypeUserFeedback    EventType = "user_feedback"
	EventTypeInviteCreated   EventType = "invite_created"
	EventTypeOrgBootstrapped EventType = "org_bootstrapped"
)

// EventPayload is implemented by the typed payload for each event kind.
// Payloads are serialized to JSON only at the persistence boundary.
type EventPayload interface {
	EventType() EventType
}

// ConsentPayload records a meeting consent grant or withdrawal for a child.
// The client IP is kept as audit metadata.
type ConsentPayload struct {
	ChildID string `json:"child_id"`
	Consent bool   `json:"consent"`
	IP      string `json:"ip,omitempty"`
}

func (ConsentPayload) EventType() EventType { return EventTypeMeetingConsent }

// FeedbackPayload wraps a free-form feedback submission. The submission is
// stored as-is; it has no fixed schema.
type FeedbackPayload struct {
	Submission map[string]any
}

func (FeedbackPayload) EventType() EventType { return EventTypeUserFeedback }

// MarshalJSON stores the submission object directly, without a wrapper key.
func (p FeedbackPayload) MarshalJSON() ([]byte, error) {
	if p.Submission == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p.Submission)
}

// InviteCreatedPayload records an invite issued within an organization.
type InviteCreatedPayload struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (InviteCreatedPayload) EventType() EventType { return EventTypeInviteCreated }

// OrgBootstrappedPayload records first-time organization setup.
type OrgBootstrappedPayload struct {
	Name string `json:"name"`
	Plan string `json:"plan"`
}

func (OrgBootstrappedPayload) EventType() EventType { return EventTypeOrgBootstrapped }

// Event is an immutable fact appended to the ledger. OrgID and UserID are
// nil for unauthenticated or system events. Events are created once and
// never mutated or deleted.
type Event struct {
	EventID   uuid.UUID // UUIDv7, assigned by the store on append
	OrgID     *uuid.UUID
	UserID    *uuid.UUID
	Type      EventType
	Payload   EventPayload
	CreatedAt time.Time
}
