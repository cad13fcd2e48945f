package models

import (
	"time"

	"github.com/google/uuid"
)

// Invite grants a pending membership in an organization, redeemed by token.
type Invite struct {
	InviteID   uuid.UUID // UUIDv7
	OrgID      uuid.UUID
	Email      string
	Role       Role
	Token      string // hex-encoded random token, unique
	CreatedAt  time.Time
	AcceptedAt *time.Time
}

// Accepted reports whether the invite has already been redeemed.
func (i *Invite) Accepted() bool {
	return i.AcceptedAt != nil
}
