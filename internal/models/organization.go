package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization represents a tenant in the system. Every org-scoped record
// carries exactly one organization ID; rows written for anonymous or system
// events carry none.
type Organization struct {
	OrgID     uuid.UUID // UUIDv7
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
