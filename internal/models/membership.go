package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is a permission level within an organization. The access guard does
// not infer hierarchy between roles; callers pass the exact acceptable set.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleParent Role = "parent"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember, RoleParent:
		return true
	}
	return false
}

// Membership relates a user to an organization with a single role.
// At most one active membership exists per (org, user) pair.
type Membership struct {
	OrgID     uuid.UUID
	UserID    uuid.UUID
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}
