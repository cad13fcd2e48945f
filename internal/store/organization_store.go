package store

import (
	"context"
	"errors"

	"github.com/TailoredAgents/joslyn-api/internal/models"
	"github.com/google/uuid"
)

// Sentinel errors for organization store operations
var (
	ErrOrganizationNotFound = errors.New("organization not found")
)

// OrganizationStore defines the interface for organization storage operations.
// Organizations are the tenant boundary; every scoped record belongs to one.
type OrganizationStore interface {
	// Upsert creates the organization or updates its name if it already
	// exists. Used by first-login bootstrap, which may race with itself.
	Upsert(ctx context.Context, org *models.Organization) error

	// Get retrieves an organization by ID.
	// Returns ErrOrganizationNotFound if the organization doesn't exist.
	Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error)
}
