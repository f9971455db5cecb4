package tenant

import (
	"context"
	"errors"
	"regexp"
	"time"
)

// Domain errors
var (
	ErrTenantNotFound = errors.New("tenant not found")
	ErrSlugTaken      = errors.New("tenant slug is already taken")
	ErrInvalidSlug    = errors.New("invalid tenant slug")
)

// Tenant is the root of isolation. Every quota-bound entity references one,
// and nothing crosses tenant boundaries except explicit public-visibility
// rules.
type Tenant struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	PriceTierID string    `json:"price_tier_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,62}$`)

// ValidSlug reports whether s is usable as a tenant slug.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// Repository defines the interface for tenant storage
type Repository interface {
	// CreateWithOwner inserts the tenant and the creator's owner
	// membership in one transaction. The membership insert is
	// quota-checked against the assigned tier's user limit.
	CreateWithOwner(ctx context.Context, t *Tenant, ownerID string) error

	GetByID(ctx context.Context, id string) (*Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*Tenant, error)
	Update(ctx context.Context, t *Tenant) error

	// Delete removes the tenant and, in the same transaction, its
	// memberships, group membership rows, and tenant-scoped entities.
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, limit, offset int) ([]*Tenant, error)
}
