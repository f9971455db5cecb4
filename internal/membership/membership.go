// Copyright 2026 The Orgcore Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package membership

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	ErrMembershipNotFound  = errors.New("membership not found")
	ErrDuplicateMembership = errors.New("principal is already a member of tenant")
	ErrInvalidRole         = errors.New("invalid membership role")
)

// Role is the binding strength of a principal to a tenant. Exactly two
// values; the entity set and role set are fixed.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// Valid reports whether r is one of the two defined roles.
func (r Role) Valid() bool {
	return r == RoleOwner || r == RoleMember
}

// Membership binds a principal to a tenant with a role. A row exists iff
// the principal belongs to the tenant; unique on (tenant_id, user_id).
type Membership struct {
	TenantID  string    `json:"tenant_id"`
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository defines the interface for membership storage.
type Repository interface {
	// Create inserts a membership. The insert is quota-checked against the
	// tenant's tier user limit inside the same transaction; a tenant at
	// its limit gets a *quota.Error. A (tenant_id, user_id) collision
	// returns ErrDuplicateMembership.
	Create(ctx context.Context, m *Membership) error

	// Get retrieves the membership for (tenantID, userID) or
	// ErrMembershipNotFound.
	Get(ctx context.Context, tenantID, userID string) (*Membership, error)

	ListByTenant(ctx context.Context, tenantID string) ([]*Membership, error)
	ListByUser(ctx context.Context, userID string) ([]*Membership, error)

	// Remove deletes the membership and, in the same transaction, every
	// group-membership row for the principal scoped to the tenant's
	// groups. There is never a window where the principal is out of the
	// tenant but still listed in one of its groups.
	Remove(ctx context.Context, tenantID, userID string) error
}
