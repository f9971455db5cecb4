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

package group

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	ErrGroupNotFound        = errors.New("group not found")
	ErrGroupMemberNotFound  = errors.New("group member not found")
	ErrDuplicateGroupMember = errors.New("principal is already in group")
)

// Group is a tenant-scoped collection of members. Creation counts against
// the tenant's tier group limit.
type Group struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Member is the join row between a principal and a group. Removing the
// principal's tenant membership removes these rows in the same transaction.
type Member struct {
	GroupID string    `json:"group_id"`
	UserID  string    `json:"user_id"`
	AddedAt time.Time `json:"added_at"`
}

// Repository defines the interface for group storage.
type Repository interface {
	// Create inserts a group; quota-checked against the tenant's tier
	// group limit in the same transaction. Returns *quota.Error at limit.
	Create(ctx context.Context, g *Group) error

	GetByID(ctx context.Context, tenantID, id string) (*Group, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*Group, error)
	Update(ctx context.Context, g *Group) error
	Delete(ctx context.Context, tenantID, id string) error

	AddMember(ctx context.Context, m *Member) error
	RemoveMember(ctx context.Context, groupID, userID string) error
	ListMembers(ctx context.Context, groupID string) ([]*Member, error)

	// ListUserGroups returns the groups within a tenant the user belongs
	// to. Used to verify the removal cascade.
	ListUserGroups(ctx context.Context, tenantID, userID string) ([]*Group, error)
}
