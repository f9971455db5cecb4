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

package resource

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	ErrResourceNotFound = errors.New("resource not found")
)

// Resource is a tenant-scoped bookable asset (a room, a vehicle, a
// projector). Owner-managed, member-readable. Not quota-bound.
type Resource struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Repository defines the interface for resource storage.
type Repository interface {
	Create(ctx context.Context, r *Resource) error
	GetByID(ctx context.Context, tenantID, id string) (*Resource, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*Resource, error)
	Update(ctx context.Context, r *Resource) error
	Delete(ctx context.Context, tenantID, id string) error
}
