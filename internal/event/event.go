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

package event

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	ErrEventNotFound     = errors.New("event not found")
	ErrInvalidVisibility = errors.New("invalid event visibility")
)

// Visibility controls who may read an event. Public events are readable by
// anyone, anonymous visitors included; private events by tenant members only.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Valid reports whether v is a defined visibility.
func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// Event is a tenant-scoped calendar entry. Any member may create one
// (subject to the tier event limit); the creator keeps update/delete rights
// alongside the tenant owner.
type Event struct {
	ID         string     `json:"id"`
	TenantID   string     `json:"tenant_id"`
	CreatorID  string     `json:"creator_id"`
	Title      string     `json:"title"`
	Visibility Visibility `json:"visibility"`
	StartsAt   time.Time  `json:"starts_at"`
	EndsAt     time.Time  `json:"ends_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Repository defines the interface for event storage.
type Repository interface {
	// Create inserts an event; quota-checked against the tenant's tier
	// event limit in the same transaction. Returns *quota.Error at limit.
	Create(ctx context.Context, e *Event) error

	GetByID(ctx context.Context, tenantID, id string) (*Event, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*Event, error)
	ListPublicByTenant(ctx context.Context, tenantID string) ([]*Event, error)
	Update(ctx context.Context, e *Event) error
	Delete(ctx context.Context, tenantID, id string) error
}
