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

// Package svc models recurring services (the "services" table) and their
// sub-resources: notes, roles, service events and event owners. The tenant
// owner manages services; per-service admins manage sub-resources of their
// own service without owning the tenant.
package svc

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	ErrServiceNotFound      = errors.New("service not found")
	ErrNoteNotFound         = errors.New("service note not found")
	ErrRoleNotFound         = errors.New("service role not found")
	ErrServiceEventNotFound = errors.New("service event not found")
	ErrEventOwnerNotFound   = errors.New("event owner not found")
	ErrDuplicateAdmin       = errors.New("principal is already a service admin")
)

// Service is a tenant-scoped recurring service. Not quota-bound.
type Service struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Admin registers a principal as administrator of one specific service,
// granting sub-resource control without tenant ownership.
type Admin struct {
	ServiceID string    `json:"service_id"`
	UserID    string    `json:"user_id"`
	AddedAt   time.Time `json:"added_at"`
}

// Note is free-form text attached to a service.
type Note struct {
	ID        string    `json:"id"`
	ServiceID string    `json:"service_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Role is a named position to be filled within a service.
type Role struct {
	ID        string    `json:"id"`
	ServiceID string    `json:"service_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ServiceEvent is one dated occurrence of a service.
type ServiceEvent struct {
	ID        string    `json:"id"`
	ServiceID string    `json:"service_id"`
	StartsAt  time.Time `json:"starts_at"`
	CreatedAt time.Time `json:"created_at"`
}

// EventOwner assigns a principal responsibility for a service event.
type EventOwner struct {
	ID             string    `json:"id"`
	ServiceID      string    `json:"service_id"`
	ServiceEventID string    `json:"service_event_id"`
	UserID         string    `json:"user_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// Repository defines the interface for service storage.
type Repository interface {
	Create(ctx context.Context, s *Service) error
	GetByID(ctx context.Context, tenantID, id string) (*Service, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*Service, error)
	Update(ctx context.Context, s *Service) error
	Delete(ctx context.Context, tenantID, id string) error

	AddAdmin(ctx context.Context, a *Admin) error
	RemoveAdmin(ctx context.Context, serviceID, userID string) error
	IsAdmin(ctx context.Context, serviceID, userID string) (bool, error)
	ListAdmins(ctx context.Context, serviceID string) ([]*Admin, error)
}

// ItemRepository defines the interface for sub-resource storage. All rows
// hang off a service and inherit its authorization surface.
type ItemRepository interface {
	CreateNote(ctx context.Context, n *Note) error
	GetNote(ctx context.Context, serviceID, id string) (*Note, error)
	UpdateNote(ctx context.Context, n *Note) error
	DeleteNote(ctx context.Context, serviceID, id string) error
	ListNotes(ctx context.Context, serviceID string) ([]*Note, error)

	CreateRole(ctx context.Context, r *Role) error
	DeleteRole(ctx context.Context, serviceID, id string) error
	ListRoles(ctx context.Context, serviceID string) ([]*Role, error)

	CreateServiceEvent(ctx context.Context, e *ServiceEvent) error
	DeleteServiceEvent(ctx context.Context, serviceID, id string) error
	ListServiceEvents(ctx context.Context, serviceID string) ([]*ServiceEvent, error)

	CreateEventOwner(ctx context.Context, o *EventOwner) error
	DeleteEventOwner(ctx context.Context, serviceID, id string) error
	ListEventOwners(ctx context.Context, serviceEventID string) ([]*EventOwner, error)
}
