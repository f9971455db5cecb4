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

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/orgcore/orgcore/internal/svc"
)

// ServiceItemRepository implements svc.ItemRepository
type ServiceItemRepository struct {
	db *DB
}

// NewServiceItemRepository creates a new service item repository
func NewServiceItemRepository(db *DB) *ServiceItemRepository {
	return &ServiceItemRepository{db: db}
}

// CreateNote attaches a note to a service
func (r *ServiceItemRepository) CreateNote(ctx context.Context, n *svc.Note) error {
	now := time.Now()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO service_notes (id, service_id, author_id, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, n.ID, n.ServiceID, n.AuthorID, n.Body, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert service note: %w", err)
	}
	n.CreatedAt = now
	n.UpdatedAt = now
	return nil
}

// GetNote retrieves a note scoped to a service
func (r *ServiceItemRepository) GetNote(ctx context.Context, serviceID, id string) (*svc.Note, error) {
	var n svc.Note
	err := r.db.pool.QueryRow(ctx, `
		SELECT id, service_id, author_id, body, created_at, updated_at
		FROM service_notes WHERE service_id = $1 AND id = $2
	`, serviceID, id).Scan(&n.ID, &n.ServiceID, &n.AuthorID, &n.Body, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, svc.ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to query service note: %w", err)
	}
	return &n, nil
}

// UpdateNote updates a note's body
func (r *ServiceItemRepository) UpdateNote(ctx context.Context, n *svc.Note) error {
	now := time.Now()
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE service_notes SET body = $3, updated_at = $4
		WHERE service_id = $1 AND id = $2
	`, n.ServiceID, n.ID, n.Body, now)
	if err != nil {
		return fmt.Errorf("failed to update service note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return svc.ErrNoteNotFound
	}
	n.UpdatedAt = now
	return nil
}

// DeleteNote removes a note
func (r *ServiceItemRepository) DeleteNote(ctx context.Context, serviceID, id string) error {
	tag, err := r.db.pool.Exec(ctx, `
		DELETE FROM service_notes WHERE service_id = $1 AND id = $2
	`, serviceID, id)
	if err != nil {
		return fmt.Errorf("failed to delete service note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return svc.ErrNoteNotFound
	}
	return nil
}

// ListNotes returns a service's notes
func (r *ServiceItemRepository) ListNotes(ctx context.Context, serviceID string) ([]*svc.Note, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, service_id, author_id, body, created_at, updated_at
		FROM service_notes WHERE service_id = $1 ORDER BY created_at
	`, serviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query service notes: %w", err)
	}
	defer rows.Close()

	var notes []*svc.Note
	for rows.Next() {
		var n svc.Note
		if err := rows.Scan(&n.ID, &n.ServiceID, &n.AuthorID, &n.Body, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan service note: %w", err)
		}
		notes = append(notes, &n)
	}
	return notes, rows.Err()
}

// CreateRole adds a named position to a service
func (r *ServiceItemRepository) CreateRole(ctx context.Context, role *svc.Role) error {
	now := time.Now()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO service_roles (id, service_id, name, created_at)
		VALUES ($1, $2, $3, $4)
	`, role.ID, role.ServiceID, role.Name, now)
	if err != nil {
		return fmt.Errorf("failed to insert service role: %w", err)
	}
	role.CreatedAt = now
	return nil
}

// DeleteRole removes a service role
func (r *ServiceItemRepository) DeleteRole(ctx context.Context, serviceID, id string) error {
	tag, err := r.db.pool.Exec(ctx, `
		DELETE FROM service_roles WHERE service_id = $1 AND id = $2
	`, serviceID, id)
	if err != nil {
		return fmt.Errorf("failed to delete service role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return svc.ErrRoleNotFound
	}
	return nil
}

// ListRoles returns a service's roles
func (r *ServiceItemRepository) ListRoles(ctx context.Context, serviceID string) ([]*svc.Role, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, service_id, name, created_at
		FROM service_roles WHERE service_id = $1 ORDER BY created_at
	`, serviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query service roles: %w", err)
	}
	defer rows.Close()

	var roles []*svc.Role
	for rows.Next() {
		var role svc.Role
		if err := rows.Scan(&role.ID, &role.ServiceID, &role.Name, &role.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan service role: %w", err)
		}
		roles = append(roles, &role)
	}
	return roles, rows.Err()
}

// CreateServiceEvent adds a dated occurrence to a service
func (r *ServiceItemRepository) CreateServiceEvent(ctx context.Context, e *svc.ServiceEvent) error {
	now := time.Now()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO service_events (id, service_id, starts_at, created_at)
		VALUES ($1, $2, $3, $4)
	`, e.ID, e.ServiceID, e.StartsAt, now)
	if err != nil {
		return fmt.Errorf("failed to insert service event: %w", err)
	}
	e.CreatedAt = now
	return nil
}

// DeleteServiceEvent removes a service event and its owner assignments
func (r *ServiceItemRepository) DeleteServiceEvent(ctx context.Context, serviceID, id string) error {
	tag, err := r.db.pool.Exec(ctx, `
		DELETE FROM service_events WHERE service_id = $1 AND id = $2
	`, serviceID, id)
	if err != nil {
		return fmt.Errorf("failed to delete service event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return svc.ErrServiceEventNotFound
	}
	return nil
}

// ListServiceEvents returns a service's events
func (r *ServiceItemRepository) ListServiceEvents(ctx context.Context, serviceID string) ([]*svc.ServiceEvent, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, service_id, starts_at, created_at
		FROM service_events WHERE service_id = $1 ORDER BY starts_at
	`, serviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query service events: %w", err)
	}
	defer rows.Close()

	var events []*svc.ServiceEvent
	for rows.Next() {
		var e svc.ServiceEvent
		if err := rows.Scan(&e.ID, &e.ServiceID, &e.StartsAt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan service event: %w", err)
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

// CreateEventOwner assigns a principal responsibility for a service event
func (r *ServiceItemRepository) CreateEventOwner(ctx context.Context, o *svc.EventOwner) error {
	now := time.Now()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO event_owners (id, service_id, service_event_id, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, o.ID, o.ServiceID, o.ServiceEventID, o.UserID, now)
	if err != nil {
		return fmt.Errorf("failed to insert event owner: %w", err)
	}
	o.CreatedAt = now
	return nil
}

// DeleteEventOwner removes an owner assignment
func (r *ServiceItemRepository) DeleteEventOwner(ctx context.Context, serviceID, id string) error {
	tag, err := r.db.pool.Exec(ctx, `
		DELETE FROM event_owners WHERE service_id = $1 AND id = $2
	`, serviceID, id)
	if err != nil {
		return fmt.Errorf("failed to delete event owner: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return svc.ErrEventOwnerNotFound
	}
	return nil
}

// ListEventOwners returns the owners of a service event
func (r *ServiceItemRepository) ListEventOwners(ctx context.Context, serviceEventID string) ([]*svc.EventOwner, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, service_id, service_event_id, user_id, created_at
		FROM event_owners WHERE service_event_id = $1 ORDER BY created_at
	`, serviceEventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query event owners: %w", err)
	}
	defer rows.Close()

	var owners []*svc.EventOwner
	for rows.Next() {
		var o svc.EventOwner
		if err := rows.Scan(&o.ID, &o.ServiceID, &o.ServiceEventID, &o.UserID, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event owner: %w", err)
		}
		owners = append(owners, &o)
	}
	return owners, rows.Err()
}
