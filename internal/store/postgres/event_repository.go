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
	"github.com/orgcore/orgcore/internal/event"
	"github.com/orgcore/orgcore/internal/quota"
)

// EventRepository implements event.Repository
type EventRepository struct {
	db *DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts an event, quota-checked against the tenant's tier event
// limit in the same transaction.
func (r *EventRepository) Create(ctx context.Context, e *event.Event) error {
	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := checkQuota(ctx, tx, e.TenantID, quota.KindEvent); err != nil {
		return err
	}

	now := time.Now()
	_, err = tx.Exec(ctx, `
		INSERT INTO events (id, tenant_id, creator_id, title, visibility, starts_at, ends_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, e.ID, e.TenantID, e.CreatorID, e.Title, e.Visibility, e.StartsAt, e.EndsAt, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	e.CreatedAt = now
	e.UpdatedAt = now
	return nil
}

// GetByID retrieves an event scoped to a tenant
func (r *EventRepository) GetByID(ctx context.Context, tenantID, id string) (*event.Event, error) {
	var e event.Event
	err := r.db.pool.QueryRow(ctx, `
		SELECT id, tenant_id, creator_id, title, visibility, starts_at, ends_at, created_at, updated_at
		FROM events WHERE tenant_id = $1 AND id = $2
	`, tenantID, id).Scan(
		&e.ID, &e.TenantID, &e.CreatorID, &e.Title, &e.Visibility,
		&e.StartsAt, &e.EndsAt, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, event.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to query event: %w", err)
	}
	return &e, nil
}

// ListByTenant returns all of a tenant's events
func (r *EventRepository) ListByTenant(ctx context.Context, tenantID string) ([]*event.Event, error) {
	return r.list(ctx, `
		SELECT id, tenant_id, creator_id, title, visibility, starts_at, ends_at, created_at, updated_at
		FROM events WHERE tenant_id = $1 ORDER BY starts_at
	`, tenantID)
}

// ListPublicByTenant returns only the publicly visible events of a tenant
func (r *EventRepository) ListPublicByTenant(ctx context.Context, tenantID string) ([]*event.Event, error) {
	return r.list(ctx, `
		SELECT id, tenant_id, creator_id, title, visibility, starts_at, ends_at, created_at, updated_at
		FROM events WHERE tenant_id = $1 AND visibility = 'public' ORDER BY starts_at
	`, tenantID)
}

func (r *EventRepository) list(ctx context.Context, query string, args ...any) ([]*event.Event, error) {
	rows, err := r.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*event.Event
	for rows.Next() {
		var e event.Event
		if err := rows.Scan(
			&e.ID, &e.TenantID, &e.CreatorID, &e.Title, &e.Visibility,
			&e.StartsAt, &e.EndsAt, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

// Update updates an event
func (r *EventRepository) Update(ctx context.Context, e *event.Event) error {
	now := time.Now()
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE events SET title = $3, visibility = $4, starts_at = $5, ends_at = $6, updated_at = $7
		WHERE tenant_id = $1 AND id = $2
	`, e.TenantID, e.ID, e.Title, e.Visibility, e.StartsAt, e.EndsAt, now)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return event.ErrEventNotFound
	}
	e.UpdatedAt = now
	return nil
}

// Delete removes an event
func (r *EventRepository) Delete(ctx context.Context, tenantID, id string) error {
	tag, err := r.db.pool.Exec(ctx, `
		DELETE FROM events WHERE tenant_id = $1 AND id = $2
	`, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return event.ErrEventNotFound
	}
	return nil
}
