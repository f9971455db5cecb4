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
	"github.com/orgcore/orgcore/internal/membership"
	"github.com/orgcore/orgcore/internal/tenant"
)

// TenantRepository implements tenant.Repository
type TenantRepository struct {
	db *DB
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// CreateWithOwner inserts the tenant and the creator's owner membership in
// one transaction. The membership insert is quota-checked against the
// assigned tier's user limit, so a tier with userLimit=0 rejects creation.
func (r *TenantRepository) CreateWithOwner(ctx context.Context, t *tenant.Tenant, ownerID string) error {
	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	_, err = tx.Exec(ctx, `
		INSERT INTO tenants (id, name, slug, price_tier_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, t.ID, t.Name, t.Slug, t.PriceTierID, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return tenant.ErrSlugTaken
		}
		return fmt.Errorf("failed to insert tenant: %w", err)
	}

	if err := insertMembership(ctx, tx, &membership.Membership{
		TenantID:  t.ID,
		UserID:    ownerID,
		Role:      membership.RoleOwner,
		CreatedAt: now,
	}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	t.CreatedAt = now
	t.UpdatedAt = now
	return nil
}

// GetByID retrieves a tenant by ID
func (r *TenantRepository) GetByID(ctx context.Context, id string) (*tenant.Tenant, error) {
	return r.scanOne(ctx, `
		SELECT id, name, slug, price_tier_id, created_at, updated_at
		FROM tenants WHERE id = $1
	`, id)
}

// GetBySlug retrieves a tenant by slug
func (r *TenantRepository) GetBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	return r.scanOne(ctx, `
		SELECT id, name, slug, price_tier_id, created_at, updated_at
		FROM tenants WHERE slug = $1
	`, slug)
}

func (r *TenantRepository) scanOne(ctx context.Context, query, arg string) (*tenant.Tenant, error) {
	var t tenant.Tenant
	err := r.db.pool.QueryRow(ctx, query, arg).Scan(
		&t.ID, &t.Name, &t.Slug, &t.PriceTierID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to query tenant: %w", err)
	}
	return &t, nil
}

// Update updates a tenant's name, slug and tier
func (r *TenantRepository) Update(ctx context.Context, t *tenant.Tenant) error {
	now := time.Now()
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE tenants SET name = $2, slug = $3, price_tier_id = $4, updated_at = $5
		WHERE id = $1
	`, t.ID, t.Name, t.Slug, t.PriceTierID, now)
	if err != nil {
		if isUniqueViolation(err) {
			return tenant.ErrSlugTaken
		}
		return fmt.Errorf("failed to update tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tenant.ErrTenantNotFound
	}
	t.UpdatedAt = now
	return nil
}

// Delete removes the tenant and everything scoped to it in one transaction.
// Group memberships, invitations and tenant-scoped entities go with it via
// the cascading foreign keys; memberships are deleted explicitly so callers
// observe the same transaction boundary as a single-member removal.
func (r *TenantRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		DELETE FROM group_members
		WHERE group_id IN (SELECT id FROM groups WHERE tenant_id = $1)
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete group memberships: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM tenant_members WHERE tenant_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete memberships: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM tenants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tenant.ErrTenantNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// List returns tenants ordered by creation time
func (r *TenantRepository) List(ctx context.Context, limit, offset int) ([]*tenant.Tenant, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, name, slug, price_tier_id, created_at, updated_at
		FROM tenants ORDER BY created_at LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*tenant.Tenant
	for rows.Next() {
		var t tenant.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.PriceTierID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, &t)
	}
	return tenants, rows.Err()
}
