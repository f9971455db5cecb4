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
	"github.com/orgcore/orgcore/internal/resource"
)

// ResourceRepository implements resource.Repository. Resources are not
// quota-bound, so inserts are plain single statements.
type ResourceRepository struct {
	db *DB
}

// NewResourceRepository creates a new resource repository
func NewResourceRepository(db *DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// Create inserts a resource
func (r *ResourceRepository) Create(ctx context.Context, res *resource.Resource) error {
	now := time.Now()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO resources (id, tenant_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, res.ID, res.TenantID, res.Name, res.Description, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert resource: %w", err)
	}
	res.CreatedAt = now
	res.UpdatedAt = now
	return nil
}

// GetByID retrieves a resource scoped to a tenant
func (r *ResourceRepository) GetByID(ctx context.Context, tenantID, id string) (*resource.Resource, error) {
	var res resource.Resource
	err := r.db.pool.QueryRow(ctx, `
		SELECT id, tenant_id, name, description, created_at, updated_at
		FROM resources WHERE tenant_id = $1 AND id = $2
	`, tenantID, id).Scan(&res.ID, &res.TenantID, &res.Name, &res.Description, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, resource.ErrResourceNotFound
		}
		return nil, fmt.Errorf("failed to query resource: %w", err)
	}
	return &res, nil
}

// ListByTenant returns a tenant's resources
func (r *ResourceRepository) ListByTenant(ctx context.Context, tenantID string) ([]*resource.Resource, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, tenant_id, name, description, created_at, updated_at
		FROM resources WHERE tenant_id = $1 ORDER BY created_at
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query resources: %w", err)
	}
	defer rows.Close()

	var resources []*resource.Resource
	for rows.Next() {
		var res resource.Resource
		if err := rows.Scan(&res.ID, &res.TenantID, &res.Name, &res.Description, &res.CreatedAt, &res.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}
		resources = append(resources, &res)
	}
	return resources, rows.Err()
}

// Update updates a resource
func (r *ResourceRepository) Update(ctx context.Context, res *resource.Resource) error {
	now := time.Now()
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE resources SET name = $3, description = $4, updated_at = $5
		WHERE tenant_id = $1 AND id = $2
	`, res.TenantID, res.ID, res.Name, res.Description, now)
	if err != nil {
		return fmt.Errorf("failed to update resource: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return resource.ErrResourceNotFound
	}
	res.UpdatedAt = now
	return nil
}

// Delete removes a resource
func (r *ResourceRepository) Delete(ctx context.Context, tenantID, id string) error {
	tag, err := r.db.pool.Exec(ctx, `
		DELETE FROM resources WHERE tenant_id = $1 AND id = $2
	`, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete resource: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return resource.ErrResourceNotFound
	}
	return nil
}
