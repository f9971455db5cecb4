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

// ServiceRepository implements svc.Repository. Services are not
// quota-bound; the per-service admin registry lives here too.
type ServiceRepository struct {
	db *DB
}

// NewServiceRepository creates a new service repository
func NewServiceRepository(db *DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

// Create inserts a service
func (r *ServiceRepository) Create(ctx context.Context, s *svc.Service) error {
	now := time.Now()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO services (id, tenant_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, s.ID, s.TenantID, s.Name, s.Description, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert service: %w", err)
	}
	s.CreatedAt = now
	s.UpdatedAt = now
	return nil
}

// GetByID retrieves a service scoped to a tenant
func (r *ServiceRepository) GetByID(ctx context.Context, tenantID, id string) (*svc.Service, error) {
	var s svc.Service
	err := r.db.pool.QueryRow(ctx, `
		SELECT id, tenant_id, name, description, created_at, updated_at
		FROM services WHERE tenant_id = $1 AND id = $2
	`, tenantID, id).Scan(&s.ID, &s.TenantID, &s.Name, &s.Description, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, svc.ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to query service: %w", err)
	}
	return &s, nil
}

// ListByTenant returns a tenant's services
func (r *ServiceRepository) ListByTenant(ctx context.Context, tenantID string) ([]*svc.Service, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, tenant_id, name, description, created_at, updated_at
		FROM services WHERE tenant_id = $1 ORDER BY created_at
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query services: %w", err)
	}
	defer rows.Close()

	var services []*svc.Service
	for rows.Next() {
		var s svc.Service
		if err := rows.Scan(&s.ID, &s.TenantID, &s.Name, &s.Description, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		services = append(services, &s)
	}
	return services, rows.Err()
}

// Update updates a service
func (r *ServiceRepository) Update(ctx context.Context, s *svc.Service) error {
	now := time.Now()
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE services SET name = $3, description = $4, updated_at = $5
		WHERE tenant_id = $1 AND id = $2
	`, s.TenantID, s.ID, s.Name, s.Description, now)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return svc.ErrServiceNotFound
	}
	s.UpdatedAt = now
	return nil
}

// Delete removes a service and its sub-resources
func (r *ServiceRepository) Delete(ctx context.Context, tenantID, id string) error {
	tag, err := r.db.pool.Exec(ctx, `
		DELETE FROM services WHERE tenant_id = $1 AND id = $2
	`, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return svc.ErrServiceNotFound
	}
	return nil
}

// AddAdmin registers a principal as admin of a service
func (r *ServiceRepository) AddAdmin(ctx context.Context, a *svc.Admin) error {
	if a.AddedAt.IsZero() {
		a.AddedAt = time.Now()
	}
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO service_admins (service_id, user_id, added_at)
		VALUES ($1, $2, $3)
	`, a.ServiceID, a.UserID, a.AddedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return svc.ErrDuplicateAdmin
		}
		return fmt.Errorf("failed to insert service admin: %w", err)
	}
	return nil
}

// RemoveAdmin removes a principal's admin registration
func (r *ServiceRepository) RemoveAdmin(ctx context.Context, serviceID, userID string) error {
	_, err := r.db.pool.Exec(ctx, `
		DELETE FROM service_admins WHERE service_id = $1 AND user_id = $2
	`, serviceID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete service admin: %w", err)
	}
	return nil
}

// IsAdmin reports whether a principal administers a service
func (r *ServiceRepository) IsAdmin(ctx context.Context, serviceID, userID string) (bool, error) {
	var exists bool
	err := r.db.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM service_admins WHERE service_id = $1 AND user_id = $2)
	`, serviceID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to query service admin: %w", err)
	}
	return exists, nil
}

// ListAdmins returns a service's admins
func (r *ServiceRepository) ListAdmins(ctx context.Context, serviceID string) ([]*svc.Admin, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT service_id, user_id, added_at
		FROM service_admins WHERE service_id = $1 ORDER BY added_at
	`, serviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query service admins: %w", err)
	}
	defer rows.Close()

	var admins []*svc.Admin
	for rows.Next() {
		var a svc.Admin
		if err := rows.Scan(&a.ServiceID, &a.UserID, &a.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan service admin: %w", err)
		}
		admins = append(admins, &a)
	}
	return admins, rows.Err()
}
