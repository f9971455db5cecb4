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
	"github.com/orgcore/orgcore/internal/quota"
)

// MembershipRepository implements membership.Repository
type MembershipRepository struct {
	db *DB
}

// NewMembershipRepository creates a new membership repository
func NewMembershipRepository(db *DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// insertMembership runs the quota check and the insert inside the caller's
// transaction. Shared with tenant creation, where the owner membership is
// written in the same transaction as the tenant row.
func insertMembership(ctx context.Context, tx pgx.Tx, m *membership.Membership) error {
	if err := checkQuota(ctx, tx, m.TenantID, quota.KindUser); err != nil {
		return err
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO tenant_members (tenant_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4)
	`, m.TenantID, m.UserID, m.Role, m.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return membership.ErrDuplicateMembership
		}
		return fmt.Errorf("failed to insert membership: %w", err)
	}
	return nil
}

// Create inserts a membership, quota-checked against the tenant's tier user
// limit in the same transaction.
func (r *MembershipRepository) Create(ctx context.Context, m *membership.Membership) error {
	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	if err := insertMembership(ctx, tx, m); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Get retrieves the membership for (tenantID, userID)
func (r *MembershipRepository) Get(ctx context.Context, tenantID, userID string) (*membership.Membership, error) {
	var m membership.Membership
	err := r.db.pool.QueryRow(ctx, `
		SELECT tenant_id, user_id, role, created_at
		FROM tenant_members WHERE tenant_id = $1 AND user_id = $2
	`, tenantID, userID).Scan(&m.TenantID, &m.UserID, &m.Role, &m.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, membership.ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to query membership: %w", err)
	}
	return &m, nil
}

// ListByTenant returns all memberships of a tenant
func (r *MembershipRepository) ListByTenant(ctx context.Context, tenantID string) ([]*membership.Membership, error) {
	return r.list(ctx, `
		SELECT tenant_id, user_id, role, created_at
		FROM tenant_members WHERE tenant_id = $1 ORDER BY created_at
	`, tenantID)
}

// ListByUser returns all memberships of a user across tenants
func (r *MembershipRepository) ListByUser(ctx context.Context, userID string) ([]*membership.Membership, error) {
	return r.list(ctx, `
		SELECT tenant_id, user_id, role, created_at
		FROM tenant_members WHERE user_id = $1 ORDER BY created_at
	`, userID)
}

func (r *MembershipRepository) list(ctx context.Context, query, arg string) ([]*membership.Membership, error) {
	rows, err := r.db.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query memberships: %w", err)
	}
	defer rows.Close()

	var members []*membership.Membership
	for rows.Next() {
		var m membership.Membership
		if err := rows.Scan(&m.TenantID, &m.UserID, &m.Role, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		members = append(members, &m)
	}
	return members, rows.Err()
}

// Remove deletes the membership and the principal's group-membership rows
// within the tenant in one transaction.
func (r *MembershipRepository) Remove(ctx context.Context, tenantID, userID string) error {
	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		DELETE FROM group_members
		WHERE user_id = $2
		  AND group_id IN (SELECT id FROM groups WHERE tenant_id = $1)
	`, tenantID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete group memberships: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		DELETE FROM tenant_members WHERE tenant_id = $1 AND user_id = $2
	`, tenantID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return membership.ErrMembershipNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
