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
	"github.com/orgcore/orgcore/internal/group"
	"github.com/orgcore/orgcore/internal/quota"
)

// GroupRepository implements group.Repository
type GroupRepository struct {
	db *DB
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(db *DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// Create inserts a group, quota-checked against the tenant's tier group
// limit in the same transaction.
func (r *GroupRepository) Create(ctx context.Context, g *group.Group) error {
	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := checkQuota(ctx, tx, g.TenantID, quota.KindGroup); err != nil {
		return err
	}

	now := time.Now()
	_, err = tx.Exec(ctx, `
		INSERT INTO groups (id, tenant_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, g.ID, g.TenantID, g.Name, g.Description, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	g.CreatedAt = now
	g.UpdatedAt = now
	return nil
}

// GetByID retrieves a group scoped to a tenant
func (r *GroupRepository) GetByID(ctx context.Context, tenantID, id string) (*group.Group, error) {
	var g group.Group
	err := r.db.pool.QueryRow(ctx, `
		SELECT id, tenant_id, name, description, created_at, updated_at
		FROM groups WHERE tenant_id = $1 AND id = $2
	`, tenantID, id).Scan(&g.ID, &g.TenantID, &g.Name, &g.Description, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, group.ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to query group: %w", err)
	}
	return &g, nil
}

// ListByTenant returns a tenant's groups
func (r *GroupRepository) ListByTenant(ctx context.Context, tenantID string) ([]*group.Group, error) {
	return r.list(ctx, `
		SELECT id, tenant_id, name, description, created_at, updated_at
		FROM groups WHERE tenant_id = $1 ORDER BY created_at
	`, tenantID)
}

// ListUserGroups returns the groups within a tenant the user belongs to
func (r *GroupRepository) ListUserGroups(ctx context.Context, tenantID, userID string) ([]*group.Group, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT g.id, g.tenant_id, g.name, g.description, g.created_at, g.updated_at
		FROM groups g
		JOIN group_members gm ON gm.group_id = g.id
		WHERE g.tenant_id = $1 AND gm.user_id = $2
		ORDER BY g.created_at
	`, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user groups: %w", err)
	}
	defer rows.Close()
	return scanGroups(rows)
}

func (r *GroupRepository) list(ctx context.Context, query string, args ...any) ([]*group.Group, error) {
	rows, err := r.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()
	return scanGroups(rows)
}

func scanGroups(rows pgx.Rows) ([]*group.Group, error) {
	var groups []*group.Group
	for rows.Next() {
		var g group.Group
		if err := rows.Scan(&g.ID, &g.TenantID, &g.Name, &g.Description, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, &g)
	}
	return groups, rows.Err()
}

// Update updates a group's name and description
func (r *GroupRepository) Update(ctx context.Context, g *group.Group) error {
	now := time.Now()
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE groups SET name = $3, description = $4, updated_at = $5
		WHERE tenant_id = $1 AND id = $2
	`, g.TenantID, g.ID, g.Name, g.Description, now)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return group.ErrGroupNotFound
	}
	g.UpdatedAt = now
	return nil
}

// Delete removes a group and its membership rows
func (r *GroupRepository) Delete(ctx context.Context, tenantID, id string) error {
	tag, err := r.db.pool.Exec(ctx, `
		DELETE FROM groups WHERE tenant_id = $1 AND id = $2
	`, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return group.ErrGroupNotFound
	}
	return nil
}

// AddMember adds a principal to a group
func (r *GroupRepository) AddMember(ctx context.Context, m *group.Member) error {
	if m.AddedAt.IsZero() {
		m.AddedAt = time.Now()
	}
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO group_members (group_id, user_id, added_at)
		VALUES ($1, $2, $3)
	`, m.GroupID, m.UserID, m.AddedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return group.ErrDuplicateGroupMember
		}
		return fmt.Errorf("failed to insert group member: %w", err)
	}
	return nil
}

// RemoveMember removes a principal from a group
func (r *GroupRepository) RemoveMember(ctx context.Context, groupID, userID string) error {
	tag, err := r.db.pool.Exec(ctx, `
		DELETE FROM group_members WHERE group_id = $1 AND user_id = $2
	`, groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete group member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return group.ErrGroupMemberNotFound
	}
	return nil
}

// ListMembers returns a group's members
func (r *GroupRepository) ListMembers(ctx context.Context, groupID string) ([]*group.Member, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT group_id, user_id, added_at
		FROM group_members WHERE group_id = $1 ORDER BY added_at
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query group members: %w", err)
	}
	defer rows.Close()

	var members []*group.Member
	for rows.Next() {
		var m group.Member
		if err := rows.Scan(&m.GroupID, &m.UserID, &m.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		members = append(members, &m)
	}
	return members, rows.Err()
}
