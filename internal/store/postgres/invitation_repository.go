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
	"github.com/orgcore/orgcore/internal/invitation"
)

// InvitationRepository implements invitation.Repository
type InvitationRepository struct {
	db *DB
}

// NewInvitationRepository creates a new invitation repository
func NewInvitationRepository(db *DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

// Create persists an invitation
func (r *InvitationRepository) Create(ctx context.Context, inv *invitation.Invitation) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO invitations (id, tenant_id, email, role, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, inv.ID, inv.TenantID, inv.Email, inv.Role, inv.Token, inv.ExpiresAt, inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert invitation: %w", err)
	}
	return nil
}

// Redeem atomically consumes an invitation. The row is locked, checked
// against its expiry, and deleted; a second concurrent redeemer finds no
// row and gets ErrInvitationInvalid. Expired rows are left in place for
// the cleanup job rather than deleted here.
func (r *InvitationRepository) Redeem(ctx context.Context, tenantID, token string, now time.Time) (*invitation.Invitation, error) {
	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var inv invitation.Invitation
	err = tx.QueryRow(ctx, `
		SELECT id, tenant_id, email, role, token, expires_at, created_at
		FROM invitations WHERE tenant_id = $1 AND token = $2
		FOR UPDATE
	`, tenantID, token).Scan(
		&inv.ID, &inv.TenantID, &inv.Email, &inv.Role, &inv.Token, &inv.ExpiresAt, &inv.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, invitation.ErrInvitationInvalid
		}
		return nil, fmt.Errorf("failed to query invitation: %w", err)
	}

	if inv.IsExpired(now) {
		return nil, invitation.ErrInvitationExpired
	}

	if _, err := tx.Exec(ctx, `DELETE FROM invitations WHERE id = $1`, inv.ID); err != nil {
		return nil, fmt.Errorf("failed to delete invitation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &inv, nil
}

// GetByToken retrieves an invitation by (tenantID, token)
func (r *InvitationRepository) GetByToken(ctx context.Context, tenantID, token string) (*invitation.Invitation, error) {
	var inv invitation.Invitation
	err := r.db.pool.QueryRow(ctx, `
		SELECT id, tenant_id, email, role, token, expires_at, created_at
		FROM invitations WHERE tenant_id = $1 AND token = $2
	`, tenantID, token).Scan(
		&inv.ID, &inv.TenantID, &inv.Email, &inv.Role, &inv.Token, &inv.ExpiresAt, &inv.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, invitation.ErrInvitationInvalid
		}
		return nil, fmt.Errorf("failed to query invitation: %w", err)
	}
	return &inv, nil
}

// Delete revokes an invitation by ID
func (r *InvitationRepository) Delete(ctx context.Context, tenantID, id string) error {
	tag, err := r.db.pool.Exec(ctx, `
		DELETE FROM invitations WHERE tenant_id = $1 AND id = $2
	`, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete invitation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return invitation.ErrInvitationInvalid
	}
	return nil
}

// ListByTenant returns a tenant's pending invitations
func (r *InvitationRepository) ListByTenant(ctx context.Context, tenantID string) ([]*invitation.Invitation, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, tenant_id, email, role, token, expires_at, created_at
		FROM invitations WHERE tenant_id = $1 ORDER BY created_at
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invitations: %w", err)
	}
	defer rows.Close()

	var invitations []*invitation.Invitation
	for rows.Next() {
		var inv invitation.Invitation
		if err := rows.Scan(&inv.ID, &inv.TenantID, &inv.Email, &inv.Role, &inv.Token, &inv.ExpiresAt, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, &inv)
	}
	return invitations, rows.Err()
}

// DeleteExpired prunes invitations past their expiry
func (r *InvitationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.pool.Exec(ctx, `DELETE FROM invitations WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired invitations: %w", err)
	}
	return tag.RowsAffected(), nil
}
