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

package invitation

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	// ErrInvitationInvalid covers both "no such token" and "already
	// consumed": a second redemption finds no row and is indistinguishable
	// from a token that never existed.
	ErrInvitationInvalid = errors.New("invitation invalid")
	ErrInvitationExpired = errors.New("invitation expired")
)

// Invitation is a single-use, time-limited token binding an email to a
// tenant and a role. The row is deleted the moment it is redeemed.
type Invitation struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired reports whether the invitation is past its expiry.
func (i *Invitation) IsExpired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// Repository defines the interface for invitation storage. Token is unique
// across all tenants; lookups are still scoped by (tenant_id, token) so a
// token leaked across tenants is worthless.
type Repository interface {
	Create(ctx context.Context, inv *Invitation) error

	// Redeem atomically looks up (tenantID, token), verifies expiry
	// against now, and deletes the row. Returns ErrInvitationInvalid when
	// no row matches and ErrInvitationExpired when the row is past its
	// expiry. At most one concurrent caller can succeed.
	Redeem(ctx context.Context, tenantID, token string, now time.Time) (*Invitation, error)

	GetByToken(ctx context.Context, tenantID, token string) (*Invitation, error)
	Delete(ctx context.Context, tenantID, id string) error
	ListByTenant(ctx context.Context, tenantID string) ([]*Invitation, error)

	// DeleteExpired prunes rows past their expiry. Used by the cleanup job.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
