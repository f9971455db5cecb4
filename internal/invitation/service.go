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
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/orgcore/orgcore/internal/audit"
	"github.com/orgcore/orgcore/internal/authz"
	"github.com/orgcore/orgcore/internal/id"
)

// DefaultTTL is the default validity window for issued invitations.
const DefaultTTL = 7 * 24 * time.Hour

const tokenBytes = 32

// Service issues and redeems single-use invitation tokens.
type Service struct {
	repo        Repository
	auditLogger audit.Logger
	ttl         time.Duration
	now         func() time.Time
}

// NewService creates a new invitation service. A non-positive ttl falls back
// to DefaultTTL.
func NewService(repo Repository, auditLogger audit.Logger, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		repo:        repo,
		auditLogger: auditLogger,
		ttl:         ttl,
		now:         time.Now,
	}
}

// Issue generates a unique token binding an email to a tenant and role and
// persists it with an expiry. The email is not verified to be reachable.
func (s *Service) Issue(ctx context.Context, tenantID, email, role string) (*Invitation, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant id is required")
	}
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if role != authz.RoleOwner && role != authz.RoleMember {
		return nil, fmt.Errorf("invalid role: %s", role)
	}

	token, err := newToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := s.now()
	inv := &Invitation{
		ID:        id.NewUUIDv7(),
		TenantID:  tenantID,
		Email:     email,
		Role:      role,
		Token:     token,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}

	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeInvitationIssued,
		TenantID: tenantID,
		Resource: inv.ID,
		Metadata: map[string]any{audit.AttrRole: role, "email": email},
	})

	return inv, nil
}

// Redeem consumes a token for a tenant and returns the invited role. The row
// is deleted on success, so a second redemption fails ErrInvitationInvalid.
// Callers must separately short-circuit when the principal already holds a
// membership; redemption knows nothing about memberships.
func (s *Service) Redeem(ctx context.Context, tenantID, token, userID string) (string, error) {
	inv, err := s.repo.Redeem(ctx, tenantID, token, s.now())
	if err != nil {
		return "", err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeInvitationRedeemed,
		TenantID: tenantID,
		ActorID:  userID,
		Resource: inv.ID,
		Metadata: map[string]any{audit.AttrRole: inv.Role},
	})

	return inv.Role, nil
}

// Revoke deletes a pending invitation.
func (s *Service) Revoke(ctx context.Context, tenantID, invitationID string) error {
	if err := s.repo.Delete(ctx, tenantID, invitationID); err != nil {
		return err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeInvitationRevoked,
		TenantID: tenantID,
		Resource: invitationID,
	})

	return nil
}

// ListByTenant returns the tenant's pending invitations.
func (s *Service) ListByTenant(ctx context.Context, tenantID string) ([]*Invitation, error) {
	return s.repo.ListByTenant(ctx, tenantID)
}

// PruneExpired deletes invitations past their expiry.
func (s *Service) PruneExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now())
}

func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
