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

package invitation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgcore/orgcore/internal/audit"
	"github.com/orgcore/orgcore/internal/invitation"
)

// memRepo implements invitation.Repository in memory with single-use
// redemption semantics matching the storage contract.
type memRepo struct {
	byID map[string]*invitation.Invitation
}

func newMemRepo() *memRepo {
	return &memRepo{byID: map[string]*invitation.Invitation{}}
}

func (m *memRepo) Create(ctx context.Context, inv *invitation.Invitation) error {
	cp := *inv
	m.byID[inv.ID] = &cp
	return nil
}

func (m *memRepo) Redeem(ctx context.Context, tenantID, token string, now time.Time) (*invitation.Invitation, error) {
	for _, inv := range m.byID {
		if inv.TenantID == tenantID && inv.Token == token {
			if inv.IsExpired(now) {
				return nil, invitation.ErrInvitationExpired
			}
			delete(m.byID, inv.ID)
			return inv, nil
		}
	}
	return nil, invitation.ErrInvitationInvalid
}

func (m *memRepo) GetByToken(ctx context.Context, tenantID, token string) (*invitation.Invitation, error) {
	for _, inv := range m.byID {
		if inv.TenantID == tenantID && inv.Token == token {
			return inv, nil
		}
	}
	return nil, invitation.ErrInvitationInvalid
}

func (m *memRepo) Delete(ctx context.Context, tenantID, id string) error {
	inv, ok := m.byID[id]
	if !ok || inv.TenantID != tenantID {
		return invitation.ErrInvitationInvalid
	}
	delete(m.byID, id)
	return nil
}

func (m *memRepo) ListByTenant(ctx context.Context, tenantID string) ([]*invitation.Invitation, error) {
	var out []*invitation.Invitation
	for _, inv := range m.byID {
		if inv.TenantID == tenantID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (m *memRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for id, inv := range m.byID {
		if inv.IsExpired(now) {
			delete(m.byID, id)
			n++
		}
	}
	return n, nil
}

func newService(repo invitation.Repository, ttl time.Duration) *invitation.Service {
	return invitation.NewService(repo, audit.NewSlogLogger(), ttl)
}

// TestPurpose: Validates issuing binds email, role, token and expiry window.
// Scope: Unit Test
// Expected: Issue returns an invitation with a non-empty token expiring one TTL from now.
// Test Case ID: INV-03
func TestInvitation_Issue_SetsTokenAndExpiry(t *testing.T) {
	svc := newService(newMemRepo(), 48*time.Hour)
	ctx := context.Background()

	inv, err := svc.Issue(ctx, "tenant-1", "new@example.com", "member")
	require.NoError(t, err)
	assert.NotEmpty(t, inv.Token)
	assert.Equal(t, "member", inv.Role)
	assert.Equal(t, "tenant-1", inv.TenantID)
	assert.WithinDuration(t, time.Now().Add(48*time.Hour), inv.ExpiresAt, 5*time.Second)

	// Tokens are unique across invitations.
	inv2, err := svc.Issue(ctx, "tenant-1", "other@example.com", "member")
	require.NoError(t, err)
	assert.NotEqual(t, inv.Token, inv2.Token)
}

// TestPurpose: Validates issuing rejects blank inputs and unknown roles.
// Scope: Unit Test
// Expected: Empty tenant, empty email and a role outside owner/member all fail.
// Test Case ID: INV-04
func TestInvitation_Issue_RejectsInvalidInput(t *testing.T) {
	svc := newService(newMemRepo(), 0)
	ctx := context.Background()

	_, err := svc.Issue(ctx, "", "a@example.com", "member")
	assert.Error(t, err)

	_, err = svc.Issue(ctx, "tenant-1", "", "member")
	assert.Error(t, err)

	_, err = svc.Issue(ctx, "tenant-1", "a@example.com", "superuser")
	assert.Error(t, err)
}

// TestPurpose: Validates redemption is single-use and returns the invited role.
// Scope: Unit Test
// Security: A leaked redeemed token grants nothing
// Expected: First redemption returns the role; the second fails ErrInvitationInvalid.
// Test Case ID: INV-05
func TestInvitation_Redeem_SingleUse(t *testing.T) {
	svc := newService(newMemRepo(), time.Hour)
	ctx := context.Background()

	inv, err := svc.Issue(ctx, "tenant-1", "new@example.com", "owner")
	require.NoError(t, err)

	role, err := svc.Redeem(ctx, "tenant-1", inv.Token, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "owner", role)

	_, err = svc.Redeem(ctx, "tenant-1", inv.Token, "user-2")
	assert.ErrorIs(t, err, invitation.ErrInvitationInvalid)
}

// TestPurpose: Validates a token issued for one tenant cannot be redeemed in another.
// Scope: Unit Test
// Security: Invitation tokens are tenant-scoped
// Expected: Redemption under a different tenant fails and leaves the token intact.
// Test Case ID: INV-06
func TestInvitation_Redeem_TenantScoped(t *testing.T) {
	svc := newService(newMemRepo(), time.Hour)
	ctx := context.Background()

	inv, err := svc.Issue(ctx, "tenant-1", "new@example.com", "member")
	require.NoError(t, err)

	_, err = svc.Redeem(ctx, "tenant-2", inv.Token, "user-1")
	assert.ErrorIs(t, err, invitation.ErrInvitationInvalid)

	// The original tenant can still redeem it.
	role, err := svc.Redeem(ctx, "tenant-1", inv.Token, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "member", role)
}

// TestPurpose: Validates expired invitations fail distinctly and fall to the pruner.
// Scope: Unit Test
// Expected: Redemption past expiry returns ErrInvitationExpired; PruneExpired removes the row.
// Test Case ID: INV-07
func TestInvitation_Redeem_Expired(t *testing.T) {
	repo := newMemRepo()
	svc := newService(repo, time.Hour)
	ctx := context.Background()

	inv, err := svc.Issue(ctx, "tenant-1", "late@example.com", "member")
	require.NoError(t, err)

	// Age the row past its expiry.
	repo.byID[inv.ID].ExpiresAt = time.Now().Add(-time.Minute)

	_, err = svc.Redeem(ctx, "tenant-1", inv.Token, "user-1")
	assert.ErrorIs(t, err, invitation.ErrInvitationExpired)

	pruned, err := svc.PruneExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	pending, err := svc.ListByTenant(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

// TestPurpose: Validates revocation removes a pending invitation before redemption.
// Scope: Unit Test
// Expected: A revoked token fails redemption as invalid.
// Test Case ID: INV-08
func TestInvitation_Revoke(t *testing.T) {
	svc := newService(newMemRepo(), time.Hour)
	ctx := context.Background()

	inv, err := svc.Issue(ctx, "tenant-1", "new@example.com", "member")
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, "tenant-1", inv.ID))

	_, err = svc.Redeem(ctx, "tenant-1", inv.Token, "user-1")
	assert.ErrorIs(t, err, invitation.ErrInvitationInvalid)
}
