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

package membership_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgcore/orgcore/internal/audit"
	"github.com/orgcore/orgcore/internal/authz"
	"github.com/orgcore/orgcore/internal/invitation"
	"github.com/orgcore/orgcore/internal/membership"
	"github.com/orgcore/orgcore/internal/quota"
)

// memMembershipRepo implements membership.Repository in memory, enforcing a
// per-tenant user limit the way the storage layer does.
type memMembershipRepo struct {
	rows      map[string]*membership.Membership
	userLimit int
}

func newMemMembershipRepo(userLimit int) *memMembershipRepo {
	return &memMembershipRepo{rows: map[string]*membership.Membership{}, userLimit: userLimit}
}

func key(tenantID, userID string) string { return tenantID + "/" + userID }

func (m *memMembershipRepo) countTenant(tenantID string) int {
	n := 0
	for _, row := range m.rows {
		if row.TenantID == tenantID {
			n++
		}
	}
	return n
}

func (m *memMembershipRepo) Create(ctx context.Context, row *membership.Membership) error {
	if _, exists := m.rows[key(row.TenantID, row.UserID)]; exists {
		return membership.ErrDuplicateMembership
	}
	if !quota.Check(m.countTenant(row.TenantID), m.userLimit) {
		return quota.Exceeded(quota.KindUser, m.userLimit)
	}
	cp := *row
	m.rows[key(row.TenantID, row.UserID)] = &cp
	return nil
}

func (m *memMembershipRepo) Get(ctx context.Context, tenantID, userID string) (*membership.Membership, error) {
	row, ok := m.rows[key(tenantID, userID)]
	if !ok {
		return nil, membership.ErrMembershipNotFound
	}
	return row, nil
}

func (m *memMembershipRepo) ListByTenant(ctx context.Context, tenantID string) ([]*membership.Membership, error) {
	var out []*membership.Membership
	for _, row := range m.rows {
		if row.TenantID == tenantID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memMembershipRepo) ListByUser(ctx context.Context, userID string) ([]*membership.Membership, error) {
	var out []*membership.Membership
	for _, row := range m.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memMembershipRepo) Remove(ctx context.Context, tenantID, userID string) error {
	k := key(tenantID, userID)
	if _, ok := m.rows[k]; !ok {
		return membership.ErrMembershipNotFound
	}
	delete(m.rows, k)
	return nil
}

// repoFacts adapts the in-memory repo to authz.Facts
type repoFacts struct {
	repo *memMembershipRepo
}

func (f *repoFacts) Role(ctx context.Context, tenantID, userID string) (string, bool, error) {
	row, ok := f.repo.rows[key(tenantID, userID)]
	if !ok {
		return "", false, nil
	}
	return string(row.Role), true, nil
}

func (f *repoFacts) IsServiceAdmin(ctx context.Context, serviceID, userID string) (bool, error) {
	return false, nil
}

// invMemRepo is a minimal in-memory invitation.Repository
type invMemRepo struct {
	byID map[string]*invitation.Invitation
}

func (m *invMemRepo) Create(ctx context.Context, inv *invitation.Invitation) error {
	cp := *inv
	m.byID[inv.ID] = &cp
	return nil
}

func (m *invMemRepo) Redeem(ctx context.Context, tenantID, token string, now time.Time) (*invitation.Invitation, error) {
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

func (m *invMemRepo) GetByToken(ctx context.Context, tenantID, token string) (*invitation.Invitation, error) {
	return nil, invitation.ErrInvitationInvalid
}

func (m *invMemRepo) Delete(ctx context.Context, tenantID, id string) error {
	delete(m.byID, id)
	return nil
}

func (m *invMemRepo) ListByTenant(ctx context.Context, tenantID string) ([]*invitation.Invitation, error) {
	return nil, nil
}

func (m *invMemRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

type fixture struct {
	repo        *memMembershipRepo
	invitations *invitation.Service
	members     *membership.Service
}

func newFixture(userLimit int) *fixture {
	repo := newMemMembershipRepo(userLimit)
	auditLogger := audit.NewSlogLogger()
	invitations := invitation.NewService(&invMemRepo{byID: map[string]*invitation.Invitation{}}, auditLogger, time.Hour)
	engine := authz.NewEngine(&repoFacts{repo: repo})
	members := membership.NewService(repo, invitations, engine, auditLogger)
	return &fixture{repo: repo, invitations: invitations, members: members}
}

func (f *fixture) seedOwner(t *testing.T, tenantID, userID string) {
	t.Helper()
	require.NoError(t, f.repo.Create(context.Background(), &membership.Membership{
		TenantID: tenantID, UserID: userID, Role: membership.RoleOwner, CreatedAt: time.Now(),
	}))
}

// TestPurpose: Validates tokenless joins default to the member role and reject duplicates.
// Scope: Unit Test
// Expected: Open join assigns member; a repeated join fails ErrDuplicateMembership without consuming quota.
// Test Case ID: MEM-02
func TestMembership_Join_OpenDefaultsToMember(t *testing.T) {
	f := newFixture(10)
	ctx := context.Background()

	m, err := f.members.Join(ctx, "tenant-1", "user-1", "")
	require.NoError(t, err)
	assert.Equal(t, membership.RoleMember, m.Role)

	_, err = f.members.Join(ctx, "tenant-1", "user-1", "")
	assert.ErrorIs(t, err, membership.ErrDuplicateMembership)
}

// TestPurpose: Validates a join with a token redeems the invitation and applies its role.
// Scope: Unit Test
// Expected: The invited role lands on the membership; an existing member does not consume the token.
// Test Case ID: MEM-03
func TestMembership_Join_WithInvitationToken(t *testing.T) {
	f := newFixture(10)
	ctx := context.Background()

	inv, err := f.invitations.Issue(ctx, "tenant-1", "vip@example.com", "owner")
	require.NoError(t, err)

	m, err := f.members.Join(ctx, "tenant-1", "user-1", inv.Token)
	require.NoError(t, err)
	assert.Equal(t, membership.RoleOwner, m.Role)

	// A second user cannot reuse the consumed token.
	_, err = f.members.Join(ctx, "tenant-1", "user-2", inv.Token)
	assert.ErrorIs(t, err, invitation.ErrInvitationInvalid)
}

// TestPurpose: Validates an existing member's duplicate join leaves the token unconsumed.
// Scope: Unit Test
// Expected: The duplicate check runs before redemption, so the token stays valid for someone else.
// Test Case ID: MEM-04
func TestMembership_Join_DuplicateDoesNotConsumeToken(t *testing.T) {
	f := newFixture(10)
	ctx := context.Background()

	_, err := f.members.Join(ctx, "tenant-1", "user-1", "")
	require.NoError(t, err)

	inv, err := f.invitations.Issue(ctx, "tenant-1", "vip@example.com", "owner")
	require.NoError(t, err)

	_, err = f.members.Join(ctx, "tenant-1", "user-1", inv.Token)
	assert.ErrorIs(t, err, membership.ErrDuplicateMembership)

	// The token still works for a different principal.
	m, err := f.members.Join(ctx, "tenant-1", "user-2", inv.Token)
	require.NoError(t, err)
	assert.Equal(t, membership.RoleOwner, m.Role)
}

// TestPurpose: Validates joins respect the tenant's user quota.
// Scope: Unit Test
// Expected: A join into a full tenant fails with a quota error carrying the user kind.
// Test Case ID: MEM-05
func TestMembership_Join_QuotaBound(t *testing.T) {
	f := newFixture(1)
	ctx := context.Background()

	_, err := f.members.Join(ctx, "tenant-1", "user-1", "")
	require.NoError(t, err)

	_, err = f.members.Join(ctx, "tenant-1", "user-2", "")
	require.Error(t, err)
	qe, ok := quota.AsError(err)
	require.True(t, ok, "expected quota error, got %v", err)
	assert.Equal(t, quota.KindUser, qe.Kind)
}

// TestPurpose: Validates member management is owner-only through the service.
// Scope: Unit Test
// Security: Membership writes require the owner role
// Permissions: owner vs member
// Expected: Owner adds and removes members; a member is denied both; invalid roles are rejected up front.
// Test Case ID: MEM-06
func TestMembership_AddRemove_OwnerOnly(t *testing.T) {
	f := newFixture(10)
	ctx := context.Background()
	f.seedOwner(t, "tenant-1", "owner-1")

	ownerActor := authz.Principal{UserID: "owner-1"}
	_, err := f.members.AddMember(ctx, ownerActor, "tenant-1", "user-1", membership.RoleMember)
	require.NoError(t, err)

	memberActor := authz.Principal{UserID: "user-1"}
	_, err = f.members.AddMember(ctx, memberActor, "tenant-1", "user-2", membership.RoleMember)
	assert.ErrorIs(t, err, authz.ErrDenied)

	err = f.members.Remove(ctx, memberActor, "tenant-1", "owner-1")
	assert.ErrorIs(t, err, authz.ErrDenied)

	_, err = f.members.AddMember(ctx, ownerActor, "tenant-1", "user-3", membership.Role("superuser"))
	assert.ErrorIs(t, err, membership.ErrInvalidRole)

	err = f.members.Remove(ctx, ownerActor, "tenant-1", "user-1")
	require.NoError(t, err)

	_, ok, err := f.members.RoleOf(ctx, "tenant-1", "user-1")
	require.NoError(t, err)
	assert.False(t, ok, "removed member must have no role")
}
