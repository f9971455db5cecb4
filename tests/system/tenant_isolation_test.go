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

// Package system provides integration tests that run against a real PostgreSQL database.
//
// Test Execution:
//
//	INTEGRATION_TEST=true go test -v ./tests/system/...
//
// Prerequisites:
//
//	docker compose up -d postgres
//
// Test Categories:
//   - TEN-*: Tenant isolation tests
//   - AUT-*: Authorization tests
//   - INV-*: Invitation flow tests
//   - QTA-*: Quota enforcement tests
package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgcore/orgcore/internal/audit"
	"github.com/orgcore/orgcore/internal/authz"
	"github.com/orgcore/orgcore/internal/directory"
	"github.com/orgcore/orgcore/internal/event"
	"github.com/orgcore/orgcore/internal/id"
	"github.com/orgcore/orgcore/internal/identity"
	"github.com/orgcore/orgcore/internal/invitation"
	"github.com/orgcore/orgcore/internal/membership"
	"github.com/orgcore/orgcore/internal/quota"
	"github.com/orgcore/orgcore/internal/store/postgres"
	"github.com/orgcore/orgcore/internal/tenant"
	"github.com/orgcore/orgcore/internal/tier"
)

// testDB is the shared database connection for integration tests
var testDB *postgres.DB

// TestMain sets up and tears down the test database connection
func TestMain(m *testing.M) {
	// Skip if not integration test
	if os.Getenv("INTEGRATION_TEST") != "true" {
		os.Exit(0)
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, postgres.Config{
		Host:         getEnvOrDefault("DB_HOST", "localhost"),
		Port:         getEnvOrDefault("DB_PORT", "5432"),
		User:         getEnvOrDefault("DB_USER", "orgcore"),
		Password:     getEnvOrDefault("DB_PASSWORD", "orgcore_dev_password"),
		Database:     getEnvOrDefault("DB_NAME", "orgcore"),
		SSLMode:      "disable",
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	})
	if err != nil {
		panic("failed to connect to test database: " + err.Error())
	}
	testDB = db

	if err := db.Migrate(ctx, postgres.InitialSchema); err != nil {
		panic("failed to apply schema: " + err.Error())
	}

	code := m.Run()
	db.Close()
	os.Exit(code)
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// env bundles the full service graph wired against the test database.
type env struct {
	identity    *identity.Service
	tenants     *tenant.Service
	members     *membership.Service
	invitations *invitation.Service
	directory   *directory.Service
	catalog     *tier.Catalog
}

func newEnv(t *testing.T) *env {
	t.Helper()
	auditLogger := audit.NewSlogLogger()

	userRepo := postgres.NewUserRepository(testDB)
	tenantRepo := postgres.NewTenantRepository(testDB)
	tierRepo := postgres.NewTierRepository(testDB)
	membershipRepo := postgres.NewMembershipRepository(testDB)
	invitationRepo := postgres.NewInvitationRepository(testDB)
	groupRepo := postgres.NewGroupRepository(testDB)
	eventRepo := postgres.NewEventRepository(testDB)
	resourceRepo := postgres.NewResourceRepository(testDB)
	serviceRepo := postgres.NewServiceRepository(testDB)
	serviceItemRepo := postgres.NewServiceItemRepository(testDB)

	catalog := tier.NewCatalog(tierRepo, nil, time.Minute)
	engine := authz.NewEngine(directory.NewFacts(membershipRepo, serviceRepo))
	enforcer := quota.NewEnforcer(catalog, postgres.NewQuotaCounter(testDB))

	hasher := identity.NewPasswordHasher(64*1024, 3, 4, 16, 32)
	identityService := identity.NewService(userRepo, hasher, auditLogger, 5, 15*time.Minute)
	invitationService := invitation.NewService(invitationRepo, auditLogger, 7*24*time.Hour)
	membershipService := membership.NewService(membershipRepo, invitationService, engine, auditLogger)
	tenantService := tenant.NewService(tenantRepo, catalog, engine, enforcer, auditLogger)
	directoryService := directory.NewService(
		groupRepo, eventRepo, resourceRepo, serviceRepo, serviceItemRepo,
		engine, auditLogger,
	)

	return &env{
		identity:    identityService,
		tenants:     tenantService,
		members:     membershipService,
		invitations: invitationService,
		directory:   directoryService,
		catalog:     catalog,
	}
}

// newUser signs up a fresh user with a unique email.
func (e *env) newUser(t *testing.T, label string) *identity.User {
	t.Helper()
	u, err := e.identity.SignUp(
		context.Background(),
		fmt.Sprintf("%s-%s@example.com", label, id.NewUUIDv7()[:8]),
		"correct-horse-battery",
		identity.Profile{FullName: label},
	)
	require.NoError(t, err)
	return u
}

// newTenant seeds a dedicated price tier and creates a tenant owned by the
// given user.
func (e *env) newTenant(t *testing.T, owner *identity.User, userLimit, groupLimit, eventLimit int) *tenant.Tenant {
	t.Helper()
	ctx := context.Background()

	tierID := id.NewUUIDv7()
	_, err := testDB.Pool().Exec(ctx, `
		INSERT INTO price_tiers (id, name, user_limit, group_limit, event_limit, price_monthly)
		VALUES ($1, $2, $3, $4, $5, 0)
	`, tierID, "tier-"+tierID, userLimit, groupLimit, eventLimit)
	require.NoError(t, err)

	tn, err := e.tenants.Create(ctx, authz.Principal{UserID: owner.ID},
		"Tenant "+id.NewUUIDv7()[:8], "t-"+id.NewUUIDv7()[:13], tierID)
	require.NoError(t, err)
	return tn
}

// =============================================================================
// TENANT ISOLATION TESTS
// =============================================================================

// TestPurpose: Validates cross-tenant isolation ensures users in Tenant A cannot access Tenant B resources.
// Scope: Integration Test
// Security: Multi-tenancy boundary enforcement (prevents cross-tenant access)
// Expected: A member of Tenant A is denied on Tenant B's groups regardless of role in A.
// Test Case ID: TEN-01
func TestTenant_Isolation_UserFromTenantACannotAccessTenantBResources(t *testing.T) {
	if testDB == nil {
		t.Skip("Integration test requires database (set INTEGRATION_TEST=true)")
	}

	ctx := context.Background()
	e := newEnv(t)

	ownerA := e.newUser(t, "owner-a")
	ownerB := e.newUser(t, "owner-b")
	tenantA := e.newTenant(t, ownerA, 10, 10, 10)
	tenantB := e.newTenant(t, ownerB, 10, 10, 10)
	require.NotEqual(t, tenantA.ID, tenantB.ID)

	actorA := authz.Principal{UserID: ownerA.ID}
	actorB := authz.Principal{UserID: ownerB.ID}

	gB, err := e.directory.CreateGroup(ctx, actorB, tenantB.ID, "B Internal", "")
	require.NoError(t, err, "TEN-01: owner B must be able to create a group in B")

	// Owner of A has no standing in B: the listing itself is denied.
	_, err = e.directory.ListGroups(ctx, actorA, tenantB.ID)
	assert.ErrorIs(t, err, authz.ErrDenied,
		"TEN-01 SECURITY: tenant A owner must be denied on tenant B group listing")

	// The single-entity read is denied too, not downgraded to not-found at
	// this layer. The transport layer merges both into 404.
	_, err = e.directory.GetGroup(ctx, actorA, tenantB.ID, gB.ID)
	assert.ErrorIs(t, err, authz.ErrDenied,
		"TEN-01 SECURITY: tenant A owner must not read tenant B groups")

	// Writes across the boundary are denied as well.
	_, err = e.directory.CreateGroup(ctx, actorA, tenantB.ID, "Injected", "")
	assert.ErrorIs(t, err, authz.ErrDenied,
		"TEN-01 SECURITY: tenant A owner must not create groups in tenant B")
}

// TestPurpose: Validates that anonymous visitors see only public events of a tenant.
// Scope: Integration Test
// Security: Anonymous principals are allowed exactly one action (public event reads)
// Expected: Anonymous listing returns public events only; private event reads are denied.
// Test Case ID: TEN-02
func TestTenant_Isolation_AnonymousSeesOnlyPublicEvents(t *testing.T) {
	if testDB == nil {
		t.Skip("Integration test requires database")
	}

	ctx := context.Background()
	e := newEnv(t)

	owner := e.newUser(t, "owner")
	tn := e.newTenant(t, owner, 10, 10, 10)
	actor := authz.Principal{UserID: owner.ID}

	pub, err := e.directory.CreateEvent(ctx, actor, tn.ID, directory.EventInput{
		Title:      "Open Day",
		Visibility: event.VisibilityPublic,
		StartsAt:   time.Now().Add(24 * time.Hour),
		EndsAt:     time.Now().Add(26 * time.Hour),
	})
	require.NoError(t, err)

	priv, err := e.directory.CreateEvent(ctx, actor, tn.ID, directory.EventInput{
		Title:      "Board Meeting",
		Visibility: event.VisibilityPrivate,
		StartsAt:   time.Now().Add(48 * time.Hour),
		EndsAt:     time.Now().Add(50 * time.Hour),
	})
	require.NoError(t, err)

	anon := authz.Principal{}

	listed, err := e.directory.ListEvents(ctx, anon, tn.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1, "TEN-02: anonymous listing must contain only the public event")
	assert.Equal(t, pub.ID, listed[0].ID)

	got, err := e.directory.GetEvent(ctx, anon, tn.ID, pub.ID)
	require.NoError(t, err, "TEN-02: anonymous read of a public event must succeed")
	assert.Equal(t, pub.ID, got.ID)

	_, err = e.directory.GetEvent(ctx, anon, tn.ID, priv.ID)
	assert.ErrorIs(t, err, authz.ErrDenied,
		"TEN-02 SECURITY: anonymous read of a private event must be denied")
}

// =============================================================================
// AUTHORIZATION TESTS
// =============================================================================

// TestPurpose: Validates role separation between owners and members inside one tenant.
// Scope: Integration Test
// Security: Owner-only operations stay owner-only
// Permissions: owner vs member role
// Expected: Owner manages memberships and groups; a plain member is denied on both.
// Test Case ID: AUT-01
func TestAuthz_OwnerAndMemberRoleSeparation(t *testing.T) {
	if testDB == nil {
		t.Skip("Integration test requires database")
	}

	ctx := context.Background()
	e := newEnv(t)

	owner := e.newUser(t, "owner")
	member := e.newUser(t, "member")
	outsider := e.newUser(t, "outsider")
	tn := e.newTenant(t, owner, 10, 10, 10)

	ownerActor := authz.Principal{UserID: owner.ID}
	memberActor := authz.Principal{UserID: member.ID}

	_, err := e.members.AddMember(ctx, ownerActor, tn.ID, member.ID, membership.RoleMember)
	require.NoError(t, err, "AUT-01: owner must be able to add members")

	// Member is in, and can read what members may read.
	_, err = e.directory.ListGroups(ctx, memberActor, tn.ID)
	require.NoError(t, err, "AUT-01: member must be able to list groups")

	// But member cannot perform owner-only operations.
	_, err = e.members.AddMember(ctx, memberActor, tn.ID, outsider.ID, membership.RoleMember)
	assert.ErrorIs(t, err, authz.ErrDenied,
		"AUT-01 SECURITY: plain member must not add members")

	_, err = e.directory.CreateGroup(ctx, memberActor, tn.ID, "Member Group", "")
	assert.ErrorIs(t, err, authz.ErrDenied,
		"AUT-01 SECURITY: plain member must not create groups")

	err = e.members.Remove(ctx, memberActor, tn.ID, owner.ID)
	assert.ErrorIs(t, err, authz.ErrDenied,
		"AUT-01 SECURITY: plain member must not remove the owner")

	// The owner can remove the member, which also clears group membership.
	err = e.members.Remove(ctx, ownerActor, tn.ID, member.ID)
	require.NoError(t, err)

	_, err = e.directory.ListGroups(ctx, memberActor, tn.ID)
	assert.ErrorIs(t, err, authz.ErrDenied,
		"AUT-01: removed member must lose access immediately")
}

// =============================================================================
// INVITATION FLOW TESTS
// =============================================================================

// TestPurpose: Validates the invitation issue/redeem round trip including single-use semantics.
// Scope: Integration Test
// Security: Invitation tokens are single-use and grant exactly the invited role
// Expected: First redemption joins with the invited role; the same token fails afterwards.
// Test Case ID: INV-01
func TestInvitation_SingleUseRedemption(t *testing.T) {
	if testDB == nil {
		t.Skip("Integration test requires database")
	}

	ctx := context.Background()
	e := newEnv(t)

	owner := e.newUser(t, "owner")
	invitee := e.newUser(t, "invitee")
	second := e.newUser(t, "second")
	tn := e.newTenant(t, owner, 10, 10, 10)

	inv, err := e.invitations.Issue(ctx, tn.ID, "invitee@example.com", authz.RoleOwner)
	require.NoError(t, err)
	require.NotEmpty(t, inv.Token)

	m, err := e.members.Join(ctx, tn.ID, invitee.ID, inv.Token)
	require.NoError(t, err, "INV-01: first redemption must succeed")
	assert.Equal(t, membership.RoleOwner, m.Role,
		"INV-01: redeemed membership must carry the invited role")

	_, err = e.members.Join(ctx, tn.ID, second.ID, inv.Token)
	assert.ErrorIs(t, err, invitation.ErrInvitationInvalid,
		"INV-01 SECURITY: a redeemed token must not be redeemable again")
}

// TestPurpose: Validates open join without a token defaults to the member role.
// Scope: Integration Test
// Expected: Tokenless join succeeds with role member; a second join is a duplicate.
// Test Case ID: INV-02
func TestInvitation_OpenJoinDefaultsToMember(t *testing.T) {
	if testDB == nil {
		t.Skip("Integration test requires database")
	}

	ctx := context.Background()
	e := newEnv(t)

	owner := e.newUser(t, "owner")
	joiner := e.newUser(t, "joiner")
	tn := e.newTenant(t, owner, 10, 10, 10)

	m, err := e.members.Join(ctx, tn.ID, joiner.ID, "")
	require.NoError(t, err)
	assert.Equal(t, membership.RoleMember, m.Role,
		"INV-02: tokenless join must default to member")

	_, err = e.members.Join(ctx, tn.ID, joiner.ID, "")
	assert.ErrorIs(t, err, membership.ErrDuplicateMembership,
		"INV-02: joining twice must fail as duplicate")
}

// =============================================================================
// QUOTA ENFORCEMENT TESTS
// =============================================================================

// TestPurpose: Validates tier limits are enforced through the full service stack.
// Scope: Integration Test
// Expected: Creations up to the limit succeed; the next one fails with a quota error naming the kind.
// Test Case ID: QTA-02
func TestQuota_GroupLimitEnforcedThroughServices(t *testing.T) {
	if testDB == nil {
		t.Skip("Integration test requires database")
	}

	ctx := context.Background()
	e := newEnv(t)

	owner := e.newUser(t, "owner")
	tn := e.newTenant(t, owner, 10, 2, 10)
	actor := authz.Principal{UserID: owner.ID}

	for i := 0; i < 2; i++ {
		_, err := e.directory.CreateGroup(ctx, actor, tn.ID, fmt.Sprintf("Group %d", i), "")
		require.NoError(t, err, "QTA-02: creation under the limit must succeed")
	}

	_, err := e.directory.CreateGroup(ctx, actor, tn.ID, "One Too Many", "")
	require.Error(t, err, "QTA-02: creation over the limit must fail")
	qe, ok := quota.AsError(err)
	require.True(t, ok, "QTA-02: the failure must be a quota error, got %v", err)
	assert.Equal(t, quota.KindGroup, qe.Kind)
	assert.Equal(t, 2, qe.Limit)

	// Usage reporting reflects the exhausted quota.
	count, limit, err := e.tenants.Usage(ctx, actor, tn.ID, quota.KindGroup)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, limit)
}

// TestPurpose: Validates the user quota bounds membership joins.
// Scope: Integration Test
// Expected: Joins fill the tenant to its user limit; the next join fails with a quota error, not an auth error.
// Test Case ID: QTA-03
func TestQuota_UserLimitBoundsJoins(t *testing.T) {
	if testDB == nil {
		t.Skip("Integration test requires database")
	}

	ctx := context.Background()
	e := newEnv(t)

	owner := e.newUser(t, "owner")
	tn := e.newTenant(t, owner, 2, 10, 10) // owner occupies one slot

	first := e.newUser(t, "first")
	_, err := e.members.Join(ctx, tn.ID, first.ID, "")
	require.NoError(t, err)

	second := e.newUser(t, "second")
	_, err = e.members.Join(ctx, tn.ID, second.ID, "")
	require.Error(t, err, "QTA-03: join past the user limit must fail")
	qe, ok := quota.AsError(err)
	require.True(t, ok, "QTA-03: the failure must be a quota error, got %v", err)
	assert.Equal(t, quota.KindUser, qe.Kind)
	assert.False(t, errors.Is(err, authz.ErrDenied),
		"QTA-03: a quota denial must stay distinct from an authorization denial")
}
