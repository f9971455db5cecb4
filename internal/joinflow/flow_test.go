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

package joinflow_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgcore/orgcore/internal/identity"
	"github.com/orgcore/orgcore/internal/invitation"
	"github.com/orgcore/orgcore/internal/joinflow"
	"github.com/orgcore/orgcore/internal/membership"
	"github.com/orgcore/orgcore/internal/quota"
)

// fakeIdentity implements joinflow.IdentityProvider over a fixed user set
type fakeIdentity struct {
	// users maps email to password
	users map[string]string
	// unconfirmed emails fail sign-in with ErrEmailNotConfirmed
	unconfirmed map[string]bool
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{users: map[string]string{}, unconfirmed: map[string]bool{}}
}

func (f *fakeIdentity) SignUp(ctx context.Context, email, password string, profile identity.Profile) (*identity.User, error) {
	if _, exists := f.users[email]; exists {
		return nil, identity.ErrUserAlreadyExists
	}
	f.users[email] = password
	return &identity.User{ID: "user-" + email, Email: email}, nil
}

func (f *fakeIdentity) SignInWithPassword(ctx context.Context, email, password string) (*identity.User, error) {
	stored, exists := f.users[email]
	if !exists {
		return nil, identity.ErrUserNotFound
	}
	if f.unconfirmed[email] {
		return nil, identity.ErrEmailNotConfirmed
	}
	if stored != password {
		return nil, identity.ErrInvalidCredentials
	}
	return &identity.User{ID: "user-" + email, Email: email}, nil
}

// fakeAssociator implements joinflow.Associator with scripted failures
type fakeAssociator struct {
	err    error
	role   membership.Role
	joined []string
	// existing maps userID to the role RoleOf reports
	existing map[string]membership.Role
}

func (f *fakeAssociator) Join(ctx context.Context, tenantID, userID, token string) (*membership.Membership, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.existing[userID]; ok {
		return nil, membership.ErrDuplicateMembership
	}
	f.joined = append(f.joined, userID)
	role := f.role
	if role == "" {
		role = membership.RoleMember
	}
	return &membership.Membership{TenantID: tenantID, UserID: userID, Role: role}, nil
}

func (f *fakeAssociator) RoleOf(ctx context.Context, tenantID, userID string) (membership.Role, bool, error) {
	role, ok := f.existing[userID]
	return role, ok, nil
}

// TestPurpose: Validates the pure navigation transitions of the join state machine.
// Scope: Unit Test
// Expected: Welcome branches to signup, email detection or member sign-in; Back always returns to a clean welcome.
// Test Case ID: FLW-01
func TestJoinFlow_NavigationTransitions(t *testing.T) {
	s := joinflow.Start()
	assert.Equal(t, joinflow.StepWelcome, s.Step)

	assert.Equal(t, joinflow.StepSignup, s.ChooseSignup().Step)
	assert.Equal(t, joinflow.StepEmailDetection, s.ChooseExisting().Step)
	assert.Equal(t, joinflow.StepMemberSignin, s.ChooseMemberSignin().Step)

	// Back clears transient state.
	mid := joinflow.State{Step: joinflow.StepSignup, Email: "a@example.com", Message: "oops"}
	back := mid.Back()
	assert.Equal(t, joinflow.StepWelcome, back.Step)
	assert.Empty(t, back.Email)
	assert.Empty(t, back.Message)
}

// TestPurpose: Validates email detection routes known emails to sign-in and unknown ones to sign-up.
// Scope: Unit Test
// Expected: Existing account routes to join_signin; unknown email routes to signup; both prefill the email.
// Test Case ID: FLW-02
func TestJoinFlow_DetectEmailRouting(t *testing.T) {
	idp := newFakeIdentity()
	idp.users["known@example.com"] = "hunter2-hunter2"
	flow := joinflow.New(idp, &fakeAssociator{}, "tenant-1", "")
	ctx := context.Background()

	s := flow.DetectEmail(ctx, joinflow.Start().ChooseExisting(), "known@example.com")
	assert.Equal(t, joinflow.StepJoinSignin, s.Step)
	assert.Equal(t, "known@example.com", s.Email)

	s = flow.DetectEmail(ctx, joinflow.Start().ChooseExisting(), "new@example.com")
	assert.Equal(t, joinflow.StepSignup, s.Step)
	assert.Equal(t, "new@example.com", s.Email)

	// Detection only fires from the email-detection step.
	s = flow.DetectEmail(ctx, joinflow.Start(), "known@example.com")
	assert.Equal(t, joinflow.StepWelcome, s.Step)
}

// TestPurpose: Validates the probe classifies provider errors into account existence.
// Scope: Unit Test
// Security: Documents the enumeration side-channel the routing depends on
// Expected: Wrong password and unconfirmed email mean exists; user not found means absent.
// Test Case ID: FLW-03
func TestJoinFlow_ProbeClassification(t *testing.T) {
	idp := newFakeIdentity()
	idp.users["confirmed@example.com"] = "hunter2-hunter2"
	idp.users["pending@example.com"] = "hunter2-hunter2"
	idp.unconfirmed["pending@example.com"] = true
	ctx := context.Background()

	assert.True(t, joinflow.ProbeEmail(ctx, idp, "confirmed@example.com"))
	assert.True(t, joinflow.ProbeEmail(ctx, idp, "pending@example.com"),
		"unconfirmed account still exists")
	assert.False(t, joinflow.ProbeEmail(ctx, idp, "absent@example.com"))
}

// TestPurpose: Validates a fresh sign-up lands in success with the assigned role.
// Scope: Unit Test
// Expected: Signup then association succeeds; the state carries the user ID and role.
// Test Case ID: FLW-04
func TestJoinFlow_SignupSuccess(t *testing.T) {
	idp := newFakeIdentity()
	members := &fakeAssociator{role: membership.RoleMember}
	flow := joinflow.New(idp, members, "tenant-1", "")
	ctx := context.Background()

	s, outcome := flow.SubmitSignup(ctx, joinflow.Start().ChooseSignup(),
		"new@example.com", "correct-horse-battery", identity.Profile{})
	assert.Equal(t, joinflow.OutcomeOK, outcome)
	require.Equal(t, joinflow.StepSuccess, s.Step)
	assert.Equal(t, "user-new@example.com", s.UserID)
	assert.Equal(t, membership.RoleMember, s.Role)
	assert.Equal(t, []string{"user-new@example.com"}, members.joined)
}

// TestPurpose: Validates sign-up with a taken email moves laterally to sign-in instead of failing dead.
// Scope: Unit Test
// Expected: The flow lands on join_signin with the email prefilled and an explanatory message.
// Test Case ID: FLW-05
func TestJoinFlow_SignupExistingEmailGoesToSignin(t *testing.T) {
	idp := newFakeIdentity()
	idp.users["taken@example.com"] = "hunter2-hunter2"
	flow := joinflow.New(idp, &fakeAssociator{}, "tenant-1", "")
	ctx := context.Background()

	s, outcome := flow.SubmitSignup(ctx, joinflow.Start().ChooseSignup(),
		"taken@example.com", "whatever-password", identity.Profile{})
	assert.Equal(t, joinflow.OutcomeAuthFailed, outcome)
	assert.Equal(t, joinflow.StepJoinSignin, s.Step)
	assert.Equal(t, "taken@example.com", s.Email)
	assert.NotEmpty(t, s.Message)
}

// TestPurpose: Validates sign-in failures stay on the current step with a normalized message.
// Scope: Unit Test
// Security: Raw provider errors are not leaked to the visitor
// Expected: Wrong password keeps the step and reports the stable invalid-credentials text.
// Test Case ID: FLW-06
func TestJoinFlow_SigninFailureNormalizedMessage(t *testing.T) {
	idp := newFakeIdentity()
	idp.users["user@example.com"] = "right-password-1"
	flow := joinflow.New(idp, &fakeAssociator{}, "tenant-1", "")
	ctx := context.Background()

	start := joinflow.State{Step: joinflow.StepJoinSignin, Email: "user@example.com"}
	s, outcome := flow.SubmitSignin(ctx, start, "user@example.com", "wrong-password-1")
	assert.Equal(t, joinflow.OutcomeAuthFailed, outcome)
	assert.Equal(t, joinflow.StepJoinSignin, s.Step, "failure must keep the visitor on the sign-in step")
	assert.Equal(t, "invalid login credentials", s.Message)

	// An unknown account answers with the same text as a wrong password.
	s, _ = flow.SubmitSignin(ctx, start, "ghost@example.com", "wrong-password-1")
	assert.Equal(t, "invalid login credentials", s.Message)
}

// TestPurpose: Validates quota denial during association is its own outcome, not an auth failure.
// Scope: Unit Test
// Expected: Limit reached returns OutcomeLimitReached with a member-limit message back on welcome.
// Test Case ID: FLW-07
func TestJoinFlow_QuotaDenialIsDistinctOutcome(t *testing.T) {
	idp := newFakeIdentity()
	members := &fakeAssociator{err: quota.Exceeded(quota.KindUser, 5)}
	flow := joinflow.New(idp, members, "tenant-1", "")
	ctx := context.Background()

	s, outcome := flow.SubmitSignup(ctx, joinflow.Start().ChooseSignup(),
		"new@example.com", "correct-horse-battery", identity.Profile{})
	assert.Equal(t, joinflow.OutcomeLimitReached, outcome)
	assert.Equal(t, joinflow.StepWelcome, s.Step)
	assert.Contains(t, s.Message, "member limit")
}

// TestPurpose: Validates invitation failures during association surface as invite outcomes.
// Scope: Unit Test
// Expected: Invalid and expired tokens both produce OutcomeInviteFailed.
// Test Case ID: FLW-08
func TestJoinFlow_InvitationFailureOutcome(t *testing.T) {
	idp := newFakeIdentity()
	idp.users["user@example.com"] = "right-password-1"
	ctx := context.Background()

	for _, invErr := range []error{invitation.ErrInvitationInvalid, invitation.ErrInvitationExpired} {
		flow := joinflow.New(idp, &fakeAssociator{err: invErr}, "tenant-1", "stale-token")
		start := joinflow.State{Step: joinflow.StepJoinSignin}
		s, outcome := flow.SubmitSignin(ctx, start, "user@example.com", "right-password-1")
		assert.Equal(t, joinflow.OutcomeInviteFailed, outcome, "error: %v", invErr)
		assert.Equal(t, joinflow.StepWelcome, s.Step)
		assert.Contains(t, s.Message, "invitation", "error: %v", invErr)
	}
}

// TestPurpose: Validates an existing member signing in through the flow reaches success.
// Scope: Unit Test
// Permissions: principal already holding a membership in the tenant
// Expected: Member sign-in lands on success with the existing role; no new membership is created.
// Test Case ID: FLW-10
func TestJoinFlow_ExistingMemberSigninSucceeds(t *testing.T) {
	idp := newFakeIdentity()
	idp.users["member@example.com"] = "right-password-1"
	members := &fakeAssociator{existing: map[string]membership.Role{
		"user-member@example.com": membership.RoleOwner,
	}}
	flow := joinflow.New(idp, members, "tenant-1", "")
	ctx := context.Background()

	start := joinflow.Start().ChooseMemberSignin()
	s, outcome := flow.SubmitSignin(ctx, start, "member@example.com", "right-password-1")
	assert.Equal(t, joinflow.OutcomeOK, outcome)
	require.Equal(t, joinflow.StepSuccess, s.Step)
	assert.Equal(t, "user-member@example.com", s.UserID)
	assert.Equal(t, membership.RoleOwner, s.Role, "the existing role is reported, not a fresh default")
	assert.Empty(t, members.joined, "no new membership may be created for an existing member")

	// The same holds on the invited path when the visitor is already in.
	invited := joinflow.New(idp, members, "tenant-1", "some-token")
	s, outcome = invited.SubmitSignin(ctx, joinflow.State{Step: joinflow.StepJoinSignin}, "member@example.com", "right-password-1")
	assert.Equal(t, joinflow.OutcomeOK, outcome)
	assert.Equal(t, joinflow.StepSuccess, s.Step)
}

// TestPurpose: Validates effectful steps refuse to run from the wrong state.
// Scope: Unit Test
// Expected: SubmitSignup from welcome and SubmitSignin from signup are no-ops.
// Test Case ID: FLW-09
func TestJoinFlow_WrongStepIsNoOp(t *testing.T) {
	idp := newFakeIdentity()
	members := &fakeAssociator{}
	flow := joinflow.New(idp, members, "tenant-1", "")
	ctx := context.Background()

	s, _ := flow.SubmitSignup(ctx, joinflow.Start(), "new@example.com", "correct-horse-battery", identity.Profile{})
	assert.Equal(t, joinflow.StepWelcome, s.Step)
	assert.Empty(t, members.joined, "no association may happen from the wrong step")

	s, _ = flow.SubmitSignin(ctx, joinflow.Start().ChooseSignup(), "new@example.com", "correct-horse-battery")
	assert.Equal(t, joinflow.StepSignup, s.Step)
}
