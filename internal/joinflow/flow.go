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

// Package joinflow models the visitor-joins-a-tenant experience as an
// explicit state machine. Navigation transitions are pure functions on
// State; the steps that talk to the identity provider and the membership
// service run through Flow.
package joinflow

import (
	"context"
	"errors"

	"github.com/orgcore/orgcore/internal/identity"
	"github.com/orgcore/orgcore/internal/invitation"
	"github.com/orgcore/orgcore/internal/membership"
	"github.com/orgcore/orgcore/internal/quota"
)

// Step identifies where in the flow the visitor currently is.
type Step string

const (
	StepWelcome        Step = "welcome"
	StepEmailDetection Step = "email_detection"
	StepSignup         Step = "signup"
	StepJoinSignin     Step = "join_signin"
	StepMemberSignin   Step = "member_signin"
	StepSuccess        Step = "success"
)

// Outcome classifies how an effectful step ended. Quota denial is its own
// outcome so callers can prompt a tier upgrade instead of showing an
// authentication error.
type Outcome string

const (
	OutcomeOK           Outcome = "ok"
	OutcomeAuthFailed   Outcome = "auth_failed"
	OutcomeLimitReached Outcome = "limit_reached"
	OutcomeInviteFailed Outcome = "invite_failed"
)

// State is the tagged-union flow state. Email is carried forward as a
// prefill between steps; Message holds the last user-facing error.
type State struct {
	Step    Step
	Email   string
	Message string

	// Populated on StepSuccess.
	UserID string
	Role   membership.Role
}

// Start returns the initial state.
func Start() State {
	return State{Step: StepWelcome}
}

// ChooseSignup is the "I'm new" choice on the welcome step.
func (s State) ChooseSignup() State {
	return State{Step: StepSignup, Email: s.Email}
}

// ChooseExisting is the "I have an account" choice on the welcome step.
func (s State) ChooseExisting() State {
	return State{Step: StepEmailDetection, Email: s.Email}
}

// ChooseMemberSignin is the "I'm already a member" choice on the welcome step.
func (s State) ChooseMemberSignin() State {
	return State{Step: StepMemberSignin, Email: s.Email}
}

// Back returns to the welcome step from anywhere, clearing transient state.
func (s State) Back() State {
	return State{Step: StepWelcome}
}

// IdentityProvider is the slice of the identity service the flow consumes.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password string, profile identity.Profile) (*identity.User, error)
	SignInWithPassword(ctx context.Context, email, password string) (*identity.User, error)
}

// Associator attaches a signed-in principal to the tenant, redeeming an
// invitation token when one is present. RoleOf resolves the role of a
// principal who turns out to be attached already.
type Associator interface {
	Join(ctx context.Context, tenantID, userID, token string) (*membership.Membership, error)
	RoleOf(ctx context.Context, tenantID, userID string) (membership.Role, bool, error)
}

// Flow drives a visitor through joining one tenant.
type Flow struct {
	identity IdentityProvider
	members  Associator

	tenantID string
	token    string
}

// New creates a flow for the given tenant. token may be empty; when set it
// is redeemed during association and decides the assigned role.
func New(idp IdentityProvider, members Associator, tenantID, token string) *Flow {
	return &Flow{identity: idp, members: members, tenantID: tenantID, token: token}
}

// DetectEmail probes whether an account exists for the email and routes to
// sign-in or sign-up accordingly, carrying the email forward as a prefill.
func (f *Flow) DetectEmail(ctx context.Context, s State, email string) State {
	if s.Step != StepEmailDetection {
		return s
	}
	if ProbeEmail(ctx, f.identity, email) {
		return State{Step: StepJoinSignin, Email: email}
	}
	return State{Step: StepSignup, Email: email}
}

// SubmitSignup creates the account and associates it with the tenant. When
// the account already exists the flow moves laterally to JoinSignin with the
// same email prefilled rather than back to Welcome.
func (f *Flow) SubmitSignup(ctx context.Context, s State, email, password string, profile identity.Profile) (State, Outcome) {
	if s.Step != StepSignup {
		return s, OutcomeAuthFailed
	}
	user, err := f.identity.SignUp(ctx, email, password, profile)
	if err != nil {
		if errors.Is(err, identity.ErrUserAlreadyExists) {
			next := State{Step: StepJoinSignin, Email: email, Message: "an account with this email already exists, sign in instead"}
			return next, OutcomeAuthFailed
		}
		return f.failed(s, email, err), OutcomeAuthFailed
	}
	return f.associate(ctx, user)
}

// SubmitSignin signs in and associates the principal with the tenant. It
// serves both the JoinSignin and MemberSignin steps.
func (f *Flow) SubmitSignin(ctx context.Context, s State, email, password string) (State, Outcome) {
	if s.Step != StepJoinSignin && s.Step != StepMemberSignin {
		return s, OutcomeAuthFailed
	}
	user, err := f.identity.SignInWithPassword(ctx, email, password)
	if err != nil {
		return f.failed(s, email, err), OutcomeAuthFailed
	}
	return f.associate(ctx, user)
}

func (f *Flow) associate(ctx context.Context, user *identity.User) (State, Outcome) {
	m, err := f.members.Join(ctx, f.tenantID, user.ID, f.token)
	if err != nil {
		// The principal is already attached. That is a success for the
		// flow, notably for the "I'm already a member" path.
		if errors.Is(err, membership.ErrDuplicateMembership) {
			role, ok, rerr := f.members.RoleOf(ctx, f.tenantID, user.ID)
			if rerr != nil || !ok {
				return State{Step: StepWelcome, Message: userMessage(rerr)}, OutcomeAuthFailed
			}
			return State{Step: StepSuccess, Email: user.Email, UserID: user.ID, Role: role}, OutcomeOK
		}
		if _, ok := quota.AsError(err); ok {
			return State{Step: StepWelcome, Message: "this organization has reached its member limit"}, OutcomeLimitReached
		}
		if errors.Is(err, invitation.ErrInvitationInvalid) || errors.Is(err, invitation.ErrInvitationExpired) {
			return State{Step: StepWelcome, Message: userMessage(err)}, OutcomeInviteFailed
		}
		return State{Step: StepWelcome, Message: userMessage(err)}, OutcomeAuthFailed
	}
	return State{Step: StepSuccess, Email: user.Email, UserID: user.ID, Role: m.Role}, OutcomeOK
}

func (f *Flow) failed(s State, email string, err error) State {
	return State{Step: s.Step, Email: email, Message: userMessage(err)}
}

// userMessage normalizes known provider errors into stable user-facing text
// instead of leaking raw provider output.
func userMessage(err error) string {
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials):
		return "invalid login credentials"
	case errors.Is(err, identity.ErrUserNotFound):
		return "invalid login credentials"
	case errors.Is(err, identity.ErrEmailNotConfirmed):
		return "confirm your email before signing in"
	case errors.Is(err, identity.ErrAccountLocked):
		return "account temporarily locked, try again later"
	case errors.Is(err, identity.ErrWeakPassword):
		return "password must be at least 8 characters"
	case errors.Is(err, identity.ErrInvalidEmail):
		return "enter a valid email address"
	case errors.Is(err, invitation.ErrInvitationExpired):
		return "this invitation has expired"
	case errors.Is(err, invitation.ErrInvitationInvalid):
		return "this invitation is invalid or already used"
	default:
		return "something went wrong, try again"
	}
}
