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

package authz

import (
	"context"
	"errors"
	"fmt"
)

// Domain errors
var (
	// ErrDenied is returned by Authorize for every denial. Callers facing
	// untrusted clients must surface it as not-found so a denial is never
	// distinguishable from a missing entity across tenant boundaries.
	ErrDenied = errors.New("access denied")
)

// Action is a CRUD operation being decided.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// EntityType identifies what kind of entity an action targets. The entity
// set is fixed; the engine is not a general-purpose policy language.
type EntityType string

const (
	EntityTenant       EntityType = "tenant"
	EntityMembership   EntityType = "membership"
	EntityGroup        EntityType = "group"
	EntityEvent        EntityType = "event"
	EntityResource     EntityType = "resource"
	EntityService      EntityType = "service"
	EntityServiceNote  EntityType = "service_note"
	EntityServiceRole  EntityType = "service_role"
	EntityServiceEvent EntityType = "service_event"
	EntityEventOwner   EntityType = "event_owner"
)

// Principal is the actor a decision is made for. A zero UserID means the
// request is unauthenticated.
type Principal struct {
	UserID string
}

// Anonymous reports whether the principal is unauthenticated.
func (p Principal) Anonymous() bool {
	return p.UserID == ""
}

// Entity carries the facts about the target entity the policy table needs.
// TenantID is the tenant the entity belongs to; CreatorID is the created_by
// column where the entity has one; Public is event visibility; ServiceID is
// set for service sub-resources.
type Entity struct {
	Type      EntityType
	ID        string
	TenantID  string
	CreatorID string
	Public    bool
	ServiceID string
}

// Decision is the outcome of a policy evaluation.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow builds an allowing decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny builds a denying decision with a reason. Reasons are for audit logs
// only and must never reach an untrusted caller.
func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Deny reasons
const (
	ReasonUnauthenticated = "authentication required"
	ReasonNotAMember      = "principal has no membership in tenant"
	ReasonNotOwner        = "operation requires tenant owner"
	ReasonNotCreator      = "operation requires entity creator or tenant owner"
	ReasonNotServiceAdmin = "operation requires tenant owner or service admin"
	ReasonNoRule          = "no policy rule for entity/action"
)

// Membership roles as the engine sees them.
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// Facts supplies the membership and ownership facts a decision needs. The
// engine itself is stateless; everything tenant-specific comes through here.
type Facts interface {
	// Role returns the principal's role in a tenant. ok is false when the
	// principal has no membership there.
	Role(ctx context.Context, tenantID, userID string) (role string, ok bool, err error)

	// IsServiceAdmin reports whether the principal is registered as an
	// admin of a specific service.
	IsServiceAdmin(ctx context.Context, serviceID, userID string) (bool, error)
}

// Engine evaluates the fixed policy table. Given the same facts it always
// produces the same decision.
type Engine struct {
	facts Facts
	rules ruleTable
}

// NewEngine creates an authorization engine backed by a facts source.
func NewEngine(facts Facts) *Engine {
	return &Engine{facts: facts, rules: defaultRules()}
}

// Facts exposes the fact source so callers can answer membership questions
// consistently with the engine's own view.
func (e *Engine) Facts() Facts {
	return e.facts
}

// Decide evaluates the policy table for (principal, action, entity). The
// returned error is infrastructural only; a policy "no" is a Deny decision,
// not an error.
func (e *Engine) Decide(ctx context.Context, p Principal, action Action, entity Entity) (Decision, error) {
	r, ok := e.rules.lookup(entity.Type, action)
	if !ok {
		return Deny(ReasonNoRule), nil
	}

	// Truly public surfaces short-circuit before any authentication check.
	if r.anyone {
		return Allow(), nil
	}
	if r.publicRead && entity.Public {
		return Allow(), nil
	}

	if p.Anonymous() {
		return Deny(ReasonUnauthenticated), nil
	}

	if r.anyAuthenticated {
		return Allow(), nil
	}

	// Everything below is tenant-scoped: the principal's role in the
	// entity's own tenant decides. A principal acting across tenants has
	// no role there and is denied independent of any role elsewhere.
	role, isMember, err := e.facts.Role(ctx, entity.TenantID, p.UserID)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to resolve membership role: %w", err)
	}

	if !isMember {
		return Deny(ReasonNotAMember), nil
	}

	if role == RoleOwner && (r.owner || r.member || r.creator || r.serviceAdmin) {
		// The owner satisfies every tenant-scoped requirement.
		return Allow(), nil
	}

	if r.member && role == RoleMember {
		return Allow(), nil
	}

	if r.creator && entity.CreatorID != "" && entity.CreatorID == p.UserID {
		return Allow(), nil
	}

	if r.serviceAdmin && entity.ServiceID != "" {
		admin, err := e.facts.IsServiceAdmin(ctx, entity.ServiceID, p.UserID)
		if err != nil {
			return Decision{}, fmt.Errorf("failed to resolve service admin: %w", err)
		}
		if admin {
			return Allow(), nil
		}
	}

	return Deny(denyReason(r)), nil
}

// Authorize evaluates Decide and converts a denial into ErrDenied wrapped
// with the reason. Convenient for service layers that propagate errors.
func (e *Engine) Authorize(ctx context.Context, p Principal, action Action, entity Entity) error {
	d, err := e.Decide(ctx, p, action, entity)
	if err != nil {
		return err
	}
	if !d.Allowed {
		return fmt.Errorf("%w: %s", ErrDenied, d.Reason)
	}
	return nil
}

func denyReason(r rule) string {
	switch {
	case r.serviceAdmin:
		return ReasonNotServiceAdmin
	case r.creator:
		return ReasonNotCreator
	case r.owner:
		return ReasonNotOwner
	default:
		return ReasonNotAMember
	}
}
