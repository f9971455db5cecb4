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

package membership

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/orgcore/orgcore/internal/audit"
	"github.com/orgcore/orgcore/internal/authz"
	"github.com/orgcore/orgcore/internal/invitation"
	"github.com/orgcore/orgcore/internal/quota"
)

// Service provides membership business logic: the policy-checked creation
// paths, the join protocol, and the removal cascade.
type Service struct {
	repo        Repository
	invitations *invitation.Service
	engine      *authz.Engine
	auditLogger audit.Logger
}

// NewService creates a new membership service.
func NewService(repo Repository, invitations *invitation.Service, engine *authz.Engine, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		invitations: invitations,
		engine:      engine,
		auditLogger: auditLogger,
	}
}

// RoleOf returns the principal's role in a tenant. ok is false when the
// principal has no membership there.
func (s *Service) RoleOf(ctx context.Context, tenantID, userID string) (Role, bool, error) {
	m, err := s.repo.Get(ctx, tenantID, userID)
	if err != nil {
		if errors.Is(err, ErrMembershipNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return m.Role, true, nil
}

// AddMember adds a member on behalf of an actor. Owner-only; the insert is
// quota-checked in the storage transaction.
func (s *Service) AddMember(ctx context.Context, actor authz.Principal, tenantID, userID string, role Role) (*Membership, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	if err := s.engine.Authorize(ctx, actor, authz.ActionCreate, authz.Entity{
		Type:     authz.EntityMembership,
		TenantID: tenantID,
	}); err != nil {
		return nil, err
	}

	m := &Membership{
		TenantID:  tenantID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now(),
	}

	if err := s.create(ctx, m); err != nil {
		return nil, err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeMemberJoined,
		TenantID: tenantID,
		ActorID:  actor.UserID,
		Resource: userID,
		Metadata: map[string]any{audit.AttrRole: string(role)},
	})

	return m, nil
}

// Join attaches a principal to a tenant. With a token, the invitation's role
// applies and the token is consumed; without one, the join is open and
// defaults to member with no validity checks. Either way the insert is
// subject to the tenant's user quota. A principal that already holds a
// membership short-circuits with ErrDuplicateMembership before any token is
// consumed.
func (s *Service) Join(ctx context.Context, tenantID, userID, token string) (*Membership, error) {
	if _, err := s.repo.Get(ctx, tenantID, userID); err == nil {
		return nil, ErrDuplicateMembership
	} else if !errors.Is(err, ErrMembershipNotFound) {
		return nil, fmt.Errorf("failed to check existing membership: %w", err)
	}

	role := RoleMember
	if token != "" {
		invited, err := s.invitations.Redeem(ctx, tenantID, token, userID)
		if err != nil {
			return nil, err
		}
		role = Role(invited)
	}

	m := &Membership{
		TenantID:  tenantID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now(),
	}

	if err := s.create(ctx, m); err != nil {
		return nil, err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeMemberJoined,
		TenantID: tenantID,
		ActorID:  userID,
		Resource: userID,
		Metadata: map[string]any{audit.AttrRole: string(role), "invited": token != ""},
	})

	return m, nil
}

// Remove deletes a membership on behalf of an actor. Owner-only. The group
// membership cascade runs in the same transaction as the deletion.
func (s *Service) Remove(ctx context.Context, actor authz.Principal, tenantID, userID string) error {
	if err := s.engine.Authorize(ctx, actor, authz.ActionDelete, authz.Entity{
		Type:     authz.EntityMembership,
		TenantID: tenantID,
	}); err != nil {
		return err
	}

	if err := s.repo.Remove(ctx, tenantID, userID); err != nil {
		return err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeMemberRemoved,
		TenantID: tenantID,
		ActorID:  actor.UserID,
		Resource: userID,
	})

	return nil
}

// List returns the tenant's members. Members-only read.
func (s *Service) List(ctx context.Context, actor authz.Principal, tenantID string) ([]*Membership, error) {
	if err := s.engine.Authorize(ctx, actor, authz.ActionRead, authz.Entity{
		Type:     authz.EntityMembership,
		TenantID: tenantID,
	}); err != nil {
		return nil, err
	}
	return s.repo.ListByTenant(ctx, tenantID)
}

// Memberships returns the caller's own memberships across tenants.
func (s *Service) Memberships(ctx context.Context, userID string) ([]*Membership, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) create(ctx context.Context, m *Membership) error {
	err := s.repo.Create(ctx, m)
	if err == nil {
		return nil
	}

	if qe, ok := quota.AsError(err); ok {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeQuotaDenied,
			TenantID: m.TenantID,
			ActorID:  m.UserID,
			Resource: string(qe.Kind),
			Metadata: map[string]any{audit.AttrKind: string(qe.Kind), audit.AttrLimit: qe.Limit},
		})
	}

	return err
}
