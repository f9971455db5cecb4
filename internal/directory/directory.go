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

// Package directory is the operation surface for tenant-scoped content
// (groups, events, resources, services and their sub-resources). Every
// operation passes through the authorization engine; quota-bound creations
// get their authoritative check inside the storage transaction.
package directory

import (
	"context"

	"github.com/orgcore/orgcore/internal/audit"
	"github.com/orgcore/orgcore/internal/authz"
	"github.com/orgcore/orgcore/internal/event"
	"github.com/orgcore/orgcore/internal/group"
	"github.com/orgcore/orgcore/internal/membership"
	"github.com/orgcore/orgcore/internal/quota"
	"github.com/orgcore/orgcore/internal/resource"
	"github.com/orgcore/orgcore/internal/svc"
)

// Facts adapts the membership and service-admin stores into the fact source
// the authorization engine consults.
type Facts struct {
	memberships membership.Repository
	services    svc.Repository
}

// NewFacts creates an engine fact source over the two stores.
func NewFacts(memberships membership.Repository, services svc.Repository) *Facts {
	return &Facts{memberships: memberships, services: services}
}

// Role returns the principal's role in a tenant.
func (f *Facts) Role(ctx context.Context, tenantID, userID string) (string, bool, error) {
	m, err := f.memberships.Get(ctx, tenantID, userID)
	if err != nil {
		if err == membership.ErrMembershipNotFound {
			return "", false, nil
		}
		return "", false, err
	}
	return string(m.Role), true, nil
}

// IsServiceAdmin reports whether the principal administers a service.
func (f *Facts) IsServiceAdmin(ctx context.Context, serviceID, userID string) (bool, error) {
	return f.services.IsAdmin(ctx, serviceID, userID)
}

// Service orchestrates directory operations.
type Service struct {
	groups      group.Repository
	events      event.Repository
	resources   resource.Repository
	services    svc.Repository
	items       svc.ItemRepository
	engine      *authz.Engine
	auditLogger audit.Logger
}

// NewService creates the directory service.
func NewService(
	groups group.Repository,
	events event.Repository,
	resources resource.Repository,
	services svc.Repository,
	items svc.ItemRepository,
	engine *authz.Engine,
	auditLogger audit.Logger,
) *Service {
	return &Service{
		groups:      groups,
		events:      events,
		resources:   resources,
		services:    services,
		items:       items,
		engine:      engine,
		auditLogger: auditLogger,
	}
}

// auditQuotaDenial records a quota denial so operators can see tenants
// hitting their limits. The caller still propagates the error.
func (s *Service) auditQuotaDenial(ctx context.Context, tenantID, actorID string, err error) {
	qe, ok := quota.AsError(err)
	if !ok {
		return
	}
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeQuotaDenied,
		TenantID: tenantID,
		ActorID:  actorID,
		Resource: string(qe.Kind),
		Metadata: map[string]any{audit.AttrKind: string(qe.Kind), audit.AttrLimit: qe.Limit},
	})
}
