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

package tenant

import (
	"context"
	"fmt"
	"time"

	"github.com/orgcore/orgcore/internal/audit"
	"github.com/orgcore/orgcore/internal/authz"
	"github.com/orgcore/orgcore/internal/id"
	"github.com/orgcore/orgcore/internal/quota"
	"github.com/orgcore/orgcore/internal/tier"
)

// Service provides tenant management business logic
type Service struct {
	repo        Repository
	catalog     *tier.Catalog
	engine      *authz.Engine
	enforcer    *quota.Enforcer
	auditLogger audit.Logger
}

// NewService creates a new tenant service
func NewService(repo Repository, catalog *tier.Catalog, engine *authz.Engine, enforcer *quota.Enforcer, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		catalog:     catalog,
		engine:      engine,
		enforcer:    enforcer,
		auditLogger: auditLogger,
	}
}

// Create creates a tenant. Any authenticated principal may create one and
// becomes its owner; the owner membership is materialized in the same
// transaction as the tenant row, counted against the assigned tier.
func (s *Service) Create(ctx context.Context, actor authz.Principal, name, slug, priceTierID string) (*Tenant, error) {
	if name == "" {
		return nil, fmt.Errorf("tenant name is required")
	}
	if !ValidSlug(slug) {
		return nil, ErrInvalidSlug
	}

	if err := s.engine.Authorize(ctx, actor, authz.ActionCreate, authz.Entity{
		Type: authz.EntityTenant,
	}); err != nil {
		return nil, err
	}

	// The tier must exist before anything is inserted.
	if _, err := s.catalog.Get(ctx, priceTierID); err != nil {
		return nil, err
	}

	now := time.Now()
	t := &Tenant{
		ID:          id.NewUUIDv7(),
		Name:        name,
		Slug:        slug,
		PriceTierID: priceTierID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.CreateWithOwner(ctx, t, actor.UserID); err != nil {
		return nil, err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTenantCreated,
		TenantID: t.ID,
		ActorID:  actor.UserID,
		Resource: t.Slug,
	})

	return t, nil
}

// Get retrieves a tenant by ID. The tenant row itself is public.
func (s *Service) Get(ctx context.Context, id string) (*Tenant, error) {
	return s.repo.GetByID(ctx, id)
}

// GetBySlug retrieves a tenant by slug. Public; the join flow's welcome
// page resolves tenants this way before any principal exists.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*Tenant, error) {
	return s.repo.GetBySlug(ctx, slug)
}

// List lists tenants with pagination.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*Tenant, error) {
	return s.repo.List(ctx, limit, offset)
}

// Update renames a tenant. Owner-only.
func (s *Service) Update(ctx context.Context, actor authz.Principal, tenantID, name string) (*Tenant, error) {
	if err := s.engine.Authorize(ctx, actor, authz.ActionUpdate, authz.Entity{
		Type:     authz.EntityTenant,
		TenantID: tenantID,
		ID:       tenantID,
	}); err != nil {
		return nil, err
	}

	t, err := s.repo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if name != "" {
		t.Name = name
	}
	t.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ChangeTier reassigns a tenant's price tier and invalidates the cached
// catalog entry. Existing counts above the new limits are left alone; the
// limits only gate future creations. Owner-only.
func (s *Service) ChangeTier(ctx context.Context, actor authz.Principal, tenantID, priceTierID string) (*Tenant, error) {
	if err := s.engine.Authorize(ctx, actor, authz.ActionUpdate, authz.Entity{
		Type:     authz.EntityTenant,
		TenantID: tenantID,
		ID:       tenantID,
	}); err != nil {
		return nil, err
	}

	if _, err := s.catalog.Get(ctx, priceTierID); err != nil {
		return nil, err
	}

	t, err := s.repo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	t.PriceTierID = priceTierID
	t.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	s.catalog.InvalidateTenant(ctx, tenantID)

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTierChanged,
		TenantID: tenantID,
		ActorID:  actor.UserID,
		Resource: priceTierID,
	})

	return t, nil
}

// Delete removes a tenant and everything scoped to it, memberships and
// their group rows included, in one transaction. Owner-only.
func (s *Service) Delete(ctx context.Context, actor authz.Principal, tenantID string) error {
	if err := s.engine.Authorize(ctx, actor, authz.ActionDelete, authz.Entity{
		Type:     authz.EntityTenant,
		TenantID: tenantID,
		ID:       tenantID,
	}); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, tenantID); err != nil {
		return err
	}

	s.catalog.InvalidateTenant(ctx, tenantID)

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTenantDeleted,
		TenantID: tenantID,
		ActorID:  actor.UserID,
	})

	return nil
}

// Usage reports current count against limit for a quota-bound kind,
// members-only. Advisory: the authoritative check happens at insert time.
func (s *Service) Usage(ctx context.Context, actor authz.Principal, tenantID string, kind quota.Kind) (count, limit int, err error) {
	if err := s.engine.Authorize(ctx, actor, authz.ActionRead, authz.Entity{
		Type:     authz.EntityMembership,
		TenantID: tenantID,
	}); err != nil {
		return 0, 0, err
	}
	return s.enforcer.Usage(ctx, tenantID, kind)
}
