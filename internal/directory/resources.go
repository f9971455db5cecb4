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

package directory

import (
	"context"
	"fmt"
	"time"

	"github.com/orgcore/orgcore/internal/authz"
	"github.com/orgcore/orgcore/internal/id"
	"github.com/orgcore/orgcore/internal/resource"
)

// CreateResource creates a resource. Owner-only; resources are not
// quota-bound.
func (s *Service) CreateResource(ctx context.Context, actor authz.Principal, tenantID, name, description string) (*resource.Resource, error) {
	if name == "" {
		return nil, fmt.Errorf("resource name is required")
	}

	if err := s.engine.Authorize(ctx, actor, authz.ActionCreate, authz.Entity{
		Type:     authz.EntityResource,
		TenantID: tenantID,
	}); err != nil {
		return nil, err
	}

	now := time.Now()
	r := &resource.Resource{
		ID:          id.NewUUIDv7(),
		TenantID:    tenantID,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.resources.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// GetResource retrieves a resource. Members-only.
func (s *Service) GetResource(ctx context.Context, actor authz.Principal, tenantID, resourceID string) (*resource.Resource, error) {
	if err := s.engine.Authorize(ctx, actor, authz.ActionRead, authz.Entity{
		Type:     authz.EntityResource,
		TenantID: tenantID,
	}); err != nil {
		return nil, err
	}
	return s.resources.GetByID(ctx, tenantID, resourceID)
}

// ListResources lists the tenant's resources. Members-only.
func (s *Service) ListResources(ctx context.Context, actor authz.Principal, tenantID string) ([]*resource.Resource, error) {
	if err := s.engine.Authorize(ctx, actor, authz.ActionRead, authz.Entity{
		Type:     authz.EntityResource,
		TenantID: tenantID,
	}); err != nil {
		return nil, err
	}
	return s.resources.ListByTenant(ctx, tenantID)
}

// UpdateResource changes a resource. Owner-only.
func (s *Service) UpdateResource(ctx context.Context, actor authz.Principal, tenantID, resourceID, name, description string) (*resource.Resource, error) {
	if err := s.engine.Authorize(ctx, actor, authz.ActionUpdate, authz.Entity{
		Type:     authz.EntityResource,
		TenantID: tenantID,
		ID:       resourceID,
	}); err != nil {
		return nil, err
	}

	r, err := s.resources.GetByID(ctx, tenantID, resourceID)
	if err != nil {
		return nil, err
	}

	if name != "" {
		r.Name = name
	}
	r.Description = description
	r.UpdatedAt = time.Now()

	if err := s.resources.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// DeleteResource removes a resource. Owner-only.
func (s *Service) DeleteResource(ctx context.Context, actor authz.Principal, tenantID, resourceID string) error {
	if err := s.engine.Authorize(ctx, actor, authz.ActionDelete, authz.Entity{
		Type:     authz.EntityResource,
		TenantID: tenantID,
		ID:       resourceID,
	}); err != nil {
		return err
	}
	return s.resources.Delete(ctx, tenantID, resourceID)
}
