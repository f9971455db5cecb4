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
	"github.com/orgcore/orgcore/internal/group"
	"github.com/orgcore/orgcore/internal/id"
)

// CreateGroup creates a group. Owner-only; counts against the tier group
// limit inside the insert transaction.
func (s *Service) CreateGroup(ctx context.Context, actor authz.Principal, tenantID, name, description string) (*group.Group, error) {
	if name == "" {
		return nil, fmt.Errorf("group name is required")
	}

	if err := s.engine.Authorize(ctx, actor, authz.ActionCreate, authz.Entity{
		Type:     authz.EntityGroup,
		TenantID: tenantID,
	}); err != nil {
		return nil, err
	}

	now := time.Now()
	g := &group.Group{
		ID:          id.NewUUIDv7(),
		TenantID:    tenantID,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.groups.Create(ctx, g); err != nil {
		s.auditQuotaDenial(ctx, tenantID, actor.UserID, err)
		return nil, err
	}

	return g, nil
}

// GetGroup retrieves a group. Members-only.
func (s *Service) GetGroup(ctx context.Context, actor authz.Principal, tenantID, groupID string) (*group.Group, error) {
	if err := s.engine.Authorize(ctx, actor, authz.ActionRead, authz.Entity{
		Type:     authz.EntityGroup,
		TenantID: tenantID,
	}); err != nil {
		return nil, err
	}
	return s.groups.GetByID(ctx, tenantID, groupID)
}

// ListGroups lists the tenant's groups. Members-only.
func (s *Service) ListGroups(ctx context.Context, actor authz.Principal, tenantID string) ([]*group.Group, error) {
	if err := s.engine.Authorize(ctx, actor, authz.ActionRead, authz.Entity{
		Type:     authz.EntityGroup,
		TenantID: tenantID,
	}); err != nil {
		return nil, err
	}
	return s.groups.ListByTenant(ctx, tenantID)
}

// UpdateGroup renames or redescribes a group. Owner-only.
func (s *Service) UpdateGroup(ctx context.Context, actor authz.Principal, tenantID, groupID, name, description string) (*group.Group, error) {
	if err := s.engine.Authorize(ctx, actor, authz.ActionUpdate, authz.Entity{
		Type:     authz.EntityGroup,
		TenantID: tenantID,
		ID:       groupID,
	}); err != nil {
		return nil, err
	}

	g, err := s.groups.GetByID(ctx, tenantID, groupID)
	if err != nil {
		return nil, err
	}

	if name != "" {
		g.Name = name
	}
	g.Description = description
	g.UpdatedAt = time.Now()

	if err := s.groups.Update(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// DeleteGroup removes a group and its member rows. Owner-only.
func (s *Service) DeleteGroup(ctx context.Context, actor authz.Principal, tenantID, groupID string) error {
	if err := s.engine.Authorize(ctx, actor, authz.ActionDelete, authz.Entity{
		Type:     authz.EntityGroup,
		TenantID: tenantID,
		ID:       groupID,
	}); err != nil {
		return err
	}
	return s.groups.Delete(ctx, tenantID, groupID)
}

// AddGroupMember puts a tenant member into a group. Owner-only, same rule as
// modifying the group itself.
func (s *Service) AddGroupMember(ctx context.Context, actor authz.Principal, tenantID, groupID, userID string) error {
	if err := s.engine.Authorize(ctx, actor, authz.ActionUpdate, authz.Entity{
		Type:     authz.EntityGroup,
		TenantID: tenantID,
		ID:       groupID,
	}); err != nil {
		return err
	}

	// The target must belong to the group's tenant.
	if _, ok, err := s.engine.Facts().Role(ctx, tenantID, userID); err != nil {
		return err
	} else if !ok {
		return group.ErrGroupMemberNotFound
	}

	if _, err := s.groups.GetByID(ctx, tenantID, groupID); err != nil {
		return err
	}

	return s.groups.AddMember(ctx, &group.Member{
		GroupID: groupID,
		UserID:  userID,
		AddedAt: time.Now(),
	})
}

// RemoveGroupMember takes a member out of a group. Owner-only.
func (s *Service) RemoveGroupMember(ctx context.Context, actor authz.Principal, tenantID, groupID, userID string) error {
	if err := s.engine.Authorize(ctx, actor, authz.ActionUpdate, authz.Entity{
		Type:     authz.EntityGroup,
		TenantID: tenantID,
		ID:       groupID,
	}); err != nil {
		return err
	}
	if _, err := s.groups.GetByID(ctx, tenantID, groupID); err != nil {
		return err
	}
	return s.groups.RemoveMember(ctx, groupID, userID)
}

// ListGroupMembers lists a group's members. Members-only.
func (s *Service) ListGroupMembers(ctx context.Context, actor authz.Principal, tenantID, groupID string) ([]*group.Member, error) {
	if err := s.engine.Authorize(ctx, actor, authz.ActionRead, authz.Entity{
		Type:     authz.EntityGroup,
		TenantID: tenantID,
		ID:       groupID,
	}); err != nil {
		return nil, err
	}
	if _, err := s.groups.GetByID(ctx, tenantID, groupID); err != nil {
		return nil, err
	}
	return s.groups.ListMembers(ctx, groupID)
}
