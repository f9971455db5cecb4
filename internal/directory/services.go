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
	"github.com/orgcore/orgcore/internal/svc"
)

// CreateService creates a service. Owner-only; services are not quota-bound.
func (s *Service) CreateService(ctx context.Context, actor authz.Principal, tenantID, name, description string) (*svc.Service, error) {
	if name == "" {
		return nil, fmt.Errorf("service name is required")
	}

	if err := s.engine.Authorize(ctx, actor, authz.ActionCreate, authz.Entity{
		Type:     authz.EntityService,
		TenantID: tenantID,
	}); err != nil {
		return nil, err
	}

	now := time.Now()
	sv := &svc.Service{
		ID:          id.NewUUIDv7(),
		TenantID:    tenantID,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.services.Create(ctx, sv); err != nil {
		return nil, err
	}
	return sv, nil
}

// GetService retrieves a service. Members-only.
func (s *Service) GetService(ctx context.Context, actor authz.Principal, tenantID, serviceID string) (*svc.Service, error) {
	if err := s.engine.Authorize(ctx, actor, authz.ActionRead, authz.Entity{
		Type:     authz.EntityService,
		TenantID: tenantID,
	}); err != nil {
		return nil, err
	}
	return s.services.GetByID(ctx, tenantID, serviceID)
}

// ListServices lists the tenant's services. Members-only.
func (s *Service) ListServices(ctx context.Context, actor authz.Principal, tenantID string) ([]*svc.Service, error) {
	if err := s.engine.Authorize(ctx, actor, authz.ActionRead, authz.Entity{
		Type:     authz.EntityService,
		TenantID: tenantID,
	}); err != nil {
		return nil, err
	}
	return s.services.ListByTenant(ctx, tenantID)
}

// UpdateService changes a service. Owner-only.
func (s *Service) UpdateService(ctx context.Context, actor authz.Principal, tenantID, serviceID, name, description string) (*svc.Service, error) {
	if err := s.engine.Authorize(ctx, actor, authz.ActionUpdate, authz.Entity{
		Type:     authz.EntityService,
		TenantID: tenantID,
		ID:       serviceID,
	}); err != nil {
		return nil, err
	}

	sv, err := s.services.GetByID(ctx, tenantID, serviceID)
	if err != nil {
		return nil, err
	}

	if name != "" {
		sv.Name = name
	}
	sv.Description = description
	sv.UpdatedAt = time.Now()

	if err := s.services.Update(ctx, sv); err != nil {
		return nil, err
	}
	return sv, nil
}

// DeleteService removes a service and everything hanging off it. Owner-only.
func (s *Service) DeleteService(ctx context.Context, actor authz.Principal, tenantID, serviceID string) error {
	if err := s.engine.Authorize(ctx, actor, authz.ActionDelete, authz.Entity{
		Type:     authz.EntityService,
		TenantID: tenantID,
		ID:       serviceID,
	}); err != nil {
		return err
	}
	return s.services.Delete(ctx, tenantID, serviceID)
}

// AddServiceAdmin registers a member as admin of one service. Managing the
// admin registry is part of managing the service itself: owner-only.
func (s *Service) AddServiceAdmin(ctx context.Context, actor authz.Principal, tenantID, serviceID, userID string) error {
	if err := s.engine.Authorize(ctx, actor, authz.ActionUpdate, authz.Entity{
		Type:     authz.EntityService,
		TenantID: tenantID,
		ID:       serviceID,
	}); err != nil {
		return err
	}

	if _, err := s.services.GetByID(ctx, tenantID, serviceID); err != nil {
		return err
	}

	// Admins must belong to the tenant.
	if _, ok, err := s.engine.Facts().Role(ctx, tenantID, userID); err != nil {
		return err
	} else if !ok {
		return svc.ErrServiceNotFound
	}

	return s.services.AddAdmin(ctx, &svc.Admin{
		ServiceID: serviceID,
		UserID:    userID,
		AddedAt:   time.Now(),
	})
}

// RemoveServiceAdmin unregisters a service admin. Owner-only.
func (s *Service) RemoveServiceAdmin(ctx context.Context, actor authz.Principal, tenantID, serviceID, userID string) error {
	if err := s.engine.Authorize(ctx, actor, authz.ActionUpdate, authz.Entity{
		Type:     authz.EntityService,
		TenantID: tenantID,
		ID:       serviceID,
	}); err != nil {
		return err
	}
	if _, err := s.services.GetByID(ctx, tenantID, serviceID); err != nil {
		return err
	}
	return s.services.RemoveAdmin(ctx, serviceID, userID)
}

// ListServiceAdmins lists the admins of a service. Members-only.
func (s *Service) ListServiceAdmins(ctx context.Context, actor authz.Principal, tenantID, serviceID string) ([]*svc.Admin, error) {
	if err := s.engine.Authorize(ctx, actor, authz.ActionRead, authz.Entity{
		Type:     authz.EntityService,
		TenantID: tenantID,
		ID:       serviceID,
	}); err != nil {
		return nil, err
	}
	if _, err := s.services.GetByID(ctx, tenantID, serviceID); err != nil {
		return nil, err
	}
	return s.services.ListAdmins(ctx, serviceID)
}

// subEntity authorizes an action on a sub-resource of a service, resolving
// the parent service so the per-service admin registration applies.
func (s *Service) subEntity(ctx context.Context, actor authz.Principal, action authz.Action, et authz.EntityType, tenantID, serviceID string) error {
	if _, err := s.services.GetByID(ctx, tenantID, serviceID); err != nil {
		return err
	}
	return s.engine.Authorize(ctx, actor, action, authz.Entity{
		Type:      et,
		TenantID:  tenantID,
		ServiceID: serviceID,
	})
}

// CreateServiceNote attaches a note. Tenant owner or service admin.
func (s *Service) CreateServiceNote(ctx context.Context, actor authz.Principal, tenantID, serviceID, body string) (*svc.Note, error) {
	if body == "" {
		return nil, fmt.Errorf("note body is required")
	}
	if err := s.subEntity(ctx, actor, authz.ActionCreate, authz.EntityServiceNote, tenantID, serviceID); err != nil {
		return nil, err
	}

	now := time.Now()
	n := &svc.Note{
		ID:        id.NewUUIDv7(),
		ServiceID: serviceID,
		AuthorID:  actor.UserID,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.items.CreateNote(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// UpdateServiceNote edits a note. Tenant owner or service admin.
func (s *Service) UpdateServiceNote(ctx context.Context, actor authz.Principal, tenantID, serviceID, noteID, body string) (*svc.Note, error) {
	if err := s.subEntity(ctx, actor, authz.ActionUpdate, authz.EntityServiceNote, tenantID, serviceID); err != nil {
		return nil, err
	}

	n, err := s.items.GetNote(ctx, serviceID, noteID)
	if err != nil {
		return nil, err
	}
	n.Body = body
	n.UpdatedAt = time.Now()
	if err := s.items.UpdateNote(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// DeleteServiceNote removes a note. Tenant owner or service admin.
func (s *Service) DeleteServiceNote(ctx context.Context, actor authz.Principal, tenantID, serviceID, noteID string) error {
	if err := s.subEntity(ctx, actor, authz.ActionDelete, authz.EntityServiceNote, tenantID, serviceID); err != nil {
		return err
	}
	return s.items.DeleteNote(ctx, serviceID, noteID)
}

// ListServiceNotes lists a service's notes. Members-only.
func (s *Service) ListServiceNotes(ctx context.Context, actor authz.Principal, tenantID, serviceID string) ([]*svc.Note, error) {
	if err := s.subEntity(ctx, actor, authz.ActionRead, authz.EntityServiceNote, tenantID, serviceID); err != nil {
		return nil, err
	}
	return s.items.ListNotes(ctx, serviceID)
}

// CreateServiceRole defines a position within a service. Owner or admin.
func (s *Service) CreateServiceRole(ctx context.Context, actor authz.Principal, tenantID, serviceID, name string) (*svc.Role, error) {
	if name == "" {
		return nil, fmt.Errorf("role name is required")
	}
	if err := s.subEntity(ctx, actor, authz.ActionCreate, authz.EntityServiceRole, tenantID, serviceID); err != nil {
		return nil, err
	}

	r := &svc.Role{
		ID:        id.NewUUIDv7(),
		ServiceID: serviceID,
		Name:      name,
		CreatedAt: time.Now(),
	}
	if err := s.items.CreateRole(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// DeleteServiceRole removes a position. Owner or admin.
func (s *Service) DeleteServiceRole(ctx context.Context, actor authz.Principal, tenantID, serviceID, roleID string) error {
	if err := s.subEntity(ctx, actor, authz.ActionDelete, authz.EntityServiceRole, tenantID, serviceID); err != nil {
		return err
	}
	return s.items.DeleteRole(ctx, serviceID, roleID)
}

// ListServiceRoles lists a service's positions. Members-only.
func (s *Service) ListServiceRoles(ctx context.Context, actor authz.Principal, tenantID, serviceID string) ([]*svc.Role, error) {
	if err := s.subEntity(ctx, actor, authz.ActionRead, authz.EntityServiceRole, tenantID, serviceID); err != nil {
		return nil, err
	}
	return s.items.ListRoles(ctx, serviceID)
}

// CreateServiceEvent schedules an occurrence of a service. Owner or admin.
func (s *Service) CreateServiceEvent(ctx context.Context, actor authz.Principal, tenantID, serviceID string, startsAt time.Time) (*svc.ServiceEvent, error) {
	if err := s.subEntity(ctx, actor, authz.ActionCreate, authz.EntityServiceEvent, tenantID, serviceID); err != nil {
		return nil, err
	}

	e := &svc.ServiceEvent{
		ID:        id.NewUUIDv7(),
		ServiceID: serviceID,
		StartsAt:  startsAt,
		CreatedAt: time.Now(),
	}
	if err := s.items.CreateServiceEvent(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// DeleteServiceEvent unschedules an occurrence. Owner or admin.
func (s *Service) DeleteServiceEvent(ctx context.Context, actor authz.Principal, tenantID, serviceID, serviceEventID string) error {
	if err := s.subEntity(ctx, actor, authz.ActionDelete, authz.EntityServiceEvent, tenantID, serviceID); err != nil {
		return err
	}
	return s.items.DeleteServiceEvent(ctx, serviceID, serviceEventID)
}

// ListServiceEvents lists a service's occurrences. Members-only.
func (s *Service) ListServiceEvents(ctx context.Context, actor authz.Principal, tenantID, serviceID string) ([]*svc.ServiceEvent, error) {
	if err := s.subEntity(ctx, actor, authz.ActionRead, authz.EntityServiceEvent, tenantID, serviceID); err != nil {
		return nil, err
	}
	return s.items.ListServiceEvents(ctx, serviceID)
}

// CreateEventOwner assigns responsibility for a service event. Owner or admin.
func (s *Service) CreateEventOwner(ctx context.Context, actor authz.Principal, tenantID, serviceID, serviceEventID, userID string) (*svc.EventOwner, error) {
	if err := s.subEntity(ctx, actor, authz.ActionCreate, authz.EntityEventOwner, tenantID, serviceID); err != nil {
		return nil, err
	}

	o := &svc.EventOwner{
		ID:             id.NewUUIDv7(),
		ServiceID:      serviceID,
		ServiceEventID: serviceEventID,
		UserID:         userID,
		CreatedAt:      time.Now(),
	}
	if err := s.items.CreateEventOwner(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// DeleteEventOwner removes an assignment. Owner or admin.
func (s *Service) DeleteEventOwner(ctx context.Context, actor authz.Principal, tenantID, serviceID, eventOwnerID string) error {
	if err := s.subEntity(ctx, actor, authz.ActionDelete, authz.EntityEventOwner, tenantID, serviceID); err != nil {
		return err
	}
	return s.items.DeleteEventOwner(ctx, serviceID, eventOwnerID)
}

// ListEventOwners lists the assignments for a service event. Members-only.
func (s *Service) ListEventOwners(ctx context.Context, actor authz.Principal, tenantID, serviceID, serviceEventID string) ([]*svc.EventOwner, error) {
	if err := s.subEntity(ctx, actor, authz.ActionRead, authz.EntityEventOwner, tenantID, serviceID); err != nil {
		return nil, err
	}
	return s.items.ListEventOwners(ctx, serviceEventID)
}
