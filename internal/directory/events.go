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
	"github.com/orgcore/orgcore/internal/event"
	"github.com/orgcore/orgcore/internal/id"
)

// EventInput carries the caller-supplied fields of an event.
type EventInput struct {
	Title      string
	Visibility event.Visibility
	StartsAt   time.Time
	EndsAt     time.Time
}

// CreateEvent creates an event. Any tenant member may create one; counts
// against the tier event limit inside the insert transaction.
func (s *Service) CreateEvent(ctx context.Context, actor authz.Principal, tenantID string, in EventInput) (*event.Event, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("event title is required")
	}
	if in.Visibility == "" {
		in.Visibility = event.VisibilityPrivate
	}
	if !in.Visibility.Valid() {
		return nil, fmt.Errorf("%w: %s", event.ErrInvalidVisibility, in.Visibility)
	}

	if err := s.engine.Authorize(ctx, actor, authz.ActionCreate, authz.Entity{
		Type:     authz.EntityEvent,
		TenantID: tenantID,
	}); err != nil {
		return nil, err
	}

	now := time.Now()
	e := &event.Event{
		ID:         id.NewUUIDv7(),
		TenantID:   tenantID,
		CreatorID:  actor.UserID,
		Title:      in.Title,
		Visibility: in.Visibility,
		StartsAt:   in.StartsAt,
		EndsAt:     in.EndsAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.events.Create(ctx, e); err != nil {
		s.auditQuotaDenial(ctx, tenantID, actor.UserID, err)
		return nil, err
	}

	return e, nil
}

// GetEvent retrieves an event. Public events are readable by anyone,
// anonymous visitors included; private events by tenant members only. A
// private event outside the actor's tenant surfaces as not found.
func (s *Service) GetEvent(ctx context.Context, actor authz.Principal, tenantID, eventID string) (*event.Event, error) {
	e, err := s.events.GetByID(ctx, tenantID, eventID)
	if err != nil {
		return nil, err
	}

	if err := s.engine.Authorize(ctx, actor, authz.ActionRead, authz.Entity{
		Type:     authz.EntityEvent,
		TenantID: e.TenantID,
		ID:       e.ID,
		Public:   e.Visibility == event.VisibilityPublic,
	}); err != nil {
		return nil, err
	}

	return e, nil
}

// ListEvents lists the tenant's events. Members see everything; everyone
// else, anonymous included, sees only the public ones.
func (s *Service) ListEvents(ctx context.Context, actor authz.Principal, tenantID string) ([]*event.Event, error) {
	d, err := s.engine.Decide(ctx, actor, authz.ActionRead, authz.Entity{
		Type:     authz.EntityEvent,
		TenantID: tenantID,
	})
	if err != nil {
		return nil, err
	}
	if d.Allowed {
		return s.events.ListByTenant(ctx, tenantID)
	}
	return s.events.ListPublicByTenant(ctx, tenantID)
}

// UpdateEvent changes an event. Creator or tenant owner.
func (s *Service) UpdateEvent(ctx context.Context, actor authz.Principal, tenantID, eventID string, in EventInput) (*event.Event, error) {
	e, err := s.events.GetByID(ctx, tenantID, eventID)
	if err != nil {
		return nil, err
	}

	if err := s.engine.Authorize(ctx, actor, authz.ActionUpdate, authz.Entity{
		Type:      authz.EntityEvent,
		TenantID:  e.TenantID,
		ID:        e.ID,
		CreatorID: e.CreatorID,
	}); err != nil {
		return nil, err
	}

	if in.Title != "" {
		e.Title = in.Title
	}
	if in.Visibility != "" {
		if !in.Visibility.Valid() {
			return nil, fmt.Errorf("%w: %s", event.ErrInvalidVisibility, in.Visibility)
		}
		e.Visibility = in.Visibility
	}
	if !in.StartsAt.IsZero() {
		e.StartsAt = in.StartsAt
	}
	if !in.EndsAt.IsZero() {
		e.EndsAt = in.EndsAt
	}
	e.UpdatedAt = time.Now()

	if err := s.events.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// DeleteEvent removes an event. Creator or tenant owner.
func (s *Service) DeleteEvent(ctx context.Context, actor authz.Principal, tenantID, eventID string) error {
	e, err := s.events.GetByID(ctx, tenantID, eventID)
	if err != nil {
		return err
	}

	if err := s.engine.Authorize(ctx, actor, authz.ActionDelete, authz.Entity{
		Type:      authz.EntityEvent,
		TenantID:  e.TenantID,
		ID:        e.ID,
		CreatorID: e.CreatorID,
	}); err != nil {
		return err
	}

	return s.events.Delete(ctx, tenantID, eventID)
}
