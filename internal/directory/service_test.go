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

package directory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgcore/orgcore/internal/audit"
	"github.com/orgcore/orgcore/internal/authz"
	"github.com/orgcore/orgcore/internal/directory"
	"github.com/orgcore/orgcore/internal/event"
	"github.com/orgcore/orgcore/internal/group"
	"github.com/orgcore/orgcore/internal/quota"
	"github.com/orgcore/orgcore/internal/resource"
	"github.com/orgcore/orgcore/internal/svc"
)

// staticFacts answers from fixed role and adminship tables
type staticFacts struct {
	roles  map[string]string // "tenantID/userID" -> role
	admins map[string]bool   // "serviceID/userID" -> adminship
}

func (f *staticFacts) Role(ctx context.Context, tenantID, userID string) (string, bool, error) {
	r, ok := f.roles[tenantID+"/"+userID]
	return r, ok, nil
}

func (f *staticFacts) IsServiceAdmin(ctx context.Context, serviceID, userID string) (bool, error) {
	return f.admins[serviceID+"/"+userID], nil
}

// memGroupRepo implements group.Repository in memory with a group limit
type memGroupRepo struct {
	groups     map[string]*group.Group
	members    map[string][]*group.Member
	groupLimit int
}

func newMemGroupRepo(limit int) *memGroupRepo {
	return &memGroupRepo{groups: map[string]*group.Group{}, members: map[string][]*group.Member{}, groupLimit: limit}
}

func (m *memGroupRepo) Create(ctx context.Context, g *group.Group) error {
	n := 0
	for _, existing := range m.groups {
		if existing.TenantID == g.TenantID {
			n++
		}
	}
	if !quota.Check(n, m.groupLimit) {
		return quota.Exceeded(quota.KindGroup, m.groupLimit)
	}
	cp := *g
	m.groups[g.ID] = &cp
	return nil
}

func (m *memGroupRepo) GetByID(ctx context.Context, tenantID, id string) (*group.Group, error) {
	g, ok := m.groups[id]
	if !ok || g.TenantID != tenantID {
		return nil, group.ErrGroupNotFound
	}
	return g, nil
}

func (m *memGroupRepo) ListByTenant(ctx context.Context, tenantID string) ([]*group.Group, error) {
	var out []*group.Group
	for _, g := range m.groups {
		if g.TenantID == tenantID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *memGroupRepo) ListUserGroups(ctx context.Context, tenantID, userID string) ([]*group.Group, error) {
	return nil, nil
}

func (m *memGroupRepo) Update(ctx context.Context, g *group.Group) error {
	if _, ok := m.groups[g.ID]; !ok {
		return group.ErrGroupNotFound
	}
	cp := *g
	m.groups[g.ID] = &cp
	return nil
}

func (m *memGroupRepo) Delete(ctx context.Context, tenantID, id string) error {
	delete(m.groups, id)
	return nil
}

func (m *memGroupRepo) AddMember(ctx context.Context, gm *group.Member) error {
	for _, existing := range m.members[gm.GroupID] {
		if existing.UserID == gm.UserID {
			return group.ErrDuplicateGroupMember
		}
	}
	m.members[gm.GroupID] = append(m.members[gm.GroupID], gm)
	return nil
}

func (m *memGroupRepo) RemoveMember(ctx context.Context, groupID, userID string) error {
	rows := m.members[groupID]
	for i, gm := range rows {
		if gm.UserID == userID {
			m.members[groupID] = append(rows[:i], rows[i+1:]...)
			return nil
		}
	}
	return group.ErrGroupMemberNotFound
}

func (m *memGroupRepo) ListMembers(ctx context.Context, groupID string) ([]*group.Member, error) {
	return m.members[groupID], nil
}

// memEventRepo implements event.Repository in memory, unbounded
type memEventRepo struct {
	events map[string]*event.Event
}

func (m *memEventRepo) Create(ctx context.Context, e *event.Event) error {
	cp := *e
	m.events[e.ID] = &cp
	return nil
}

func (m *memEventRepo) GetByID(ctx context.Context, tenantID, id string) (*event.Event, error) {
	e, ok := m.events[id]
	if !ok || e.TenantID != tenantID {
		return nil, event.ErrEventNotFound
	}
	return e, nil
}

func (m *memEventRepo) ListByTenant(ctx context.Context, tenantID string) ([]*event.Event, error) {
	var out []*event.Event
	for _, e := range m.events {
		if e.TenantID == tenantID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memEventRepo) ListPublicByTenant(ctx context.Context, tenantID string) ([]*event.Event, error) {
	var out []*event.Event
	for _, e := range m.events {
		if e.TenantID == tenantID && e.Visibility == event.VisibilityPublic {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memEventRepo) Update(ctx context.Context, e *event.Event) error {
	cp := *e
	m.events[e.ID] = &cp
	return nil
}

func (m *memEventRepo) Delete(ctx context.Context, tenantID, id string) error {
	delete(m.events, id)
	return nil
}

func newDirectoryService(facts *staticFacts, groups group.Repository, events event.Repository) *directory.Service {
	return directory.NewService(groups, events, nilResourceRepo{}, nilServiceRepo{facts: facts}, nilItemRepo{},
		authz.NewEngine(facts), audit.NewSlogLogger())
}

// The resource and service repositories are not under test here.

type nilResourceRepo struct{}

func (nilResourceRepo) Create(ctx context.Context, r *resource.Resource) error { return nil }
func (nilResourceRepo) GetByID(ctx context.Context, tenantID, id string) (*resource.Resource, error) {
	return nil, resource.ErrResourceNotFound
}
func (nilResourceRepo) ListByTenant(ctx context.Context, tenantID string) ([]*resource.Resource, error) {
	return nil, nil
}
func (nilResourceRepo) Update(ctx context.Context, r *resource.Resource) error { return nil }
func (nilResourceRepo) Delete(ctx context.Context, tenantID, id string) error  { return nil }

type nilServiceRepo struct {
	facts *staticFacts
}

func (nilServiceRepo) Create(ctx context.Context, s *svc.Service) error { return nil }
func (nilServiceRepo) GetByID(ctx context.Context, tenantID, id string) (*svc.Service, error) {
	return nil, svc.ErrServiceNotFound
}
func (nilServiceRepo) ListByTenant(ctx context.Context, tenantID string) ([]*svc.Service, error) {
	return nil, nil
}
func (nilServiceRepo) Update(ctx context.Context, s *svc.Service) error      { return nil }
func (nilServiceRepo) Delete(ctx context.Context, tenantID, id string) error { return nil }
func (nilServiceRepo) AddAdmin(ctx context.Context, a *svc.Admin) error      { return nil }
func (nilServiceRepo) RemoveAdmin(ctx context.Context, serviceID, userID string) error {
	return nil
}
func (r nilServiceRepo) IsAdmin(ctx context.Context, serviceID, userID string) (bool, error) {
	return r.facts.IsServiceAdmin(ctx, serviceID, userID)
}
func (nilServiceRepo) ListAdmins(ctx context.Context, serviceID string) ([]*svc.Admin, error) {
	return nil, nil
}

type nilItemRepo struct{}

func (nilItemRepo) CreateNote(ctx context.Context, n *svc.Note) error { return nil }
func (nilItemRepo) GetNote(ctx context.Context, serviceID, id string) (*svc.Note, error) {
	return nil, svc.ErrNoteNotFound
}
func (nilItemRepo) UpdateNote(ctx context.Context, n *svc.Note) error          { return nil }
func (nilItemRepo) DeleteNote(ctx context.Context, serviceID, id string) error { return nil }
func (nilItemRepo) ListNotes(ctx context.Context, serviceID string) ([]*svc.Note, error) {
	return nil, nil
}
func (nilItemRepo) CreateRole(ctx context.Context, r *svc.Role) error          { return nil }
func (nilItemRepo) DeleteRole(ctx context.Context, serviceID, id string) error { return nil }
func (nilItemRepo) ListRoles(ctx context.Context, serviceID string) ([]*svc.Role, error) {
	return nil, nil
}
func (nilItemRepo) CreateServiceEvent(ctx context.Context, e *svc.ServiceEvent) error { return nil }
func (nilItemRepo) DeleteServiceEvent(ctx context.Context, serviceID, id string) error {
	return nil
}
func (nilItemRepo) ListServiceEvents(ctx context.Context, serviceID string) ([]*svc.ServiceEvent, error) {
	return nil, nil
}
func (nilItemRepo) CreateEventOwner(ctx context.Context, o *svc.EventOwner) error { return nil }
func (nilItemRepo) DeleteEventOwner(ctx context.Context, serviceID, id string) error {
	return nil
}
func (nilItemRepo) ListEventOwners(ctx context.Context, serviceEventID string) ([]*svc.EventOwner, error) {
	return nil, nil
}

// TestPurpose: Validates group members must already be tenant members.
// Scope: Unit Test
// Security: Groups cannot smuggle outsiders into a tenant
// Expected: Adding a non-member to a group fails as not found; a member is added once and duplicates rejected.
// Test Case ID: DIR-01
func TestDirectory_AddGroupMember_RequiresTenantMembership(t *testing.T) {
	facts := &staticFacts{roles: map[string]string{
		"tenant-1/owner-1":  authz.RoleOwner,
		"tenant-1/member-1": authz.RoleMember,
	}}
	groups := newMemGroupRepo(10)
	s := newDirectoryService(facts, groups, &memEventRepo{events: map[string]*event.Event{}})
	ctx := context.Background()
	owner := authz.Principal{UserID: "owner-1"}

	g, err := s.CreateGroup(ctx, owner, "tenant-1", "Engineering", "")
	require.NoError(t, err)

	err = s.AddGroupMember(ctx, owner, "tenant-1", g.ID, "outsider-1")
	assert.ErrorIs(t, err, group.ErrGroupMemberNotFound,
		"an outsider must not be addable to a group")

	require.NoError(t, s.AddGroupMember(ctx, owner, "tenant-1", g.ID, "member-1"))

	err = s.AddGroupMember(ctx, owner, "tenant-1", g.ID, "member-1")
	assert.ErrorIs(t, err, group.ErrDuplicateGroupMember)
}

// TestPurpose: Validates event creation rejects unknown visibility values and defaults to private.
// Scope: Unit Test
// Expected: Unknown visibility fails; empty visibility becomes private.
// Test Case ID: DIR-02
func TestDirectory_CreateEvent_VisibilityValidation(t *testing.T) {
	facts := &staticFacts{roles: map[string]string{"tenant-1/member-1": authz.RoleMember}}
	events := &memEventRepo{events: map[string]*event.Event{}}
	s := newDirectoryService(facts, newMemGroupRepo(10), events)
	ctx := context.Background()
	member := authz.Principal{UserID: "member-1"}

	_, err := s.CreateEvent(ctx, member, "tenant-1", directory.EventInput{
		Title:      "Bad",
		Visibility: event.Visibility("internal"),
		StartsAt:   time.Now(),
	})
	assert.ErrorIs(t, err, event.ErrInvalidVisibility)

	e, err := s.CreateEvent(ctx, member, "tenant-1", directory.EventInput{
		Title:    "Defaulted",
		StartsAt: time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, event.VisibilityPrivate, e.Visibility)
}

// TestPurpose: Validates event update rights belong to the creator and the owner only.
// Scope: Unit Test
// Permissions: creator vs unrelated member
// Expected: The creator and the owner update; another member is denied.
// Test Case ID: DIR-03
func TestDirectory_UpdateEvent_CreatorOrOwner(t *testing.T) {
	facts := &staticFacts{roles: map[string]string{
		"tenant-1/owner-1":   authz.RoleOwner,
		"tenant-1/creator-1": authz.RoleMember,
		"tenant-1/other-1":   authz.RoleMember,
	}}
	events := &memEventRepo{events: map[string]*event.Event{}}
	s := newDirectoryService(facts, newMemGroupRepo(10), events)
	ctx := context.Background()

	e, err := s.CreateEvent(ctx, authz.Principal{UserID: "creator-1"}, "tenant-1", directory.EventInput{
		Title: "Standup", StartsAt: time.Now(),
	})
	require.NoError(t, err)

	_, err = s.UpdateEvent(ctx, authz.Principal{UserID: "other-1"}, "tenant-1", e.ID, directory.EventInput{Title: "Hijacked"})
	assert.ErrorIs(t, err, authz.ErrDenied)

	_, err = s.UpdateEvent(ctx, authz.Principal{UserID: "creator-1"}, "tenant-1", e.ID, directory.EventInput{Title: "Renamed"})
	require.NoError(t, err)

	_, err = s.UpdateEvent(ctx, authz.Principal{UserID: "owner-1"}, "tenant-1", e.ID, directory.EventInput{Title: "Owner Renamed"})
	require.NoError(t, err)
}
