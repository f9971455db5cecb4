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

// rule describes who may perform one action on one entity type. Flags are
// additive: the action is allowed if any satisfied flag applies. The tenant
// owner implicitly satisfies every tenant-scoped flag.
type rule struct {
	anyone           bool // public, including anonymous
	publicRead       bool // anyone iff the entity itself is public
	anyAuthenticated bool // any signed-in principal, membership not required
	member           bool // any member of the entity's tenant
	owner            bool // tenant owner only
	creator          bool // the entity's creator (or the owner)
	serviceAdmin     bool // registered admin of the parent service (or the owner)
}

type ruleTable map[EntityType]map[Action]rule

func (t ruleTable) lookup(et EntityType, a Action) (rule, bool) {
	actions, ok := t[et]
	if !ok {
		return rule{}, false
	}
	r, ok := actions[a]
	return r, ok
}

// defaultRules is the fixed policy table. Two roles (owner, member) and a
// small closed entity set; invitation redemption is a privileged internal
// path that does not go through this table.
func defaultRules() ruleTable {
	ownerWrite := map[Action]rule{
		ActionCreate: {owner: true},
		ActionRead:   {member: true},
		ActionUpdate: {owner: true},
		ActionDelete: {owner: true},
	}

	subResource := map[Action]rule{
		ActionCreate: {serviceAdmin: true},
		ActionRead:   {member: true},
		ActionUpdate: {serviceAdmin: true},
		ActionDelete: {serviceAdmin: true},
	}

	return ruleTable{
		EntityTenant: {
			ActionCreate: {anyAuthenticated: true}, // creator becomes owner
			ActionRead:   {anyone: true},
			ActionUpdate: {owner: true},
			ActionDelete: {owner: true},
		},
		EntityMembership: {
			ActionCreate: {owner: true},
			ActionRead:   {member: true},
			// Members may not touch membership rows, their own included.
			ActionUpdate: {owner: true},
			ActionDelete: {owner: true},
		},
		EntityGroup:    ownerWrite,
		EntityResource: ownerWrite,
		EntityService:  ownerWrite,
		EntityEvent: {
			ActionCreate: {member: true},
			ActionRead:   {publicRead: true, member: true},
			ActionUpdate: {creator: true},
			ActionDelete: {creator: true},
		},
		EntityServiceNote:  subResource,
		EntityServiceRole:  subResource,
		EntityServiceEvent: subResource,
		EntityEventOwner:   subResource,
	}
}
