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

package quota

import (
	"context"
	"errors"
	"fmt"

	"github.com/orgcore/orgcore/internal/tier"
)

// Kind identifies a quota-bound resource kind. Resources and services are
// deliberately not quota-bound; only these three kinds count against a tier.
type Kind string

const (
	KindUser  Kind = "user"
	KindGroup Kind = "group"
	KindEvent Kind = "event"
)

// Error reports a denied creation because the tenant is at its tier limit.
type Error struct {
	Kind  Kind
	Limit int
}

func (e *Error) Error() string {
	return fmt.Sprintf("quota exceeded: %s limit of %d reached", e.Kind, e.Limit)
}

// Exceeded builds a quota denial error for a kind and limit.
func Exceeded(kind Kind, limit int) error {
	return &Error{Kind: kind, Limit: limit}
}

// AsError extracts a quota error from an error chain.
func AsError(err error) (*Error, bool) {
	var qe *Error
	if errors.As(err, &qe) {
		return qe, true
	}
	return nil, false
}

// Check is the quota decision: one more creation is allowed iff the current
// count is strictly below the limit. A tenant already at the limit is denied.
func Check(count, limit int) bool {
	return count < limit
}

// LimitFor returns the tier limit for a kind.
func LimitFor(t *tier.PriceTier, kind Kind) int {
	switch kind {
	case KindUser:
		return t.UserLimit
	case KindGroup:
		return t.GroupLimit
	case KindEvent:
		return t.EventLimit
	}
	return 0
}

// Counter counts existing rows of a kind for a tenant.
type Counter interface {
	Count(ctx context.Context, tenantID string, kind Kind) (int, error)
}

// Enforcer answers advisory quota questions outside the insert path. The
// authoritative check runs inside the storage transaction that performs the
// insert; this type exists for read-only surfaces (usage endpoints, the join
// flow's pre-flight) where a stale answer is acceptable.
type Enforcer struct {
	catalog *tier.Catalog
	counter Counter
}

// NewEnforcer creates an advisory quota enforcer.
func NewEnforcer(catalog *tier.Catalog, counter Counter) *Enforcer {
	return &Enforcer{catalog: catalog, counter: counter}
}

// CanCreate reports whether creating one more unit of kind is currently
// within the tenant's tier limit.
func (e *Enforcer) CanCreate(ctx context.Context, tenantID string, kind Kind) (bool, error) {
	t, err := e.catalog.ForTenant(ctx, tenantID)
	if err != nil {
		return false, fmt.Errorf("failed to resolve tier: %w", err)
	}

	count, err := e.counter.Count(ctx, tenantID, kind)
	if err != nil {
		return false, fmt.Errorf("failed to count %s rows: %w", kind, err)
	}

	return Check(count, LimitFor(t, kind)), nil
}

// Usage reports current count and limit for a kind.
func (e *Enforcer) Usage(ctx context.Context, tenantID string, kind Kind) (count, limit int, err error) {
	t, err := e.catalog.ForTenant(ctx, tenantID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to resolve tier: %w", err)
	}
	count, err = e.counter.Count(ctx, tenantID, kind)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count %s rows: %w", kind, err)
	}
	return count, LimitFor(t, kind), nil
}
