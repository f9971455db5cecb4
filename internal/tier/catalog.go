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

package tier

import (
	"context"
	"log/slog"
	"time"
)

// Cache defines the interface for the catalog read cache. Lookups that miss
// fall through to the repository; a failing cache must never fail a lookup.
type Cache interface {
	Get(ctx context.Context, tenantID string) (*PriceTier, bool)
	Set(ctx context.Context, tenantID string, t *PriceTier, ttl time.Duration)
	Invalidate(ctx context.Context, tenantID string)
}

// Catalog is the read-only tier lookup the quota path consults. Entries are
// cached per tenant and invalidated when the tenant's tier assignment
// changes.
type Catalog struct {
	repo  Repository
	cache Cache
	ttl   time.Duration
}

// NewCatalog creates a catalog. cache may be nil, in which case every lookup
// hits the repository.
func NewCatalog(repo Repository, cache Cache, ttl time.Duration) *Catalog {
	return &Catalog{repo: repo, cache: cache, ttl: ttl}
}

// ForTenant resolves the tier currently assigned to a tenant.
func (c *Catalog) ForTenant(ctx context.Context, tenantID string) (*PriceTier, error) {
	if c.cache != nil {
		if t, ok := c.cache.Get(ctx, tenantID); ok {
			return t, nil
		}
	}

	t, err := c.repo.GetByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Set(ctx, tenantID, t, c.ttl)
	}

	return t, nil
}

// Get retrieves a tier by its catalog ID, bypassing the tenant cache.
func (c *Catalog) Get(ctx context.Context, tierID string) (*PriceTier, error) {
	return c.repo.GetByID(ctx, tierID)
}

// List returns the full catalog.
func (c *Catalog) List(ctx context.Context) ([]*PriceTier, error) {
	return c.repo.List(ctx)
}

// InvalidateTenant drops the cached entry for a tenant. Must be called
// whenever the tenant's tier assignment changes.
func (c *Catalog) InvalidateTenant(ctx context.Context, tenantID string) {
	if c.cache == nil {
		return
	}
	c.cache.Invalidate(ctx, tenantID)
	slog.DebugContext(ctx, "tier cache invalidated", "tenant_id", tenantID)
}
