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

package tier_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgcore/orgcore/internal/tier"
)

// mockRepo implements tier.Repository and counts lookups
type mockRepo struct {
	byTenant map[string]*tier.PriceTier
	hits     int
}

func (m *mockRepo) GetByID(ctx context.Context, id string) (*tier.PriceTier, error) {
	return nil, tier.ErrTierNotFound
}

func (m *mockRepo) GetByTenant(ctx context.Context, tenantID string) (*tier.PriceTier, error) {
	m.hits++
	if t, ok := m.byTenant[tenantID]; ok {
		return t, nil
	}
	return nil, tier.ErrTierNotFound
}

func (m *mockRepo) List(ctx context.Context) ([]*tier.PriceTier, error) { return nil, nil }

// mapCache implements tier.Cache in memory
type mapCache struct {
	entries map[string]*tier.PriceTier
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string]*tier.PriceTier{}}
}

func (c *mapCache) Get(ctx context.Context, tenantID string) (*tier.PriceTier, bool) {
	t, ok := c.entries[tenantID]
	return t, ok
}

func (c *mapCache) Set(ctx context.Context, tenantID string, t *tier.PriceTier, ttl time.Duration) {
	c.entries[tenantID] = t
}

func (c *mapCache) Invalidate(ctx context.Context, tenantID string) {
	delete(c.entries, tenantID)
}

// TestPurpose: Validates the catalog caches per-tenant lookups and invalidation forces a refresh.
// Scope: Unit Test
// Expected: Repeated lookups hit the repository once; after InvalidateTenant the next lookup refetches.
// Test Case ID: TIE-01
func TestTier_Catalog_CacheAndInvalidation(t *testing.T) {
	free := &tier.PriceTier{ID: "tier-free", Name: "free", UserLimit: 5, GroupLimit: 3, EventLimit: 10}
	pro := &tier.PriceTier{ID: "tier-pro", Name: "starter", UserLimit: 25, GroupLimit: 10, EventLimit: 100}

	repo := &mockRepo{byTenant: map[string]*tier.PriceTier{"tenant-1": free}}
	catalog := tier.NewCatalog(repo, newMapCache(), time.Minute)
	ctx := context.Background()

	got, err := catalog.ForTenant(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, "tier-free", got.ID)
	assert.Equal(t, 1, repo.hits)

	// Second lookup is served from cache.
	_, err = catalog.ForTenant(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.hits, "cached lookup must not hit the repository")

	// Tier change: without invalidation the stale entry would win.
	repo.byTenant["tenant-1"] = pro
	catalog.InvalidateTenant(ctx, "tenant-1")

	got, err = catalog.ForTenant(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, "tier-pro", got.ID, "post-invalidation lookup must see the new tier")
	assert.Equal(t, 2, repo.hits)
}

// TestPurpose: Validates the catalog works without a cache configured.
// Scope: Unit Test
// Expected: Every lookup hits the repository; invalidation is a no-op.
// Test Case ID: TIE-02
func TestTier_Catalog_NilCache(t *testing.T) {
	free := &tier.PriceTier{ID: "tier-free", Name: "free"}
	repo := &mockRepo{byTenant: map[string]*tier.PriceTier{"tenant-1": free}}
	catalog := tier.NewCatalog(repo, nil, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := catalog.ForTenant(ctx, "tenant-1")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, repo.hits)

	catalog.InvalidateTenant(ctx, "tenant-1")

	_, err := catalog.ForTenant(ctx, "tenant-unknown")
	assert.ErrorIs(t, err, tier.ErrTierNotFound)
}
