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

package quota_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgcore/orgcore/internal/quota"
	"github.com/orgcore/orgcore/internal/tier"
)

// mockTierRepo implements tier.Repository for testing
type mockTierRepo struct {
	byTenant map[string]*tier.PriceTier
}

func (m *mockTierRepo) GetByID(ctx context.Context, id string) (*tier.PriceTier, error) {
	return nil, tier.ErrTierNotFound
}

func (m *mockTierRepo) GetByTenant(ctx context.Context, tenantID string) (*tier.PriceTier, error) {
	if t, ok := m.byTenant[tenantID]; ok {
		return t, nil
	}
	return nil, tier.ErrTierNotFound
}

func (m *mockTierRepo) List(ctx context.Context) ([]*tier.PriceTier, error) {
	return nil, nil
}

// mockCounter implements quota.Counter for testing
type mockCounter struct {
	counts map[quota.Kind]int
}

func (m *mockCounter) Count(ctx context.Context, tenantID string, kind quota.Kind) (int, error) {
	return m.counts[kind], nil
}

// TestPurpose: Validates the strict less-than quota decision at the boundary.
// Scope: Unit Test
// Expected: count below limit allows, count at or above limit denies, zero limit denies everything.
// Test Case ID: QTA-04
func TestQuota_Check_StrictBoundary(t *testing.T) {
	assert.True(t, quota.Check(0, 1))
	assert.True(t, quota.Check(4, 5))
	assert.False(t, quota.Check(5, 5), "count at limit must deny")
	assert.False(t, quota.Check(6, 5))
	assert.False(t, quota.Check(0, 0), "zero limit must deny the first creation")
}

// TestPurpose: Validates quota errors carry the kind and limit and survive wrapping.
// Scope: Unit Test
// Expected: AsError extracts the typed error through a wrap chain; unrelated errors are rejected.
// Test Case ID: QTA-05
func TestQuota_Error_WrappingRoundTrip(t *testing.T) {
	err := fmt.Errorf("creating group: %w", quota.Exceeded(quota.KindGroup, 5))

	qe, ok := quota.AsError(err)
	require.True(t, ok)
	assert.Equal(t, quota.KindGroup, qe.Kind)
	assert.Equal(t, 5, qe.Limit)
	assert.Contains(t, qe.Error(), "group limit of 5")

	_, ok = quota.AsError(errors.New("unrelated"))
	assert.False(t, ok)
}

// TestPurpose: Validates the advisory enforcer combines catalog limits with live counts.
// Scope: Unit Test
// Expected: CanCreate answers per kind against the tenant's tier; Usage reports both numbers.
// Test Case ID: QTA-06
func TestQuota_Enforcer_AdvisoryAnswers(t *testing.T) {
	repo := &mockTierRepo{byTenant: map[string]*tier.PriceTier{
		"tenant-1": {ID: "tier-1", Name: "free", UserLimit: 5, GroupLimit: 3, EventLimit: 10},
	}}
	counter := &mockCounter{counts: map[quota.Kind]int{
		quota.KindUser:  5,
		quota.KindGroup: 2,
		quota.KindEvent: 0,
	}}
	enforcer := quota.NewEnforcer(tier.NewCatalog(repo, nil, time.Minute), counter)
	ctx := context.Background()

	ok, err := enforcer.CanCreate(ctx, "tenant-1", quota.KindUser)
	require.NoError(t, err)
	assert.False(t, ok, "user count at limit must deny")

	ok, err = enforcer.CanCreate(ctx, "tenant-1", quota.KindGroup)
	require.NoError(t, err)
	assert.True(t, ok)

	count, limit, err := enforcer.Usage(ctx, "tenant-1", quota.KindGroup)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 3, limit)

	// Unknown tenant surfaces the catalog error.
	_, err = enforcer.CanCreate(ctx, "tenant-unknown", quota.KindUser)
	assert.ErrorIs(t, err, tier.ErrTierNotFound)
}
