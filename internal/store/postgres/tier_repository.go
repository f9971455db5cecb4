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

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/orgcore/orgcore/internal/tier"
)

// TierRepository implements tier.Repository
type TierRepository struct {
	db *DB
}

// NewTierRepository creates a new price tier repository
func NewTierRepository(db *DB) *TierRepository {
	return &TierRepository{db: db}
}

// GetByID retrieves a price tier by ID
func (r *TierRepository) GetByID(ctx context.Context, id string) (*tier.PriceTier, error) {
	return r.scanOne(ctx, `
		SELECT id, name, user_limit, group_limit, event_limit, price_monthly
		FROM price_tiers WHERE id = $1
	`, id)
}

// GetByTenant retrieves the price tier assigned to a tenant
func (r *TierRepository) GetByTenant(ctx context.Context, tenantID string) (*tier.PriceTier, error) {
	return r.scanOne(ctx, `
		SELECT pt.id, pt.name, pt.user_limit, pt.group_limit, pt.event_limit, pt.price_monthly
		FROM price_tiers pt
		JOIN tenants t ON t.price_tier_id = pt.id
		WHERE t.id = $1
	`, tenantID)
}

func (r *TierRepository) scanOne(ctx context.Context, query, arg string) (*tier.PriceTier, error) {
	var t tier.PriceTier
	err := r.db.pool.QueryRow(ctx, query, arg).Scan(
		&t.ID, &t.Name, &t.UserLimit, &t.GroupLimit, &t.EventLimit, &t.PriceMonthly,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, tier.ErrTierNotFound
		}
		return nil, fmt.Errorf("failed to query price tier: %w", err)
	}
	return &t, nil
}

// List returns the full tier catalog ordered by monthly price
func (r *TierRepository) List(ctx context.Context) ([]*tier.PriceTier, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, name, user_limit, group_limit, event_limit, price_monthly
		FROM price_tiers ORDER BY price_monthly
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query price tiers: %w", err)
	}
	defer rows.Close()

	var tiers []*tier.PriceTier
	for rows.Next() {
		var t tier.PriceTier
		if err := rows.Scan(&t.ID, &t.Name, &t.UserLimit, &t.GroupLimit, &t.EventLimit, &t.PriceMonthly); err != nil {
			return nil, fmt.Errorf("failed to scan price tier: %w", err)
		}
		tiers = append(tiers, &t)
	}
	return tiers, rows.Err()
}
