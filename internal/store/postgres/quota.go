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
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/orgcore/orgcore/internal/quota"
	"github.com/orgcore/orgcore/internal/tenant"
)

const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique-constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

var countQueries = map[quota.Kind]string{
	quota.KindUser:  `SELECT COUNT(*) FROM tenant_members WHERE tenant_id = $1`,
	quota.KindGroup: `SELECT COUNT(*) FROM groups WHERE tenant_id = $1`,
	quota.KindEvent: `SELECT COUNT(*) FROM events WHERE tenant_id = $1`,
}

var limitColumns = map[quota.Kind]string{
	quota.KindUser:  "user_limit",
	quota.KindGroup: "group_limit",
	quota.KindEvent: "event_limit",
}

// checkQuota locks the tenant row and verifies one more row of kind fits
// inside the tier limit. Running inside the same transaction as the insert,
// the lock serializes concurrent creations so two of them cannot both
// observe the last free slot.
func checkQuota(ctx context.Context, tx pgx.Tx, tenantID string, kind quota.Kind) error {
	var limit int
	err := tx.QueryRow(ctx, fmt.Sprintf(`
		SELECT pt.%s
		FROM tenants t
		JOIN price_tiers pt ON pt.id = t.price_tier_id
		WHERE t.id = $1
		FOR UPDATE OF t
	`, limitColumns[kind]), tenantID).Scan(&limit)
	if err != nil {
		if err == pgx.ErrNoRows {
			return tenant.ErrTenantNotFound
		}
		return fmt.Errorf("failed to resolve tier limit: %w", err)
	}

	var count int
	if err := tx.QueryRow(ctx, countQueries[kind], tenantID).Scan(&count); err != nil {
		return fmt.Errorf("failed to count %s rows: %w", kind, err)
	}

	if !quota.Check(count, limit) {
		return quota.Exceeded(kind, limit)
	}
	return nil
}

// QuotaCounter implements quota.Counter for advisory, read-only usage
// queries. It takes no locks.
type QuotaCounter struct {
	db *DB
}

// NewQuotaCounter creates a quota counter
func NewQuotaCounter(db *DB) *QuotaCounter {
	return &QuotaCounter{db: db}
}

// Count counts existing rows of a kind for a tenant.
func (c *QuotaCounter) Count(ctx context.Context, tenantID string, kind quota.Kind) (int, error) {
	q, ok := countQueries[kind]
	if !ok {
		return 0, fmt.Errorf("unknown quota kind %q", kind)
	}
	var count int
	if err := c.db.pool.QueryRow(ctx, q, tenantID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s rows: %w", kind, err)
	}
	return count, nil
}
