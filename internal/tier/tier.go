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
	"errors"
)

// Domain errors
var (
	ErrTierNotFound = errors.New("price tier not found")
)

// PriceTier is an immutable catalog row describing the quota limits a
// subscribing tenant is entitled to. Many tenants share a tier.
type PriceTier struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	UserLimit    int     `json:"user_limit"`
	GroupLimit   int     `json:"group_limit"`
	EventLimit   int     `json:"event_limit"`
	PriceMonthly float64 `json:"price_monthly"`
}

// Repository defines the interface for price tier storage
type Repository interface {
	GetByID(ctx context.Context, id string) (*PriceTier, error)
	GetByTenant(ctx context.Context, tenantID string) (*PriceTier, error)
	List(ctx context.Context) ([]*PriceTier, error)
}
