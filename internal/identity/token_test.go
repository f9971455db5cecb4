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

package identity

import (
	"testing"
	"time"
)

// TestPurpose: Validates access token issue and verify round trip.
// Scope: Unit Test
// Security: Token integrity (HMAC signature, issuer and expiry claims)
// Expected: A valid token verifies to its subject; tampered, foreign-issuer and expired tokens are rejected.
// Test Case ID: IDN-06
func TestIdentity_TokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret-at-least-32-bytes-long"), "orgcore-test", time.Hour)
	user := &User{ID: "user-1", Email: "token@example.com"}

	token, err := issuer.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Errorf("expected subject user-1, got %s", claims.Subject)
	}
	if claims.Email != "token@example.com" {
		t.Errorf("expected email claim, got %s", claims.Email)
	}

	// Tampered token
	if _, err := issuer.Verify(token + "x"); err == nil {
		t.Error("tampered token must not verify")
	}

	// Different signing key
	other := NewTokenIssuer([]byte("another-secret-at-least-32-bytes-xx"), "orgcore-test", time.Hour)
	if _, err := other.Verify(token); err == nil {
		t.Error("token signed with a different key must not verify")
	}

	// Different issuer claim
	foreign := NewTokenIssuer([]byte("test-secret-at-least-32-bytes-long"), "someone-else", time.Hour)
	foreignToken, err := foreign.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := issuer.Verify(foreignToken); err == nil {
		t.Error("token from a foreign issuer must not verify")
	}
}

// TestPurpose: Validates expired tokens are rejected.
// Scope: Unit Test
// Expected: A token past its TTL fails verification.
// Test Case ID: IDN-07
func TestIdentity_TokenIssuer_Expiry(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret-at-least-32-bytes-long"), "orgcore-test", -time.Minute)
	token, err := issuer.IssueAccessToken(&User{ID: "user-1", Email: "late@example.com"})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := issuer.Verify(token); err == nil {
		t.Error("expired token must not verify")
	}
}
