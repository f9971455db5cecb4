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

package joinflow

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"

	"github.com/orgcore/orgcore/internal/identity"
)

// ProbeEmail reports whether an account exists for the email by attempting a
// sign-in with a random password and classifying the failure. Invalid
// credentials or an unconfirmed email both mean the account exists; user not
// found means it does not.
//
// This is an enumeration side-channel: anyone who can reach the flow can
// test whether an email is registered. It is kept because the sign-up /
// sign-in routing depends on it, but it should not grow new callers.
func ProbeEmail(ctx context.Context, idp IdentityProvider, email string) bool {
	_, err := idp.SignInWithPassword(ctx, email, randomPassword())
	if err == nil {
		return true
	}
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials),
		errors.Is(err, identity.ErrEmailNotConfirmed),
		errors.Is(err, identity.ErrAccountLocked):
		return true
	default:
		return false
	}
}

func randomPassword() string {
	buf := make([]byte, 18)
	if _, err := rand.Read(buf); err != nil {
		return "definitely-not-a-password"
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
