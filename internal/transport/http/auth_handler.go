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

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/orgcore/orgcore/internal/identity"
)

type signUpRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	FullName   string `json:"full_name"`
}

// SignUp creates a new user account and returns an access token
// @Summary Register a new user
// @Description Register a new account and issue an access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body signUpRequest true "Registration Data"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /auth/signup [post]
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.identityService.SignUp(r.Context(), req.Email, req.Password, identity.Profile{
		GivenName:  req.GivenName,
		FamilyName: req.FamilyName,
		FullName:   req.FullName,
	})
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}

	token, err := h.tokens.IssueAccessToken(user)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"user_id":      user.ID,
		"email":        user.Email,
		"access_token": token,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a user and returns an access token
// @Summary Login
// @Description Authenticate with email and password and issue an access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body loginRequest true "Credentials"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.identityService.SignInWithPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrAccountLocked) || errors.Is(err, identity.ErrEmailNotConfirmed) {
			h.respondDomainError(r, w, err)
			return
		}
		// Wrong email and wrong password answer identically.
		h.respondDomainError(r, w, identity.ErrInvalidCredentials)
		return
	}

	token, err := h.tokens.IssueAccessToken(user)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"user_id":      user.ID,
		"email":        user.Email,
		"access_token": token,
	})
}

// Logout records the sign-out. Tokens are stateless; clients discard theirs.
// @Summary Logout
// @Description Record the sign-out for the audit trail
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Router /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.identityService.SignOut(r.Context(), GetUserID(r.Context()))
	respondJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

// GetCurrentUser returns the authenticated user and their memberships
// @Summary Get Current User
// @Description Return the authenticated user and their tenant memberships
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]string
// @Router /auth/me [get]
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.identityService.GetUser(r.Context(), GetUserID(r.Context()))
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}

	memberships, err := h.membershipService.Memberships(r.Context(), user.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list memberships")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"user_id":     user.ID,
		"email":       user.Email,
		"full_name":   user.Profile.FullName,
		"memberships": memberships,
	})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangePassword replaces the authenticated user's password
// @Summary Change Password
// @Description Replace the password after verifying the current one
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body changePasswordRequest true "Password Change"
// @Success 200 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/password [post]
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.identityService.ResetPassword(r.Context(), GetUserID(r.Context()), req.OldPassword, req.NewPassword); err != nil {
		h.respondDomainError(r, w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "password_changed"})
}
