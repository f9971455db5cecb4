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
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/orgcore/orgcore/internal/identity"
	"github.com/orgcore/orgcore/internal/joinflow"
)

type joinRequest struct {
	Step       string `json:"step"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Token      string `json:"token,omitempty"`
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
	FullName   string `json:"full_name,omitempty"`
}

type joinResponse struct {
	Step        string `json:"step"`
	Outcome     string `json:"outcome"`
	Email       string `json:"email,omitempty"`
	Message     string `json:"message,omitempty"`
	UserID      string `json:"user_id,omitempty"`
	Role        string `json:"role,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
}

// Join drives one step of the tenant join flow. The flow itself is a state
// machine; clients send the step they are on and its inputs, and get back
// the next step. On success the response carries an access token and the
// assigned role.
// @Summary Join Tenant
// @Description Drive one step of the join flow (detect, signup, signin)
// @Tags Join
// @Accept json
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param request body joinRequest true "Join Step Input"
// @Success 200 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /tenants/{tenantID}/join [post]
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")

	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	flow := joinflow.New(h.identityService, h.membershipService, tenantID, req.Token)

	var (
		state   joinflow.State
		outcome joinflow.Outcome
	)
	switch req.Step {
	case "detect":
		state = flow.DetectEmail(r.Context(), joinflow.Start().ChooseExisting(), req.Email)
		outcome = joinflow.OutcomeOK
	case "signup":
		state, outcome = flow.SubmitSignup(r.Context(), joinflow.Start().ChooseSignup(), req.Email, req.Password, identity.Profile{
			GivenName:  req.GivenName,
			FamilyName: req.FamilyName,
			FullName:   req.FullName,
		})
	case "join_signin":
		state, outcome = flow.SubmitSignin(r.Context(), joinflow.State{Step: joinflow.StepJoinSignin}, req.Email, req.Password)
	case "member_signin":
		state, outcome = flow.SubmitSignin(r.Context(), joinflow.Start().ChooseMemberSignin(), req.Email, req.Password)
	default:
		respondError(w, http.StatusBadRequest, "step must be one of detect, signup, join_signin, member_signin")
		return
	}

	resp := joinResponse{
		Step:    string(state.Step),
		Outcome: string(outcome),
		Email:   state.Email,
		Message: state.Message,
		UserID:  state.UserID,
		Role:    string(state.Role),
	}

	if state.Step == joinflow.StepSuccess {
		if req.Token != "" {
			h.metrics.InvitationsRedeemed.Add(r.Context(), 1)
		}
		user, err := h.identityService.GetUser(r.Context(), state.UserID)
		if err == nil {
			if token, err := h.tokens.IssueAccessToken(user); err == nil {
				resp.AccessToken = token
			}
		}
	}

	status := http.StatusOK
	if outcome == joinflow.OutcomeLimitReached {
		status = http.StatusConflict
	}
	respondJSON(w, status, resp)
}
