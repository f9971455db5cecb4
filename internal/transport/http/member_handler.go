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
	"github.com/orgcore/orgcore/internal/authz"
	"github.com/orgcore/orgcore/internal/membership"
)

// ListMembers returns a tenant's members. Members-only read.
// @Summary List Members
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Success 200 {array} membership.Membership
// @Failure 404 {object} map[string]string
// @Router /tenants/{tenantID}/members [get]
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.membershipService.List(r.Context(), principal(r), chi.URLParam(r, "tenantID"))
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, members)
}

type addMemberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// AddMember adds a principal to the tenant directly. Owner only.
// @Summary Add Member
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param request body addMemberRequest true "Member Data"
// @Success 201 {object} membership.Membership
// @Failure 409 {object} map[string]string
// @Router /tenants/{tenantID}/members [post]
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	var req addMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	role := membership.Role(req.Role)
	if role == "" {
		role = membership.RoleMember
	}

	m, err := h.membershipService.AddMember(r.Context(), principal(r), chi.URLParam(r, "tenantID"), req.UserID, role)
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	respondJSON(w, http.StatusCreated, m)
}

// RemoveMember deletes a membership; the principal's group memberships in
// this tenant go with it. Owner only.
// @Summary Remove Member
// @Tags Members
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param userID path string true "User ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /tenants/{tenantID}/members/{userID} [delete]
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	err := h.membershipService.Remove(r.Context(), principal(r), chi.URLParam(r, "tenantID"), chi.URLParam(r, "userID"))
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// authorizeMembershipWrite gates the invitation endpoints: issuing or
// revoking an invitation is membership creation authority, which only the
// tenant owner holds.
func (h *Handler) authorizeMembershipWrite(r *http.Request, tenantID string) error {
	return h.engine.Authorize(r.Context(), principal(r), authz.ActionCreate, authz.Entity{
		Type:     authz.EntityMembership,
		TenantID: tenantID,
	})
}

type issueInvitationRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IssueInvitation creates a single-use invitation token. Owner only.
// @Summary Issue Invitation
// @Tags Invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param request body issueInvitationRequest true "Invitation Data"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Router /tenants/{tenantID}/invitations [post]
func (h *Handler) IssueInvitation(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	if err := h.authorizeMembershipWrite(r, tenantID); err != nil {
		h.respondDomainError(r, w, err)
		return
	}

	var req issueInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Role == "" {
		req.Role = string(membership.RoleMember)
	}

	inv, err := h.invitationService.Issue(r.Context(), tenantID, req.Email, req.Role)
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	h.metrics.InvitationsIssued.Add(r.Context(), 1)
	respondJSON(w, http.StatusCreated, inv)
}

// ListInvitations returns the tenant's pending invitations. Owner only.
// @Summary List Invitations
// @Tags Invitations
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Success 200 {array} invitation.Invitation
// @Router /tenants/{tenantID}/invitations [get]
func (h *Handler) ListInvitations(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	if err := h.authorizeMembershipWrite(r, tenantID); err != nil {
		h.respondDomainError(r, w, err)
		return
	}

	invitations, err := h.invitationService.ListByTenant(r.Context(), tenantID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list invitations")
		return
	}
	respondJSON(w, http.StatusOK, invitations)
}

// RevokeInvitation deletes a pending invitation. Owner only.
// @Summary Revoke Invitation
// @Tags Invitations
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param invitationID path string true "Invitation ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /tenants/{tenantID}/invitations/{invitationID} [delete]
func (h *Handler) RevokeInvitation(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	if err := h.authorizeMembershipWrite(r, tenantID); err != nil {
		h.respondDomainError(r, w, err)
		return
	}

	if err := h.invitationService.Revoke(r.Context(), tenantID, chi.URLParam(r, "invitationID")); err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
