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
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/orgcore/orgcore/internal/directory"
	"github.com/orgcore/orgcore/internal/event"
)

type namedRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateGroup creates a group. Owner only; counts against the group limit.
// @Summary Create Group
// @Tags Groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param request body namedRequest true "Group Data"
// @Success 201 {object} group.Group
// @Failure 409 {object} map[string]any
// @Router /tenants/{tenantID}/groups [post]
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req namedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	g, err := h.directoryService.CreateGroup(r.Context(), principal(r), chi.URLParam(r, "tenantID"), req.Name, req.Description)
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	respondJSON(w, http.StatusCreated, g)
}

// GetGroup retrieves a group
// @Summary Get Group
// @Tags Groups
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param groupID path string true "Group ID"
// @Success 200 {object} group.Group
// @Failure 404 {object} map[string]string
// @Router /tenants/{tenantID}/groups/{groupID} [get]
func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	g, err := h.directoryService.GetGroup(r.Context(), principal(r), chi.URLParam(r, "tenantID"), chi.URLParam(r, "groupID"))
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, g)
}

// ListGroups lists a tenant's groups
// @Summary List Groups
// @Tags Groups
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Success 200 {array} group.Group
// @Router /tenants/{tenantID}/groups [get]
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.directoryService.ListGroups(r.Context(), principal(r), chi.URLParam(r, "tenantID"))
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, groups)
}

// UpdateGroup updates a group
// @Summary Update Group
// @Tags Groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param groupID path string true "Group ID"
// @Param request body namedRequest true "Group Update"
// @Success 200 {object} group.Group
// @Failure 404 {object} map[string]string
// @Router /tenants/{tenantID}/groups/{groupID} [patch]
func (h *Handler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	var req namedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	g, err := h.directoryService.UpdateGroup(r.Context(), principal(r), chi.URLParam(r, "tenantID"), chi.URLParam(r, "groupID"), req.Name, req.Description)
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, g)
}

// DeleteGroup deletes a group
// @Summary Delete Group
// @Tags Groups
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param groupID path string true "Group ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /tenants/{tenantID}/groups/{groupID} [delete]
func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.directoryService.DeleteGroup(r.Context(), principal(r), chi.URLParam(r, "tenantID"), chi.URLParam(r, "groupID")); err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type groupMemberRequest struct {
	UserID string `json:"user_id"`
}

// AddGroupMember adds a tenant member to a group
// @Summary Add Group Member
// @Tags Groups
// @Accept json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param groupID path string true "Group ID"
// @Param request body groupMemberRequest true "Member Data"
// @Success 201
// @Failure 404 {object} map[string]string
// @Router /tenants/{tenantID}/groups/{groupID}/members [post]
func (h *Handler) AddGroupMember(w http.ResponseWriter, r *http.Request) {
	var req groupMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.directoryService.AddGroupMember(r.Context(), principal(r), chi.URLParam(r, "tenantID"), chi.URLParam(r, "groupID"), req.UserID)
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// RemoveGroupMember removes a principal from a group
// @Summary Remove Group Member
// @Tags Groups
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param groupID path string true "Group ID"
// @Param userID path string true "User ID"
// @Success 204
// @Router /tenants/{tenantID}/groups/{groupID}/members/{userID} [delete]
func (h *Handler) RemoveGroupMember(w http.ResponseWriter, r *http.Request) {
	err := h.directoryService.RemoveGroupMember(r.Context(), principal(r), chi.URLParam(r, "tenantID"), chi.URLParam(r, "groupID"), chi.URLParam(r, "userID"))
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListGroupMembers lists a group's members
// @Summary List Group Members
// @Tags Groups
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param groupID path string true "Group ID"
// @Success 200 {array} group.Member
// @Router /tenants/{tenantID}/groups/{groupID}/members [get]
func (h *Handler) ListGroupMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.directoryService.ListGroupMembers(r.Context(), principal(r), chi.URLParam(r, "tenantID"), chi.URLParam(r, "groupID"))
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, members)
}

type eventRequest struct {
	Title      string    `json:"title"`
	Visibility string    `json:"visibility"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
}

// CreateEvent creates an event. Any tenant member; counts against the
// event limit.
// @Summary Create Event
// @Tags Events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param request body eventRequest true "Event Data"
// @Success 201 {object} event.Event
// @Failure 409 {object} map[string]any
// @Router /tenants/{tenantID}/events [post]
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	e, err := h.directoryService.CreateEvent(r.Context(), principal(r), chi.URLParam(r, "tenantID"), directory.EventInput{
		Title:      req.Title,
		Visibility: event.Visibility(req.Visibility),
		StartsAt:   req.StartsAt,
		EndsAt:     req.EndsAt,
	})
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	respondJSON(w, http.StatusCreated, e)
}

// GetEvent retrieves an event; public events need no authentication
// @Summary Get Event
// @Tags Events
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Param eventID path string true "Event ID"
// @Success 200 {object} event.Event
// @Failure 404 {object} map[string]string
// @Router /tenants/{tenantID}/events/{eventID} [get]
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	e, err := h.directoryService.GetEvent(r.Context(), principal(r), chi.URLParam(r, "tenantID"), chi.URLParam(r, "eventID"))
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, e)
}

// ListEvents lists events; anonymous callers see only public ones
// @Summary List Events
// @Tags Events
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Success 200 {array} event.Event
// @Router /tenants/{tenantID}/events [get]
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.directoryService.ListEvents(r.Context(), principal(r), chi.URLParam(r, "tenantID"))
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, events)
}

// UpdateEvent updates an event. Creator or tenant owner.
// @Summary Update Event
// @Tags Events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param eventID path string true "Event ID"
// @Param request body eventRequest true "Event Update"
// @Success 200 {object} event.Event
// @Failure 404 {object} map[string]string
// @Router /tenants/{tenantID}/events/{eventID} [patch]
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	e, err := h.directoryService.UpdateEvent(r.Context(), principal(r), chi.URLParam(r, "tenantID"), chi.URLParam(r, "eventID"), directory.EventInput{
		Title:      req.Title,
		Visibility: event.Visibility(req.Visibility),
		StartsAt:   req.StartsAt,
		EndsAt:     req.EndsAt,
	})
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, e)
}

// DeleteEvent deletes an event. Creator or tenant owner.
// @Summary Delete Event
// @Tags Events
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param eventID path string true "Event ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /tenants/{tenantID}/events/{eventID} [delete]
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.directoryService.DeleteEvent(r.Context(), principal(r), chi.URLParam(r, "tenantID"), chi.URLParam(r, "eventID")); err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateResource creates a resource. Owner only; not quota-bound.
func (h *Handler) CreateResource(w http.ResponseWriter, r *http.Request) {
	var req namedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.directoryService.CreateResource(r.Context(), principal(r), chi.URLParam(r, "tenantID"), req.Name, req.Description)
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	respondJSON(w, http.StatusCreated, res)
}

// GetResource retrieves a resource
func (h *Handler) GetResource(w http.ResponseWriter, r *http.Request) {
	res, err := h.directoryService.GetResource(r.Context(), principal(r), chi.URLParam(r, "tenantID"), chi.URLParam(r, "resourceID"))
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// ListResources lists a tenant's resources
func (h *Handler) ListResources(w http.ResponseWriter, r *http.Request) {
	resources, err := h.directoryService.ListResources(r.Context(), principal(r), chi.URLParam(r, "tenantID"))
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, resources)
}

// UpdateResource updates a resource
func (h *Handler) UpdateResource(w http.ResponseWriter, r *http.Request) {
	var req namedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.directoryService.UpdateResource(r.Context(), principal(r), chi.URLParam(r, "tenantID"), chi.URLParam(r, "resourceID"), req.Name, req.Description)
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// DeleteResource deletes a resource
func (h *Handler) DeleteResource(w http.ResponseWriter, r *http.Request) {
	if err := h.directoryService.DeleteResource(r.Context(), principal(r), chi.URLParam(r, "tenantID"), chi.URLParam(r, "resourceID")); err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
