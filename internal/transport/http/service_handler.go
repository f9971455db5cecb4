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
)

// CreateService creates a service. Owner only; not quota-bound.
func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req namedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s, err := h.directoryService.CreateService(r.Context(), principal(r), chi.URLParam(r, "tenantID"), req.Name, req.Description)
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	respondJSON(w, http.StatusCreated, s)
}

// GetService retrieves a service
func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	s, err := h.directoryService.GetService(r.Context(), principal(r), chi.URLParam(r, "tenantID"), chi.URLParam(r, "serviceID"))
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, s)
}

// ListServices lists a tenant's services
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.directoryService.ListServices(r.Context(), principal(r), chi.URLParam(r, "tenantID"))
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, services)
}

// UpdateService updates a service
func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	var req namedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s, err := h.directoryService.UpdateService(r.Context(), principal(r), chi.URLParam(r, "tenantID"), chi.URLParam(r, "serviceID"), req.Name, req.Description)
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, s)
}

// DeleteService deletes a service and its sub-resources
func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	if err := h.directoryService.DeleteService(r.Context(), principal(r), chi.URLParam(r, "tenantID"), chi.URLParam(r, "serviceID")); err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type serviceAdminRequest struct {
	UserID string `json:"user_id"`
}

// AddServiceAdmin registers a tenant member as admin of this service
func (h *Handler) AddServiceAdmin(w http.ResponseWriter, r *http.Request) {
	var req serviceAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.directoryService.AddServiceAdmin(r.Context(), principal(r), chi.URLParam(r, "tenantID"), chi.URLParam(r, "serviceID"), req.UserID)
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// RemoveServiceAdmin removes an admin registration
func (h *Handler) RemoveServiceAdmin(w http.ResponseWriter, r *http.Request) {
	err := h.directoryService.RemoveServiceAdmin(r.Context(), principal(r), chi.URLParam(r, "tenantID"), chi.URLParam(r, "serviceID"), chi.URLParam(r, "userID"))
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListServiceAdmins lists a service's admins
func (h *Handler) ListServiceAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.directoryService.ListServiceAdmins(r.Context(), principal(r), chi.URLParam(r, "tenantID"), chi.URLParam(r, "serviceID"))
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, admins)
}

type noteRequest struct {
	Body string `json:"body"`
}

// CreateServiceNote attaches a note. Owner or service admin.
func (h *Handler) CreateServiceNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	n, err := h.directoryService.CreateServiceNote(r.Context(), principal(r), chi.URLParam(r, "tenantID"), chi.URLParam(r, "serviceID"), req.Body)
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	respondJSON(w, http.StatusCreated, n)
}

// UpdateServiceNote updates a note's body
func (h *Handler) UpdateServiceNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	n, err := h.directoryService.UpdateServiceNote(r.Context(), principal(r), chi.URLParam(r, "tenantID"), chi.URLParam(r, "serviceID"), chi.URLParam(r, "noteID"), req.Body)
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, n)
}

// DeleteServiceNote deletes a note
func (h *Handler) DeleteServiceNote(w http.ResponseWriter, r *http.Request) {
	err := h.directoryService.DeleteServiceNote(r.Context(), principal(r), chi.URLParam(r, "tenantID"), chi.URLParam(r, "serviceID"), chi.URLParam(r, "noteID"))
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListServiceNotes lists a service's notes
func (h *Handler) ListServiceNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.directoryService.ListServiceNotes(r.Context(), principal(r), chi.URLParam(r, "tenantID"), chi.URLParam(r, "serviceID"))
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, notes)
}

type serviceRoleRequest struct {
	Name string `json:"name"`
}

// CreateServiceRole adds a named position to a service
func (h *Handler) CreateServiceRole(w http.ResponseWriter, r *http.Request) {
	var req serviceRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := h.directoryService.CreateServiceRole(r.Context(), principal(r), chi.URLParam(r, "tenantID"), chi.URLParam(r, "serviceID"), req.Name)
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	respondJSON(w, http.StatusCreated, role)
}

// DeleteServiceRole removes a service role
func (h *Handler) DeleteServiceRole(w http.ResponseWriter, r *http.Request) {
	err := h.directoryService.DeleteServiceRole(r.Context(), principal(r), chi.URLParam(r, "tenantID"), chi.URLParam(r, "serviceID"), chi.URLParam(r, "roleID"))
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListServiceRoles lists a service's roles
func (h *Handler) ListServiceRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.directoryService.ListServiceRoles(r.Context(), principal(r), chi.URLParam(r, "tenantID"), chi.URLParam(r, "serviceID"))
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, roles)
}

type serviceEventRequest struct {
	StartsAt time.Time `json:"starts_at"`
}

// CreateServiceEvent adds a dated occurrence to a service
func (h *Handler) CreateServiceEvent(w http.ResponseWriter, r *http.Request) {
	var req serviceEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	e, err := h.directoryService.CreateServiceEvent(r.Context(), principal(r), chi.URLParam(r, "tenantID"), chi.URLParam(r, "serviceID"), req.StartsAt)
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	respondJSON(w, http.StatusCreated, e)
}

// DeleteServiceEvent removes a service event
func (h *Handler) DeleteServiceEvent(w http.ResponseWriter, r *http.Request) {
	err := h.directoryService.DeleteServiceEvent(r.Context(), principal(r), chi.URLParam(r, "tenantID"), chi.URLParam(r, "serviceID"), chi.URLParam(r, "serviceEventID"))
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListServiceEvents lists a service's events
func (h *Handler) ListServiceEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.directoryService.ListServiceEvents(r.Context(), principal(r), chi.URLParam(r, "tenantID"), chi.URLParam(r, "serviceID"))
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, events)
}

type eventOwnerRequest struct {
	ServiceEventID string `json:"service_event_id"`
	UserID         string `json:"user_id"`
}

// CreateEventOwner assigns responsibility for a service event
func (h *Handler) CreateEventOwner(w http.ResponseWriter, r *http.Request) {
	var req eventOwnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	o, err := h.directoryService.CreateEventOwner(r.Context(), principal(r), chi.URLParam(r, "tenantID"), chi.URLParam(r, "serviceID"), req.ServiceEventID, req.UserID)
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	respondJSON(w, http.StatusCreated, o)
}

// DeleteEventOwner removes an owner assignment
func (h *Handler) DeleteEventOwner(w http.ResponseWriter, r *http.Request) {
	err := h.directoryService.DeleteEventOwner(r.Context(), principal(r), chi.URLParam(r, "tenantID"), chi.URLParam(r, "serviceID"), chi.URLParam(r, "eventOwnerID"))
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListEventOwners lists the owners of a service event
func (h *Handler) ListEventOwners(w http.ResponseWriter, r *http.Request) {
	owners, err := h.directoryService.ListEventOwners(r.Context(), principal(r), chi.URLParam(r, "tenantID"), chi.URLParam(r, "serviceID"), chi.URLParam(r, "serviceEventID"))
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, owners)
}
