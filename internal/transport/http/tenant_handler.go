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
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/orgcore/orgcore/internal/quota"
)

type createTenantRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	PriceTierID string `json:"price_tier_id"`
}

// CreateTenant creates a tenant; the caller becomes its owner
// @Summary Create Tenant
// @Description Create an organization; the caller becomes its owner
// @Tags Tenants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createTenantRequest true "Tenant Data"
// @Success 201 {object} tenant.Tenant
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /tenants [post]
func (h *Handler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var req createTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.tenantService.Create(r.Context(), principal(r), req.Name, req.Slug, req.PriceTierID)
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	respondJSON(w, http.StatusCreated, t)
}

// GetTenant returns a tenant row. Public read.
// @Summary Get Tenant
// @Tags Tenants
// @Produce json
// @Param tenantID path string true "Tenant ID"
// @Success 200 {object} tenant.Tenant
// @Failure 404 {object} map[string]string
// @Router /tenants/{tenantID} [get]
func (h *Handler) GetTenant(w http.ResponseWriter, r *http.Request) {
	t, err := h.tenantService.Get(r.Context(), chi.URLParam(r, "tenantID"))
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

// GetTenantBySlug resolves a tenant by slug. Public read; the join flow
// uses it to find the tenant before any authentication happens.
// @Summary Get Tenant by Slug
// @Tags Tenants
// @Produce json
// @Param slug path string true "Tenant Slug"
// @Success 200 {object} tenant.Tenant
// @Failure 404 {object} map[string]string
// @Router /tenants/by-slug/{slug} [get]
func (h *Handler) GetTenantBySlug(w http.ResponseWriter, r *http.Request) {
	t, err := h.tenantService.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

// ListTenants lists tenants with pagination
// @Summary List Tenants
// @Tags Tenants
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {array} tenant.Tenant
// @Router /tenants [get]
func (h *Handler) ListTenants(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	tenants, err := h.tenantService.List(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list tenants")
		return
	}
	respondJSON(w, http.StatusOK, tenants)
}

type updateTenantRequest struct {
	Name string `json:"name"`
}

// UpdateTenant renames a tenant. Owner only.
// @Summary Update Tenant
// @Tags Tenants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param request body updateTenantRequest true "Tenant Update"
// @Success 200 {object} tenant.Tenant
// @Failure 404 {object} map[string]string
// @Router /tenants/{tenantID} [patch]
func (h *Handler) UpdateTenant(w http.ResponseWriter, r *http.Request) {
	var req updateTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.tenantService.Update(r.Context(), principal(r), chi.URLParam(r, "tenantID"), req.Name)
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

type changeTierRequest struct {
	PriceTierID string `json:"price_tier_id"`
}

// ChangeTenantTier moves a tenant to another price tier. Owner only.
// @Summary Change Tenant Tier
// @Tags Tenants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param request body changeTierRequest true "Tier Change"
// @Success 200 {object} tenant.Tenant
// @Failure 400 {object} map[string]string
// @Router /tenants/{tenantID}/tier [put]
func (h *Handler) ChangeTenantTier(w http.ResponseWriter, r *http.Request) {
	var req changeTierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.tenantService.ChangeTier(r.Context(), principal(r), chi.URLParam(r, "tenantID"), req.PriceTierID)
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

// DeleteTenant removes a tenant and everything scoped to it. Owner only.
// @Summary Delete Tenant
// @Tags Tenants
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /tenants/{tenantID} [delete]
func (h *Handler) DeleteTenant(w http.ResponseWriter, r *http.Request) {
	if err := h.tenantService.Delete(r.Context(), principal(r), chi.URLParam(r, "tenantID")); err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TenantUsage reports current count against the tier limit for one quota
// kind (?kind=user|group|event).
// @Summary Tenant Usage
// @Tags Tenants
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param kind query string true "Quota kind" Enums(user, group, event)
// @Success 200 {object} map[string]any
// @Router /tenants/{tenantID}/usage [get]
func (h *Handler) TenantUsage(w http.ResponseWriter, r *http.Request) {
	kind := quota.Kind(r.URL.Query().Get("kind"))
	switch kind {
	case quota.KindUser, quota.KindGroup, quota.KindEvent:
	default:
		respondError(w, http.StatusBadRequest, "kind must be one of user, group, event")
		return
	}

	count, limit, err := h.tenantService.Usage(r.Context(), principal(r), chi.URLParam(r, "tenantID"), kind)
	if err != nil {
		h.respondDomainError(r, w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"kind":  string(kind),
		"count": count,
		"limit": limit,
	})
}
