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

// @title Orgcore API
// @version 1.0.0
// @description Multi-tenant organization management core
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/orgcore/orgcore/internal/audit"
	"github.com/orgcore/orgcore/internal/authz"
	"github.com/orgcore/orgcore/internal/directory"
	"github.com/orgcore/orgcore/internal/event"
	"github.com/orgcore/orgcore/internal/group"
	"github.com/orgcore/orgcore/internal/identity"
	"github.com/orgcore/orgcore/internal/invitation"
	"github.com/orgcore/orgcore/internal/membership"
	"github.com/orgcore/orgcore/internal/observability/metrics"
	"github.com/orgcore/orgcore/internal/quota"
	"github.com/orgcore/orgcore/internal/resource"
	"github.com/orgcore/orgcore/internal/svc"
	"github.com/orgcore/orgcore/internal/tenant"
	"github.com/orgcore/orgcore/internal/tier"
)

// Handler holds HTTP handlers and dependencies
type Handler struct {
	identityService   *identity.Service
	tokens            *identity.TokenIssuer
	tenantService     *tenant.Service
	membershipService *membership.Service
	invitationService *invitation.Service
	directoryService  *directory.Service
	tierCatalog       *tier.Catalog
	engine            *authz.Engine
	auditLogger       audit.Logger
	metrics           *metrics.Set
}

// NewHandler creates a new HTTP handler
func NewHandler(
	identityService *identity.Service,
	tokens *identity.TokenIssuer,
	tenantService *tenant.Service,
	membershipService *membership.Service,
	invitationService *invitation.Service,
	directoryService *directory.Service,
	tierCatalog *tier.Catalog,
	engine *authz.Engine,
	auditLogger audit.Logger,
	metricSet *metrics.Set,
) *Handler {
	return &Handler{
		identityService:   identityService,
		tokens:            tokens,
		tenantService:     tenantService,
		membershipService: membershipService,
		invitationService: invitationService,
		directoryService:  directoryService,
		tierCatalog:       tierCatalog,
		engine:            engine,
		auditLogger:       auditLogger,
		metrics:           metricSet,
	}
}

// NewRouter creates a new HTTP router
func NewRouter(h *Handler, rateLimiter *RateLimiter, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	r.Use(h.MetricsMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", h.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		// Identity provider surface
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", h.SignUp)
			r.Post("/login", h.Login)
			r.With(h.AuthMiddleware).Post("/logout", h.Logout)
			r.With(h.AuthMiddleware).Get("/me", h.GetCurrentUser)
			r.With(h.AuthMiddleware).Post("/password", h.ChangePassword)
		})

		// Tier catalog is public read
		r.Get("/tiers", h.ListTiers)

		r.Route("/tenants", func(r chi.Router) {
			r.Get("/", h.ListTenants)
			r.With(h.AuthMiddleware).Post("/", h.CreateTenant)
			r.Get("/by-slug/{slug}", h.GetTenantBySlug)

			r.Route("/{tenantID}", func(r chi.Router) {
				r.Get("/", h.GetTenant)
				r.With(h.AuthMiddleware).Patch("/", h.UpdateTenant)
				r.With(h.AuthMiddleware).Delete("/", h.DeleteTenant)
				r.With(h.AuthMiddleware).Put("/tier", h.ChangeTenantTier)
				r.With(h.AuthMiddleware).Get("/usage", h.TenantUsage)

				// Join flow runs its own identity steps; no auth required.
				r.Post("/join", h.Join)

				r.Route("/members", func(r chi.Router) {
					r.Use(h.AuthMiddleware)
					r.Get("/", h.ListMembers)
					r.Post("/", h.AddMember)
					r.Delete("/{userID}", h.RemoveMember)
				})

				r.Route("/invitations", func(r chi.Router) {
					r.Use(h.AuthMiddleware)
					r.Get("/", h.ListInvitations)
					r.Post("/", h.IssueInvitation)
					r.Delete("/{invitationID}", h.RevokeInvitation)
				})

				r.Route("/groups", func(r chi.Router) {
					r.Use(h.AuthMiddleware)
					r.Get("/", h.ListGroups)
					r.Post("/", h.CreateGroup)
					r.Get("/{groupID}", h.GetGroup)
					r.Patch("/{groupID}", h.UpdateGroup)
					r.Delete("/{groupID}", h.DeleteGroup)
					r.Get("/{groupID}/members", h.ListGroupMembers)
					r.Post("/{groupID}/members", h.AddGroupMember)
					r.Delete("/{groupID}/members/{userID}", h.RemoveGroupMember)
				})

				// Events are readable anonymously when public; the policy
				// engine decides per entity.
				r.Route("/events", func(r chi.Router) {
					r.With(h.OptionalAuthMiddleware).Get("/", h.ListEvents)
					r.With(h.OptionalAuthMiddleware).Get("/{eventID}", h.GetEvent)
					r.With(h.AuthMiddleware).Post("/", h.CreateEvent)
					r.With(h.AuthMiddleware).Patch("/{eventID}", h.UpdateEvent)
					r.With(h.AuthMiddleware).Delete("/{eventID}", h.DeleteEvent)
				})

				r.Route("/resources", func(r chi.Router) {
					r.Use(h.AuthMiddleware)
					r.Get("/", h.ListResources)
					r.Post("/", h.CreateResource)
					r.Get("/{resourceID}", h.GetResource)
					r.Patch("/{resourceID}", h.UpdateResource)
					r.Delete("/{resourceID}", h.DeleteResource)
				})

				r.Route("/services", func(r chi.Router) {
					r.Use(h.AuthMiddleware)
					r.Get("/", h.ListServices)
					r.Post("/", h.CreateService)
					r.Get("/{serviceID}", h.GetService)
					r.Patch("/{serviceID}", h.UpdateService)
					r.Delete("/{serviceID}", h.DeleteService)

					r.Get("/{serviceID}/admins", h.ListServiceAdmins)
					r.Post("/{serviceID}/admins", h.AddServiceAdmin)
					r.Delete("/{serviceID}/admins/{userID}", h.RemoveServiceAdmin)

					r.Get("/{serviceID}/notes", h.ListServiceNotes)
					r.Post("/{serviceID}/notes", h.CreateServiceNote)
					r.Patch("/{serviceID}/notes/{noteID}", h.UpdateServiceNote)
					r.Delete("/{serviceID}/notes/{noteID}", h.DeleteServiceNote)

					r.Get("/{serviceID}/roles", h.ListServiceRoles)
					r.Post("/{serviceID}/roles", h.CreateServiceRole)
					r.Delete("/{serviceID}/roles/{roleID}", h.DeleteServiceRole)

					r.Get("/{serviceID}/events", h.ListServiceEvents)
					r.Post("/{serviceID}/events", h.CreateServiceEvent)
					r.Delete("/{serviceID}/events/{serviceEventID}", h.DeleteServiceEvent)

					r.Get("/{serviceID}/events/{serviceEventID}/owners", h.ListEventOwners)
					r.Post("/{serviceID}/owners", h.CreateEventOwner)
					r.Delete("/{serviceID}/owners/{eventOwnerID}", h.DeleteEventOwner)
				})
			})
		})
	})

	return r
}

// HealthCheck handles health check requests
// @Summary Health Check
// @Description Returns service health status
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// ListTiers returns the price tier catalog
// @Summary List Price Tiers
// @Description List the available price tiers and their limits
// @Tags Tiers
// @Produce json
// @Success 200 {array} tier.PriceTier
// @Router /tiers [get]
func (h *Handler) ListTiers(w http.ResponseWriter, r *http.Request) {
	tiers, err := h.tierCatalog.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list tiers")
		return
	}
	respondJSON(w, http.StatusOK, tiers)
}

// principal builds the acting principal from request context. Anonymous
// requests produce a zero principal.
func principal(r *http.Request) authz.Principal {
	return authz.Principal{UserID: GetUserID(r.Context())}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondDomainError maps domain errors to HTTP responses. Authorization
// denials and not-found conditions collapse into the same 404 so callers
// cannot probe for entities across tenant boundaries. Quota denials are
// distinct so clients can prompt a tier upgrade.
func (h *Handler) respondDomainError(r *http.Request, w http.ResponseWriter, err error) {
	if qe, ok := quota.AsError(err); ok {
		h.metrics.QuotaDenials.Add(r.Context(), 1)
		respondJSON(w, http.StatusConflict, map[string]any{
			"error": "limit_reached",
			"kind":  string(qe.Kind),
			"limit": qe.Limit,
		})
		return
	}

	switch {
	case errors.Is(err, authz.ErrDenied),
		errors.Is(err, tenant.ErrTenantNotFound),
		errors.Is(err, membership.ErrMembershipNotFound),
		errors.Is(err, group.ErrGroupNotFound),
		errors.Is(err, group.ErrGroupMemberNotFound),
		errors.Is(err, event.ErrEventNotFound),
		errors.Is(err, resource.ErrResourceNotFound),
		errors.Is(err, svc.ErrServiceNotFound),
		errors.Is(err, svc.ErrNoteNotFound),
		errors.Is(err, svc.ErrRoleNotFound),
		errors.Is(err, svc.ErrServiceEventNotFound),
		errors.Is(err, svc.ErrEventOwnerNotFound),
		errors.Is(err, identity.ErrUserNotFound):
		if errors.Is(err, authz.ErrDenied) {
			h.metrics.AccessDenials.Add(r.Context(), 1)
		}
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, membership.ErrDuplicateMembership),
		errors.Is(err, group.ErrDuplicateGroupMember),
		errors.Is(err, svc.ErrDuplicateAdmin),
		errors.Is(err, tenant.ErrSlugTaken),
		errors.Is(err, identity.ErrUserAlreadyExists):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, invitation.ErrInvitationExpired):
		respondError(w, http.StatusGone, err.Error())
	case errors.Is(err, invitation.ErrInvitationInvalid),
		errors.Is(err, tenant.ErrInvalidSlug),
		errors.Is(err, membership.ErrInvalidRole),
		errors.Is(err, event.ErrInvalidVisibility),
		errors.Is(err, tier.ErrTierNotFound),
		errors.Is(err, identity.ErrInvalidEmail),
		errors.Is(err, identity.ErrWeakPassword):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, identity.ErrInvalidCredentials),
		errors.Is(err, identity.ErrEmailNotConfirmed),
		errors.Is(err, identity.ErrAccountLocked):
		respondError(w, http.StatusUnauthorized, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
