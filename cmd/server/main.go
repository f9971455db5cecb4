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

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orgcore/orgcore/internal/audit"
	"github.com/orgcore/orgcore/internal/authz"
	"github.com/orgcore/orgcore/internal/config"
	"github.com/orgcore/orgcore/internal/directory"
	"github.com/orgcore/orgcore/internal/identity"
	"github.com/orgcore/orgcore/internal/invitation"
	"github.com/orgcore/orgcore/internal/membership"
	"github.com/orgcore/orgcore/internal/observability/logger"
	"github.com/orgcore/orgcore/internal/observability/metrics"
	"github.com/orgcore/orgcore/internal/observability/tracing"
	"github.com/orgcore/orgcore/internal/quota"
	"github.com/orgcore/orgcore/internal/store/postgres"
	"github.com/orgcore/orgcore/internal/tenant"
	"github.com/orgcore/orgcore/internal/tier"
	transportHTTP "github.com/orgcore/orgcore/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.InitLogger(logger.Config{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})
	slog.Info("starting orgcore")

	ctx := context.Background()

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(ctx, cfg); err != nil {
			fmt.Printf("Migration failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	tracer, err := tracing.New(ctx, tracing.Config{
		Enabled:        cfg.Observability.OTELEnabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		SamplingRate:   1.0,
	})
	if err != nil {
		slog.Error("failed to initialize tracer", logger.Error(err))
	}
	defer tracer.Shutdown(ctx)

	meter, err := metrics.New(ctx, metrics.Config{
		Enabled: cfg.Observability.OTELEnabled,
	}, cfg.Observability.ServiceName)
	if err != nil {
		slog.Error("failed to initialize meter", logger.Error(err))
	}
	metricSet, err := metrics.NewSet(meter)
	if err != nil {
		slog.Error("failed to create instruments", logger.Error(err))
		os.Exit(1)
	}

	db, err := postgres.New(ctx, postgres.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		slog.Error("failed to connect to database", logger.Error(err))
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to database")

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	tenantRepo := postgres.NewTenantRepository(db)
	tierRepo := postgres.NewTierRepository(db)
	membershipRepo := postgres.NewMembershipRepository(db)
	invitationRepo := postgres.NewInvitationRepository(db)
	groupRepo := postgres.NewGroupRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	resourceRepo := postgres.NewResourceRepository(db)
	serviceRepo := postgres.NewServiceRepository(db)
	serviceItemRepo := postgres.NewServiceItemRepository(db)
	quotaCounter := postgres.NewQuotaCounter(db)

	auditLogger := audit.NewSlogLogger()
	passwordHasher := identity.NewPasswordHasher(
		cfg.Security.Argon2Memory,
		cfg.Security.Argon2Iterations,
		cfg.Security.Argon2Parallelism,
		cfg.Security.Argon2SaltLength,
		cfg.Security.Argon2KeyLength,
	)

	// Tier catalog, optionally cached in redis
	var tierCache tier.Cache
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			slog.Error("failed to connect to redis", logger.Error(err))
			os.Exit(1)
		}
		defer redisClient.Close()
		tierCache = tier.NewRedisCache(redisClient)
		slog.Info("tier cache enabled")
	}
	tierCatalog := tier.NewCatalog(tierRepo, tierCache, cfg.Tier.CacheTTL)

	// Policy engine over live membership and service-admin facts
	facts := directory.NewFacts(membershipRepo, serviceRepo)
	engine := authz.NewEngine(facts)
	enforcer := quota.NewEnforcer(tierCatalog, quotaCounter)

	// Services
	identityService := identity.NewService(
		userRepo,
		passwordHasher,
		auditLogger,
		cfg.Security.LockoutMaxAttempts,
		cfg.Security.LockoutDuration,
	)
	tokens := identity.NewTokenIssuer([]byte(cfg.Auth.JWTSecret), cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	invitationService := invitation.NewService(invitationRepo, auditLogger, cfg.Invitation.TTL)
	membershipService := membership.NewService(membershipRepo, invitationService, engine, auditLogger)
	tenantService := tenant.NewService(tenantRepo, tierCatalog, engine, enforcer, auditLogger)
	directoryService := directory.NewService(
		groupRepo, eventRepo, resourceRepo, serviceRepo, serviceItemRepo,
		engine, auditLogger,
	)

	rateLimiter := transportHTTP.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	handler := transportHTTP.NewHandler(
		identityService,
		tokens,
		tenantService,
		membershipService,
		invitationService,
		directoryService,
		tierCatalog,
		engine,
		auditLogger,
		metricSet,
	)

	router := transportHTTP.NewRouter(handler, rateLimiter, cfg.Server.CORSOrigins)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Prune expired invitations hourly
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if _, err := invitationService.PruneExpired(ctx); err != nil {
				slog.ErrorContext(ctx, "failed to prune expired invitations", logger.Error(err))
			}
		}
	}()

	go func() {
		slog.Info("starting http server", logger.Component("server"), logger.Operation("listen"))
		slog.Info(fmt.Sprintf("listening on %s", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", logger.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", logger.Error(err))
	}

	slog.Info("server stopped")
}

func runMigrate(ctx context.Context, cfg *config.Config) error {
	db, err := postgres.New(ctx, postgres.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx, postgres.InitialSchema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	slog.Info("migrations applied")
	return nil
}
