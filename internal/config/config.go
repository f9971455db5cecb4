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

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig        `envPrefix:"SERVER_"`
	Database      DatabaseConfig      `envPrefix:"DB_"`
	Redis         RedisConfig         `envPrefix:"REDIS_"`
	Auth          AuthConfig          `envPrefix:"AUTH_"`
	Invitation    InvitationConfig    `envPrefix:"INVITATION_"`
	Tier          TierConfig          `envPrefix:"TIER_"`
	Observability ObservabilityConfig `envPrefix:"OBSERVABILITY_"`
	Security      SecurityConfig      `envPrefix:"SECURITY_"`
	RateLimit     RateLimitConfig     `envPrefix:"RATE_LIMIT_"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `env:"HOST" envDefault:"0.0.0.0"`
	Port         string        `env:"PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	CORSOrigins  []string      `env:"CORS_ORIGINS" envDefault:"*"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string `env:"HOST" envDefault:"localhost"`
	Port         string `env:"PORT" envDefault:"5432"`
	User         string `env:"USER" envDefault:"orgcore"`
	Password     string `env:"PASSWORD" envDefault:""`
	Database     string `env:"NAME" envDefault:"orgcore"`
	SSLMode      string `env:"SSLMODE" envDefault:"disable"`
	MaxOpenConns int    `env:"MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns int    `env:"MAX_IDLE_CONNS" envDefault:"5"`
}

// RedisConfig holds the tier-cache connection configuration
type RedisConfig struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB" envDefault:"0"`
	Enabled  bool   `env:"ENABLED" envDefault:"false"`
}

// AuthConfig holds access token configuration
type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET,required"`
	Issuer    string        `env:"ISSUER" envDefault:"orgcore"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"1h"`
}

// InvitationConfig holds invitation token configuration
type InvitationConfig struct {
	TTL time.Duration `env:"TTL" envDefault:"168h"`
}

// TierConfig holds tier catalog cache configuration
type TierConfig struct {
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"5m"`
}

// ObservabilityConfig holds logging and tracing configuration
type ObservabilityConfig struct {
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string `env:"LOG_FORMAT" envDefault:"json"`
	OTELEnabled    bool   `env:"OTEL_ENABLED" envDefault:"false"`
	ServiceName    string `env:"SERVICE_NAME" envDefault:"orgcore"`
	ServiceVersion string `env:"SERVICE_VERSION" envDefault:"dev"`
}

// SecurityConfig holds password hashing and lockout configuration
type SecurityConfig struct {
	Argon2Memory       uint32        `env:"ARGON2_MEMORY" envDefault:"65536"`
	Argon2Iterations   uint32        `env:"ARGON2_ITERATIONS" envDefault:"3"`
	Argon2Parallelism  uint8         `env:"ARGON2_PARALLELISM" envDefault:"4"`
	Argon2SaltLength   uint32        `env:"ARGON2_SALT_LENGTH" envDefault:"16"`
	Argon2KeyLength    uint32        `env:"ARGON2_KEY_LENGTH" envDefault:"32"`
	LockoutMaxAttempts int           `env:"LOCKOUT_MAX_ATTEMPTS" envDefault:"5"`
	LockoutDuration    time.Duration `env:"LOCKOUT_DURATION" envDefault:"15m"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond float64 `env:"RPS" envDefault:"10"`
	Burst             int     `env:"BURST" envDefault:"20"`
}

// Load reads configuration from environment variables. A .env file is
// loaded first when present for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	return cfg, nil
}
