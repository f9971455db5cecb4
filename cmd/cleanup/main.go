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

// Command cleanup removes expired invitation tokens. The server prunes
// them hourly; this binary exists for one-off runs and cron setups where
// the server's background loop is disabled.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/orgcore/orgcore/internal/config"
	"github.com/orgcore/orgcore/internal/store/postgres"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
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
		log.Fatalf("Failed to connect: %v", err)
	}
	defer db.Close()

	repo := postgres.NewInvitationRepository(db)
	pruned, err := repo.DeleteExpired(ctx, time.Now())
	if err != nil {
		log.Fatalf("Failed to prune invitations: %v", err)
	}

	fmt.Printf("Pruned %d expired invitations\n", pruned)
}
