// seed upserts the demo accounts into the users collection.
// Run: SEED_PASSWORD=... go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hska/buch-catalog/internal/core/domain"
	"github.com/hska/buch-catalog/internal/infrastructure/config"
	mongodb "github.com/hska/buch-catalog/internal/infrastructure/db/mongo"
	"github.com/hska/buch-catalog/pkg/logger"
)

type account struct {
	username string
	email    string
	roles    []string
}

var accounts = []account{
	{"admin", "admin@acme.com", []string{domain.RoleAdmin, domain.RoleMitarbeiter}},
	{"alice", "alice@acme.com", []string{domain.RoleMitarbeiter}},
	{"dirk", "dirk@acme.com", []string{domain.RoleKunde}},
}

func main() {
	ctx := context.Background()
	log := logger.Init(logger.Options{Service: "buch-seed", Pretty: true})

	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		log.Fatal().Msg("SEED_PASSWORD is not set")
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("config error")
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo")
	}
	defer func() { _ = client.Disconnect(ctx) }()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("mongo indexes")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cfg.Auth.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("hash password")
	}

	users := mongodb.NewUserRepository(db)
	for _, a := range accounts {
		u := &domain.User{
			ID:           uuid.NewString(),
			Username:     a.username,
			Email:        a.email,
			PasswordHash: string(hash),
			Roles:        a.roles,
		}
		if err := users.Upsert(ctx, u); err != nil {
			log.Fatal().Err(err).Str("username", a.username).Msg("upsert user")
		}
	}

	fmt.Println("Seed complete")
	for _, a := range accounts {
		fmt.Printf("  %-6s %v\n", a.username, a.roles)
	}
}
