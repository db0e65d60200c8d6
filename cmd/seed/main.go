// Package main seeds a SecureVet database from a YAML fixture file.
//
// Seeding is idempotent: accounts are matched by email and pets by
// owner and name, so re-running against a populated database is safe.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"securevet.io/securevet/internal/config"
	"securevet.io/securevet/internal/domain"
	"securevet.io/securevet/internal/infrastructure"
	"securevet.io/securevet/internal/pkg/logger"
	"securevet.io/securevet/internal/store"
	"securevet.io/securevet/internal/store/postgres"
)

type seedFile struct {
	Users []seedUser `yaml:"users"`
	Pets  []seedPet  `yaml:"pets"`
}

type seedUser struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Phone    string `yaml:"phone"`
	Role     string `yaml:"role"`
	Password string `yaml:"password"`
}

type seedPet struct {
	OwnerEmail string  `yaml:"owner_email"`
	Name       string  `yaml:"name"`
	Type       string  `yaml:"type"`
	Breed      string  `yaml:"breed"`
	Age        int     `yaml:"age"`
	Weight     float64 `yaml:"weight"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var path string
	flag.StringVar(&path, "file", "seed.yaml", "path to the seed fixture file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Store.Driver != "postgres" {
		return fmt.Errorf("seeding requires store.driver=postgres, got %q", cfg.Store.Driver)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	ctx := context.Background()
	db, err := infrastructure.NewDatabaseClients(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db.Pool); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	stores := postgres.New(db.Pool)
	if err := seedUsers(ctx, stores.Users(), seed.Users, cfg.Security.BcryptCost); err != nil {
		return err
	}
	if err := seedPets(ctx, stores.Users(), stores.Pets(), seed.Pets); err != nil {
		return err
	}

	logger.Info("Seed complete",
		zap.Int("users", len(seed.Users)),
		zap.Int("pets", len(seed.Pets)),
	)
	return nil
}

func seedUsers(ctx context.Context, users store.Users, entries []seedUser, cost int) error {
	for _, e := range entries {
		if e.Email == "" || e.Password == "" {
			return fmt.Errorf("user %q: email and password are required", e.Name)
		}
		role, err := domain.ParseRole(e.Role)
		if err != nil {
			return fmt.Errorf("user %q: %w", e.Email, err)
		}

		if _, err := users.GetByEmail(ctx, e.Email); err == nil {
			logger.Info("user exists, skipping", zap.String("email", e.Email))
			continue
		} else if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("look up %q: %w", e.Email, err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(e.Password), cost)
		if err != nil {
			return fmt.Errorf("hash password for %q: %w", e.Email, err)
		}
		u := &domain.User{
			Name:         e.Name,
			Email:        e.Email,
			Phone:        e.Phone,
			Role:         role,
			PasswordHash: string(hash),
		}
		if err := users.Create(ctx, u); err != nil {
			return fmt.Errorf("create %q: %w", e.Email, err)
		}
		logger.Info("user created", zap.String("email", e.Email), zap.String("role", string(role)))
	}
	return nil
}

func seedPets(ctx context.Context, users store.Users, pets store.Pets, entries []seedPet) error {
	for _, e := range entries {
		owner, err := users.GetByEmail(ctx, e.OwnerEmail)
		if err != nil {
			return fmt.Errorf("pet %q: owner %q: %w", e.Name, e.OwnerEmail, err)
		}

		existing, err := pets.ListByOwner(ctx, owner.ID)
		if err != nil {
			return fmt.Errorf("list pets of %q: %w", e.OwnerEmail, err)
		}
		found := false
		for _, p := range existing {
			if p.Name == e.Name {
				found = true
				break
			}
		}
		if found {
			logger.Info("pet exists, skipping",
				zap.String("owner", e.OwnerEmail), zap.String("name", e.Name))
			continue
		}

		pet := &domain.Pet{
			OwnerID: owner.ID,
			Name:    e.Name,
			Type:    e.Type,
			Breed:   e.Breed,
			Age:     e.Age,
			Weight:  e.Weight,
		}
		if err := pets.Create(ctx, pet); err != nil {
			return fmt.Errorf("create pet %q: %w", e.Name, err)
		}
		logger.Info("pet created",
			zap.String("owner", e.OwnerEmail), zap.String("name", e.Name))
	}
	return nil
}
