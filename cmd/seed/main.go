// Command seed bootstraps a fresh canteen database with the default
// admin and staff accounts and one demo student, so a new deployment
// can log in at the terminals immediately.
package main

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/lacanteen/canteen-system/internal/core/domain"
	"github.com/lacanteen/canteen-system/internal/infrastructure/config"
	mongostore "github.com/lacanteen/canteen-system/internal/infrastructure/db/mongo"
	"github.com/lacanteen/canteen-system/pkg/logger"
)

const defaultPassword = "admin123"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init(logger.Options{})
		l := logger.Get()
		l.Fatal().Err(err).Msg("loading configuration")
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to mongo")
	}
	defer client.Disconnect(context.Background())

	users := mongostore.NewAuthRepository(db)
	students := mongostore.NewStudentRepository(db)

	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensuring user indexes")
	}
	if err := students.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensuring student indexes")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("hashing default password")
	}

	now := time.Now().UTC()
	seedUsers := []domain.User{
		{Email: "admin@school.com", Name: "Admin User", PasswordHash: string(hash), Role: domain.RoleAdmin, CreatedAt: now, UpdatedAt: now},
		{Email: "staff@school.com", Name: "Staff User", PasswordHash: string(hash), Role: domain.RoleStaff, CreatedAt: now, UpdatedAt: now},
	}
	for _, u := range seedUsers {
		if _, err := users.Create(ctx, &u); err != nil {
			if errors.Is(err, domain.ErrUserExists) {
				log.Info().Str("email", u.Email).Msg("user already seeded, skipping")
				continue
			}
			log.Fatal().Err(err).Str("email", u.Email).Msg("creating seed user")
		}
		log.Info().Str("email", u.Email).Str("role", u.Role).Msg("seed user created")
	}

	demo := &domain.Student{
		ID:        uuid.NewString(),
		CardID:    "0005235426",
		Name:      "Student One",
		Grade:     "5th Grade",
		Email:     "lacanteen@elitelac.com",
		Balance:   9950.0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := students.Create(ctx, demo); err != nil {
		if errors.Is(err, domain.ErrStudentExists) {
			log.Info().Str("card_id", demo.CardID).Msg("demo student already seeded, skipping")
		} else {
			log.Fatal().Err(err).Msg("creating demo student")
		}
	} else {
		log.Info().Str("card_id", demo.CardID).Msg("demo student created")
	}

	log.Info().Msg("seed completed")
}
