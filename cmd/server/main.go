// Canteen point-of-sale and balance-management API.
//
// @title           Canteen API
// @version         1.0
// @description     School canteen point-of-sale, student balances and purchase ledger.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lacanteen/canteen-system/internal/api"
	"github.com/lacanteen/canteen-system/internal/infrastructure/config"
	mongostore "github.com/lacanteen/canteen-system/internal/infrastructure/db/mongo"
	redisstore "github.com/lacanteen/canteen-system/internal/infrastructure/db/redis"
	"github.com/lacanteen/canteen-system/internal/infrastructure/notify"
	"github.com/lacanteen/canteen-system/internal/infrastructure/queue"
	"github.com/lacanteen/canteen-system/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init(logger.Options{})
		l := logger.Get()
		l.Fatal().Err(err).Msg("loading configuration")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to mongo")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("disconnecting mongo client")
		}
	}()

	if err := ensureIndexes(ctx, client, db); err != nil {
		log.Fatal().Err(err).Msg("ensuring mongo indexes")
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to redis")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("closing redis client")
		}
	}()

	mailer := notify.NewMailer(notify.Config{
		Host:            cfg.SMTP.Host,
		Port:            cfg.SMTP.Port,
		Username:        cfg.SMTP.Username,
		Password:        cfg.SMTP.Password,
		From:            cfg.SMTP.From,
		AdminRecipients: cfg.SMTP.AdminRecipients,
	}, log)

	notifier := queue.NewDispatcher(cfg.Notify.Workers, mailer, log)
	notifier.Start(ctx)

	e := api.NewRouter(client, db, rdb, notifier, cfg.JWTSecret)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting canteen API")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}

func ensureIndexes(ctx context.Context, client *mongo.Client, db *mongo.Database) error {
	if err := mongostore.NewAuthRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := mongostore.NewStudentRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	return mongostore.NewLedgerRepository(client, db).EnsureIndexes(ctx)
}
