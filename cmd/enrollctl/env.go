package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DanielPopoola/racing-academy-payments/internal/application/services"
	"github.com/DanielPopoola/racing-academy-payments/internal/config"
	"github.com/DanielPopoola/racing-academy-payments/internal/infrastructure/email"
	"github.com/DanielPopoola/racing-academy-payments/internal/infrastructure/persistence/postgres"
	"github.com/DanielPopoola/racing-academy-payments/internal/metrics"
	"github.com/DanielPopoola/racing-academy-payments/internal/notification"
)

// env is the slice of the service graph a one-shot command needs.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *postgres.DB
}

func loadEnv(ctx context.Context) (*env, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	logger := cfg.Logger.NewLogger()

	db, err := postgres.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return &env{cfg: cfg, logger: logger, db: db}, nil
}

// enrollments builds the enrollment service with a live dispatcher. The
// returned stop func drains pending emails and closes the pool.
func (e *env) enrollments() (*services.EnrollmentService, func()) {
	recorder := metrics.New()
	dispatcher := notification.NewDispatcher(email.NewBrevoMailer(e.cfg.Email), recorder, e.cfg.Notifier, e.logger)
	dispatcher.Start(context.Background())

	svc := services.NewEnrollmentService(e.db, dispatcher, recorder, e.cfg.Payments, e.logger)
	return svc, func() {
		dispatcher.Stop()
		e.db.Close()
	}
}
