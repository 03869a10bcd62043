package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/DanielPopoola/racing-academy-payments/internal/api"
	"github.com/DanielPopoola/racing-academy-payments/internal/application/services"
	"github.com/DanielPopoola/racing-academy-payments/internal/config"
	"github.com/DanielPopoola/racing-academy-payments/internal/infrastructure/email"
	"github.com/DanielPopoola/racing-academy-payments/internal/infrastructure/gateway"
	"github.com/DanielPopoola/racing-academy-payments/internal/infrastructure/persistence/postgres"
	"github.com/DanielPopoola/racing-academy-payments/internal/infrastructure/tokenvault"
	"github.com/DanielPopoola/racing-academy-payments/internal/interfaces/rest"
	"github.com/DanielPopoola/racing-academy-payments/internal/interfaces/rest/handlers"
	"github.com/DanielPopoola/racing-academy-payments/internal/interfaces/rest/middleware"
	"github.com/DanielPopoola/racing-academy-payments/internal/metrics"
	"github.com/DanielPopoola/racing-academy-payments/internal/notification"
	"github.com/DanielPopoola/racing-academy-payments/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting academy service",
		"env", cfg.Primary.Env,
		"port", cfg.Server.Port,
		"log_level", cfg.Logger.Level,
	)

	ctx := context.Background()
	db, err := postgres.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient, err := tokenvault.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	swagger, err := api.LoadSwagger()
	if err != nil {
		logger.Error("failed to load api contract", "error", err)
		os.Exit(1)
	}
	router, err := api.NewRouter(swagger)
	if err != nil {
		logger.Error("failed to build api router", "error", err)
		os.Exit(1)
	}

	recorder := metrics.New()
	vault := tokenvault.NewRedisVault(redisClient, cfg.Redis.TokenTTL)
	gatewayClient := gateway.NewGatewayClient(cfg.Gateway)
	mailer := email.NewBrevoMailer(cfg.Email)

	dispatcher := notification.NewDispatcher(mailer, recorder, cfg.Notifier, logger)

	paymentService := services.NewPaymentService(db, gatewayClient, vault, dispatcher, recorder, cfg.Payments, logger)
	refundService := services.NewRefundService(db, gatewayClient, dispatcher, recorder, cfg.Payments, logger)
	enrollmentService := services.NewEnrollmentService(db, dispatcher, recorder, cfg.Payments, logger)

	h := handlers.NewHandlers(
		paymentService,
		refundService,
		enrollmentService,
		cfg.Payments.Currency,
		logger,
	)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux, middleware.RequireRole(cfg.Auth.JWTSecret, cfg.Auth.AdminRole, logger))
	api.RegisterDocsRoutes(mux)
	mux.Handle("GET /metrics", recorder.Handler())
	mux.HandleFunc("GET /healthz", healthz(db))

	handler := middleware.Metrics(recorder)(mux)
	handler = middleware.OpenAPIValidator(router, logger)(handler)
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Timeout(cfg.Server.WriteTimeout)(handler)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	reconciler := worker.NewReconciler(
		enrollmentService,
		cfg.Worker.Interval,
		cfg.Worker.BatchSize,
		logger,
	)

	reminders, err := worker.NewReminderJob(
		enrollmentService,
		cfg.Worker.ReminderCron,
		cfg.Worker.ReminderWindow,
		cfg.Worker.BatchSize,
		logger,
	)
	if err != nil {
		logger.Error("failed to schedule reminders", "error", err)
		os.Exit(1)
	}

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	// Emails outlive the workers so Stop can drain the queue.
	dispatcher.Start(context.Background())

	var workers sync.WaitGroup
	workers.Add(2)
	go func() {
		defer workers.Done()
		reconciler.Start(workerCtx)
	}()
	go func() {
		defer workers.Done()
		reminders.Start(workerCtx)
	}()

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	cancelWorkers()
	workers.Wait()

	dispatcher.Stop()

	logger.Info("server exited")
}

func healthz(db *postgres.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			rest.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable"})
			return
		}
		rest.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	}
}
