package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/internal/api/router"
	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/internal/appointments"
	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/internal/cache"
	appconfig "github.com/NadavFredi/yaron-hershberg-barbery-sub015/internal/config"
	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/internal/customers"
	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/internal/events"
	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/internal/meetings"
	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/internal/notify"
	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/internal/observability/metrics"
	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/internal/scheduling"
	"github.com/NadavFredi/yaron-hershberg-barbery-sub015/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting barbery API server", "env", cfg.Env, "port", cfg.Port)

	loc, err := time.LoadLocation(cfg.SalonTimezone)
	if err != nil {
		logger.Error("invalid salon timezone", "timezone", cfg.SalonTimezone, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("database unreachable", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	schedMetrics := metrics.NewSchedulingMetrics(registry)

	dayCache := cache.New(cache.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		TLS:      cfg.RedisTLS,
		TTL:      cfg.ScheduleTTL,
	}, logger)
	if dayCache != nil {
		defer dayCache.Close()
	}

	outbox := events.NewOutboxStore(pool)
	var sender notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		sender = sg
	}
	notifier := notify.NewBookingNotifier(sender, cfg.NotificationsInbox, logger)
	deliverer := events.NewDeliverer(outbox, notifier, logger).
		WithBatchSize(int32(cfg.OutboxBatchSize)).
		WithInterval(cfg.OutboxPollInterval)
	go deliverer.Start(ctx)

	customerRepo := customers.NewRepository(pool)
	resolver := scheduling.NewResolver(pool, logger)
	appointmentRepo := appointments.NewRepository(pool)
	placementSvc := appointments.NewService(appointmentRepo, resolver, customerRepo, loc, logger).
		WithOutbox(outbox).
		WithCache(dayCache).
		WithMetrics(schedMetrics)
	meetingRepo := meetings.NewRepository(pool)
	bookingSvc := meetings.NewService(meetingRepo, customerRepo, logger).
		WithOutbox(outbox).
		WithCache(dayCache).
		WithMetrics(schedMetrics)

	r := router.New(&router.Config{
		Logger:              logger,
		AppointmentsHandler: appointments.NewHandler(placementSvc, logger),
		MeetingsHandler:     meetings.NewHandler(bookingSvc, logger),
		AuthSecret:          cfg.AuthJWTSecret,
		MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerSec:     cfg.RateLimitPerSecond,
		RateLimitBurst:      cfg.RateLimitBurst,
		HealthCheck:         pool.Ping,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
