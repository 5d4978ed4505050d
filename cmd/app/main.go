package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"esim-storefront/internal/config"
	"esim-storefront/internal/infra/adapters/mail"
	"esim-storefront/internal/infra/adapters/payment"
	"esim-storefront/internal/infra/adapters/provisioning"
	pg "esim-storefront/internal/infra/db/postgres"
	httpapi "esim-storefront/internal/infra/http"
	"esim-storefront/internal/infra/logging"
	"esim-storefront/internal/infra/metrics"
	red "esim-storefront/internal/infra/redis"
	"esim-storefront/internal/infra/worker"
	"esim-storefront/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("developer mode enabled")
	}
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()
	if err := pg.RunMigrations(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("migrations failed")
	}
	go pg.ReportPoolStats(ctx, pool, 15*time.Second)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()

	// ---- Repositories ----
	txm := pg.NewTxManager(pool)
	planRepo := pg.NewPlanRepoCacheDecorator(pg.NewPlanRepo(pool), redisClient, cfg.Redis.TTL)
	orderRepo := pg.NewOrderRepo(pool)
	paymentRepo := pg.NewPaymentRepo(pool)
	esimRepo := pg.NewEsimRepo(pool)
	eventRepo := pg.NewWebhookEventRepo(pool)
	notificationRepo := pg.NewNotificationRepo(pool)

	// ---- Adapters ----
	gateway, err := payment.NewStripeGateway(
		cfg.Payment.Stripe.SecretKey,
		cfg.Payment.Stripe.WebhookSecret,
		successURL(cfg),
		cancelURL(cfg),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("stripe gateway init failed")
	}
	provisioner, err := provisioning.NewLocalProvisioner(cfg.Provisioning.SMDPAddress)
	if err != nil {
		logger.Fatal().Err(err).Msg("provisioner init failed")
	}
	mailer, err := mail.NewSMTPMailer(cfg.SMTP)
	if err != nil {
		logger.Fatal().Err(err).Msg("smtp mailer init failed")
	}

	// ---- Use cases ----
	planUC := usecase.NewPlanUseCase(planRepo)
	checkoutUC := usecase.NewCheckoutUseCase(planRepo, orderRepo, gateway, logger)
	orderUC := usecase.NewOrderUseCase(orderRepo, paymentRepo, esimRepo)
	webhookUC := usecase.NewWebhookUseCase(
		gateway, provisioner, txm,
		eventRepo, orderRepo, paymentRepo, esimRepo, planRepo, notificationRepo,
		ordersPageURL(cfg), logger,
	)
	notificationUC := usecase.NewNotificationUseCase(
		notificationRepo, txm, mail.NewTemplateRenderer(), mailer, cfg.Outbox.MaxAttempts, logger,
	)

	// ---- Outbox worker ----
	workerPool := worker.NewPool(4, logger)
	workerPool.Start(ctx)
	defer workerPool.Stop()
	dispatcher := worker.NewOutboxDispatcher(notificationUC, notificationRepo, cfg.Outbox.Interval, cfg.Outbox.BatchSize, logger)
	go dispatcher.Start(ctx, workerPool)

	// ---- HTTP ----
	srv := httpapi.NewServer(
		checkoutUC, webhookUC, planUC, orderUC,
		httpapi.NewAuthManager(cfg.Auth.HMACSecret),
		func(ctx context.Context) error { return pool.Ping(ctx) },
		logger,
	)
	go func() {
		if err := srv.Start(cfg.HTTP.Port); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
	case <-ctx.Done():
	}
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
	cancel()
}

var (
	version = "dev"
	commit  = "none"
)

func successURL(cfg *config.Config) string {
	if cfg.HTTP.SuccessURL != "" {
		return cfg.HTTP.SuccessURL
	}
	return strings.TrimRight(cfg.HTTP.BaseURL, "/") + "/checkout/success?session_id={CHECKOUT_SESSION_ID}"
}

func cancelURL(cfg *config.Config) string {
	if cfg.HTTP.CancelURL != "" {
		return cfg.HTTP.CancelURL
	}
	return strings.TrimRight(cfg.HTTP.BaseURL, "/") + "/checkout/cancel"
}

func ordersPageURL(cfg *config.Config) string {
	return strings.TrimRight(cfg.HTTP.BaseURL, "/") + "/dashboard/orders"
}
