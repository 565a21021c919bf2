package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"glowdesk/internal/auth"
	"glowdesk/internal/config"
	"glowdesk/internal/database"
	"glowdesk/internal/handler"
	"glowdesk/internal/loyalty"
	"glowdesk/internal/mailer"
	"glowdesk/internal/model"
	"glowdesk/internal/payment"
	"glowdesk/internal/repository"
	"glowdesk/internal/router"
	"glowdesk/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; the environment may carry everything.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting glowdesk API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Repositories
	productRepo := repository.NewProductRepository(pool, logger)
	appointmentRepo := repository.NewAppointmentRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	stockRepo := repository.NewStockRepository(pool, logger)
	voucherRepo := repository.NewVoucherRepository(pool, logger)
	loyaltyRepo := repository.NewLoyaltyRepository(pool, logger)
	webhookRepo := repository.NewWebhookEventRepository(pool, logger)

	// Collaborators
	gateway := payment.NewLocalGateway(cfg.Shop.WebhookSecret)
	mail := mailer.NewLogMailer(logger)
	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.SessionTTLHours)*time.Hour)

	bookingRules := model.BookingRules{
		CancellationCutoffHours: cfg.Booking.CancellationCutoffHours,
		MinLeadTimeMinutes:      cfg.Booking.MinLeadTimeMinutes,
		MaxHorizonDays:          cfg.Booking.MaxHorizonDays,
	}
	shopSettings := service.ShopSettings{
		Currency:     cfg.Shop.Currency,
		FlatShipping: cfg.Shop.FlatShipping,
		PointRate:    cfg.Shop.PointRate,
	}
	tiers := loyalty.DefaultTiers()

	// Services
	bookingService := service.NewBookingService(appointmentRepo, mail, bookingRules, logger)
	orderService := service.NewOrderService(
		orderRepo, productRepo, stockRepo, voucherRepo, loyaltyRepo,
		gateway, mail, shopSettings, tiers, logger,
	)
	webhookService := service.NewWebhookService(
		orderRepo, webhookRepo, stockRepo, loyaltyRepo,
		mail, shopSettings, tiers, logger,
	)
	loyaltyService := service.NewLoyaltyService(loyaltyRepo, tiers, logger)
	reportService := service.NewReportService(stockRepo, productRepo, logger)

	// HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)
	webhookHandler := handler.NewWebhookHandler(webhookService, gateway, logger)
	loyaltyHandler := handler.NewLoyaltyHandler(loyaltyService, logger)
	reportHandler := handler.NewReportHandler(reportService, logger)

	mux := router.New(
		bookingHandler, orderHandler, webhookHandler, loyaltyHandler, reportHandler,
		cfg.Auth.APIKey, issuer, logger,
	)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
