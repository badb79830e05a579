package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/afroflavours/restaurant-api/internal/config"
	"github.com/afroflavours/restaurant-api/internal/gateway"
	"github.com/afroflavours/restaurant-api/internal/handler"
	"github.com/afroflavours/restaurant-api/internal/logging"
	"github.com/afroflavours/restaurant-api/internal/mailer"
	"github.com/afroflavours/restaurant-api/internal/middleware"
	"github.com/afroflavours/restaurant-api/internal/repository"
	"github.com/afroflavours/restaurant-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Init("afroflavours-api", cfg.LogLevel, cfg.AppEnv)

	db, err := connectDB(cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	mail, err := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	if err != nil {
		slog.Error("failed to configure mailer", "error", err)
		os.Exit(1)
	}

	bookingRepo := repository.NewBookingRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	cateringRepo := repository.NewCateringRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	payableRepo := repository.NewPayableRepository(db)
	appliedRepo := repository.NewAppliedEventRepository(db)

	notifier := service.NewNotifier(mail, cfg.AdminEmail, logging.Component(logger, "notifier"), 10*time.Second)
	dispatcher := service.NewDispatcher(payableRepo, appliedRepo, db, logging.Component(logger, "dispatcher"))
	verifier := gateway.NewVerifier(cfg.StripeWebhookSecret, time.Duration(cfg.WebhookToleranceS)*time.Second)
	payments := service.NewPayments(cfg.StripeSecretKey, cfg.PaymentCurrency, cfg.CheckoutSuccessURL, cfg.CheckoutCancelURL)

	bookings := service.NewBookings(bookingRepo, notifier)
	orders := service.NewOrders(orderRepo)
	catering := service.NewCatering(cateringRepo, notifier)

	healthHandler := handler.NewHealthHandler(db)
	authHandler := handler.NewAuthHandler(adminRepo, cfg.JWTSecret, time.Duration(cfg.JWTExpiryMin)*time.Minute)
	bookingHandler := handler.NewBookingHandler(bookings)
	orderHandler := handler.NewOrderHandler(orders)
	cateringHandler := handler.NewCateringHandler(catering)
	paymentHandler := handler.NewPaymentHandler(payments, bookingRepo, cateringRepo, orderRepo)
	webhookHandler := handler.NewWebhookHandler(verifier, dispatcher, notifier)

	admin := middleware.Auth(cfg.JWTSecret)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)

	mux.HandleFunc("POST /api/v1/admin/login", authHandler.Login)

	mux.HandleFunc("POST /api/v1/bookings", bookingHandler.Create)
	mux.Handle("GET /api/v1/bookings", admin(http.HandlerFunc(bookingHandler.List)))
	mux.Handle("POST /api/v1/bookings/update-status", admin(http.HandlerFunc(bookingHandler.UpdateStatus)))

	mux.HandleFunc("POST /api/v1/orders", orderHandler.Create)
	mux.Handle("GET /api/v1/orders", admin(http.HandlerFunc(orderHandler.List)))
	mux.Handle("POST /api/v1/orders/update-status", admin(http.HandlerFunc(orderHandler.UpdateStatus)))

	mux.HandleFunc("POST /api/v1/catering", cateringHandler.Create)
	mux.Handle("GET /api/v1/catering", admin(http.HandlerFunc(cateringHandler.List)))
	mux.Handle("POST /api/v1/catering/quote", admin(http.HandlerFunc(cateringHandler.Quote)))
	mux.Handle("POST /api/v1/catering/update-status", admin(http.HandlerFunc(cateringHandler.UpdateStatus)))

	mux.HandleFunc("POST /api/v1/payments/booking-deposit", paymentHandler.CreateBookingDeposit)
	mux.HandleFunc("POST /api/v1/payments/catering-deposit", paymentHandler.CreateCateringDeposit)
	mux.HandleFunc("POST /api/v1/payments/checkout", paymentHandler.CreateOrderCheckout)
	mux.Handle("GET /api/v1/payments/{intentID}", admin(http.HandlerFunc(paymentHandler.GetPayment)))
	mux.Handle("POST /api/v1/payments/refund", admin(http.HandlerFunc(paymentHandler.CreateRefund)))

	// The webhook route sees the raw signed bytes; nothing parses the body
	// before the handler does.
	mux.HandleFunc("POST /api/v1/payments/webhook", webhookHandler.HandleGatewayEvent)

	chain := middleware.Tracing(middleware.Logging(middleware.Recovery(mux)))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           chain,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	// Let in-flight notification emails drain before the process exits.
	notifier.Wait()
	slog.Info("server stopped")
}

func connectDB(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connectDB: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetimeS) * time.Second)
	db.SetConnMaxIdleTime(time.Duration(cfg.DBConnMaxIdleTimeS) * time.Second)

	var pingErr error
	for i := range 30 {
		if pingErr = db.Ping(); pingErr == nil {
			return db, nil
		}
		slog.Info("waiting for database", "attempt", i+1)
		time.Sleep(time.Second)
	}

	db.Close()
	return nil, fmt.Errorf("connectDB: gave up after 30 attempts: %w", pingErr)
}
