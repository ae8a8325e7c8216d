package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/example/ticket-booking/internal/application"
	"github.com/example/ticket-booking/internal/config"
	httptransport "github.com/example/ticket-booking/internal/http"
	"github.com/example/ticket-booking/internal/mail"
	"github.com/example/ticket-booking/internal/persistence/sqlite"
	"github.com/example/ticket-booking/internal/persistence/sqlite/migration"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Missing .env is fine, the environment may be set by the deployment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.NewConnectionPool(migration.DefaultSQLiteConfig(cfg.SQLiteDSN))
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := pool.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	userStore := newUserStoreAdapter(sqlite.NewUserRepository(pool))
	tokenRepo := newTokenRepositoryAdapter(sqlite.NewTokenRepository(pool))
	eventRepo := newEventRepositoryAdapter(sqlite.NewEventRepository(pool))
	bookingRepo := newBookingRepositoryAdapter(sqlite.NewBookingRepository(pool))
	paymentRepo := newPaymentRepositoryAdapter(sqlite.NewPaymentRepository(pool))

	var sender mail.Sender
	if cfg.SMTPEnabled() {
		smtpSender, serr := mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
		if serr != nil {
			logger.Error("failed to configure smtp sender", "error", serr)
			os.Exit(1)
		}
		sender = smtpSender
		logger.Info("smtp delivery enabled", "host", cfg.SMTPHost)
	} else {
		sender = mail.NewLogSender(logger)
	}

	registrationService := application.NewRegistrationService(userStore, sender, nil, idGenerator, now, logger)
	authService := application.NewAuthServiceWithLogger(
		userStore, tokenRepo, nil, tokenGenerator, idGenerator, now,
		cfg.AccessTokenTTL, cfg.RefreshTokenTTL, logger,
	)
	eventService := application.NewEventService(eventRepo, idGenerator, now, logger)
	bookingService := application.NewBookingService(bookingRepo, eventRepo, userStore, sender, idGenerator, now, logger)
	paymentService := application.NewPaymentService(paymentRepo, bookingRepo, idGenerator, now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:      httptransport.NewAuthHandler(registrationService, authService, logger),
		Events:    httptransport.NewEventHandler(eventService, logger),
		Bookings:  httptransport.NewBookingHandler(bookingService, logger),
		Payments:  httptransport.NewPaymentHandler(paymentService, logger),
		Validator: authService,
		Logger:    logger,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("booking API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
