// Package main запускает HTTP-сервер сервиса Fecha Instalação.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/fecha-instalacao/internal/config"
	"github.com/mmeshcher/fecha-instalacao/internal/entitlement"
	"github.com/mmeshcher/fecha-instalacao/internal/gate"
	"github.com/mmeshcher/fecha-instalacao/internal/handler"
	"github.com/mmeshcher/fecha-instalacao/internal/metrics"
	"github.com/mmeshcher/fecha-instalacao/internal/middleware"
	"github.com/mmeshcher/fecha-instalacao/internal/repository"
	"github.com/mmeshcher/fecha-instalacao/internal/service"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}

	if cfg.SessionSecret == "" {
		sugar.Warn("SESSION_SECRET is empty, sessions will not survive a restart")
	}
	if cfg.KiwifyAllowUnsigned {
		sugar.Warn("KIWIFY_ALLOW_UNSIGNED_WEBHOOKS is enabled, webhook signatures are not checked")
	} else if cfg.KiwifyWebhookSecret == "" {
		sugar.Warn("KIWIFY_WEBHOOK_SECRET is empty, webhooks will be rejected")
	}

	m := metrics.New()
	g := gate.New(repo, cfg.FreeBudgetLimit, logger, m)

	reconciler := entitlement.NewReconciler(entitlement.Config{
		Secret:        cfg.KiwifyWebhookSecret,
		AllowUnsigned: cfg.KiwifyAllowUnsigned,
	}, repo, logger, m)

	svc := service.NewService(repo, g, service.Options{
		BaseURL:     cfg.BaseURL,
		CheckoutURL: cfg.KiwifyCheckoutURL,
		AdminUIDs:   cfg.AdminUIDs,
	}, logger)
	defer svc.Close()

	authMiddleware := middleware.NewAuthMiddleware(cfg.SessionSecret)
	h := handler.NewHandler(svc, reconciler, logger, authMiddleware, m.Handler())

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           h.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		sugar.Infow("starting fecha-instalacao server", "addr", cfg.RunAddress, "freeBudgetLimit", cfg.FreeBudgetLimit)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	eg.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := eg.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
