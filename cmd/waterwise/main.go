// Package main запускает HTTP-сервер трекера потребления воды.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/waterwise-system/internal/config"
	"github.com/mmeshcher/waterwise-system/internal/handler"
	"github.com/mmeshcher/waterwise-system/internal/middleware"
	"github.com/mmeshcher/waterwise-system/internal/notify"
	"github.com/mmeshcher/waterwise-system/internal/repository"
	"github.com/mmeshcher/waterwise-system/internal/scheduler"
	"github.com/mmeshcher/waterwise-system/internal/tracker"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	var store tracker.Store
	if cfg.DatabaseURI != "" {
		store, err = repository.NewPostgresStore(cfg.DatabaseURI)
	} else {
		store, err = repository.NewSQLiteStore(cfg.StoragePath)
	}
	if err != nil {
		sugar.Fatalw("storage initialization error", "error", err.Error())
	}

	var sink notify.Sink
	if cfg.NotifyURL != "" {
		sink = notify.NewWebhookSink(cfg.NotifyURL, sugar)
	} else {
		sink = notify.NewLogSink(sugar)
	}

	clock := scheduler.SystemClock()
	sched := scheduler.New(clock, sink, sugar)

	trk := tracker.New(context.Background(), store, sched, notify.NewLogAck(sugar), clock, sugar)
	defer trk.Close()

	authMiddleware, err := middleware.NewAuthMiddleware(cfg.AuthSecret, cfg.OwnerPassword)
	if err != nil {
		sugar.Fatalw("auth initialization error", "error", err.Error())
	}

	h := handler.NewHandler(trk, logger, authMiddleware)

	r := h.SetupRouter()

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting waterwise server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
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

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
