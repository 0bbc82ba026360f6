package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"warungku/backend/internal/analytics"
	"warungku/backend/internal/config"
	"warungku/backend/internal/httpapi"
	"warungku/backend/internal/service"
	"warungku/backend/internal/store"
	"warungku/backend/internal/store/memory"
	pgstore "warungku/backend/internal/store/postgres"
	sqlitestore "warungku/backend/internal/store/sqlite"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var repo store.Repository
	closers := make([]func() error, 0, 1)

	switch {
	case cfg.DatabaseURL != "":
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("postgres unavailable (%v) and DATABASE_URL is set; refusing to start with a fallback store", err)
		}
		repo = pg
		closers = append(closers, pg.Close)
		logger.Info("repository: postgres")
	case cfg.StoreDBPath == "memory":
		repo = memory.NewSeeded()
		logger.Info("repository: in-memory (seeded)")
	default:
		sq, err := sqlitestore.New(cfg.StoreDBPath)
		if err != nil {
			logger.Fatalf("open sqlite store at %s: %v", cfg.StoreDBPath, err)
		}
		repo = sq
		closers = append(closers, sq.Close)
		logger.WithField("path", cfg.StoreDBPath).Info("repository: sqlite")
	}

	engine := analytics.NewEngine(repo)
	svc := service.New(repo, engine)
	api := httpapi.New(svc, cfg.AllowedOrigin, logger)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Infof("store backend listening on %s", cfg.Address())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server error: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown error: %v", err)
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logger.Errorf("close error: %v", err)
		}
	}

	logger.Info("server stopped")
}
