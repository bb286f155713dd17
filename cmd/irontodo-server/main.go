package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/existflow/irontodo/internal/auth"
	"github.com/existflow/irontodo/internal/config"
	"github.com/existflow/irontodo/internal/logger"
	"github.com/existflow/irontodo/internal/store"
	"github.com/existflow/irontodo/internal/todo"
	"github.com/existflow/irontodo/server"
)

func main() {
	if err := run(); err != nil {
		logger.Error("Server failed", logger.F("error", err))
		_ = logger.Close()
		os.Exit(1)
	}
	_ = logger.Close()
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	// PORT wins over the configured address, as on most hosting platforms
	addr := cfg.ServerAddr
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	logConfig := logger.DefaultConfig()
	logConfig.Level = logger.ParseLevel(cfg.LogLevel)
	logConfig.FilePath = cfg.LogFile
	logConfig.Console = true
	if err := logger.Init(logConfig); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.StoreConfig())
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("Error closing store", logger.F("error", err))
		}
	}()

	opts := []auth.Option{
		auth.WithTokenTTL(cfg.TokenTTL),
		auth.WithLogger(logger.L().Named("auth")),
	}
	if cfg.TokenSecret != "" {
		opts = append(opts, auth.WithSecret([]byte(cfg.TokenSecret)))
	}
	svc, err := auth.New(ctx, st, opts...)
	if err != nil {
		return err
	}
	if err := svc.Seed(ctx, cfg.SeedUsers); err != nil {
		logger.Warn("Failed to seed users", logger.F("error", err))
	}

	registry := todo.NewRegistry(st,
		todo.WithDeleteDelay(cfg.DeleteDelay),
		todo.WithLogger(logger.L().Named("todo")),
	)
	srv := server.New(svc, registry, logger.L().Named("http"))
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Error("Error closing server", logger.F("error", err))
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("IronTodo server starting", logger.F("addr", addr), logger.F("store", cfg.Store))
		errCh <- srv.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
