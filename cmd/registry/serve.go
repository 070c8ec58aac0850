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

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/deppfellow/training-registry/internal/config"
	"github.com/deppfellow/training-registry/internal/database"
	"github.com/deppfellow/training-registry/internal/handler"
	"github.com/deppfellow/training-registry/internal/logger"
	"github.com/deppfellow/training-registry/internal/repository"
	"github.com/deppfellow/training-registry/internal/router"
	"github.com/deppfellow/training-registry/internal/server"
	"github.com/deppfellow/training-registry/internal/service"
)

const shutdownTimeout = 30 * time.Second

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	defer loggerService.Shutdown()

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize server")
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Database.EnsureSchema {
		if err := database.EnsureSchema(ctx, srv.DB.Pool, &log); err != nil {
			log.Error().Err(err).Msg("failed to apply schema")
			_ = srv.Shutdown(context.Background())
			return err
		}
	}

	repos := repository.NewRepositories(srv)

	services, err := service.NewServices(srv, repos)
	if err != nil {
		_ = srv.Shutdown(context.Background())
		return fmt.Errorf("could not create services: %w", err)
	}

	handlers := handler.NewHandlers(srv, services)
	srv.SetupHTTPServer(router.NewRouter(srv, handlers))

	return serveUntilDone(ctx, &log, srv.Start, srv.Shutdown)
}

// serveUntilDone runs start until ctx is cancelled or start fails, then
// calls shutdown. A failed start is returned after shutdown so the process
// exits non-zero.
func serveUntilDone(ctx context.Context, log *zerolog.Logger, start func() error, shutdown func(context.Context) error) error {
	serveErr := make(chan error, 1)
	go func() {
		if err := start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case runErr = <-serveErr:
		if runErr != nil {
			log.Error().Err(runErr).Msg("server stopped unexpectedly")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return errors.Join(runErr, err)
	}

	if runErr != nil {
		return fmt.Errorf("http server: %w", runErr)
	}

	log.Info().Msg("server exited properly")
	return nil
}
