package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/medcore/medcore-server/auth"
	"github.com/medcore/medcore-server/internal/config"
	"github.com/medcore/medcore-server/server"
	"github.com/medcore/medcore-server/store/postgres"
	"github.com/medcore/medcore-server/token"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "[run] config.Load")
	}

	logger := newLogger(cfg)
	displayAppname(cfg.AppName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, &postgres.PoolConfig{ConnString: cfg.DatabaseURL})
	if err != nil {
		return errors.Wrap(err, "[run] postgres.NewPool")
	}
	defer pool.Close()

	tokenService, err := token.New(
		token.NewHMACSigner(cfg.JWTAccessSecret),
		token.NewHMACSigner(cfg.JWTRefreshSecret),
		token.WithIssuer(cfg.AppName),
		token.WithExpiry(cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry),
	)
	if err != nil {
		return errors.Wrap(err, "[run] token.New")
	}

	repos := auth.Repos{
		Users:         postgres.NewUserStore(pool),
		Organizations: postgres.NewOrganizationStore(pool),
		Sessions:      postgres.NewSessionStore(pool),
	}

	authService, err := auth.NewService(repos, tokenService)
	if err != nil {
		return errors.Wrap(err, "[run] auth.NewService")
	}

	srv, err := server.New(cfg, authService, tokenService, logger)
	if err != nil {
		return errors.Wrap(err, "[run] server.New")
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr()).Str("env", cfg.Env).Msg("server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "[run] ListenAndServe")
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "[run] Shutdown")
	}
	return nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg.IsDevelopment() {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

func displayAppname(appName string) {
	banner := figure.NewFigure(appName, "", true)
	banner.Print()
}
