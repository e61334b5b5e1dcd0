package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/user/go-edu/zkpauth/internal/authsvc"
	"github.com/user/go-edu/zkpauth/internal/config"
	"github.com/user/go-edu/zkpauth/internal/metrics"
	"github.com/user/go-edu/zkpauth/internal/rpcwire"
	"github.com/user/go-edu/zkpauth/internal/store"
	"github.com/user/go-edu/zkpauth/internal/zkp"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger := setupLogger(&cfg.Logging)
	logger.Info().Msg("starting verifier...")

	params, ok := zkp.Profile(cfg.Group.Profile)
	if !ok {
		logger.Fatal().Str("profile", cfg.Group.Profile).Msg("unknown group profile")
	}

	st := store.New()

	m := metrics.New(func() float64 { return float64(st.PendingCount()) })

	svc := authsvc.New(params, st,
		authsvc.WithChallengeRateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
		authsvc.WithLogger(logger))

	svc.Events().Subscribe(authsvc.EventUserRegistered, func(payload interface{}) {
		m.Registrations.Inc()
	})
	svc.Events().Subscribe(authsvc.EventChallengeIssued, func(payload interface{}) {
		m.ChallengesIssued.Inc()
	})

	srv := rpcwire.NewServer(cfg.RPC.Addr, svc, cfg.RPC.Workers*4, cfg.RPC.Workers, logger,
		rpcwire.WithMiddleware(
			rpcwire.RequestID(),
			rpcwire.Recovery(logger),
			rpcwire.Logging(logger),
			rpcwire.Metrics(m),
		),
		rpcwire.WithTimeouts(cfg.RPC.ReadTimeout, cfg.RPC.WriteTimeout))

	httpSrv := metrics.NewServer(cfg.Metrics.Addr, st, logger)

	ctx, cancel := context.WithCancel(context.Background())

	if cfg.Reaper.Enabled {
		reaper := store.NewReaper(st, cfg.Reaper.Interval, cfg.Reaper.MaxAge)
		go reaper.Run(ctx)
	}

	go func() {
		logger.Info().Str("addr", cfg.Metrics.Addr).Msg("metrics server starting")
		if err := httpSrv.ListenAndServe(); err != nil {
			logger.Error().Err(err).Msg("metrics server stopped")
		}
	}()

	go func() {
		logger.Info().Str("addr", cfg.RPC.Addr).Msg("rpc server starting")
		if err := srv.ListenAndServe(ctx); err != nil {
			logger.Error().Err(err).Msg("rpc server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.RPC.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("metrics server shutdown failed")
	}

	logger.Info().Msg("verifier stopped gracefully")
}

func setupLogger(cfg *config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	} else {
		logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
	return logger
}
