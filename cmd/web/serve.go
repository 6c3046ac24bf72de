package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/folio-studio/folio-web/config"
	"github.com/folio-studio/folio-web/internal/bootstrap"
	"github.com/folio-studio/folio-web/internal/content/refresh"
	"github.com/folio-studio/folio-web/internal/logging"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	logger, err := logging.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var rdb *redis.Client
	if cfg.Cache.Enabled() {
		rdb, err = bootstrap.OpenRedis(ctx, bootstrap.RedisOptions{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			logger.Error("result cache unavailable", zap.Error(err))
			return err
		}
		defer func() { _ = rdb.Close() }()
		logger.Info("result cache connected", zap.String("addr", cfg.Cache.RedisAddr))
	}

	client, cache, err := bootstrap.OpenContent(cfg, rdb, logger)
	if err != nil {
		return err
	}

	renderer, err := bootstrap.OpenRenderer(ctx, cfg.Render, logger)
	if err != nil {
		return err
	}

	deps := bootstrap.RouterDeps{
		ServiceName:    serviceName,
		Version:        cfg.App.Version,
		Analytics:      cfg.App.Analytics,
		StaticDir:      cfg.Render.StaticDir,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Gateway:        client,
		Renderer:       renderer,
		Logger:         logger,
	}

	if cache != nil {
		deps.Cache = cache

		scheduler := refresh.NewScheduler(client, cfg.Content.Timeout, logger)
		if err := scheduler.Start(cfg.Cache.RefreshSchedule); err != nil {
			return err
		}
		defer scheduler.Stop()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           bootstrap.BuildRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Environment),
			zap.String("version", cfg.App.Version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
