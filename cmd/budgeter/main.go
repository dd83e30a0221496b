package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"budgeter/internal/cache"
	"budgeter/internal/cli"
	"budgeter/internal/events"
	apphttp "budgeter/internal/http"
	"budgeter/internal/log"
	"budgeter/internal/services"
	"budgeter/internal/session"
)

const (
	sweepInterval   = time.Minute
	shutdownTimeout = 30 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "budgeter:", err)
		os.Exit(1)
	}
}

func run() error {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	logger := cli.SetupLogger(cfg.LogLevel, os.Stdout)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	var publisher services.EventPublisher
	if cfg.EventsEnabled() {
		client, err := events.Dial(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey, logger)
		if err != nil {
			logger.Warn("Ledger events disabled",
				log.FieldError, err.Error(),
				"error_type", log.ErrorTypeNetwork)
		} else {
			defer client.Close()
			publisher = client
			logger.Info("Publishing ledger events",
				"exchange", cfg.AMQPExchange,
				"routing_key", cfg.AMQPRoutingKey)
		}
	}

	svc := services.NewBudgetService(publisher, logger)
	sessions := session.NewStore(cfg.SessionTTL, cfg.MaxSessions, logger)

	srv := apphttp.NewServer(":"+cfg.Port, svc, sessions, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	manager := cache.NewManager(logger)
	manager.Register(sessions)
	manager.Register(srv.RateLimiter())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting budgeter server",
			log.FieldOperation, log.OpStartup,
			"port", cfg.Port,
			"session_ttl", cfg.SessionTTL,
			"max_sessions", cfg.MaxSessions,
			"events", publisher != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on :%s: %w", cfg.Port, err)
		}
		return nil
	})

	g.Go(func() error {
		if err := manager.Run(gctx, sweepInterval); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", log.FieldError, err.Error())
		return err
	}
	logger.Info("Server stopped gracefully", log.FieldOperation, log.OpShutdown)
	return nil
}
