package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/miniwallet/internal/config"
	"github.com/congo-pay/miniwallet/internal/infra"
	"github.com/congo-pay/miniwallet/internal/logging"
	"github.com/congo-pay/miniwallet/internal/notification"
	"github.com/congo-pay/miniwallet/internal/server"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewWithWriter(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if envErr != nil && !os.IsNotExist(envErr) {
		logger.Warn("load .env", "error", envErr)
	}

	ctx := context.Background()
	startCtx, cancelStart := context.WithTimeout(ctx, 15*time.Second)
	defer cancelStart()

	var db *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		db, err = infra.NewPostgresPool(startCtx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("connect postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := infra.Migrate(startCtx, db); err != nil {
			logger.Error("migrate postgres", "error", err)
			os.Exit(1)
		}
	}

	var cache *redis.Client
	if cfg.RedisURL != "" {
		cache, err = infra.NewRedisClient(startCtx, cfg.RedisURL)
		if err != nil {
			logger.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}()
	} else {
		logger.Warn("REDIS_URL not set, idempotency replay disabled and rate limits are per process")
	}

	notifiers := notification.Multi{notification.NewLoggerNotifier(logger)}
	if len(cfg.KafkaBrokers) > 0 {
		if err := infra.PingKafka(startCtx, cfg.KafkaBrokers); err != nil {
			logger.Error("connect kafka", "error", err)
			os.Exit(1)
		}
		kafkaNotifier := notification.NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer func() {
			if err := kafkaNotifier.Close(); err != nil {
				logger.Warn("close kafka writer", "error", err)
			}
		}()
		notifiers = append(notifiers, kafkaNotifier)
		logger.Info("publishing wallet events", slog.String("topic", cfg.KafkaTopic))
	}

	srv, err := server.New(cfg, db, cache, notifiers, logger)
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}
