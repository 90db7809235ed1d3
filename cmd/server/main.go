package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/agentpay/flux-ledger/internal/config"
	"github.com/agentpay/flux-ledger/internal/events"
	"github.com/agentpay/flux-ledger/internal/events/kafka"
	"github.com/agentpay/flux-ledger/internal/interfaces"
	"github.com/agentpay/flux-ledger/internal/ledger"
	"github.com/agentpay/flux-ledger/internal/logging"
	"github.com/agentpay/flux-ledger/internal/server"
	"github.com/agentpay/flux-ledger/internal/storage/memory"
	"github.com/agentpay/flux-ledger/internal/storage/postgres"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	store, err := buildStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to create store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing store failed", "error", err)
		}
	}()

	hub := server.NewHub(logger)
	sinks := []interfaces.EventPublisher{hub}

	var kafkaPublisher *kafka.Publisher
	if cfg.Kafka.Enabled {
		kafkaPublisher = kafka.NewPublisher(cfg.Kafka.Brokers)
		sinks = append(sinks, kafkaPublisher)
		logger.Info("kafka event feed enabled", "brokers", cfg.Kafka.Brokers)
		defer func() {
			if err := kafkaPublisher.Close(); err != nil {
				logger.Warn("closing kafka publisher failed", "error", err)
			}
		}()
	}

	ledgerService := ledger.New(store, events.NewFanout(sinks...), logger)
	handlers := server.NewHandlers(logger, ledgerService)
	router := server.NewRouter(logger, handlers, store, hub)

	srv := server.New(logger, server.Options{
		Host:         cfg.HTTP.Host,
		Port:         cfg.HTTP.Port,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func buildStore(ctx context.Context, cfg config.Config) (interfaces.LedgerStore, error) {
	switch cfg.Store.Driver {
	case "postgres":
		store, err := postgres.Open(ctx, cfg.Store.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	default:
		return memory.New(), nil
	}
}
