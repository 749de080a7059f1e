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

	"github.com/jafarshop/storefront/internal/api"
	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/events"
	"github.com/jafarshop/storefront/internal/pricing"
	"github.com/jafarshop/storefront/internal/storage"
	"github.com/jafarshop/storefront/internal/storeapi"
	"github.com/jafarshop/storefront/pkg/logging"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	store, closeStore, err := storage.Open(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open draft store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer closeStore()

	publisher := newPublisher(cfg, logger)
	defer publisher.Close()

	router := api.NewRouter(cfg, api.Dependencies{
		Store:      store,
		Remote:     storeapi.NewClient(cfg.StoreAPI, logger),
		Calculator: pricing.NewCalculator(cfg.Tax.DefaultRate),
		Publisher:  publisher,
	}, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Storefront listening", zap.String("addr", srv.Addr), zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

func newPublisher(cfg *config.Config, logger *zap.Logger) events.Publisher {
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Info("No Kafka brokers configured, order events disabled")
		return events.NopPublisher{}
	}
	return events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
}
