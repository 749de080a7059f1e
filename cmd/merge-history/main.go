package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/history"
	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/merge-history/main.go <session-id>")
		fmt.Println("Example: go run cmd/merge-history/main.go 3f0c3a5e-9a0e-4d7c-8d3b-0b8f3c1f2a11")
		os.Exit(1)
	}

	sessionID := os.Args[1]
	if _, err := uuid.Parse(sessionID); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid session ID %q: %v\n", sessionID, err)
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	ctx := context.Background()
	store, closeStore, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open %s store: %v\n", cfg.Store.Driver, err)
		os.Exit(1)
	}
	defer closeStore()

	repos := repository.ForSession(store, sessionID, logger)
	orders, err := history.NewMerger(repos.Store, logger).Merge(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to merge order history: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Merged %d order(s) for session %s\n\n", len(orders), sessionID)
	for _, o := range orders {
		fmt.Printf("  %-20s %s  %10.2f  %s\n", o.ID, o.CreatedAt.Format("2006-01-02 15:04"), o.Total, o.Status)
	}
}
