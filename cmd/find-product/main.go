package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/storeapi"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/find-product/main.go <title or id>")
		fmt.Println("Example: go run cmd/find-product/main.go \"headphones\"")
		os.Exit(1)
	}

	query := strings.ToLower(strings.TrimSpace(os.Args[1]))

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	client := storeapi.NewClient(cfg.StoreAPI, logger)

	fmt.Printf("Searching products for: %s\n\n", query)

	products, err := client.ListProducts(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list products: %v\n", err)
		os.Exit(1)
	}

	found := 0
	for _, p := range products {
		if p.ID != query && !strings.Contains(strings.ToLower(p.Title), query) {
			continue
		}
		found++
		fmt.Printf("ID: %s\n", p.ID)
		fmt.Printf("Title: %s\n", p.Title)
		fmt.Printf("Price: %.2f\n", p.Price)
		fmt.Printf("In stock: %t\n\n", p.InStock)
		fmt.Printf("Add to a cart with:\n")
		fmt.Printf("curl -X POST -H 'Content-Type: application/json' -d '{\"product_id\":\"%s\",\"qty\":1}' %s/v1/cart/items\n\n",
			p.ID, "http://localhost:"+cfg.Port)
	}

	if found == 0 {
		fmt.Printf("No product matching '%s' among %d products.\n", query, len(products))
		os.Exit(1)
	}
}
