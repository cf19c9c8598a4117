package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/cms"
	"github.com/jafarshop/storefront/internal/config"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Create CMS client
	client := cms.NewClient(cfg.CMS, logger)

	fmt.Println("🔍 Fetching all products from the CMS...")

	products, err := client.ListProducts(context.Background(), cms.ListOptions{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to query CMS: %v\n", err)
		os.Exit(1)
	}

	for i, p := range products {
		fmt.Printf("Product #%d:\n", i+1)
		fmt.Printf("  ID: %s\n", p.ID)
		fmt.Printf("  Title: %s\n", p.Title)
		fmt.Printf("  Slug: %s\n", p.Slug)
		fmt.Printf("  Price: %.2f\n", p.Price)
		if p.DiscountPrice != nil {
			fmt.Printf("  Discount Price: %.2f\n", *p.DiscountPrice)
		}
		fmt.Printf("  Stock: %d\n", p.Quantity)
		if p.Featured {
			fmt.Printf("  Featured: yes\n")
		}
		fmt.Println()
	}

	fmt.Printf("✅ Total: %d products\n", len(products))
}
