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

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: list-orders <user-id>")
		os.Exit(1)
	}
	userID := os.Args[1]

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

	fmt.Printf("📋 Listing orders for user %s:\n", userID)

	orders, err := client.OrdersByUserID(context.Background(), userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to query orders: %v\n", err)
		os.Exit(1)
	}

	for i, o := range orders {
		fmt.Printf("Order #%d:\n", i+1)
		fmt.Printf("  Order ID: %s\n", o.OrderID)
		fmt.Printf("  Status: %s\n", o.Status)
		fmt.Printf("  Payment Status: %s\n", o.PaymentStatus)
		fmt.Printf("  Total: %.2f\n", o.TotalAmount)
		fmt.Printf("  Created: %s\n", o.CreatedAt.Format("2006-01-02 15:04"))
		fmt.Println()
	}

	fmt.Printf("✅ Total: %d orders\n", len(orders))
}
