package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/app"
	"storefront/internal/config"
	"storefront/internal/models"
	"storefront/internal/services"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// --- Backing services and HTTP application ---
	application, err := app.Bootstrap(cfg)
	if err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	if cfg.SeedCatalog {
		seedProducts(application.Products)
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := application.Fiber.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")
	application.Close()
	log.Println("Server gracefully stopped")
}

// seedProducts populates an empty catalog with a few sample products.
func seedProducts(svc *services.ProductService) int {
	existing, err := svc.GetAllProducts()
	if err != nil {
		log.Printf("Error reading catalog before seeding: %v", err)
		return 0
	}
	if len(existing) > 0 {
		return 0
	}

	products := []models.Product{
		{Name: "Laptop", Description: "High performance laptop", Category: "Electronics", Price: 1200.00, Stock: 10},
		{Name: "Keyboard", Description: "Mechanical keyboard", Category: "Electronics", Price: 75.00, Stock: 25},
		{Name: "Mouse", Description: "Ergonomic wireless mouse", Category: "Electronics", Price: 25.00, Stock: 50},
	}

	seeded := 0
	for i := range products {
		if err := svc.CreateProduct(&products[i]); err != nil {
			log.Printf("Error seeding product %s: %v", products[i].Name, err)
			continue
		}
		seeded++
		log.Printf("Seeded product: %s (ID: %s)", products[i].Name, products[i].ID)
	}
	return seeded
}
