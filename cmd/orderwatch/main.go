// Command orderwatch follows the live order list of a storefront server from
// the terminal, the same way the admin dashboard does.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/dashboard"
	"storefront/internal/models"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Error loading .env file: %v", err)
	}
	v := viper.New()
	v.SetDefault("ORDERWATCH_SERVER", "http://localhost:8080")
	v.SetDefault("ORDERWATCH_TOKEN", "")
	v.SetDefault("ORDERWATCH_SEARCH", "")
	v.SetDefault("ORDERWATCH_STATUS", "")
	v.AutomaticEnv()

	token := v.GetString("ORDERWATCH_TOKEN")
	if token == "" {
		log.Fatal("ORDERWATCH_TOKEN must hold an admin JWT")
	}

	view := dashboard.NewView(models.OrderFilter{
		Search: v.GetString("ORDERWATCH_SEARCH"),
		Status: models.OrderStatus(v.GetString("ORDERWATCH_STATUS")),
	})
	view.OnChange(printOrders)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := dashboard.NewClient(v.GetString("ORDERWATCH_SERVER"), token)
	if err := client.Follow(ctx, view); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Order feed ended: %v", err)
	}
}

func printOrders(orders []models.Order) {
	log.Printf("%d order(s)", len(orders))
	for _, o := range orders {
		log.Printf("  %s  %-10s  %8.2f  %s  %s", o.PlacedAt.Format("2006-01-02 15:04"), o.Status, o.Total, o.CustomerIdentity, o.ID)
	}
}
