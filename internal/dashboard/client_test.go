package dashboard

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"storefront/internal/app"
	"storefront/internal/config"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T) (*app.App, string) {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:         "dashboard-test-secret",
		TokenTTL:          time.Hour,
		AllowAdminSignup:  true,
		OrderStatusPolicy: "permissive",
		BroadcastBuffer:   16,
	}
	a := app.New(cfg, app.Dependencies{
		OrderRepo:   repositories.NewMockOrderRepository(),
		ProductRepo: repositories.NewMockProductRepository(),
		UserRepo:    repositories.NewMockUserRepository(),
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = a.Fiber.Listener(ln) }()
	t.Cleanup(func() { _ = a.Fiber.Shutdown() })

	return a, "http://" + ln.Addr().String()
}

func adminToken(t *testing.T, a *app.App) string {
	t.Helper()
	_, err := a.Auth.RegisterUser(services.SignupRequest{
		Name: "Admin", Email: "admin@example.com", Password: "secret123", Role: "admin",
	})
	require.NoError(t, err)
	token, _, err := a.Auth.LoginUser("admin@example.com", "secret123")
	require.NoError(t, err)
	return token
}

func place(t *testing.T, a *app.App, customer string) *models.Order {
	t.Helper()
	o, err := a.Orders.PlaceOrder(services.PlaceOrderRequest{
		CustomerIdentity: customer,
		Items:            []services.OrderItemInput{{Name: "Pen", UnitPrice: 2.5, Quantity: 2}},
		PaymentMethod:    "card",
	})
	require.NoError(t, err)
	return o
}

func TestClient_FetchOrders(t *testing.T) {
	a, baseURL := startServer(t)
	client := NewClient(baseURL, adminToken(t, a))
	place(t, a, "alice@example.com")
	place(t, a, "bob@example.com")

	all, err := client.FetchOrders(models.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	alice, err := client.FetchOrders(models.OrderFilter{Search: "alice"})
	require.NoError(t, err)
	require.Len(t, alice, 1)
	assert.Equal(t, "alice@example.com", alice[0].CustomerIdentity)
	assert.Equal(t, 5.0, alice[0].Total)
}

func TestClient_FetchOrdersRejectsBadToken(t *testing.T) {
	_, baseURL := startServer(t)
	client := NewClient(baseURL, "not-a-token")

	_, err := client.FetchOrders(models.OrderFilter{})
	assert.Error(t, err)
}

func TestClient_FollowKeepsViewInSync(t *testing.T) {
	a, baseURL := startServer(t)
	client := NewClient(baseURL, adminToken(t, a))
	first := place(t, a, "alice@example.com")

	view := NewView(models.OrderFilter{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	result := make(chan error, 1)
	go func() { result <- client.Follow(ctx, view) }()

	require.Eventually(t, func() bool {
		_, loaded := view.Find(first.ID)
		return a.Hub.Subscribers() == 1 && loaded
	}, 2*time.Second, 10*time.Millisecond)

	second := place(t, a, "bob@example.com")
	_, err := a.Orders.SetOrderStatus(first.ID, models.StatusShipped)
	require.NoError(t, err)
	require.NoError(t, a.Orders.DeleteOrder(second.ID))

	assert.Eventually(t, func() bool {
		orders := view.Orders()
		return len(orders) == 1 && orders[0].ID == first.ID && orders[0].Status == models.StatusShipped
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-result:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("Follow did not return after cancel")
	}
}
