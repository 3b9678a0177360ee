package app

import (
	"encoding/json"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/fasthttp/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:         "app-test-secret",
		TokenTTL:          time.Hour,
		AllowAdminSignup:  true,
		OrderStatusPolicy: "permissive",
		BroadcastBuffer:   16,
	}
}

func serve(t *testing.T, a *App) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = a.Fiber.Listener(ln) }()
	t.Cleanup(a.Close)
	return ln.Addr().String()
}

func tokenFor(t *testing.T, a *App, email string, role models.Role) string {
	t.Helper()
	_, err := a.Auth.RegisterUser(services.SignupRequest{Name: "Someone", Email: email, Password: "password123", Role: string(role)})
	require.NoError(t, err)
	token, _, err := a.Auth.LoginUser(email, "password123")
	require.NoError(t, err)
	return token
}

func TestOrderFeed(t *testing.T) {
	a := New(testConfig(), Dependencies{
		OrderRepo:   repositories.NewMockOrderRepository(),
		ProductRepo: repositories.NewMockProductRepository(),
		UserRepo:    repositories.NewMockUserRepository(),
	})
	addr := serve(t, a)
	admin := tokenFor(t, a, "admin@example.com", models.RoleAdmin)
	shopper := tokenFor(t, a, "shopper@example.com", models.RoleUser)

	_, resp, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws/orders?token="+shopper, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial("ws://"+addr+"/ws/orders", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, a.Hub.Subscribers(), "rejected sessions never subscribe")

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws/orders?token="+admin, nil)
	require.NoError(t, err)
	defer conn.Close()
	// The subscription exists as soon as the handshake completes; an order
	// placed right after the dial returns must reach the session.
	require.Equal(t, 1, a.Hub.Subscribers())

	order, err := a.Orders.PlaceOrder(services.PlaceOrderRequest{
		CustomerIdentity: "bob",
		Items:            []services.OrderItemInput{{Name: "Pen", UnitPrice: 2.5, Quantity: 2}},
		PaymentMethod:    "card",
	})
	require.NoError(t, err)
	require.NoError(t, a.Orders.DeleteOrder(order.ID))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "new-order", frame.Event)
	var placed models.Order
	require.NoError(t, json.Unmarshal(frame.Data, &placed))
	assert.Equal(t, order.ID, placed.ID)
	assert.Equal(t, 5.0, placed.Total)

	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "order-deleted", frame.Event)
	assert.JSONEq(t, `"`+order.ID+`"`, string(frame.Data))

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return a.Hub.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestBootstrap(t *testing.T) {
	mr := miniredis.RunT(t)
	dir := t.TempDir()

	cfg := testConfig()
	cfg.DBDriver = "sqlite"
	cfg.DatabaseDSN = filepath.Join(dir, "storefront.db")
	cfg.UploadDir = filepath.Join(dir, "uploads")
	cfg.MaxUploadBytes = 1024
	cfg.RedisAddr = mr.Addr()
	cfg.ProductCacheTTL = time.Minute

	a, err := Bootstrap(cfg)
	require.NoError(t, err)
	defer a.Close()

	product := &models.Product{Name: "Pen", Price: 2.5, Category: "Stationery"}
	require.NoError(t, a.Products.CreateProduct(product))
	got, err := a.Products.GetProductByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pen", got.Name)
	assert.True(t, mr.Exists("product:"+product.ID), "reads go through the product cache")

	order, err := a.Orders.PlaceOrder(services.PlaceOrderRequest{
		CustomerIdentity: "bob",
		Items:            []services.OrderItemInput{{ProductReference: product.ID, Name: "Pen", UnitPrice: 2.5, Quantity: 1}},
		PaymentMethod:    "cash",
	})
	require.NoError(t, err)
	stored, err := a.Orders.GetOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestBootstrapRejectsUnknownDriver(t *testing.T) {
	cfg := testConfig()
	cfg.DBDriver = "oracle"
	_, err := Bootstrap(cfg)
	assert.Error(t, err)
}
