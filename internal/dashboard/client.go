package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"storefront/internal/broadcast"
	"storefront/internal/models"

	"github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
)

// Client talks to the storefront API on behalf of one admin session.
type Client struct {
	baseURL string
	token   string
	dialer  *websocket.Dialer
}

// NewClient creates a client for the server at baseURL (for example
// "http://localhost:8080") authenticating with an admin JWT.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		dialer:  websocket.DefaultDialer,
	}
}

// FetchOrders performs a full order listing for filter.
func (c *Client) FetchOrders(filter models.OrderFilter) ([]models.Order, error) {
	query := url.Values{}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	if filter.Status != "" {
		query.Set("status", string(filter.Status))
	}
	target := c.baseURL + "/api/v1/orders"
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	agent := fiber.Get(target)
	agent.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("fetch orders: %w", errs[0])
	}
	if code != fiber.StatusOK {
		return nil, fmt.Errorf("fetch orders: unexpected status %d: %s", code, body)
	}

	var orders []models.Order
	if err := json.Unmarshal(body, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

func (c *Client) feedURL() string {
	switch {
	case strings.HasPrefix(c.baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(c.baseURL, "https://") + "/ws/orders"
	case strings.HasPrefix(c.baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(c.baseURL, "http://") + "/ws/orders"
	default:
		return c.baseURL + "/ws/orders"
	}
}

// Follow keeps view in sync until ctx is cancelled or the connection drops.
// The server subscribes the session before it answers the handshake, so once
// the dial returns no later event is missed by the full fetch that follows;
// events already reflected by the fetch are harmless to reapply. Delivery is
// still at most once: events dropped for a slow reader are not resent.
func (c *Client) Follow(ctx context.Context, view *View) error {
	header := http.Header{}
	header.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	conn, _, err := c.dialer.DialContext(ctx, c.feedURL(), header)
	if err != nil {
		return fmt.Errorf("open order feed: %w", err)
	}
	defer conn.Close()

	orders, err := c.FetchOrders(view.Filter())
	if err != nil {
		return err
	}
	view.Load(orders)

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		var e broadcast.Event
		if err := conn.ReadJSON(&e); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read order feed: %w", err)
		}
		view.Apply(e)
	}
}
