package handlers

import (
	"log"
	"time"

	"storefront/internal/broadcast"
	"storefront/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// RealtimeHandler streams order lifecycle events to dashboard sessions over websockets.
type RealtimeHandler struct {
	hub          *broadcast.Hub
	writeTimeout time.Duration
}

// NewRealtimeHandler creates a new RealtimeHandler.
func NewRealtimeHandler(hub *broadcast.Hub) *RealtimeHandler {
	return &RealtimeHandler{
		hub:          hub,
		writeTimeout: 10 * time.Second,
	}
}

// localSubscription holds the session's hub subscription between the
// pre-upgrade chain and the websocket handler.
const localSubscription = "orderFeedSubscription"

// RegisterRoutes registers the order feed. guards run before the upgrade.
func (h *RealtimeHandler) RegisterRoutes(router fiber.Router, guards ...fiber.Handler) {
	chain := append([]fiber.Handler{requireUpgrade}, guards...)
	chain = append(chain, h.subscribe, websocket.New(h.HandleOrderFeed))
	router.Get("/ws/orders", chain...)
}

// subscribe opens the hub subscription before the handshake response is
// written, so every event published after the client's dial returns reaches it.
func (h *RealtimeHandler) subscribe(c *fiber.Ctx) error {
	sub := h.hub.Subscribe()
	c.Locals(localSubscription, sub)
	if err := c.Next(); err != nil {
		sub.Close()
		return err
	}
	return nil
}

func requireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// HandleOrderFeed forwards every event published while the session is open.
// Events published before the session subscribed are never sent; the client
// fetches the order list to catch up. A failed write ends the session.
func (h *RealtimeHandler) HandleOrderFeed(conn *websocket.Conn) {
	sub, ok := conn.Locals(localSubscription).(*broadcast.Subscription)
	if !ok {
		sub = h.hub.Subscribe()
	}
	defer sub.Close()

	who, _ := conn.Locals(middleware.LocalEmail).(string)
	log.Printf("Dashboard session connected: %s", who)
	defer log.Printf("Dashboard session closed: %s", who)

	// The feed is server-to-client only; reading detects the close handshake.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case e, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := conn.SetWriteDeadline(time.Now().Add(h.writeTimeout)); err != nil {
				return
			}
			if err := conn.WriteJSON(e); err != nil {
				log.Printf("Dashboard session %s: dropped %s for order %s: %v", who, e.Type, e.OrderID, err)
				return
			}
		}
	}
}
