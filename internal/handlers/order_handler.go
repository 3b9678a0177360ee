package handlers

import (
	"errors"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductLookup resolves catalog entries for order snapshots.
type ProductLookup interface {
	GetProductByID(id string) (*models.Product, error)
}

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	products ProductLookup
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, products ProductLookup) *OrderHandler {
	return &OrderHandler{
		service:  service,
		products: products,
	}
}

// RegisterRoutes registers the order routes. Checkout is public; every other
// route runs behind the admin guards.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, admin ...fiber.Handler) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/", guarded(admin, h.HandleListOrders)...)
	orderRoutes.Get("/:id", guarded(admin, h.HandleGetOrderByID)...)
	orderRoutes.Put("/:id/status", guarded(admin, h.HandleUpdateOrderStatus)...)
	orderRoutes.Patch("/:id/status", guarded(admin, h.HandleUpdateOrderStatus)...)
	orderRoutes.Delete("/:id", guarded(admin, h.HandleDeleteOrder)...)
}

// snapshotItems copies name and price from the catalog onto every item that
// references a product, so the order records what was charged at checkout.
func (h *OrderHandler) snapshotItems(items []services.OrderItemInput) error {
	if h.products == nil {
		return nil
	}
	for i := range items {
		ref := items[i].ProductReference
		if ref == "" {
			continue
		}
		product, err := h.products.GetProductByID(ref)
		if err != nil {
			var notFound *services.NotFoundError
			if errors.As(err, &notFound) {
				return &services.ValidationError{
					Field:   fmt.Sprintf("items[%d].productReference", i),
					Message: fmt.Sprintf("unknown product %s", ref),
				}
			}
			return err
		}
		items[i].Name = product.Name
		items[i].UnitPrice = product.Price
	}
	return nil
}

// HandleCreateOrder places a new order.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req services.PlaceOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	if err := h.snapshotItems(req.Items); err != nil {
		return respondError(c, err, "Could not create order")
	}

	createdOrder, err := h.service.PlaceOrder(req)
	if err != nil {
		return respondError(c, err, "Could not create order")
	}
	return c.Status(fiber.StatusCreated).JSON(createdOrder)
}

// HandleListOrders lists orders filtered by the optional search and status query parameters.
func (h *OrderHandler) HandleListOrders(c *fiber.Ctx) error {
	filter := models.OrderFilter{
		Search: c.Query("search"),
		Status: models.OrderStatus(c.Query("status")),
	}
	orders, err := h.service.ListOrders(filter)
	if err != nil {
		return respondError(c, err, "Could not retrieve orders")
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve order")
	}
	return c.JSON(order)
}

// HandleUpdateOrderStatus updates the status of an existing order.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var updateData struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := c.BodyParser(&updateData); err != nil {
		return badBody(c, err)
	}

	order, err := h.service.SetOrderStatus(c.Params("id"), updateData.Status)
	if err != nil {
		return respondError(c, err, "Could not update order status")
	}
	return c.JSON(order)
}

// HandleDeleteOrder deletes an order.
func (h *OrderHandler) HandleDeleteOrder(c *fiber.Ctx) error {
	if err := h.service.DeleteOrder(c.Params("id")); err != nil {
		return respondError(c, err, "Could not delete order")
	}
	return c.JSON(fiber.Map{
		"message": "Order deleted successfully",
	})
}
