package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"storefront/internal/broadcast"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// OrderItemInput is one requested order line. Name and UnitPrice are the
// snapshot that will be stored on the order.
type OrderItemInput struct {
	ProductReference string  `json:"productReference"`
	Name             string  `json:"name" validate:"required"`
	UnitPrice        float64 `json:"unitPrice" validate:"gte=0"`
	Quantity         int     `json:"quantity" validate:"gte=1"`
}

// PlaceOrderRequest carries a checkout. Total is optional; when present it
// must equal the sum of the items.
type PlaceOrderRequest struct {
	CustomerIdentity string           `json:"customerIdentity" validate:"required"`
	Items            []OrderItemInput `json:"items" validate:"required,min=1,dive"`
	PaymentMethod    string           `json:"paymentMethod" validate:"required"`
	Total            *float64         `json:"total,omitempty"`
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo repositories.OrderRepository
	publisher broadcast.Publisher
	policy    TransitionPolicy
	validate  *validator.Validate
	now       func() time.Time
}

// OrderOption customises an OrderService.
type OrderOption func(*OrderService)

// WithTransitionPolicy replaces the default permissive status policy.
func WithTransitionPolicy(p TransitionPolicy) OrderOption {
	return func(s *OrderService) { s.policy = p }
}

// WithClock replaces time.Now for placedAt stamps.
func WithClock(now func() time.Time) OrderOption {
	return func(s *OrderService) { s.now = now }
}

// NewOrderService creates a new OrderService. A nil publisher disables broadcasting.
func NewOrderService(orderRepo repositories.OrderRepository, publisher broadcast.Publisher, opts ...OrderOption) *OrderService {
	s := &OrderService{
		orderRepo: orderRepo,
		publisher: publisher,
		policy:    PermissiveTransitions,
		validate:  newValidator(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *OrderService) publish(e broadcast.Event) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(e)
}

// OrderTotal returns Σ(unitPrice × quantity) rounded to two decimal places.
// PlaceOrder only accepts whole-cent prices, so the rounding only clears float noise.
func OrderTotal(items []OrderItemInput) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.UnitPrice).Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}
	return total.Round(2)
}

// PlaceOrder validates and stores a new Pending order, then publishes new-order.
// Nothing is stored or published when validation fails.
func (s *OrderService) PlaceOrder(req PlaceOrderRequest) (*models.Order, error) {
	req.CustomerIdentity = strings.TrimSpace(req.CustomerIdentity)
	req.PaymentMethod = strings.TrimSpace(req.PaymentMethod)
	req.Items = append([]OrderItemInput(nil), req.Items...)
	for i := range req.Items {
		req.Items[i].Name = strings.TrimSpace(req.Items[i].Name)
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, validationFailure(err)
	}
	for i, item := range req.Items {
		if price := decimal.NewFromFloat(item.UnitPrice); !price.Round(2).Equal(price) {
			return nil, &ValidationError{
				Field:   fmt.Sprintf("items[%d].unitPrice", i),
				Message: "must have at most 2 decimal places",
			}
		}
	}

	total := OrderTotal(req.Items)
	if req.Total != nil && !decimal.NewFromFloat(*req.Total).Round(2).Equal(total) {
		return nil, &ValidationError{
			Field:   "total",
			Message: fmt.Sprintf("does not match the item sum %s", total.StringFixed(2)),
		}
	}

	items := make([]models.OrderItem, len(req.Items))
	for i, in := range req.Items {
		items[i] = models.OrderItem{
			ProductReference: in.ProductReference,
			Name:             in.Name,
			UnitPrice:        in.UnitPrice,
			Quantity:         in.Quantity,
		}
	}

	order := &models.Order{
		CustomerIdentity: req.CustomerIdentity,
		Items:            items,
		Total:            total.InexactFloat64(),
		PaymentMethod:    req.PaymentMethod,
		Status:           models.StatusPending,
		PlacedAt:         s.now().UTC(),
	}
	if err := s.orderRepo.Create(order); err != nil {
		log.Printf("Error creating order for %s: %v", order.CustomerIdentity, err)
		return nil, &StorageError{Op: "create order", Err: err}
	}

	s.publish(broadcast.NewOrderEvent(*order))
	return order, nil
}

// ListOrders returns the orders matching filter, most recent first.
func (s *OrderService) ListOrders(filter models.OrderFilter) ([]models.Order, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", filter.Status)}
	}
	orders, err := s.orderRepo.List(filter)
	if err != nil {
		return nil, &StorageError{Op: "list orders", Err: err}
	}
	return orders, nil
}

// GetOrder retrieves a single order by its ID.
func (s *OrderService) GetOrder(id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, repoError(err, "get order", "order", id)
	}
	return order, nil
}

// SetOrderStatus moves an order to status, subject to the transition policy,
// and publishes order-updated with the full order.
func (s *OrderService) SetOrderStatus(id string, status models.OrderStatus) (*models.Order, error) {
	current, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, repoError(err, "get order", "order", id)
	}
	if !status.Valid() {
		return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
	}
	if err := s.policy(current.Status, status); err != nil {
		return nil, err
	}

	updated, err := s.orderRepo.UpdateStatus(id, status)
	if err != nil {
		return nil, repoError(err, "update order status", "order", id)
	}

	s.publish(broadcast.OrderUpdatedEvent(*updated))
	return updated, nil
}

// DeleteOrder physically removes an order and publishes order-deleted with its id.
func (s *OrderService) DeleteOrder(id string) error {
	if err := s.orderRepo.Delete(id); err != nil {
		return repoError(err, "delete order", "order", id)
	}
	s.publish(broadcast.OrderDeletedEvent(id))
	return nil
}
