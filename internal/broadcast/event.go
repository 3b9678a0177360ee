package broadcast

import (
	"encoding/json"
	"fmt"

	"storefront/internal/models"
)

// EventType names an order lifecycle event.
type EventType string

const (
	EventNewOrder     EventType = "new-order"
	EventOrderUpdated EventType = "order-updated"
	EventOrderDeleted EventType = "order-deleted"
)

// Event is one order lifecycle notification.
// Order is set for new-order and order-updated, OrderID alone for order-deleted.
type Event struct {
	Type    EventType
	Order   *models.Order
	OrderID string
}

// NewOrderEvent builds a new-order event carrying a copy of o.
func NewOrderEvent(o models.Order) Event {
	c := o.Clone()
	return Event{Type: EventNewOrder, Order: &c, OrderID: o.ID}
}

// OrderUpdatedEvent builds an order-updated event carrying a copy of o.
func OrderUpdatedEvent(o models.Order) Event {
	c := o.Clone()
	return Event{Type: EventOrderUpdated, Order: &c, OrderID: o.ID}
}

// OrderDeletedEvent builds an order-deleted event carrying only the id.
func OrderDeletedEvent(id string) Event {
	return Event{Type: EventOrderDeleted, OrderID: id}
}

type frame struct {
	Event EventType       `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// MarshalJSON encodes the event as {"event": <type>, "data": <order or id>}.
func (e Event) MarshalJSON() ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if e.Type == EventOrderDeleted {
		data, err = json.Marshal(e.OrderID)
	} else {
		data, err = json.Marshal(e.Order)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(frame{Event: e.Type, Data: data})
}

// UnmarshalJSON decodes a wire frame produced by MarshalJSON.
func (e *Event) UnmarshalJSON(b []byte) error {
	var f frame
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	switch f.Event {
	case EventOrderDeleted:
		var id string
		if err := json.Unmarshal(f.Data, &id); err != nil {
			return fmt.Errorf("decode %s payload: %w", f.Event, err)
		}
		*e = Event{Type: f.Event, OrderID: id}
	case EventNewOrder, EventOrderUpdated:
		var o models.Order
		if err := json.Unmarshal(f.Data, &o); err != nil {
			return fmt.Errorf("decode %s payload: %w", f.Event, err)
		}
		*e = Event{Type: f.Event, Order: &o, OrderID: o.ID}
	default:
		return fmt.Errorf("unknown event type %q", f.Event)
	}
	return nil
}

// Publisher accepts lifecycle events. Implementations must not block the caller.
type Publisher interface {
	Publish(e Event)
}

// Multi fans one event out to several publishers in order.
type Multi []Publisher

// Publish forwards e to every publisher.
func (m Multi) Publish(e Event) {
	for _, p := range m {
		p.Publish(e)
	}
}
