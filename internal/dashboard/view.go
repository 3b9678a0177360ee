// Package dashboard keeps an admin's order table in sync with the server:
// one full fetch on connect, then lifecycle events applied as they arrive.
package dashboard

import (
	"context"
	"sync"

	"storefront/internal/broadcast"
	"storefront/internal/models"
)

// View is the order list shown by one dashboard session.
// Every operation is idempotent, so an event that a fetch already reflects
// can be applied again without changing the result.
type View struct {
	mu       sync.RWMutex
	filter   models.OrderFilter
	orders   []models.Order
	onChange func([]models.Order)
}

// NewView creates an empty view restricted to filter.
func NewView(filter models.OrderFilter) *View {
	return &View{filter: filter}
}

// Filter returns the filter the view is showing.
func (v *View) Filter() models.OrderFilter {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.filter
}

// SetFilter changes the filter and clears the list; the caller reloads it.
func (v *View) SetFilter(filter models.OrderFilter) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter = filter
	v.orders = nil
}

// OnChange registers fn to run with a copy of the list after every Load
// and every Apply that changed it.
func (v *View) OnChange(fn func(orders []models.Order)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onChange = fn
}

func (v *View) notify() {
	v.mu.RLock()
	fn := v.onChange
	v.mu.RUnlock()
	if fn != nil {
		fn(v.Orders())
	}
}

// Load replaces the list with the result of a full fetch.
func (v *View) Load(orders []models.Order) {
	v.mu.Lock()
	v.orders = make([]models.Order, 0, len(orders))
	for _, o := range orders {
		v.orders = append(v.orders, o.Clone())
	}
	v.mu.Unlock()
	v.notify()
}

// Orders returns a copy of the current list, newest first.
func (v *View) Orders() []models.Order {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]models.Order, len(v.orders))
	for i, o := range v.orders {
		out[i] = o.Clone()
	}
	return out
}

// Find returns the order with id if it is in the list.
func (v *View) Find(id string) (models.Order, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if i := v.index(id); i >= 0 {
		return v.orders[i].Clone(), true
	}
	return models.Order{}, false
}

// Apply updates the list for one lifecycle event.
func (v *View) Apply(e broadcast.Event) {
	if v.apply(e) {
		v.notify()
	}
}

func (v *View) apply(e broadcast.Event) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch e.Type {
	case broadcast.EventNewOrder, broadcast.EventOrderUpdated:
		if e.Order == nil {
			return false
		}
		order := e.Order.Clone()
		i := v.index(order.ID)
		matches := v.filter.Matches(&order)
		switch {
		case i >= 0 && matches:
			v.orders[i] = order
		case i >= 0:
			v.remove(i)
		case matches:
			v.insert(order)
		default:
			return false
		}
		return true
	case broadcast.EventOrderDeleted:
		if i := v.index(e.OrderID); i >= 0 {
			v.remove(i)
			return true
		}
	}
	return false
}

// Consume applies events from ch until it is closed or ctx is done.
func (v *View) Consume(ctx context.Context, ch <-chan broadcast.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			v.Apply(e)
		}
	}
}

func (v *View) index(id string) int {
	for i := range v.orders {
		if v.orders[i].ID == id {
			return i
		}
	}
	return -1
}

func (v *View) remove(i int) {
	v.orders = append(v.orders[:i], v.orders[i+1:]...)
}

// insert keeps the list ordered by placedAt descending.
func (v *View) insert(o models.Order) {
	pos := len(v.orders)
	for i, existing := range v.orders {
		if o.PlacedAt.After(existing.PlacedAt) || (o.PlacedAt.Equal(existing.PlacedAt) && o.ID > existing.ID) {
			pos = i
			break
		}
	}
	v.orders = append(v.orders, models.Order{})
	copy(v.orders[pos+1:], v.orders[pos:])
	v.orders[pos] = o
}
