package models

import (
	"strings"
	"time"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

// OrderStatuses lists every accepted status in lifecycle order.
var OrderStatuses = []OrderStatus{
	StatusPending,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

// Valid reports whether s is one of the known statuses. Matching is exact.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// OrderItem represents a single line of an order.
// Name and UnitPrice are copied from the catalog when the order is placed and
// never change afterwards.
type OrderItem struct {
	ID               uint    `json:"-" gorm:"primaryKey"`
	OrderID          string  `json:"-" gorm:"type:varchar(36);index"`
	Position         int     `json:"-"`
	ProductReference string  `json:"productReference,omitempty" gorm:"type:varchar(64)"`
	Name             string  `json:"name" gorm:"type:varchar(255)"`
	NameFolded       string  `json:"-" gorm:"type:varchar(255)"`
	UnitPrice        float64 `json:"unitPrice"`
	Quantity         int     `json:"quantity"`
}

// Order represents a customer checkout.
type Order struct {
	ID               string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CustomerIdentity string      `json:"customerIdentity" gorm:"type:varchar(255);index"`
	IdentityFolded   string      `json:"-" gorm:"column:customer_identity_folded;type:varchar(255);index"`
	Items            []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Total            float64     `json:"total"`
	PaymentMethod    string      `json:"paymentMethod" gorm:"type:varchar(64)"`
	Status           OrderStatus `json:"status" gorm:"type:varchar(20);index"`
	PlacedAt         time.Time   `json:"placedAt" gorm:"index"`
}

// Clone returns a deep copy so callers never share the Items backing array.
func (o Order) Clone() Order {
	c := o
	if o.Items != nil {
		c.Items = make([]OrderItem, len(o.Items))
		copy(c.Items, o.Items)
	}
	return c
}

// Fold is the case folding shared by every order search path.
func Fold(s string) string {
	return strings.ToLower(s)
}

// OrderFilter narrows an order listing. Zero values mean "no restriction".
type OrderFilter struct {
	Search string
	Status OrderStatus
}

// Matches applies the filter to a single order: Status is an exact match,
// Search is a case-insensitive substring of the customer identity or of any item name.
func (f OrderFilter) Matches(o *Order) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	term := Fold(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	if strings.Contains(Fold(o.CustomerIdentity), term) {
		return true
	}
	for _, item := range o.Items {
		if strings.Contains(Fold(item.Name), term) {
			return true
		}
	}
	return false
}
