package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_Valid(t *testing.T) {
	for _, s := range OrderStatuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, OrderStatus("pending").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestOrderFilter_Matches(t *testing.T) {
	o := &Order{
		CustomerIdentity: "Alice@Example.com",
		Items:            []OrderItem{{Name: "Fountain Pen"}},
		Status:           StatusPending,
	}

	cases := []struct {
		filter OrderFilter
		want   bool
	}{
		{OrderFilter{}, true},
		{OrderFilter{Search: "alice"}, true},
		{OrderFilter{Search: "  FOUNTAIN "}, true},
		{OrderFilter{Search: "bob"}, false},
		{OrderFilter{Status: StatusPending}, true},
		{OrderFilter{Status: StatusShipped}, false},
		{OrderFilter{Search: "pen", Status: StatusPending}, true},
		{OrderFilter{Search: "pen", Status: StatusShipped}, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.filter.Matches(o), "%+v", tc.filter)
	}
}

func TestOrder_CloneCopiesItems(t *testing.T) {
	o := Order{ID: "a", Items: []OrderItem{{Name: "Pen"}}}
	c := o.Clone()
	c.Items[0].Name = "Pencil"

	assert.Equal(t, "Pen", o.Items[0].Name)
	assert.Nil(t, Order{}.Clone().Items)
}
