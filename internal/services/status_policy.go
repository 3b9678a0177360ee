package services

import (
	"fmt"

	"storefront/internal/models"
)

// TransitionPolicy decides whether an order may move from one status to another.
// It returns a *ValidationError to refuse the transition.
type TransitionPolicy func(from, to models.OrderStatus) error

// PermissiveTransitions allows every transition between known statuses.
func PermissiveTransitions(_, _ models.OrderStatus) error {
	return nil
}

var forwardEdges = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPending:    {models.StatusProcessing, models.StatusCancelled},
	models.StatusProcessing: {models.StatusShipped, models.StatusCancelled},
	models.StatusShipped:    {models.StatusDelivered},
}

// ForwardOnlyTransitions allows Pending→Processing→Shipped→Delivered and
// cancellation before shipping. Setting the current status again is a no-op.
func ForwardOnlyTransitions(from, to models.OrderStatus) error {
	if from == to {
		return nil
	}
	for _, next := range forwardEdges[from] {
		if next == to {
			return nil
		}
	}
	return &ValidationError{
		Field:   "status",
		Message: fmt.Sprintf("cannot change status from %s to %s", from, to),
	}
}

// PolicyByName resolves a configured policy name; unknown names fall back to permissive.
func PolicyByName(name string) TransitionPolicy {
	if name == "forward" {
		return ForwardOnlyTransitions
	}
	return PermissiveTransitions
}
