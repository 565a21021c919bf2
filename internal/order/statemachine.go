// Package order holds the pure order state machine: status transitions and
// the refund/payment-status derivation. Persistence lives in the repository
// layer; these functions only compute the next legal state.
package order

import (
	"glowdesk/internal/model"
)

// transitions is the order status machine. cancelled and refunded have no
// outgoing edges.
var transitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderPending:    {model.OrderPaid, model.OrderCancelled},
	model.OrderPaid:       {model.OrderProcessing, model.OrderShipped, model.OrderCancelled, model.OrderRefunded},
	model.OrderProcessing: {model.OrderShipped, model.OrderCancelled},
	model.OrderShipped:    {model.OrderDelivered, model.OrderCancelled},
	model.OrderDelivered:  {model.OrderCompleted, model.OrderRefunded},
	model.OrderCompleted:  {model.OrderRefunded},
}

// CanTransition reports whether the status machine allows from -> to.
func CanTransition(from, to model.OrderStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the outgoing edges for a status. Terminal
// statuses return an empty slice.
func AllowedTransitions(from model.OrderStatus) []model.OrderStatus {
	return transitions[from]
}

// Transition returns a copy of the order moved to the target status, or an
// InvalidTransitionError if the status machine forbids it.
func Transition(o model.Order, target model.OrderStatus) (model.Order, error) {
	if !CanTransition(o.Status, target) {
		return o, &model.InvalidTransitionError{
			Entity: "order",
			From:   string(o.Status),
			To:     string(target),
		}
	}
	o.Status = target
	return o, nil
}

// ComputeTotal derives the order total: max(0, subtotal - discount + shipping).
func ComputeTotal(subtotal, discount, shipping int64) int64 {
	total := subtotal - discount + shipping
	if total < 0 {
		return 0
	}
	return total
}
