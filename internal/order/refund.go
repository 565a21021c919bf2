package order

import (
	"glowdesk/internal/model"
)

// RefundOutcome is the result of applying a refund amount to an order.
type RefundOutcome struct {
	Order model.Order
	// Applied is the amount actually refunded after clamping, in minor
	// units. Zero means the request was a replay or the order had no
	// refundable balance left.
	Applied int64
	// FullyRefunded is true once RefundedAmount covers the order total.
	FullyRefunded bool
}

// ClampRefund limits a requested refund to the order's remaining refundable
// balance: [0, total - refundedAmount].
func ClampRefund(o model.Order, requested int64) int64 {
	if requested < 0 {
		return 0
	}
	remaining := o.Total - o.RefundedAmount
	if remaining < 0 {
		remaining = 0
	}
	if requested > remaining {
		return remaining
	}
	return requested
}

// ApplyRefund clamps the requested amount and derives the new payment status:
// refunded once the total is covered, partially_refunded for anything above
// zero. Repeating a refund after the balance is exhausted applies nothing,
// which makes replayed refund requests harmless.
func ApplyRefund(o model.Order, requested int64) RefundOutcome {
	applied := ClampRefund(o, requested)
	o.RefundedAmount += applied

	switch {
	case o.RefundedAmount >= o.Total && o.Total > 0:
		o.PaymentStatus = model.PaymentRefunded
	case o.RefundedAmount > 0:
		o.PaymentStatus = model.PaymentPartiallyRefunded
	}

	return RefundOutcome{
		Order:         o,
		Applied:       applied,
		FullyRefunded: o.Total > 0 && o.RefundedAmount >= o.Total,
	}
}
