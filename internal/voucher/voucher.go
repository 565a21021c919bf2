// Package voucher holds the gift-voucher redemption rules. Vouchers are rows
// in the datastore; this package only decides whether and how much a voucher
// may be redeemed against an order.
package voucher

import (
	"time"

	"glowdesk/internal/model"
)

// Validate checks whether a voucher is usable at all at `now`.
func Validate(v model.Voucher, now time.Time) error {
	if !v.Active {
		return model.NewDomainError(model.ErrCodeVoucherNotUsable, "This voucher is not active")
	}
	if now.After(v.ExpiresAt) {
		return model.ErrVoucherExpired
	}
	if v.Remaining <= 0 {
		return model.ErrVoucherUsed
	}
	return nil
}

// Redemption is the outcome of applying a voucher to an order total.
type Redemption struct {
	// Discount is the amount taken off the order, in minor units.
	Discount int64
	// Remaining is the voucher balance after redemption.
	Remaining int64
}

// Redeem computes the discount a voucher yields against an order total:
// min(remaining, orderTotal). The voucher balance only ever decreases.
func Redeem(v model.Voucher, orderTotal int64, now time.Time) (Redemption, error) {
	if err := Validate(v, now); err != nil {
		return Redemption{}, err
	}
	if orderTotal <= 0 {
		return Redemption{Discount: 0, Remaining: v.Remaining}, nil
	}

	discount := v.Remaining
	if discount > orderTotal {
		discount = orderTotal
	}

	return Redemption{
		Discount:  discount,
		Remaining: v.Remaining - discount,
	}, nil
}
