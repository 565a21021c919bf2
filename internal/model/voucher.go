package model

import "time"

// Voucher is a prepaid gift voucher. Remaining is in minor units and only
// ever decreases as the voucher is redeemed.
type Voucher struct {
	Code      string    `json:"code" db:"code"`
	Remaining int64     `json:"remaining" db:"remaining"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
