package model

import "time"

// Product represents a retail product in the shop catalogue. Price is in
// minor units of the shop currency.
type Product struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Price     int64     `json:"price" db:"price"`
	Category  string    `json:"category" db:"category"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
