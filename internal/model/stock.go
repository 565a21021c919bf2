package model

import (
	"time"

	"github.com/google/uuid"
)

// MovementType classifies a stock ledger entry.
type MovementType string

const (
	MovementSale       MovementType = "sale"
	MovementRefund     MovementType = "refund"
	MovementAdjustment MovementType = "adjustment"
)

// StockLevel is the cached aggregate stock for a product. It must always
// equal the running sum of the product's movements.
type StockLevel struct {
	ProductID    string    `json:"productId" db:"product_id"`
	Quantity     int       `json:"quantity" db:"quantity"`
	MinThreshold int       `json:"minThreshold" db:"min_threshold"`
	MaxCap       *int      `json:"maxCap,omitempty" db:"max_cap"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// LowStock reports whether the level has fallen to or below its alert
// threshold.
func (l StockLevel) LowStock() bool {
	return l.Quantity <= l.MinThreshold
}

// StockMovement is an append-only ledger entry. Entries are created exactly
// once per fulfilling event and never mutated.
type StockMovement struct {
	ID            uuid.UUID    `json:"id" db:"id"`
	ProductID     string       `json:"productId" db:"product_id"`
	Delta         int          `json:"delta" db:"delta"`
	Type          MovementType `json:"type" db:"movement_type"`
	ReferenceType string       `json:"referenceType" db:"reference_type"`
	ReferenceID   string       `json:"referenceId" db:"reference_id"`
	CreatedAt     time.Time    `json:"createdAt" db:"created_at"`
}
