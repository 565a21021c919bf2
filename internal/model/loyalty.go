package model

import (
	"time"

	"github.com/google/uuid"
)

// LoyaltyAccount tracks a customer's points. LifetimePoints never decreases;
// RedeemablePoints decreases on redemption.
type LoyaltyAccount struct {
	CustomerID       uuid.UUID `json:"customerId" db:"customer_id"`
	LifetimePoints   int       `json:"lifetimePoints" db:"lifetime_points"`
	RedeemablePoints int       `json:"redeemablePoints" db:"redeemable_points"`
	Enrolled         bool      `json:"enrolled" db:"enrolled"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at"`
}

// LoyaltyTier is one row of the ordered tier table.
type LoyaltyTier struct {
	Name       string  `json:"name"`
	Threshold  int     `json:"threshold"`
	Multiplier float64 `json:"multiplier"`
}

// LoyaltySummary is the derived view returned to customers.
type LoyaltySummary struct {
	Account          LoyaltyAccount `json:"account"`
	Tier             LoyaltyTier    `json:"tier"`
	PointsToNextTier *int           `json:"pointsToNextTier,omitempty"`
	TierProgress     float64        `json:"tierProgress"`
}
