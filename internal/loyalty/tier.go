// Package loyalty derives tier membership, progress and point arithmetic from
// lifetime points. The tier table is data passed in by the caller, not baked
// into these functions.
package loyalty

import (
	"math"
	"sort"

	"glowdesk/internal/model"
)

// DefaultTiers is the stock tier table used when a salon has not configured
// its own.
func DefaultTiers() []model.LoyaltyTier {
	return []model.LoyaltyTier{
		{Name: "bronze", Threshold: 0, Multiplier: 1.0},
		{Name: "silver", Threshold: 500, Multiplier: 1.25},
		{Name: "gold", Threshold: 1500, Multiplier: 1.5},
		{Name: "platinum", Threshold: 5000, Multiplier: 2.0},
	}
}

// sorted returns the tiers ordered by ascending threshold.
func sorted(tiers []model.LoyaltyTier) []model.LoyaltyTier {
	out := make([]model.LoyaltyTier, len(tiers))
	copy(out, tiers)
	sort.Slice(out, func(i, j int) bool { return out[i].Threshold < out[j].Threshold })
	return out
}

// DetermineTier returns the highest tier whose threshold is at most
// lifetimePoints.
func DetermineTier(lifetimePoints int, tiers []model.LoyaltyTier) model.LoyaltyTier {
	ordered := sorted(tiers)
	current := ordered[0]
	for _, tier := range ordered {
		if lifetimePoints >= tier.Threshold {
			current = tier
		}
	}
	return current
}

// PointsToNextTier returns the points still needed for the next tier, or nil
// at the top tier.
func PointsToNextTier(lifetimePoints int, tiers []model.LoyaltyTier) *int {
	for _, tier := range sorted(tiers) {
		if tier.Threshold > lifetimePoints {
			missing := tier.Threshold - lifetimePoints
			return &missing
		}
	}
	return nil
}

// TierProgress returns the percentage (0-100) of the way from the current
// tier's threshold to the next tier's. At or above the top tier it is 100.
func TierProgress(lifetimePoints int, tiers []model.LoyaltyTier) float64 {
	ordered := sorted(tiers)
	current := DetermineTier(lifetimePoints, ordered)

	var next *model.LoyaltyTier
	for i := range ordered {
		if ordered[i].Threshold > current.Threshold {
			next = &ordered[i]
			break
		}
	}
	if next == nil {
		return 100
	}

	span := float64(next.Threshold - current.Threshold)
	progress := float64(lifetimePoints-current.Threshold) / span * 100
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}

// EarnedPoints computes the points awarded for a purchase or visit:
// base amount times the tier multiplier, rounded half-up.
func EarnedPoints(baseAmount int, tier model.LoyaltyTier) int {
	return int(math.Floor(float64(baseAmount)*tier.Multiplier + 0.5))
}

// RedemptionDiscount converts redeemable points into an order discount in
// minor units. rate is the minor-unit value of one point (e.g. 1 for
// "100 points = 1 CHF" with 2-exponent currencies). The discount is capped at
// both the available points value and the order total; the second return is
// the points actually consumed.
func RedemptionDiscount(redeemablePoints int, rate int64, orderTotal int64) (discount int64, pointsUsed int) {
	if redeemablePoints <= 0 || rate <= 0 || orderTotal <= 0 {
		return 0, 0
	}

	value := int64(redeemablePoints) * rate
	if value <= orderTotal {
		return value, redeemablePoints
	}

	// Partial redemption: consume only whole points worth of discount.
	pointsUsed = int(orderTotal / rate)
	return int64(pointsUsed) * rate, pointsUsed
}
