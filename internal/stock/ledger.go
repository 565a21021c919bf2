// Package stock holds the pure inventory ledger rules: all-or-nothing
// reservation, sale deduction floored at zero, and capped restocking. The repository layer persists the resulting movements; every
// mutation computed here corresponds to exactly one signed ledger entry.
package stock

import (
	"fmt"

	"glowdesk/internal/model"
)

// Shortage describes one line that could not be reserved.
type Shortage struct {
	ProductID string `json:"productId"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// InsufficientStockError rejects a reservation as a whole. It lists every
// short line so the storefront can show them all at once.
type InsufficientStockError struct {
	Shortages []Shortage
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %d product(s)", len(e.Shortages))
}

// DomainCode satisfies the handler's error-code mapping.
func (e *InsufficientStockError) DomainCode() string {
	return model.ErrCodeInsufficientStock
}

// Reserve checks every requested line against the availability snapshot.
// Reservation is all-or-nothing: a single short line fails the whole set and
// nothing is considered reserved.
func Reserve(items []model.OrderItemRequest, availability map[string]int) error {
	var shortages []Shortage
	for _, item := range items {
		available, ok := availability[item.ProductID]
		if !ok || item.Quantity > available {
			shortages = append(shortages, Shortage{
				ProductID: item.ProductID,
				Requested: item.Quantity,
				Available: available,
			})
		}
	}

	if len(shortages) > 0 {
		return &InsufficientStockError{Shortages: shortages}
	}
	return nil
}

// SaleResult is the outcome of deducting a sale from a stock level.
type SaleResult struct {
	NewQuantity int
	// Delta is the signed ledger entry for this deduction.
	Delta int
	// Clamped is set when the deduction would have driven the level
	// negative. The level was floored at zero and the caller should log a
	// reconciliation warning; the reservation check earlier in the flow
	// makes this a race, not a normal path.
	Clamped bool
}

// ApplySale deducts a sold quantity from the current level, flooring at zero.
func ApplySale(current, quantity int) SaleResult {
	newQty := current - quantity
	if newQty < 0 {
		return SaleResult{NewQuantity: 0, Delta: -current, Clamped: true}
	}
	return SaleResult{NewQuantity: newQty, Delta: -quantity}
}

// ApplyRestock adds a refunded quantity back, honouring the optional maximum
// cap. The returned delta is what actually went back on the shelf.
func ApplyRestock(current, quantity int, maxCap *int) (newQuantity, delta int) {
	newQuantity = current + quantity
	if maxCap != nil && newQuantity > *maxCap {
		newQuantity = *maxCap
	}
	return newQuantity, newQuantity - current
}

// Reconcile sums a product's movement deltas. The cached StockLevel must
// always equal this sum.
func Reconcile(movements []model.StockMovement) int {
	total := 0
	for _, m := range movements {
		total += m.Delta
	}
	return total
}
