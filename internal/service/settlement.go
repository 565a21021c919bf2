package service

import (
	"context"
	"fmt"
	"time"

	"glowdesk/internal/loyalty"
	"glowdesk/internal/model"
	"glowdesk/internal/repository"
	"glowdesk/internal/stock"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// settler holds the stock and loyalty side effects of a paid order. The
// invoice checkout path and the webhook capture path both settle through it,
// so the ledger entries and point accrual stay identical no matter how an
// order got paid.
type settler struct {
	stockRepo   repository.StockRepository
	loyaltyRepo repository.LoyaltyRepository
	settings    ShopSettings
	tiers       []model.LoyaltyTier
	logger      zerolog.Logger
}

// settle deducts sold stock and accrues loyalty points inside the caller's
// transaction. levels must come from a locked read in the same transaction.
func (s *settler) settle(
	ctx context.Context,
	tx pgx.Tx,
	ord *model.Order,
	items []model.OrderItem,
	levels map[string]model.StockLevel,
	now time.Time,
) error {
	for _, item := range items {
		level, ok := levels[item.ProductID]
		if !ok {
			continue
		}

		res := stock.ApplySale(level.Quantity, item.Quantity)
		if res.Clamped {
			// Reservation passed earlier, so a clamp means a race slipped
			// through; the ledger stays truthful and reconciliation will
			// surface the gap.
			s.logger.Warn().
				Str("product_id", item.ProductID).
				Int("requested", item.Quantity).
				Int("available", level.Quantity).
				Msg("stock clamped at zero, reconciliation needed")
		}

		level.Quantity = res.NewQuantity
		level.UpdatedAt = now
		levels[item.ProductID] = level

		movement := model.StockMovement{
			ID:            uuid.New(),
			ProductID:     item.ProductID,
			Delta:         res.Delta,
			Type:          model.MovementSale,
			ReferenceType: "order",
			ReferenceID:   ord.ID.String(),
			CreatedAt:     now,
		}
		if err := s.stockRepo.ApplyMovement(ctx, tx, level, movement); err != nil {
			return err
		}
	}

	// One base point per PointBase minor units spent, boosted by the tier
	// multiplier and rounded half-up.
	account, err := s.loyaltyRepo.GetAccount(ctx, ord.CustomerID)
	if err != nil {
		return err
	}
	lifetime := 0
	if account != nil {
		lifetime = account.LifetimePoints
	}
	tier := loyalty.DetermineTier(lifetime, s.tiers)
	base := int(ord.Total / s.settings.PointBase)
	earned := loyalty.EarnedPoints(base, tier)

	return s.loyaltyRepo.AddPoints(ctx, tx, ord.CustomerID, earned)
}

// restock returns previously deducted lines to the shelf, honouring the
// per-product maximum cap.
func (s *settler) restock(ctx context.Context, tx pgx.Tx, ord *model.Order, items []model.OrderItem, now time.Time) error {
	productIDs := make([]string, len(items))
	for i, item := range items {
		productIDs[i] = item.ProductID
	}

	levels, err := s.stockRepo.GetLevelsForUpdate(ctx, tx, productIDs)
	if err != nil {
		return fmt.Errorf("failed to read stock for restock: %w", err)
	}

	for _, item := range items {
		level, ok := levels[item.ProductID]
		if !ok {
			continue
		}

		newQty, delta := stock.ApplyRestock(level.Quantity, item.Quantity, level.MaxCap)
		if delta == 0 {
			continue
		}

		level.Quantity = newQty
		level.UpdatedAt = now
		levels[item.ProductID] = level

		movement := model.StockMovement{
			ID:            uuid.New(),
			ProductID:     item.ProductID,
			Delta:         delta,
			Type:          model.MovementRefund,
			ReferenceType: "order",
			ReferenceID:   ord.ID.String(),
			CreatedAt:     now,
		}
		if err := s.stockRepo.ApplyMovement(ctx, tx, level, movement); err != nil {
			return err
		}
	}

	return nil
}
