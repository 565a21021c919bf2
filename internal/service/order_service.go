package service

import (
	"context"
	"fmt"
	"time"

	"glowdesk/internal/loyalty"
	"glowdesk/internal/mailer"
	"glowdesk/internal/model"
	"glowdesk/internal/order"
	"glowdesk/internal/payment"
	"glowdesk/internal/repository"
	"glowdesk/internal/stock"
	"glowdesk/internal/voucher"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// ShopSettings carries the shop-wide parameters the checkout flow needs.
type ShopSettings struct {
	Currency string
	// FlatShipping in minor units; 0 disables shipping charges.
	FlatShipping int64
	// PointRate is the minor-unit value of one loyalty point.
	PointRate int64
	// PointBase is the minor-unit spend that earns one base point.
	PointBase int64
}

// orderService implements OrderService.
type orderService struct {
	settler

	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	voucherRepo repository.VoucherRepository
	gateway     payment.Gateway
	mail        mailer.Mailer
	now         func() time.Time
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
	voucherRepo repository.VoucherRepository,
	loyaltyRepo repository.LoyaltyRepository,
	gateway payment.Gateway,
	mail mailer.Mailer,
	settings ShopSettings,
	tiers []model.LoyaltyTier,
	logger zerolog.Logger,
) OrderService {
	if settings.PointBase <= 0 {
		settings.PointBase = 100
	}
	if len(tiers) == 0 {
		tiers = loyalty.DefaultTiers()
	}
	svcLogger := logger.With().Str("service", "order").Logger()
	return &orderService{
		settler: settler{
			stockRepo:   stockRepo,
			loyaltyRepo: loyaltyRepo,
			settings:    settings,
			tiers:       tiers,
			logger:      svcLogger,
		},
		orderRepo:   orderRepo,
		productRepo: productRepo,
		voucherRepo: voucherRepo,
		gateway:     gateway,
		mail:        mail,
		now:         time.Now,
	}
}

// Checkout creates an order from the request. Stock is checked against a
// locked snapshot inside the transaction, so concurrent checkouts cannot
// oversell. Invoice orders are paid and stock-deducted immediately; card
// orders stay pending with a payment intent and are settled by the webhook.
func (s *orderService) Checkout(ctx context.Context, req *model.CheckoutRequest) (*model.OrderResponse, error) {
	if err := validateCheckoutRequest(req); err != nil {
		return nil, err
	}

	now := s.now()

	// Price the items from the catalogue.
	productIDs := make([]string, len(req.Items))
	for i, item := range req.Items {
		productIDs[i] = item.ProductID
	}

	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	priceByID := make(map[string]int64, len(products))
	for _, p := range products {
		priceByID[p.ID] = p.Price
	}

	var subtotal int64
	orderID := uuid.New()
	items := make([]model.OrderItem, len(req.Items))
	for i, item := range req.Items {
		price, ok := priceByID[item.ProductID]
		if !ok {
			s.logger.Warn().Str("product_id", item.ProductID).Msg("unknown product in checkout")
			return nil, model.ErrProductNotFound
		}
		lineTotal := int64(item.Quantity) * price
		items[i] = model.OrderItem{
			ID:        uuid.New(),
			OrderID:   orderID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: price,
			LineTotal: lineTotal,
		}
		subtotal += lineTotal
	}

	// Discounts: voucher first, then loyalty points against the remainder.
	var discount int64
	var voucherRedemption *voucher.Redemption
	var v *model.Voucher

	grossTotal := order.ComputeTotal(subtotal, 0, s.settings.FlatShipping)

	if req.VoucherCode != nil && *req.VoucherCode != "" {
		v, err = s.voucherRepo.GetByCode(ctx, *req.VoucherCode)
		if err != nil {
			return nil, fmt.Errorf("failed to load voucher: %w", err)
		}
		if v == nil {
			return nil, model.ErrVoucherNotFound
		}

		red, err := voucher.Redeem(*v, grossTotal, now)
		if err != nil {
			s.logger.Warn().Str("voucher_code", v.Code).Err(err).Msg("voucher rejected")
			return nil, err
		}
		voucherRedemption = &red
		discount += red.Discount
	}

	var pointsUsed int
	if req.RedeemPoints > 0 {
		account, err := s.loyaltyRepo.GetAccount(ctx, req.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("failed to load loyalty account: %w", err)
		}

		available := 0
		if account != nil {
			available = account.RedeemablePoints
		}
		if req.RedeemPoints > available {
			return nil, model.NewDomainError(model.ErrCodeInsufficientPoints,
				"Not enough redeemable points")
		}

		var pointsDiscount int64
		pointsDiscount, pointsUsed = loyalty.RedemptionDiscount(
			req.RedeemPoints, s.settings.PointRate, grossTotal-discount)
		discount += pointsDiscount
	}

	total := order.ComputeTotal(subtotal, discount, s.settings.FlatShipping)

	ord := &model.Order{
		ID:            orderID,
		CustomerID:    req.CustomerID,
		Status:        model.OrderPending,
		PaymentStatus: model.PaymentPending,
		PaymentMethod: req.PaymentMethod,
		Currency:      s.settings.Currency,
		Subtotal:      subtotal,
		Discount:      discount,
		Shipping:      s.settings.FlatShipping,
		Total:         total,
		VoucherCode:   req.VoucherCode,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// Card orders need an intent before anything is persisted, so a
	// gateway outage leaves no half-created order behind.
	if req.PaymentMethod == model.PaymentMethodCard && total > 0 {
		intent, err := s.gateway.CreateIntent(ctx, total, ord.Currency, orderID.String())
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to create payment intent")
			return nil, model.NewDomainError(model.ErrCodeProcessingError,
				"Payment could not be initialised")
		}
		ord.PaymentIntentID = &intent.ID
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	// Reservation against a locked snapshot: all-or-nothing.
	levels, err := s.stockRepo.GetLevelsForUpdate(ctx, tx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to read stock: %w", err)
	}
	availability := make(map[string]int, len(levels))
	for id, level := range levels {
		availability[id] = level.Quantity
	}
	if err = stock.Reserve(req.Items, availability); err != nil {
		return nil, err
	}

	invoicePaid := req.PaymentMethod == model.PaymentMethodInvoice
	if invoicePaid {
		// Invoice confirms immediately: no captured intent required.
		ord.Status = model.OrderPaid
		ord.PaymentStatus = model.PaymentCaptured
	}

	if err = s.orderRepo.Create(ctx, tx, ord, items); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if voucherRedemption != nil {
		// The balance was read outside the transaction; the guarded
		// decrement fails the checkout if a concurrent redemption spent
		// it in the meantime.
		if err = s.voucherRepo.Deduct(ctx, tx, v.Code, voucherRedemption.Discount); err != nil {
			return nil, err
		}
	}

	if pointsUsed > 0 {
		if err = s.loyaltyRepo.RedeemPoints(ctx, tx, req.CustomerID, pointsUsed); err != nil {
			return nil, err
		}
	}

	if invoicePaid {
		if err = s.settle(ctx, tx, ord, items, levels, now); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if invoicePaid {
		if mailErr := s.mail.SendOrderConfirmation(ctx, *ord); mailErr != nil {
			s.logger.Warn().Err(mailErr).Str("order_id", orderID.String()).Msg("failed to send order confirmation")
		}
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("payment_method", string(req.PaymentMethod)).
		Int64("total", total).
		Msg("order created")

	return &model.OrderResponse{Order: *ord, Items: items}, nil
}

// GetByID retrieves an order with its items.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	ord, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if ord == nil {
		return nil, nil
	}
	return &model.OrderResponse{Order: *ord, Items: items}, nil
}

// Refund refunds the given amount, in minor units; 0 refunds the remaining
// balance. Full refunds restock the deducted lines; partial refunds do not.
// Replaying a refund after the balance is exhausted is a success-equivalent
// no-op.
func (s *orderService) Refund(ctx context.Context, id uuid.UUID, amount int64) (*model.OrderResponse, error) {
	ord, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if ord == nil {
		return nil, model.ErrOrderNotFound
	}
	if ord.Total == 0 {
		return nil, model.ErrNothingToRefund
	}

	// Only captured payments can be refunded. A pending card order was
	// never charged and its stock never deducted, so there is nothing to
	// give back.
	switch ord.PaymentStatus {
	case model.PaymentCaptured, model.PaymentPartiallyRefunded, model.PaymentRefunded:
	default:
		s.logger.Warn().
			Str("order_id", id.String()).
			Str("payment_status", string(ord.PaymentStatus)).
			Msg("refund rejected, payment never captured")
		return nil, model.ErrNothingToRefund
	}

	if amount == 0 {
		amount = ord.Total - ord.RefundedAmount
	}

	outcome := order.ApplyRefund(*ord, amount)
	if outcome.Applied == 0 {
		// Balance already exhausted: idempotent success.
		s.logger.Info().Str("order_id", id.String()).Msg("refund replay, nothing to apply")
		return &model.OrderResponse{Order: *ord, Items: items}, nil
	}

	// Card refunds go through the processor first; if that fails nothing
	// local changes.
	if ord.PaymentMethod == model.PaymentMethodCard && ord.PaymentIntentID != nil {
		if err := s.gateway.CreateRefund(ctx, *ord.PaymentIntentID, outcome.Applied); err != nil {
			s.logger.Error().Err(err).Str("order_id", id.String()).Msg("gateway refund failed")
			return nil, model.NewDomainError(model.ErrCodeProcessingError,
				"Refund could not be processed")
		}
	}

	updated := outcome.Order
	now := s.now()
	updated.UpdatedAt = now

	if outcome.FullyRefunded && order.CanTransition(updated.Status, model.OrderRefunded) {
		updated.Status = model.OrderRefunded
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to refund order: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.Update(ctx, tx, &updated); err != nil {
		return nil, err
	}

	// Restock only on full refund. Partial refunds leave stock untouched.
	if outcome.FullyRefunded {
		if err = s.restock(ctx, tx, &updated, items, now); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to refund order: %w", err)
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Int64("applied", outcome.Applied).
		Bool("full", outcome.FullyRefunded).
		Msg("refund applied")

	return &model.OrderResponse{Order: updated, Items: items}, nil
}

// Transition applies an admin-driven status change.
func (s *orderService) Transition(ctx context.Context, id uuid.UUID, target model.OrderStatus) (*model.OrderResponse, error) {
	ord, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if ord == nil {
		return nil, model.ErrOrderNotFound
	}

	updated, err := order.Transition(*ord, target)
	if err != nil {
		s.logger.Warn().
			Str("order_id", id.String()).
			Str("from", string(ord.Status)).
			Str("to", string(target)).
			Msg("order transition rejected")
		return nil, err
	}
	updated.UpdatedAt = s.now()

	// Cancelling an unpaid card order voids the open intent; failure is
	// logged, the intent expires on its own.
	if target == model.OrderCancelled &&
		ord.PaymentMethod == model.PaymentMethodCard &&
		ord.PaymentStatus == model.PaymentPending &&
		ord.PaymentIntentID != nil {
		if gwErr := s.gateway.CancelIntent(ctx, *ord.PaymentIntentID); gwErr != nil {
			s.logger.Warn().Err(gwErr).Str("order_id", id.String()).Msg("failed to cancel payment intent")
		}
		updated.PaymentStatus = model.PaymentCancelled
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.Update(ctx, tx, &updated); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	return &model.OrderResponse{Order: updated, Items: items}, nil
}

func validateCheckoutRequest(req *model.CheckoutRequest) error {
	if req == nil {
		return model.NewValidationError(map[string]string{"request": "request body is required"})
	}

	fields := make(map[string]string)
	if req.CustomerID == uuid.Nil {
		fields["customerId"] = "customer ID is required"
	}
	if req.PaymentMethod != model.PaymentMethodCard && req.PaymentMethod != model.PaymentMethodInvoice {
		fields["paymentMethod"] = "payment method must be card or invoice"
	}
	if len(req.Items) == 0 {
		fields["items"] = "order must contain at least one item"
	}
	if req.RedeemPoints < 0 {
		fields["redeemPoints"] = "redeemed points cannot be negative"
	}
	if len(fields) > 0 {
		return model.NewValidationError(fields)
	}

	for i, item := range req.Items {
		if item.ProductID == "" {
			return model.NewValidationError(map[string]string{
				fmt.Sprintf("items[%d].productId", i): "product ID is required",
			})
		}
		if item.Quantity <= 0 {
			return model.ErrInvalidQuantity
		}
	}

	return nil
}
