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

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// webhookService implements WebhookService.
type webhookService struct {
	settler

	orderRepo   repository.OrderRepository
	webhookRepo repository.WebhookEventRepository
	mail        mailer.Mailer
	now         func() time.Time
}

// NewWebhookService creates a new webhook service.
func NewWebhookService(
	orderRepo repository.OrderRepository,
	webhookRepo repository.WebhookEventRepository,
	stockRepo repository.StockRepository,
	loyaltyRepo repository.LoyaltyRepository,
	mail mailer.Mailer,
	settings ShopSettings,
	tiers []model.LoyaltyTier,
	logger zerolog.Logger,
) WebhookService {
	if settings.PointBase <= 0 {
		settings.PointBase = 100
	}
	if len(tiers) == 0 {
		tiers = loyalty.DefaultTiers()
	}
	svcLogger := logger.With().Str("service", "webhook").Logger()
	return &webhookService{
		settler: settler{
			stockRepo:   stockRepo,
			loyaltyRepo: loyaltyRepo,
			settings:    settings,
			tiers:       tiers,
			logger:      svcLogger,
		},
		orderRepo:   orderRepo,
		webhookRepo: webhookRepo,
		mail:        mail,
		now:         time.Now,
	}
}

// ProcessPaymentEvent applies a payment-provider event exactly once. The
// event id is claimed inside the same transaction as the order mutation, so
// a replayed delivery either sees the id already claimed and reports
// AlreadyProcessed, or the original delivery failed and the replay retries
// the whole effect.
func (s *webhookService) ProcessPaymentEvent(ctx context.Context, event *model.PaymentEvent) (*model.WebhookResult, error) {
	if event == nil || event.EventID == "" {
		return nil, model.NewValidationError(map[string]string{"eventId": "event ID is required"})
	}

	now := s.now()

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to process event: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	first, err := s.webhookRepo.Record(ctx, tx, model.WebhookEvent{
		EventID:     event.EventID,
		EventType:   event.EventType,
		ProcessedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record event: %w", err)
	}
	if !first {
		if err = tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
			return nil, fmt.Errorf("failed to process event: %w", err)
		}
		err = nil
		s.logger.Info().
			Str("event_id", event.EventID).
			Str("event_type", event.EventType).
			Msg("duplicate event delivery ignored")
		return &model.WebhookResult{EventID: event.EventID, AlreadyProcessed: true}, nil
	}

	ord, items, err := s.findOrder(ctx, tx, event)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		// No matching order: rolling back releases the event id, so the
		// provider retry lands after the order exists.
		err = model.ErrOrderNotFound
		return nil, err
	}

	var confirmMail bool
	if event.AmountRefunded > 0 {
		err = s.applyProviderRefund(ctx, tx, ord, items, event.AmountRefunded, now)
	} else {
		confirmMail, err = s.applyIntentStatus(ctx, tx, ord, items, event.IntentStatus, now)
	}
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to process event: %w", err)
	}

	if confirmMail {
		if mailErr := s.mail.SendOrderConfirmation(ctx, *ord); mailErr != nil {
			s.logger.Warn().Err(mailErr).Str("order_id", ord.ID.String()).Msg("failed to send order confirmation")
		}
	}

	s.logger.Info().
		Str("event_id", event.EventID).
		Str("event_type", event.EventType).
		Str("order_id", ord.ID.String()).
		Msg("payment event processed")

	return &model.WebhookResult{EventID: event.EventID, OrderID: ord.ID.String()}, nil
}

// findOrder resolves the order the event refers to, preferring the explicit
// order id over the intent id. The order row is locked inside the
// transaction so two concurrent events for the same order apply serially.
func (s *webhookService) findOrder(ctx context.Context, tx pgx.Tx, event *model.PaymentEvent) (*model.Order, []model.OrderItem, error) {
	if event.OrderID != "" {
		id, err := uuid.Parse(event.OrderID)
		if err != nil {
			return nil, nil, model.NewValidationError(map[string]string{"orderId": "order ID must be a valid UUID"})
		}
		ord, items, err := s.orderRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get order: %w", err)
		}
		return ord, items, nil
	}

	if event.IntentID == "" {
		return nil, nil, model.NewValidationError(map[string]string{"intentId": "intent ID is required"})
	}

	ord, items, err := s.orderRepo.GetByIntentIDForUpdate(ctx, tx, event.IntentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get order: %w", err)
	}
	return ord, items, nil
}

// applyIntentStatus moves the order in response to an intent status change.
// A capture settles stock and loyalty points; the boolean reports whether a
// confirmation mail is due after commit.
func (s *webhookService) applyIntentStatus(
	ctx context.Context,
	tx pgx.Tx,
	ord *model.Order,
	items []model.OrderItem,
	intentStatus string,
	now time.Time,
) (bool, error) {
	status, err := payment.MapIntentStatus(intentStatus)
	if err != nil {
		s.logger.Error().
			Str("order_id", ord.ID.String()).
			Str("intent_status", intentStatus).
			Msg("unknown intent status on webhook")
		return false, err
	}

	confirmMail := false
	switch status {
	case model.PaymentCaptured:
		if ord.Status == model.OrderPending {
			updated, trErr := order.Transition(*ord, model.OrderPaid)
			if trErr != nil {
				return false, trErr
			}
			*ord = updated
			confirmMail = true

			productIDs := make([]string, len(items))
			for i, item := range items {
				productIDs[i] = item.ProductID
			}
			levels, lvErr := s.stockRepo.GetLevelsForUpdate(ctx, tx, productIDs)
			if lvErr != nil {
				return false, fmt.Errorf("failed to read stock: %w", lvErr)
			}
			if setErr := s.settle(ctx, tx, ord, items, levels, now); setErr != nil {
				return false, setErr
			}
		}
		ord.PaymentStatus = model.PaymentCaptured

	case model.PaymentCancelled:
		if ord.Status == model.OrderPending {
			updated, trErr := order.Transition(*ord, model.OrderCancelled)
			if trErr != nil {
				return false, trErr
			}
			*ord = updated
		}
		ord.PaymentStatus = model.PaymentCancelled

	default:
		// requires_payment_method and requires_capture only move the
		// payment status.
		ord.PaymentStatus = status
	}

	ord.UpdatedAt = now
	if err := s.orderRepo.Update(ctx, tx, ord); err != nil {
		return false, err
	}
	return confirmMail, nil
}

// applyProviderRefund mirrors a provider-side refund into the order. The
// clamp keeps the refunded amount within the order total even if the
// provider reports more.
func (s *webhookService) applyProviderRefund(
	ctx context.Context,
	tx pgx.Tx,
	ord *model.Order,
	items []model.OrderItem,
	amount int64,
	now time.Time,
) error {
	// A refund event can outrun its capture event. Failing here rolls the
	// event-id claim back, so the provider retry lands after the capture
	// has settled stock and points.
	switch ord.PaymentStatus {
	case model.PaymentCaptured, model.PaymentPartiallyRefunded, model.PaymentRefunded:
	default:
		s.logger.Warn().
			Str("order_id", ord.ID.String()).
			Str("payment_status", string(ord.PaymentStatus)).
			Msg("refund event before capture, rejecting for retry")
		return model.ErrNothingToRefund
	}

	outcome := order.ApplyRefund(*ord, amount)
	if outcome.Applied == 0 {
		s.logger.Info().Str("order_id", ord.ID.String()).Msg("refund event with nothing to apply")
		return nil
	}

	*ord = outcome.Order
	if outcome.FullyRefunded && order.CanTransition(ord.Status, model.OrderRefunded) {
		ord.Status = model.OrderRefunded
	}
	ord.UpdatedAt = now

	if err := s.orderRepo.Update(ctx, tx, ord); err != nil {
		return err
	}

	if outcome.FullyRefunded {
		return s.restock(ctx, tx, ord, items, now)
	}
	return nil
}
