package integration

import (
	"context"
	"sync"
	"testing"

	"glowdesk/internal/loyalty"
	"glowdesk/internal/mailer"
	"glowdesk/internal/model"
	"glowdesk/internal/payment"
	"glowdesk/internal/repository"
	"glowdesk/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flowFixture struct {
	orderService   service.OrderService
	webhookService service.WebhookService
	orderRepo      repository.OrderRepository
	stockRepo      repository.StockRepository
	loyaltyRepo    repository.LoyaltyRepository
	gateway        *payment.LocalGateway
}

func newFlowFixture(t *testing.T, testDB *TestDB) *flowFixture {
	t.Helper()

	logger := zerolog.Nop()

	productRepo := repository.NewProductRepository(testDB.Pool, logger)
	orderRepo := repository.NewOrderRepository(testDB.Pool, logger)
	stockRepo := repository.NewStockRepository(testDB.Pool, logger)
	voucherRepo := repository.NewVoucherRepository(testDB.Pool, logger)
	loyaltyRepo := repository.NewLoyaltyRepository(testDB.Pool, logger)
	webhookRepo := repository.NewWebhookEventRepository(testDB.Pool, logger)

	gateway := payment.NewLocalGateway("whsec_test")
	mail := mailer.NewLogMailer(logger)
	settings := service.ShopSettings{
		Currency:  "chf",
		PointRate: 1,
		PointBase: 100,
	}
	tiers := loyalty.DefaultTiers()

	return &flowFixture{
		orderService: service.NewOrderService(
			orderRepo, productRepo, stockRepo, voucherRepo, loyaltyRepo,
			gateway, mail, settings, tiers, logger,
		),
		webhookService: service.NewWebhookService(
			orderRepo, webhookRepo, stockRepo, loyaltyRepo,
			mail, settings, tiers, logger,
		),
		orderRepo:   orderRepo,
		stockRepo:   stockRepo,
		loyaltyRepo: loyaltyRepo,
		gateway:     gateway,
	}
}

func TestIntegration_InvoiceCheckoutSettlesImmediately(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	SeedCatalogue(t, testDB.Pool)
	fx := newFlowFixture(t, testDB)
	ctx := context.Background()

	customerID := uuid.New()
	resp, err := fx.orderService.Checkout(ctx, &model.CheckoutRequest{
		CustomerID:    customerID,
		PaymentMethod: model.PaymentMethodInvoice,
		Items: []model.OrderItemRequest{
			{ProductID: "P001", Quantity: 2},
			{ProductID: "P002", Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, model.OrderPaid, resp.Order.Status)
	assert.Equal(t, model.PaymentCaptured, resp.Order.PaymentStatus)
	assert.EqualValues(t, 6900, resp.Order.Total)

	levels, err := fx.stockRepo.GetLevels(ctx, []string{"P001", "P002"})
	require.NoError(t, err)
	assert.Equal(t, 8, levels["P001"].Quantity)
	assert.Equal(t, 4, levels["P002"].Quantity)

	movements, err := fx.stockRepo.ListMovements(ctx, "P001")
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, -2, movements[0].Delta)
	assert.Equal(t, resp.Order.ID.String(), movements[0].ReferenceID)

	// 6900 / 100 base points at the bronze multiplier.
	account, err := fx.loyaltyRepo.GetAccount(ctx, customerID)
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Equal(t, 69, account.LifetimePoints)
}

func TestIntegration_CheckoutRejectsOversell(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	SeedCatalogue(t, testDB.Pool)
	fx := newFlowFixture(t, testDB)
	ctx := context.Background()

	// P003 is seeded with 2 on hand.
	_, err := fx.orderService.Checkout(ctx, &model.CheckoutRequest{
		CustomerID:    uuid.New(),
		PaymentMethod: model.PaymentMethodInvoice,
		Items: []model.OrderItemRequest{
			{ProductID: "P003", Quantity: 5},
		},
	})
	require.Error(t, err)

	levels, err := fx.stockRepo.GetLevels(ctx, []string{"P003"})
	require.NoError(t, err)
	assert.Equal(t, 2, levels["P003"].Quantity, "failed checkout must leave stock untouched")

	movements, err := fx.stockRepo.ListMovements(ctx, "P003")
	require.NoError(t, err)
	assert.Empty(t, movements)
}

func TestIntegration_CardCheckoutSettledByWebhookOnce(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	SeedCatalogue(t, testDB.Pool)
	fx := newFlowFixture(t, testDB)
	ctx := context.Background()

	customerID := uuid.New()
	resp, err := fx.orderService.Checkout(ctx, &model.CheckoutRequest{
		CustomerID:    customerID,
		PaymentMethod: model.PaymentMethodCard,
		Items: []model.OrderItemRequest{
			{ProductID: "P001", Quantity: 3},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, model.OrderPending, resp.Order.Status)
	require.NotNil(t, resp.Order.PaymentIntentID)

	// Stock is only reserved against, not deducted, until the capture lands.
	levels, err := fx.stockRepo.GetLevels(ctx, []string{"P001"})
	require.NoError(t, err)
	assert.Equal(t, 10, levels["P001"].Quantity)

	event := &model.PaymentEvent{
		EventID:      "evt_capture_1",
		EventType:    "payment_intent.succeeded",
		IntentID:     *resp.Order.PaymentIntentID,
		IntentStatus: "succeeded",
	}

	result, err := fx.webhookService.ProcessPaymentEvent(ctx, event)
	require.NoError(t, err)
	assert.False(t, result.AlreadyProcessed)
	assert.Equal(t, resp.Order.ID.String(), result.OrderID)

	// A provider retry of the same delivery is acknowledged without effect.
	result, err = fx.webhookService.ProcessPaymentEvent(ctx, event)
	require.NoError(t, err)
	assert.True(t, result.AlreadyProcessed)

	got, _, err := fx.orderRepo.GetByID(ctx, resp.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderPaid, got.Status)
	assert.Equal(t, model.PaymentCaptured, got.PaymentStatus)

	levels, err = fx.stockRepo.GetLevels(ctx, []string{"P001"})
	require.NoError(t, err)
	assert.Equal(t, 7, levels["P001"].Quantity, "stock must be deducted exactly once")

	movements, err := fx.stockRepo.ListMovements(ctx, "P001")
	require.NoError(t, err)
	assert.Len(t, movements, 1)

	account, err := fx.loyaltyRepo.GetAccount(ctx, customerID)
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Equal(t, 75, account.LifetimePoints, "points must accrue exactly once")
}

func TestIntegration_ConcurrentWebhookDeliveriesSettleOnce(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	SeedCatalogue(t, testDB.Pool)
	fx := newFlowFixture(t, testDB)
	ctx := context.Background()

	resp, err := fx.orderService.Checkout(ctx, &model.CheckoutRequest{
		CustomerID:    uuid.New(),
		PaymentMethod: model.PaymentMethodCard,
		Items: []model.OrderItemRequest{
			{ProductID: "P002", Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Order.PaymentIntentID)

	event := &model.PaymentEvent{
		EventID:      "evt_capture_race",
		EventType:    "payment_intent.succeeded",
		IntentID:     *resp.Order.PaymentIntentID,
		IntentStatus: "succeeded",
	}

	const deliveries = 2
	results := make([]*model.WebhookResult, deliveries)
	errs := make([]error, deliveries)

	var wg sync.WaitGroup
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = fx.webhookService.ProcessPaymentEvent(ctx, event)
		}(i)
	}
	wg.Wait()

	var processed int
	for i := 0; i < deliveries; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i])
		if !results[i].AlreadyProcessed {
			processed++
		}
	}
	assert.Equal(t, 1, processed, "exactly one delivery may settle the order")

	levels, err := fx.stockRepo.GetLevels(ctx, []string{"P002"})
	require.NoError(t, err)
	assert.Equal(t, 3, levels["P002"].Quantity)

	movements, err := fx.stockRepo.ListMovements(ctx, "P002")
	require.NoError(t, err)
	assert.Len(t, movements, 1)
}

func TestIntegration_RefundOfPendingCardOrderRejected(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	SeedCatalogue(t, testDB.Pool)
	fx := newFlowFixture(t, testDB)
	ctx := context.Background()

	resp, err := fx.orderService.Checkout(ctx, &model.CheckoutRequest{
		CustomerID:    uuid.New(),
		PaymentMethod: model.PaymentMethodCard,
		Items: []model.OrderItemRequest{
			{ProductID: "P001", Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.Equal(t, model.OrderPending, resp.Order.Status)

	// The intent was never captured, so there is nothing to give back and
	// nothing that may be restocked.
	_, err = fx.orderService.Refund(ctx, resp.Order.ID, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrNothingToRefund)

	got, _, err := fx.orderRepo.GetByID(ctx, resp.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPending, got.PaymentStatus)

	levels, err := fx.stockRepo.GetLevels(ctx, []string{"P001"})
	require.NoError(t, err)
	assert.Equal(t, 10, levels["P001"].Quantity)

	movements, err := fx.stockRepo.ListMovements(ctx, "P001")
	require.NoError(t, err)
	assert.Empty(t, movements)
}

func TestIntegration_ProviderRefundRestocks(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	SeedCatalogue(t, testDB.Pool)
	fx := newFlowFixture(t, testDB)
	ctx := context.Background()

	resp, err := fx.orderService.Checkout(ctx, &model.CheckoutRequest{
		CustomerID:    uuid.New(),
		PaymentMethod: model.PaymentMethodCard,
		Items: []model.OrderItemRequest{
			{ProductID: "P001", Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Order.PaymentIntentID)
	intentID := *resp.Order.PaymentIntentID

	_, err = fx.webhookService.ProcessPaymentEvent(ctx, &model.PaymentEvent{
		EventID:      "evt_capture_r",
		EventType:    "payment_intent.succeeded",
		IntentID:     intentID,
		IntentStatus: "succeeded",
	})
	require.NoError(t, err)

	result, err := fx.webhookService.ProcessPaymentEvent(ctx, &model.PaymentEvent{
		EventID:        "evt_refund_r",
		EventType:      "charge.refunded",
		IntentID:       intentID,
		IntentStatus:   "succeeded",
		AmountRefunded: resp.Order.Total,
	})
	require.NoError(t, err)
	assert.False(t, result.AlreadyProcessed)

	got, _, err := fx.orderRepo.GetByID(ctx, resp.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderRefunded, got.Status)
	assert.Equal(t, resp.Order.Total, got.RefundedAmount)

	levels, err := fx.stockRepo.GetLevels(ctx, []string{"P001"})
	require.NoError(t, err)
	assert.Equal(t, 10, levels["P001"].Quantity, "full refund restocks the sold units")

	movements, err := fx.stockRepo.ListMovements(ctx, "P001")
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, model.MovementRefund, movements[1].Type)
	assert.Equal(t, 2, movements[1].Delta)
}
