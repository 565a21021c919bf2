package repository

import (
	"context"

	"glowdesk/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetAll retrieves all active products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)
}

// AppointmentRepository defines the interface for appointment data access.
type AppointmentRepository interface {
	// Create inserts a new appointment. The slot is claimed atomically: a
	// unique constraint on (staff_id, starts_at) makes the second of two
	// concurrent bookings fail with model.ErrSlotAlreadyTaken.
	Create(ctx context.Context, appt *model.Appointment) error

	// GetByID retrieves an appointment, or nil when it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error)

	// Update persists status and cancellation metadata changes.
	Update(ctx context.Context, appt *model.Appointment) error

	// GetRules loads the salon booking rules; deployments without a row
	// fall back to the configured defaults.
	GetRules(ctx context.Context) (*model.BookingRules, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Create inserts a new order and its items within the transaction.
	Create(ctx context.Context, tx pgx.Tx, order *model.Order, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items. A nil
	// order means not found.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// GetByIntentID retrieves the order attached to a payment intent.
	GetByIntentID(ctx context.Context, intentID string) (*model.Order, []model.OrderItem, error)

	// GetByIDForUpdate retrieves an order with a row lock inside the
	// transaction, so concurrent events touching the same order apply
	// serially instead of as lost updates.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// GetByIntentIDForUpdate is GetByIntentID with a row lock inside the
	// transaction.
	GetByIntentIDForUpdate(ctx context.Context, tx pgx.Tx, intentID string) (*model.Order, []model.OrderItem, error)

	// Update persists status, payment status and refund changes within the
	// transaction.
	Update(ctx context.Context, tx pgx.Tx, order *model.Order) error
}

// StockRepository defines the interface for stock levels and the movement
// ledger.
type StockRepository interface {
	// GetLevels reads current levels for the given products.
	GetLevels(ctx context.Context, productIDs []string) (map[string]model.StockLevel, error)

	// GetLevelsForUpdate reads levels with row locks inside the
	// transaction, so a reservation is evaluated against a consistent
	// snapshot under concurrent checkouts.
	GetLevelsForUpdate(ctx context.Context, tx pgx.Tx, productIDs []string) (map[string]model.StockLevel, error)

	// ApplyMovement updates the cached level and appends the ledger entry
	// in one transactional step.
	ApplyMovement(ctx context.Context, tx pgx.Tx, level model.StockLevel, movement model.StockMovement) error

	// ListMovements returns a product's ledger, oldest first.
	ListMovements(ctx context.Context, productID string) ([]model.StockMovement, error)

	// ListLevels returns all stock levels for reporting.
	ListLevels(ctx context.Context) ([]model.StockLevel, error)
}

// WebhookEventRepository records processed payment events.
type WebhookEventRepository interface {
	// Record inserts the event id and reports whether this delivery is the
	// first. The insert is an atomic ON CONFLICT DO NOTHING, which closes
	// the race between two concurrent deliveries of the same event.
	Record(ctx context.Context, tx pgx.Tx, event model.WebhookEvent) (bool, error)
}

// LoyaltyRepository defines the interface for loyalty accounts.
type LoyaltyRepository interface {
	// GetAccount retrieves a customer's account, or nil when the customer
	// is not enrolled.
	GetAccount(ctx context.Context, customerID uuid.UUID) (*model.LoyaltyAccount, error)

	// AddPoints credits earned points to both balances.
	AddPoints(ctx context.Context, tx pgx.Tx, customerID uuid.UUID, points int) error

	// RedeemPoints debits redeemable points.
	RedeemPoints(ctx context.Context, tx pgx.Tx, customerID uuid.UUID, points int) error
}

// VoucherRepository defines the interface for gift vouchers.
type VoucherRepository interface {
	// GetByCode retrieves a voucher, or nil when the code is unknown.
	GetByCode(ctx context.Context, code string) (*model.Voucher, error)

	// Deduct atomically decrements the voucher balance. The decrement is
	// guarded so that concurrent redemptions of the same code cannot spend
	// more than the remaining balance.
	Deduct(ctx context.Context, tx pgx.Tx, code string, amount int64) error
}
