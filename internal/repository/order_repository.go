package repository

import (
	"context"
	"errors"
	"fmt"

	"glowdesk/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Create inserts a new order and its items within the provided transaction.
func (r *orderRepository) Create(ctx context.Context, tx pgx.Tx, order *model.Order, items []model.OrderItem) error {
	orderQuery := `
		INSERT INTO orders
			(id, customer_id, status, payment_status, payment_method, payment_intent_id,
			 currency, subtotal, discount, shipping, total, refunded_amount, voucher_code,
			 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := tx.Exec(ctx, orderQuery,
		order.ID, order.CustomerID, order.Status, order.PaymentStatus,
		order.PaymentMethod, order.PaymentIntentID, order.Currency,
		order.Subtotal, order.Discount, order.Shipping, order.Total,
		order.RefundedAmount, order.VoucherCode, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	if len(items) == 0 {
		return nil
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, line_total)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(itemQuery, item.ID, item.OrderID, item.ProductID,
			item.Quantity, item.UnitPrice, item.LineTotal)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("product_id", items[i].ProductID).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Int("item_count", len(items)).
		Msg("order created successfully")

	return nil
}

const orderColumns = `
	id, customer_id, status, payment_status, payment_method, payment_intent_id,
	currency, subtotal, discount, shipping, total, refunded_amount, voucher_code,
	created_at, updated_at
`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var order model.Order
	err := row.Scan(
		&order.ID,
		&order.CustomerID,
		&order.Status,
		&order.PaymentStatus,
		&order.PaymentMethod,
		&order.PaymentIntentID,
		&order.Currency,
		&order.Subtotal,
		&order.Discount,
		&order.Shipping,
		&order.Total,
		&order.RefundedAmount,
		&order.VoucherCode,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetByID retrieves an order by its ID along with its items.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	order, err := scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := r.itemsForOrder(ctx, order.ID)
	if err != nil {
		return nil, nil, err
	}

	return order, items, nil
}

// GetByIntentID retrieves the order attached to a payment intent.
func (r *orderRepository) GetByIntentID(ctx context.Context, intentID string) (*model.Order, []model.OrderItem, error) {
	order, err := scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE payment_intent_id = $1`, intentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("intent_id", intentID).Msg("no order for payment intent")
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Str("intent_id", intentID).Msg("failed to query order by intent")
		return nil, nil, fmt.Errorf("failed to query order by intent: %w", err)
	}

	items, err := r.itemsForOrder(ctx, order.ID)
	if err != nil {
		return nil, nil, err
	}

	return order, items, nil
}

// GetByIDForUpdate retrieves an order with its items, locking the order row
// for the duration of the transaction.
func (r *orderRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	order, err := scanOrder(tx.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order for update")
		return nil, nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := r.itemsForOrderQuerier(ctx, tx, order.ID)
	if err != nil {
		return nil, nil, err
	}

	return order, items, nil
}

// GetByIntentIDForUpdate retrieves the order attached to a payment intent,
// locking the order row for the duration of the transaction.
func (r *orderRepository) GetByIntentIDForUpdate(ctx context.Context, tx pgx.Tx, intentID string) (*model.Order, []model.OrderItem, error) {
	order, err := scanOrder(tx.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE payment_intent_id = $1 FOR UPDATE`, intentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("intent_id", intentID).Msg("no order for payment intent")
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Str("intent_id", intentID).Msg("failed to query order by intent for update")
		return nil, nil, fmt.Errorf("failed to query order by intent: %w", err)
	}

	items, err := r.itemsForOrderQuerier(ctx, tx, order.ID)
	if err != nil {
		return nil, nil, err
	}

	return order, items, nil
}

// rowQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *orderRepository) itemsForOrder(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	return r.itemsForOrderQuerier(ctx, r.pool, orderID)
}

func (r *orderRepository) itemsForOrderQuerier(ctx context.Context, q rowQuerier, orderID uuid.UUID) ([]model.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, unit_price, line_total
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := q.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID,
			&item.Quantity, &item.UnitPrice, &item.LineTotal)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

// Update persists status, payment status and refund changes within the
// provided transaction.
func (r *orderRepository) Update(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		UPDATE orders
		SET status = $2, payment_status = $3, payment_intent_id = $4,
		    refunded_amount = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query,
		order.ID, order.Status, order.PaymentStatus, order.PaymentIntentID,
		order.RefundedAmount, order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to update order")
		return fmt.Errorf("failed to update order: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}

	return nil
}
