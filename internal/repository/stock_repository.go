package repository

import (
	"context"
	"fmt"

	"glowdesk/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// stockRepository implements StockRepository using PostgreSQL.
type stockRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewStockRepository creates a new PostgreSQL-backed stock repository.
func NewStockRepository(pool *pgxpool.Pool, logger zerolog.Logger) StockRepository {
	return &stockRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "stock").Logger(),
	}
}

const levelColumns = `product_id, quantity, min_threshold, max_cap, updated_at`

func (r *stockRepository) scanLevels(rows pgx.Rows) (map[string]model.StockLevel, error) {
	defer rows.Close()

	levels := make(map[string]model.StockLevel)
	for rows.Next() {
		var level model.StockLevel
		err := rows.Scan(&level.ProductID, &level.Quantity, &level.MinThreshold,
			&level.MaxCap, &level.UpdatedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan stock level row")
			return nil, fmt.Errorf("failed to scan stock level: %w", err)
		}
		levels[level.ProductID] = level
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating stock level rows")
		return nil, fmt.Errorf("error iterating stock levels: %w", err)
	}

	return levels, nil
}

// GetLevels reads current levels for the given products.
func (r *stockRepository) GetLevels(ctx context.Context, productIDs []string) (map[string]model.StockLevel, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+levelColumns+` FROM stock_levels WHERE product_id = ANY($1)`, productIDs)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query stock levels")
		return nil, fmt.Errorf("failed to query stock levels: %w", err)
	}
	return r.scanLevels(rows)
}

// GetLevelsForUpdate reads levels with row locks inside the transaction.
// Rows are locked in product-id order so concurrent checkouts cannot
// deadlock against each other.
func (r *stockRepository) GetLevelsForUpdate(ctx context.Context, tx pgx.Tx, productIDs []string) (map[string]model.StockLevel, error) {
	rows, err := tx.Query(ctx,
		`SELECT `+levelColumns+` FROM stock_levels WHERE product_id = ANY($1) ORDER BY product_id FOR UPDATE`,
		productIDs)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to lock stock levels")
		return nil, fmt.Errorf("failed to lock stock levels: %w", err)
	}
	return r.scanLevels(rows)
}

// ApplyMovement updates the cached level and appends the ledger entry in one
// transactional step. The ledger row is append-only; only stock_levels is
// ever updated.
func (r *stockRepository) ApplyMovement(ctx context.Context, tx pgx.Tx, level model.StockLevel, movement model.StockMovement) error {
	_, err := tx.Exec(ctx,
		`UPDATE stock_levels SET quantity = $2, updated_at = $3 WHERE product_id = $1`,
		level.ProductID, level.Quantity, level.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("product_id", level.ProductID).
			Msg("failed to update stock level")
		return fmt.Errorf("failed to update stock level: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO stock_movements (id, product_id, delta, movement_type, reference_type, reference_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		movement.ID, movement.ProductID, movement.Delta, movement.Type,
		movement.ReferenceType, movement.ReferenceID, movement.CreatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("product_id", movement.ProductID).
			Int("delta", movement.Delta).
			Msg("failed to insert stock movement")
		return fmt.Errorf("failed to insert stock movement: %w", err)
	}

	r.logger.Debug().
		Str("product_id", movement.ProductID).
		Int("delta", movement.Delta).
		Str("type", string(movement.Type)).
		Msg("stock movement applied")

	return nil
}

// ListMovements returns a product's ledger, oldest first.
func (r *stockRepository) ListMovements(ctx context.Context, productID string) ([]model.StockMovement, error) {
	query := `
		SELECT id, product_id, delta, movement_type, reference_type, reference_id, created_at
		FROM stock_movements
		WHERE product_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID).Msg("failed to query stock movements")
		return nil, fmt.Errorf("failed to query stock movements: %w", err)
	}
	defer rows.Close()

	var movements []model.StockMovement
	for rows.Next() {
		var m model.StockMovement
		err := rows.Scan(&m.ID, &m.ProductID, &m.Delta, &m.Type,
			&m.ReferenceType, &m.ReferenceID, &m.CreatedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan stock movement row")
			return nil, fmt.Errorf("failed to scan stock movement: %w", err)
		}
		movements = append(movements, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock movements: %w", err)
	}

	return movements, nil
}

// ListLevels returns all stock levels for reporting.
func (r *stockRepository) ListLevels(ctx context.Context) ([]model.StockLevel, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+levelColumns+` FROM stock_levels ORDER BY product_id`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query stock levels")
		return nil, fmt.Errorf("failed to query stock levels: %w", err)
	}
	defer rows.Close()

	var levels []model.StockLevel
	for rows.Next() {
		var level model.StockLevel
		err := rows.Scan(&level.ProductID, &level.Quantity, &level.MinThreshold,
			&level.MaxCap, &level.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock level: %w", err)
		}
		levels = append(levels, level)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock levels: %w", err)
	}

	return levels, nil
}
