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

// loyaltyRepository implements LoyaltyRepository using PostgreSQL.
type loyaltyRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewLoyaltyRepository creates a new PostgreSQL-backed loyalty repository.
func NewLoyaltyRepository(pool *pgxpool.Pool, logger zerolog.Logger) LoyaltyRepository {
	return &loyaltyRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "loyalty").Logger(),
	}
}

// GetAccount retrieves a customer's account, or nil when the customer is not
// enrolled.
func (r *loyaltyRepository) GetAccount(ctx context.Context, customerID uuid.UUID) (*model.LoyaltyAccount, error) {
	query := `
		SELECT customer_id, lifetime_points, redeemable_points, enrolled, updated_at
		FROM loyalty_accounts
		WHERE customer_id = $1
	`

	var account model.LoyaltyAccount
	err := r.pool.QueryRow(ctx, query, customerID).Scan(
		&account.CustomerID,
		&account.LifetimePoints,
		&account.RedeemablePoints,
		&account.Enrolled,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("customer_id", customerID.String()).Msg("failed to query loyalty account")
		return nil, fmt.Errorf("failed to query loyalty account: %w", err)
	}

	return &account, nil
}

// AddPoints credits earned points to both balances. Lifetime points only ever
// grow; an upsert enrols first-time customers.
func (r *loyaltyRepository) AddPoints(ctx context.Context, tx pgx.Tx, customerID uuid.UUID, points int) error {
	if points <= 0 {
		return nil
	}

	query := `
		INSERT INTO loyalty_accounts (customer_id, lifetime_points, redeemable_points, enrolled, updated_at)
		VALUES ($1, $2, $2, TRUE, NOW())
		ON CONFLICT (customer_id) DO UPDATE
		SET lifetime_points = loyalty_accounts.lifetime_points + EXCLUDED.lifetime_points,
		    redeemable_points = loyalty_accounts.redeemable_points + EXCLUDED.redeemable_points,
		    updated_at = NOW()
	`

	_, err := tx.Exec(ctx, query, customerID, points)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("customer_id", customerID.String()).
			Int("points", points).
			Msg("failed to add loyalty points")
		return fmt.Errorf("failed to add loyalty points: %w", err)
	}

	return nil
}

// RedeemPoints debits redeemable points. The guard in the WHERE clause keeps
// the balance non-negative even under concurrent redemptions.
func (r *loyaltyRepository) RedeemPoints(ctx context.Context, tx pgx.Tx, customerID uuid.UUID, points int) error {
	if points <= 0 {
		return nil
	}

	query := `
		UPDATE loyalty_accounts
		SET redeemable_points = redeemable_points - $2, updated_at = NOW()
		WHERE customer_id = $1 AND redeemable_points >= $2
	`

	tag, err := tx.Exec(ctx, query, customerID, points)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("customer_id", customerID.String()).
			Int("points", points).
			Msg("failed to redeem loyalty points")
		return fmt.Errorf("failed to redeem loyalty points: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.NewDomainError(model.ErrCodeInsufficientPoints,
			"Not enough redeemable points for this redemption")
	}

	return nil
}
