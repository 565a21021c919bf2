package repository

import (
	"context"
	"errors"
	"fmt"

	"glowdesk/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// voucherRepository implements VoucherRepository using PostgreSQL.
type voucherRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewVoucherRepository creates a new PostgreSQL-backed voucher repository.
func NewVoucherRepository(pool *pgxpool.Pool, logger zerolog.Logger) VoucherRepository {
	return &voucherRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "voucher").Logger(),
	}
}

// GetByCode retrieves a voucher, or nil when the code is unknown.
func (r *voucherRepository) GetByCode(ctx context.Context, code string) (*model.Voucher, error) {
	query := `
		SELECT code, remaining, expires_at, active, created_at
		FROM vouchers
		WHERE code = $1
	`

	var v model.Voucher
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&v.Code, &v.Remaining, &v.ExpiresAt, &v.Active, &v.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("code", code).Msg("failed to query voucher")
		return nil, fmt.Errorf("failed to query voucher: %w", err)
	}

	return &v, nil
}

// Deduct atomically decrements a voucher balance. The guard in the WHERE
// clause rejects a stale redemption when concurrent checkouts race for the
// same code, so the balance only ever decreases and never below zero.
func (r *voucherRepository) Deduct(ctx context.Context, tx pgx.Tx, code string, amount int64) error {
	if amount <= 0 {
		return nil
	}

	tag, err := tx.Exec(ctx,
		`UPDATE vouchers SET remaining = remaining - $2 WHERE code = $1 AND remaining >= $2`,
		code, amount)
	if err != nil {
		r.logger.Error().Err(err).Str("code", code).Msg("failed to deduct voucher balance")
		return fmt.Errorf("failed to deduct voucher balance: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Warn().
			Str("code", code).
			Int64("amount", amount).
			Msg("voucher deduction rejected, balance changed concurrently")
		return model.ErrVoucherInsufficient
	}

	return nil
}
