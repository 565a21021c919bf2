package repository

import (
	"context"
	"fmt"

	"glowdesk/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// webhookEventRepository implements WebhookEventRepository using PostgreSQL.
type webhookEventRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewWebhookEventRepository creates a new PostgreSQL-backed webhook event repository.
func NewWebhookEventRepository(pool *pgxpool.Pool, logger zerolog.Logger) WebhookEventRepository {
	return &webhookEventRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "webhook_event").Logger(),
	}
}

// Record inserts the event id and reports whether this delivery is the first.
// The primary key on event_id plus ON CONFLICT DO NOTHING makes the
// check-then-record a single atomic statement: of two concurrent deliveries
// of the same event exactly one sees first=true.
func (r *webhookEventRepository) Record(ctx context.Context, tx pgx.Tx, event model.WebhookEvent) (bool, error) {
	query := `
		INSERT INTO webhook_events (event_id, event_type, processed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id) DO NOTHING
	`

	tag, err := tx.Exec(ctx, query, event.EventID, event.EventType, event.ProcessedAt)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("event_id", event.EventID).
			Msg("failed to record webhook event")
		return false, fmt.Errorf("failed to record webhook event: %w", err)
	}

	first := tag.RowsAffected() == 1
	if !first {
		r.logger.Info().
			Str("event_id", event.EventID).
			Msg("duplicate webhook event delivery")
	}

	return first, nil
}
