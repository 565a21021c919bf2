package repository

import (
	"context"
	"errors"
	"fmt"

	"glowdesk/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const pgUniqueViolation = "23505"

// appointmentRepository implements AppointmentRepository using PostgreSQL.
type appointmentRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewAppointmentRepository creates a new PostgreSQL-backed appointment repository.
func NewAppointmentRepository(pool *pgxpool.Pool, logger zerolog.Logger) AppointmentRepository {
	return &appointmentRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "appointment").Logger(),
	}
}

// Create inserts a new appointment. The unique constraint on
// (staff_id, starts_at) is the slot claim: when two customers race for the
// same slot, exactly one insert succeeds and the other maps to
// model.ErrSlotAlreadyTaken.
func (r *appointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	query := `
		INSERT INTO appointments
			(id, customer_id, staff_id, starts_at, ends_at, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		appt.ID, appt.CustomerID, appt.StaffID,
		appt.StartsAt, appt.EndsAt, appt.Status,
		appt.CreatedAt, appt.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			r.logger.Debug().
				Str("staff_id", appt.StaffID.String()).
				Time("starts_at", appt.StartsAt).
				Msg("slot already taken")
			return model.ErrSlotAlreadyTaken
		}

		r.logger.Error().
			Err(err).
			Str("appointment_id", appt.ID.String()).
			Msg("failed to create appointment")
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	r.logger.Debug().
		Str("appointment_id", appt.ID.String()).
		Msg("appointment created successfully")

	return nil
}

// GetByID retrieves an appointment, or nil when it does not exist.
func (r *appointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, customer_id, staff_id, starts_at, ends_at, status,
		       cancelled_at, cancelled_by, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`

	var appt model.Appointment
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&appt.ID,
		&appt.CustomerID,
		&appt.StaffID,
		&appt.StartsAt,
		&appt.EndsAt,
		&appt.Status,
		&appt.CancelledAt,
		&appt.CancelledBy,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("appointment_id", id.String()).Msg("appointment not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("appointment_id", id.String()).Msg("failed to query appointment")
		return nil, fmt.Errorf("failed to query appointment: %w", err)
	}

	return &appt, nil
}

// Update persists status and cancellation metadata changes.
func (r *appointmentRepository) Update(ctx context.Context, appt *model.Appointment) error {
	query := `
		UPDATE appointments
		SET status = $2, cancelled_at = $3, cancelled_by = $4, updated_at = $5
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		appt.ID, appt.Status, appt.CancelledAt, appt.CancelledBy, appt.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("appointment_id", appt.ID.String()).
			Msg("failed to update appointment")
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrAppointmentNotFound
	}

	return nil
}

// GetRules loads the salon booking rules, or nil when no row is configured.
func (r *appointmentRepository) GetRules(ctx context.Context) (*model.BookingRules, error) {
	query := `
		SELECT cancellation_cutoff_hours, min_lead_time_minutes, max_horizon_days
		FROM booking_rules
		LIMIT 1
	`

	var rules model.BookingRules
	err := r.pool.QueryRow(ctx, query).Scan(
		&rules.CancellationCutoffHours,
		&rules.MinLeadTimeMinutes,
		&rules.MaxHorizonDays,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query booking rules")
		return nil, fmt.Errorf("failed to query booking rules: %w", err)
	}

	return &rules, nil
}
