// Package mailer is the email collaborator. Sending is fire-and-forget from
// the services' perspective: a failed mail is logged and never rolls back the
// state change that triggered it.
package mailer

import (
	"context"

	"github.com/rs/zerolog"

	"glowdesk/internal/model"
)

// Mailer sends transactional customer emails.
type Mailer interface {
	SendBookingConfirmation(ctx context.Context, appt model.Appointment) error
	SendBookingCancellation(ctx context.Context, appt model.Appointment) error
	SendOrderConfirmation(ctx context.Context, order model.Order) error
}

// logMailer logs instead of sending. It stands in until an SMTP/API sender is
// configured and is what tests wire by default.
type logMailer struct {
	logger zerolog.Logger
}

// NewLogMailer creates a mailer that only logs.
func NewLogMailer(logger zerolog.Logger) Mailer {
	return &logMailer{logger: logger.With().Str("component", "mailer").Logger()}
}

func (m *logMailer) SendBookingConfirmation(ctx context.Context, appt model.Appointment) error {
	m.logger.Info().
		Str("appointment_id", appt.ID.String()).
		Str("customer_id", appt.CustomerID.String()).
		Time("starts_at", appt.StartsAt).
		Msg("booking confirmation mail")
	return nil
}

func (m *logMailer) SendBookingCancellation(ctx context.Context, appt model.Appointment) error {
	m.logger.Info().
		Str("appointment_id", appt.ID.String()).
		Str("customer_id", appt.CustomerID.String()).
		Msg("booking cancellation mail")
	return nil
}

func (m *logMailer) SendOrderConfirmation(ctx context.Context, order model.Order) error {
	m.logger.Info().
		Str("order_id", order.ID.String()).
		Int64("total", order.Total).
		Msg("order confirmation mail")
	return nil
}
