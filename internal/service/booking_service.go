package service

import (
	"context"
	"fmt"
	"time"

	"glowdesk/internal/booking"
	"glowdesk/internal/mailer"
	"glowdesk/internal/model"
	"glowdesk/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// bookingService implements BookingService.
type bookingService struct {
	apptRepo     repository.AppointmentRepository
	mail         mailer.Mailer
	defaultRules model.BookingRules
	logger       zerolog.Logger
	now          func() time.Time
}

// NewBookingService creates a new booking service. defaultRules apply when no
// booking_rules row is configured.
func NewBookingService(
	apptRepo repository.AppointmentRepository,
	mail mailer.Mailer,
	defaultRules model.BookingRules,
	logger zerolog.Logger,
) BookingService {
	return &bookingService{
		apptRepo:     apptRepo,
		mail:         mail,
		defaultRules: defaultRules,
		logger:       logger.With().Str("service", "booking").Logger(),
		now:          time.Now,
	}
}

// rules loads the salon booking rules, falling back to the configured defaults.
func (s *bookingService) rules(ctx context.Context) model.BookingRules {
	rules, err := s.apptRepo.GetRules(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to load booking rules, using defaults")
		return s.defaultRules
	}
	if rules == nil {
		return s.defaultRules
	}
	return *rules
}

// CreateAppointment books a slot. Lead time and horizon are checked first;
// the slot itself is claimed atomically by the insert, so two concurrent
// requests for the same staff/time can never both succeed.
func (s *bookingService) CreateAppointment(ctx context.Context, req *model.AppointmentRequest) (*model.Appointment, error) {
	if err := validateAppointmentRequest(req); err != nil {
		return nil, err
	}

	now := s.now()
	if err := booking.CanCreate(req.StartsAt, s.rules(ctx), now); err != nil {
		s.logger.Warn().
			Time("starts_at", req.StartsAt).
			Err(err).
			Msg("booking request rejected")
		return nil, err
	}

	status := model.AppointmentReserved
	if req.Confirmed {
		status = model.AppointmentConfirmed
	}

	appt := &model.Appointment{
		ID:         uuid.New(),
		CustomerID: req.CustomerID,
		StaffID:    req.StaffID,
		StartsAt:   req.StartsAt,
		EndsAt:     req.EndsAt,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.apptRepo.Create(ctx, appt); err != nil {
		return nil, err
	}

	// Mail is fire-and-forget: a failure never unwinds the booking.
	if err := s.mail.SendBookingConfirmation(ctx, *appt); err != nil {
		s.logger.Warn().
			Err(err).
			Str("appointment_id", appt.ID.String()).
			Msg("failed to send booking confirmation")
	}

	s.logger.Info().
		Str("appointment_id", appt.ID.String()).
		Str("staff_id", appt.StaffID.String()).
		Time("starts_at", appt.StartsAt).
		Msg("appointment created")

	return appt, nil
}

// GetAppointment retrieves an appointment by ID.
func (s *bookingService) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	appt, err := s.apptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return appt, nil
}

// CancelAppointment cancels within the cutoff window.
func (s *bookingService) CancelAppointment(ctx context.Context, id uuid.UUID, actor model.CancellationActor) (*model.Appointment, error) {
	appt, err := s.apptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	if appt == nil {
		return nil, model.ErrAppointmentNotFound
	}

	now := s.now()
	cancelled, err := booking.Cancel(*appt, s.rules(ctx), actor, now)
	if err != nil {
		s.logger.Warn().
			Str("appointment_id", id.String()).
			Str("status", string(appt.Status)).
			Err(err).
			Msg("cancellation rejected")
		return nil, err
	}
	cancelled.UpdatedAt = now

	if err := s.apptRepo.Update(ctx, &cancelled); err != nil {
		return nil, err
	}

	if err := s.mail.SendBookingCancellation(ctx, cancelled); err != nil {
		s.logger.Warn().
			Err(err).
			Str("appointment_id", id.String()).
			Msg("failed to send cancellation mail")
	}

	s.logger.Info().
		Str("appointment_id", id.String()).
		Str("actor", string(actor)).
		Msg("appointment cancelled")

	return &cancelled, nil
}

// ConfirmAppointment moves a reserved appointment to confirmed.
func (s *bookingService) ConfirmAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.transition(ctx, id, model.AppointmentConfirmed)
}

// CompleteAppointment marks a confirmed appointment as completed.
func (s *bookingService) CompleteAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.transition(ctx, id, model.AppointmentCompleted)
}

// MarkNoShow marks a confirmed appointment as a no-show.
func (s *bookingService) MarkNoShow(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.transition(ctx, id, model.AppointmentNoShow)
}

func (s *bookingService) transition(ctx context.Context, id uuid.UUID, target model.AppointmentStatus) (*model.Appointment, error) {
	appt, err := s.apptRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	if appt == nil {
		return nil, model.ErrAppointmentNotFound
	}

	updated, err := booking.Transition(*appt, target)
	if err != nil {
		s.logger.Warn().
			Str("appointment_id", id.String()).
			Str("from", string(appt.Status)).
			Str("to", string(target)).
			Msg("appointment transition rejected")
		return nil, err
	}
	updated.UpdatedAt = s.now()

	if err := s.apptRepo.Update(ctx, &updated); err != nil {
		return nil, err
	}

	return &updated, nil
}

func validateAppointmentRequest(req *model.AppointmentRequest) error {
	if req == nil {
		return model.NewValidationError(map[string]string{"request": "request body is required"})
	}

	fields := make(map[string]string)
	if req.CustomerID == uuid.Nil {
		fields["customerId"] = "customer ID is required"
	}
	if req.StaffID == uuid.Nil {
		fields["staffId"] = "staff ID is required"
	}
	if req.StartsAt.IsZero() {
		fields["startsAt"] = "start time is required"
	}
	if !req.EndsAt.After(req.StartsAt) {
		fields["endsAt"] = "end time must be after start time"
	}

	if len(fields) > 0 {
		return model.NewValidationError(fields)
	}
	return nil
}
