// Package booking holds the pure booking rule engine: lead-time, horizon and
// cancellation-cutoff checks plus the appointment status machine. Nothing in
// this package touches the database or the clock; callers pass `now` in.
package booking

import (
	"time"

	"glowdesk/internal/model"
)

// transitions is the appointment status machine. Statuses absent from the
// map are terminal.
var transitions = map[model.AppointmentStatus][]model.AppointmentStatus{
	model.AppointmentReserved:  {model.AppointmentConfirmed, model.AppointmentCancelled},
	model.AppointmentConfirmed: {model.AppointmentCompleted, model.AppointmentCancelled, model.AppointmentNoShow},
}

// CanTransition reports whether the status machine allows from -> to.
func CanTransition(from, to model.AppointmentStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition returns a copy of the appointment moved to the target status,
// or an InvalidTransitionError if the status machine forbids it.
func Transition(appt model.Appointment, target model.AppointmentStatus) (model.Appointment, error) {
	if !CanTransition(appt.Status, target) {
		return appt, &model.InvalidTransitionError{
			Entity: "appointment",
			From:   string(appt.Status),
			To:     string(target),
		}
	}
	appt.Status = target
	return appt, nil
}

// CanCreate checks whether a slot starting at requestedStart may be booked at
// `now`: it must be at least the configured lead time ahead and no further
// out than the horizon.
func CanCreate(requestedStart time.Time, rules model.BookingRules, now time.Time) error {
	lead := time.Duration(rules.MinLeadTimeMinutes) * time.Minute
	if requestedStart.Before(now.Add(lead)) {
		return model.ErrLeadTimeViolated
	}

	horizon := time.Duration(rules.MaxHorizonDays) * 24 * time.Hour
	if requestedStart.After(now.Add(horizon)) {
		return model.ErrHorizonExceeded
	}

	return nil
}

// CanCancel checks whether the appointment may still be cancelled at `now`.
// Each failure cause is a distinct error so the caller can message it:
// already cancelled, a non-cancellable status, or the cutoff has passed.
func CanCancel(appt model.Appointment, rules model.BookingRules, now time.Time) error {
	if appt.Status == model.AppointmentCancelled {
		return model.ErrAlreadyCancelled
	}

	if !CanTransition(appt.Status, model.AppointmentCancelled) {
		return &model.InvalidTransitionError{
			Entity: "appointment",
			From:   string(appt.Status),
			To:     string(model.AppointmentCancelled),
		}
	}

	cutoff := time.Duration(rules.CancellationCutoffHours) * time.Hour
	if now.After(appt.StartsAt.Add(-cutoff)) {
		return model.ErrCancellationTooLate
	}

	return nil
}

// Cancel applies a cancellation at `now`, stamping the cancellation metadata.
func Cancel(appt model.Appointment, rules model.BookingRules, actor model.CancellationActor, now time.Time) (model.Appointment, error) {
	if err := CanCancel(appt, rules, now); err != nil {
		return appt, err
	}

	appt.Status = model.AppointmentCancelled
	cancelledAt := now
	appt.CancelledAt = &cancelledAt
	appt.CancelledBy = &actor
	return appt, nil
}
