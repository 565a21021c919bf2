package model

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus enumerates the appointment lifecycle states.
type AppointmentStatus string

const (
	AppointmentReserved  AppointmentStatus = "reserved"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentNoShow    AppointmentStatus = "no_show"
)

// CancellationActor identifies who cancelled an appointment.
type CancellationActor string

const (
	CancelledByCustomer CancellationActor = "customer"
	CancelledByAdmin    CancellationActor = "admin"
)

// Appointment represents a booked salon appointment.
type Appointment struct {
	ID          uuid.UUID          `json:"id" db:"id"`
	CustomerID  uuid.UUID          `json:"customerId" db:"customer_id"`
	StaffID     uuid.UUID          `json:"staffId" db:"staff_id"`
	StartsAt    time.Time          `json:"startsAt" db:"starts_at"`
	EndsAt      time.Time          `json:"endsAt" db:"ends_at"`
	Status      AppointmentStatus  `json:"status" db:"status"`
	CancelledAt *time.Time         `json:"cancelledAt,omitempty" db:"cancelled_at"`
	CancelledBy *CancellationActor `json:"cancelledBy,omitempty" db:"cancelled_by"`
	CreatedAt   time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time          `json:"updatedAt" db:"updated_at"`
}

// BookingRules is the per-salon booking configuration. The cancellation
// cutoff defaults to 24 hours; lead time and horizon carry no semantic
// default and come from configuration.
type BookingRules struct {
	CancellationCutoffHours int `json:"cancellationCutoffHours" db:"cancellation_cutoff_hours"`
	MinLeadTimeMinutes      int `json:"minLeadTimeMinutes" db:"min_lead_time_minutes"`
	MaxHorizonDays          int `json:"maxHorizonDays" db:"max_horizon_days"`
}

// DefaultBookingRules returns the baseline rule set.
func DefaultBookingRules() BookingRules {
	return BookingRules{
		CancellationCutoffHours: 24,
		MinLeadTimeMinutes:      60,
		MaxHorizonDays:          90,
	}
}

// AppointmentRequest represents the request payload for booking a slot.
type AppointmentRequest struct {
	CustomerID uuid.UUID `json:"customerId"`
	StaffID    uuid.UUID `json:"staffId"`
	StartsAt   time.Time `json:"startsAt"`
	EndsAt     time.Time `json:"endsAt"`
	// Confirmed books the slot directly in confirmed state (admin flow);
	// the customer flow books reserved and confirms later.
	Confirmed bool `json:"confirmed,omitempty"`
}

// CancelRequest represents the request payload for cancelling an appointment.
type CancelRequest struct {
	Actor CancellationActor `json:"actor"`
}
