package service

import (
	"context"

	"glowdesk/internal/model"

	"github.com/google/uuid"
)

// BookingService defines operations on appointments.
type BookingService interface {
	// CreateAppointment books a slot, enforcing lead time and horizon.
	CreateAppointment(ctx context.Context, req *model.AppointmentRequest) (*model.Appointment, error)

	// GetAppointment retrieves an appointment by ID; nil when not found.
	GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error)

	// CancelAppointment cancels within the cutoff window.
	CancelAppointment(ctx context.Context, id uuid.UUID, actor model.CancellationActor) (*model.Appointment, error)

	// ConfirmAppointment moves a reserved appointment to confirmed.
	ConfirmAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error)

	// CompleteAppointment marks a confirmed appointment as completed.
	CompleteAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error)

	// MarkNoShow marks a confirmed appointment as a no-show.
	MarkNoShow(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
}

// OrderService defines operations for checkout, fulfilment and refunds.
type OrderService interface {
	// Checkout creates an order from the request, reserving stock
	// all-or-nothing. Invoice orders are paid immediately; card orders
	// stay pending until the payment intent succeeds.
	Checkout(ctx context.Context, req *model.CheckoutRequest) (*model.OrderResponse, error)

	// GetByID retrieves an order with its items; nil when not found.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error)

	// Refund refunds the given amount (0 = remaining balance), restocking
	// on full refunds. Replays are success-equivalent no-ops.
	Refund(ctx context.Context, id uuid.UUID, amount int64) (*model.OrderResponse, error)

	// Transition applies an admin-driven status change (ship, deliver,
	// complete, cancel).
	Transition(ctx context.Context, id uuid.UUID, target model.OrderStatus) (*model.OrderResponse, error)
}

// WebhookService processes inbound payment-provider events.
type WebhookService interface {
	// ProcessPaymentEvent applies a payment event exactly once; replayed
	// event ids report AlreadyProcessed without further effects.
	ProcessPaymentEvent(ctx context.Context, event *model.PaymentEvent) (*model.WebhookResult, error)
}

// LoyaltyService exposes the customer loyalty view.
type LoyaltyService interface {
	// Summary derives tier, progress and next-tier distance for a customer.
	Summary(ctx context.Context, customerID uuid.UUID) (*model.LoyaltySummary, error)
}

// ReportService renders admin reports.
type ReportService interface {
	// StockCSV renders the stock report as semicolon-delimited CSV.
	StockCSV(ctx context.Context) ([]byte, error)
}
