// Package payment abstracts the hosted card-payment processor. The gateway
// interface covers the payment-intent lifecycle the checkout and webhook
// flows need; MapIntentStatus is the fixed translation from processor intent
// statuses to internal payment statuses.
package payment

import (
	"context"

	"glowdesk/internal/model"
)

// Processor intent statuses as delivered on webhooks.
const (
	IntentRequiresPaymentMethod = "requires_payment_method"
	IntentRequiresCapture       = "requires_capture"
	IntentSucceeded             = "succeeded"
	IntentCanceled              = "canceled"
)

// Intent is the provider-side payment intent as far as this system cares.
type Intent struct {
	ID       string
	Status   string
	Amount   int64
	Currency string
}

// Gateway is the card-payment processor client. Implementations wrap the
// provider SDK; tests use mocks.
type Gateway interface {
	// CreateIntent opens a payment intent for the given amount in minor units.
	CreateIntent(ctx context.Context, amount int64, currency string, orderID string) (*Intent, error)

	// GetIntent retrieves an intent by id.
	GetIntent(ctx context.Context, id string) (*Intent, error)

	// CancelIntent voids an uncaptured intent.
	CancelIntent(ctx context.Context, id string) error

	// CreateRefund refunds part or all of a captured intent.
	CreateRefund(ctx context.Context, intentID string, amount int64) error

	// VerifySignature authenticates a raw webhook payload and returns the
	// decoded event.
	VerifySignature(payload []byte, signature string) (*model.PaymentEvent, error)
}

// MapIntentStatus translates a processor intent status to the internal
// payment status. Unrecognised statuses fail loudly rather than defaulting.
func MapIntentStatus(status string) (model.PaymentStatus, error) {
	switch status {
	case IntentRequiresPaymentMethod:
		return model.PaymentPending, nil
	case IntentRequiresCapture:
		return model.PaymentAuthorized, nil
	case IntentSucceeded:
		return model.PaymentCaptured, nil
	case IntentCanceled:
		return model.PaymentCancelled, nil
	default:
		return "", model.NewDomainError(model.ErrCodeUnknownIntentStatus,
			"Unknown payment intent status: "+status)
	}
}
