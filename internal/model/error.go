package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string            `json:"error"`
	Message       string            `json:"message"`
	Fields        map[string]string `json:"fields,omitempty"`
	CorrelationID string            `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	// Booking
	ErrCodeSlotAlreadyTaken   = "SLOT_ALREADY_TAKEN"
	ErrCodeSlotExpired        = "SLOT_EXPIRED"
	ErrCodeLeadTimeViolated   = "LEAD_TIME_VIOLATED"
	ErrCodeHorizonExceeded    = "HORIZON_EXCEEDED"
	ErrCodeStaffNotAvailable  = "STAFF_NOT_AVAILABLE"
	ErrCodeCancellationLate   = "CANCELLATION_TOO_LATE"
	ErrCodeAlreadyCancelled   = "ALREADY_CANCELLED"
	ErrCodeInvalidTransition  = "INVALID_TRANSITION"
	ErrCodeAppointmentMissing = "APPOINTMENT_NOT_FOUND"

	// Payment
	ErrCodePaymentDeclined     = "PAYMENT_DECLINED"
	ErrCodeInsufficientFunds   = "INSUFFICIENT_FUNDS"
	ErrCodeInvalidCard         = "INVALID_CARD"
	ErrCodeExpiredCard         = "EXPIRED_CARD"
	ErrCodeProcessingError     = "PROCESSING_ERROR"
	ErrCodeUnknownIntentStatus = "UNKNOWN_INTENT_STATUS"
	ErrCodeUnsupportedCurrency = "UNSUPPORTED_CURRENCY"
	ErrCodeEventAlreadyHandled = "EVENT_ALREADY_PROCESSED"

	// Order
	ErrCodeOrderNotFound     = "ORDER_NOT_FOUND"
	ErrCodeAlreadyShipped    = "ALREADY_SHIPPED"
	ErrCodeOrderCancelled    = "ORDER_ALREADY_CANCELLED"
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	ErrCodeProductNotFound   = "PRODUCT_NOT_FOUND"
	ErrCodeInvalidQuantity   = "INVALID_QUANTITY"
	ErrCodeNothingToRefund   = "NOTHING_TO_REFUND"

	// Voucher
	ErrCodeVoucherNotFound     = "VOUCHER_NOT_FOUND"
	ErrCodeVoucherExpired      = "VOUCHER_EXPIRED"
	ErrCodeVoucherUsed         = "VOUCHER_ALREADY_USED"
	ErrCodeVoucherInsufficient = "VOUCHER_INSUFFICIENT_BALANCE"
	ErrCodeVoucherNotUsable    = "VOUCHER_NOT_APPLICABLE"

	// Loyalty
	ErrCodeInsufficientPoints = "INSUFFICIENT_POINTS"

	// Generic
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeInvalidJSON   = "INVALID_JSON"
	ErrCodeUnauthorised  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// DomainError is a business-rule violation carrying a stable code for API
// consumers. Handlers map codes to HTTP statuses; the message is safe to show
// to end users.
type DomainError struct {
	Code    string
	Message string
	// Fields carries field-level detail when Code is ErrCodeValidation.
	Fields map[string]string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a validation error carrying per-field detail.
func NewValidationError(fields map[string]string) *DomainError {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: "Request validation failed",
		Fields:  fields,
	}
}

// Common domain errors
var (
	ErrSlotAlreadyTaken    = NewDomainError(ErrCodeSlotAlreadyTaken, "The requested time slot has already been booked")
	ErrLeadTimeViolated    = NewDomainError(ErrCodeLeadTimeViolated, "The appointment does not meet the minimum booking notice")
	ErrHorizonExceeded     = NewDomainError(ErrCodeHorizonExceeded, "The appointment is too far in the future")
	ErrCancellationTooLate = NewDomainError(ErrCodeCancellationLate, "The cancellation deadline for this appointment has passed")
	ErrAlreadyCancelled    = NewDomainError(ErrCodeAlreadyCancelled, "This appointment has already been cancelled")
	ErrAppointmentNotFound = NewDomainError(ErrCodeAppointmentMissing, "Appointment not found")

	ErrOrderNotFound   = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrProductNotFound = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrInvalidQuantity = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrNothingToRefund = NewDomainError(ErrCodeNothingToRefund, "The order has no refundable balance")

	ErrVoucherNotFound     = NewDomainError(ErrCodeVoucherNotFound, "Voucher code not found")
	ErrVoucherExpired      = NewDomainError(ErrCodeVoucherExpired, "This voucher has expired")
	ErrVoucherUsed         = NewDomainError(ErrCodeVoucherUsed, "This voucher has already been fully redeemed")
	ErrVoucherInsufficient = NewDomainError(ErrCodeVoucherInsufficient, "The voucher balance does not cover the requested amount")

	ErrEventAlreadyHandled = NewDomainError(ErrCodeEventAlreadyHandled, "This payment event has already been processed")
)

// InvalidTransitionError reports a disallowed state-machine transition. The
// From/To pair is preserved so callers can render a precise message.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return "invalid " + e.Entity + " transition from " + e.From + " to " + e.To
}

// Code satisfies the same contract as DomainError for HTTP mapping.
func (e *InvalidTransitionError) DomainCode() string {
	return ErrCodeInvalidTransition
}
