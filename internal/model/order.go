package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus enumerates the order lifecycle states.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderPaid       OrderStatus = "paid"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
	OrderRefunded   OrderStatus = "refunded"
)

// PaymentStatus enumerates payment states tracked alongside the order status.
type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "pending"
	PaymentAuthorized        PaymentStatus = "authorized"
	PaymentCaptured          PaymentStatus = "captured"
	PaymentFailed            PaymentStatus = "failed"
	PaymentCancelled         PaymentStatus = "cancelled"
	PaymentRefunded          PaymentStatus = "refunded"
	PaymentPartiallyRefunded PaymentStatus = "partially_refunded"
)

// PaymentMethod selects the checkout flow. Invoice orders are confirmed
// immediately; card orders wait for the external payment intent to succeed.
type PaymentMethod string

const (
	PaymentMethodCard    PaymentMethod = "card"
	PaymentMethodInvoice PaymentMethod = "invoice"
)

// Order represents a shop order. All monetary fields are integer minor units
// (Rappen for CHF) and non-negative; Total = max(0, Subtotal - Discount + Shipping).
type Order struct {
	ID              uuid.UUID     `json:"id" db:"id"`
	CustomerID      uuid.UUID     `json:"customerId" db:"customer_id"`
	Status          OrderStatus   `json:"status" db:"status"`
	PaymentStatus   PaymentStatus `json:"paymentStatus" db:"payment_status"`
	PaymentMethod   PaymentMethod `json:"paymentMethod" db:"payment_method"`
	PaymentIntentID *string       `json:"paymentIntentId,omitempty" db:"payment_intent_id"`
	Currency        string        `json:"currency" db:"currency"`
	Subtotal        int64         `json:"subtotal" db:"subtotal"`
	Discount        int64         `json:"discount" db:"discount"`
	Shipping        int64         `json:"shipping" db:"shipping"`
	Total           int64         `json:"total" db:"total"`
	RefundedAmount  int64         `json:"refundedAmount" db:"refunded_amount"`
	VoucherCode     *string       `json:"voucherCode,omitempty" db:"voucher_code"`
	CreatedAt       time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time     `json:"updatedAt" db:"updated_at"`
}

// OrderItem represents a line item in an order. LineTotal is always
// Quantity * UnitPrice in minor units.
type OrderItem struct {
	ID        uuid.UUID `json:"-" db:"id"`
	OrderID   uuid.UUID `json:"-" db:"order_id"`
	ProductID string    `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	UnitPrice int64     `json:"unitPrice" db:"unit_price"`
	LineTotal int64     `json:"lineTotal" db:"line_total"`
}

// CheckoutRequest represents the request payload for creating an order.
type CheckoutRequest struct {
	CustomerID    uuid.UUID          `json:"customerId"`
	PaymentMethod PaymentMethod      `json:"paymentMethod"`
	Items         []OrderItemRequest `json:"items"`
	VoucherCode   *string            `json:"voucherCode,omitempty"`
	RedeemPoints  int                `json:"redeemPoints,omitempty"`
}

// OrderItemRequest represents a single item in a checkout request.
type OrderItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// OrderResponse represents the response payload for an order.
type OrderResponse struct {
	Order Order       `json:"order"`
	Items []OrderItem `json:"items"`
}

// RefundRequest represents the request payload for issuing a refund.
type RefundRequest struct {
	// Amount in minor units; zero means "refund the remaining balance".
	Amount int64 `json:"amount"`
}
