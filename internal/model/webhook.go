package model

import "time"

// WebhookEvent records an inbound payment-provider event. The external event
// id is the primary key; inserting a duplicate is how replays are detected.
type WebhookEvent struct {
	EventID     string    `json:"eventId" db:"event_id"`
	EventType   string    `json:"eventType" db:"event_type"`
	ProcessedAt time.Time `json:"processedAt" db:"processed_at"`
}

// PaymentEvent is the payload the payment webhook handler consumes after
// signature verification.
type PaymentEvent struct {
	EventID      string `json:"eventId"`
	EventType    string `json:"eventType"`
	IntentID     string `json:"intentId"`
	IntentStatus string `json:"intentStatus"`
	OrderID      string `json:"orderId"`
	// AmountRefunded is set on refund events, in minor units.
	AmountRefunded int64 `json:"amountRefunded,omitempty"`
}

// WebhookResult describes the outcome of processing a payment event.
type WebhookResult struct {
	EventID          string `json:"eventId"`
	AlreadyProcessed bool   `json:"alreadyProcessed"`
	OrderID          string `json:"orderId,omitempty"`
}
