package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"

	"glowdesk/internal/model"

	"github.com/google/uuid"
)

var (
	errIntentNotFound   = errors.New("payment intent not found")
	errInvalidSignature = errors.New("webhook signature mismatch")
)

// LocalGateway is an in-process stand-in for the hosted card processor.
// Intents live in memory; webhook payloads are authenticated with the same
// HMAC-SHA256 scheme the hosted provider uses, so the webhook flow is
// exercised end to end without external calls.
type LocalGateway struct {
	secret []byte

	mu      sync.Mutex
	intents map[string]*Intent
}

// NewLocalGateway creates a gateway signing and verifying with the given
// webhook secret.
func NewLocalGateway(webhookSecret string) *LocalGateway {
	return &LocalGateway{
		secret:  []byte(webhookSecret),
		intents: make(map[string]*Intent),
	}
}

// CreateIntent opens a new payment intent.
func (g *LocalGateway) CreateIntent(_ context.Context, amount int64, currency string, orderID string) (*Intent, error) {
	intent := &Intent{
		ID:       "pi_" + uuid.NewString(),
		Status:   IntentRequiresPaymentMethod,
		Amount:   amount,
		Currency: currency,
	}

	g.mu.Lock()
	g.intents[intent.ID] = intent
	g.mu.Unlock()

	return intent, nil
}

// GetIntent retrieves an intent by id.
func (g *LocalGateway) GetIntent(_ context.Context, id string) (*Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	intent, ok := g.intents[id]
	if !ok {
		return nil, errIntentNotFound
	}
	copied := *intent
	return &copied, nil
}

// CancelIntent voids an uncaptured intent.
func (g *LocalGateway) CancelIntent(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	intent, ok := g.intents[id]
	if !ok {
		return errIntentNotFound
	}
	intent.Status = IntentCanceled
	return nil
}

// CreateRefund refunds part or all of a captured intent.
func (g *LocalGateway) CreateRefund(_ context.Context, intentID string, amount int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.intents[intentID]; !ok {
		return errIntentNotFound
	}
	if amount <= 0 {
		return errors.New("refund amount must be positive")
	}
	return nil
}

// VerifySignature authenticates a raw webhook payload and decodes the event.
func (g *LocalGateway) VerifySignature(payload []byte, signature string) (*model.PaymentEvent, error) {
	expected := g.Sign(payload)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, errInvalidSignature
	}

	var event model.PaymentEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, err
	}
	if event.EventID == "" {
		return nil, errors.New("event id missing from payload")
	}
	return &event, nil
}

// Sign computes the hex HMAC-SHA256 signature for a payload. Tests and the
// demo seeder use it to fabricate provider deliveries.
func (g *LocalGateway) Sign(payload []byte) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
