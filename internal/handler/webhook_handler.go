package handler

import (
	"io"
	"net/http"

	"glowdesk/internal/model"
	"glowdesk/internal/payment"
	"glowdesk/internal/service"

	"github.com/rs/zerolog"
)

// signatureHeader carries the provider's payload signature.
const signatureHeader = "X-Payment-Signature"

// maxWebhookBody bounds the accepted payload size.
const maxWebhookBody = 1 << 20

// WebhookHandler handles inbound payment-provider webhooks.
type WebhookHandler struct {
	service service.WebhookService
	gateway payment.Gateway
	logger  zerolog.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(service service.WebhookService, gateway payment.Gateway, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		gateway: gateway,
		logger:  logger.With().Str("handler", "webhook").Logger(),
	}
}

// HandlePaymentEvent handles POST /api/webhooks/payment requests. The payload
// is authenticated by signature before anything is parsed into the domain;
// replayed events get a 200 so the provider stops retrying.
func (h *WebhookHandler) HandlePaymentEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeValidation, "method not allowed", h.logger)
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "failed to read request body", h.logger)
		return
	}

	signature := r.Header.Get(signatureHeader)
	if signature == "" {
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "missing webhook signature", h.logger)
		return
	}

	event, err := h.gateway.VerifySignature(payload, signature)
	if err != nil {
		h.logger.Warn().Err(err).Msg("webhook signature rejected")
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "invalid webhook signature", h.logger)
		return
	}

	result, err := h.service.ProcessPaymentEvent(r.Context(), event)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
