package handler

import (
	"net/http"
	"strings"

	"glowdesk/internal/model"
	"glowdesk/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LoyaltyHandler handles loyalty-programme HTTP requests.
type LoyaltyHandler struct {
	service service.LoyaltyService
	logger  zerolog.Logger
}

// NewLoyaltyHandler creates a new loyalty handler.
func NewLoyaltyHandler(service service.LoyaltyService, logger zerolog.Logger) *LoyaltyHandler {
	return &LoyaltyHandler{
		service: service,
		logger:  logger.With().Str("handler", "loyalty").Logger(),
	}
}

// Summary handles GET /api/loyalty/{customerID} requests.
func (h *LoyaltyHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeValidation, "method not allowed", h.logger)
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/api/loyalty/")
	if idStr == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "customer ID is required", h.logger)
		return
	}

	customerID, err := uuid.Parse(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "invalid customer ID format", h.logger)
		return
	}

	summary, err := h.service.Summary(r.Context(), customerID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
