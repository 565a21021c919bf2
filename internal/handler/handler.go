package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"glowdesk/internal/model"
	"glowdesk/internal/stock"

	"github.com/rs/zerolog"
)

// statusByCode maps stable domain error codes to HTTP statuses.
var statusByCode = map[string]int{
	model.ErrCodeValidation:          http.StatusBadRequest,
	model.ErrCodeInvalidJSON:         http.StatusBadRequest,
	model.ErrCodeInvalidQuantity:     http.StatusBadRequest,
	model.ErrCodeLeadTimeViolated:    http.StatusUnprocessableEntity,
	model.ErrCodeHorizonExceeded:     http.StatusUnprocessableEntity,
	model.ErrCodeUnsupportedCurrency: http.StatusUnprocessableEntity,

	model.ErrCodeUnauthorised: http.StatusUnauthorized,
	model.ErrCodeForbidden:    http.StatusForbidden,

	model.ErrCodeAppointmentMissing: http.StatusNotFound,
	model.ErrCodeOrderNotFound:      http.StatusNotFound,
	model.ErrCodeProductNotFound:    http.StatusNotFound,
	model.ErrCodeVoucherNotFound:    http.StatusNotFound,

	model.ErrCodeSlotAlreadyTaken:    http.StatusConflict,
	model.ErrCodeCancellationLate:    http.StatusConflict,
	model.ErrCodeAlreadyCancelled:    http.StatusConflict,
	model.ErrCodeInvalidTransition:   http.StatusConflict,
	model.ErrCodeInsufficientStock:   http.StatusConflict,
	model.ErrCodeNothingToRefund:     http.StatusConflict,
	model.ErrCodeEventAlreadyHandled: http.StatusConflict,

	model.ErrCodeVoucherExpired:      http.StatusUnprocessableEntity,
	model.ErrCodeVoucherUsed:         http.StatusUnprocessableEntity,
	model.ErrCodeVoucherInsufficient: http.StatusUnprocessableEntity,
	model.ErrCodeVoucherNotUsable:    http.StatusUnprocessableEntity,
	model.ErrCodeInsufficientPoints:  http.StatusUnprocessableEntity,

	model.ErrCodePaymentDeclined:     http.StatusPaymentRequired,
	model.ErrCodeProcessingError:     http.StatusBadGateway,
	model.ErrCodeUnknownIntentStatus: http.StatusBadGateway,
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Too late to change the status; nothing useful to do here.
		return
	}
}

// writeError writes a coded error response.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Warn().Str("code", code).Int("status", status).Msg(message)
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// writeDomainError translates a service error into the right status and body.
// Unknown errors become an opaque 500, never leaking internals.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		status, ok := statusByCode[domainErr.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		logger.Warn().Str("code", domainErr.Code).Int("status", status).Msg(domainErr.Message)
		writeJSON(w, status, model.ErrorResponse{
			Error:   domainErr.Code,
			Message: domainErr.Message,
			Fields:  domainErr.Fields,
		})
		return
	}

	var transitionErr *model.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		writeError(w, http.StatusConflict, transitionErr.DomainCode(), transitionErr.Error(), logger)
		return
	}

	var stockErr *stock.InsufficientStockError
	if errors.As(err, &stockErr) {
		logger.Warn().Int("shortages", len(stockErr.Shortages)).Msg("insufficient stock")
		writeJSON(w, http.StatusConflict, struct {
			model.ErrorResponse
			Shortages []stock.Shortage `json:"shortages"`
		}{
			ErrorResponse: model.ErrorResponse{
				Error:   stockErr.DomainCode(),
				Message: stockErr.Error(),
			},
			Shortages: stockErr.Shortages,
		})
		return
	}

	logger.Error().Err(err).Msg("unhandled service error")
	writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
		Error:   model.ErrCodeInternalError,
		Message: "An internal error occurred",
	})
}

// decodeJSON parses a request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return model.NewDomainError(model.ErrCodeInvalidJSON, "Request body is not valid JSON")
	}
	return nil
}
