package handler

import (
	"context"
	"net/http"
	"strings"

	"glowdesk/internal/model"
	"glowdesk/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BookingHandler handles appointment-related HTTP requests.
type BookingHandler struct {
	service service.BookingService
	logger  zerolog.Logger
}

// NewBookingHandler creates a new booking handler.
func NewBookingHandler(service service.BookingService, logger zerolog.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		logger:  logger.With().Str("handler", "booking").Logger(),
	}
}

// Create handles POST /api/appointments requests.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeValidation, "method not allowed", h.logger)
		return
	}

	var req model.AppointmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	appt, err := h.service.CreateAppointment(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, appt)
}

// GetByID handles GET /api/appointments/{id} requests.
func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeValidation, "method not allowed", h.logger)
		return
	}

	id, ok := h.appointmentID(w, r)
	if !ok {
		return
	}

	appt, err := h.service.GetAppointment(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}
	if appt == nil {
		writeError(w, http.StatusNotFound, model.ErrCodeAppointmentMissing, "appointment not found", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, appt)
}

// Cancel handles POST /api/appointments/{id}/cancel requests.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeValidation, "method not allowed", h.logger)
		return
	}

	id, ok := h.appointmentID(w, r)
	if !ok {
		return
	}

	req := model.CancelRequest{Actor: model.CancelledByCustomer}
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeDomainError(w, err, h.logger)
			return
		}
	}
	if req.Actor != model.CancelledByCustomer && req.Actor != model.CancelledByAdmin {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "actor must be customer or admin", h.logger)
		return
	}

	appt, err := h.service.CancelAppointment(r.Context(), id, req.Actor)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, appt)
}

// Confirm handles POST /api/appointments/{id}/confirm requests.
func (h *BookingHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.ConfirmAppointment)
}

// Complete handles POST /api/appointments/{id}/complete requests.
func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.CompleteAppointment)
}

// NoShow handles POST /api/appointments/{id}/no-show requests.
func (h *BookingHandler) NoShow(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.MarkNoShow)
}

func (h *BookingHandler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id uuid.UUID) (*model.Appointment, error)) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeValidation, "method not allowed", h.logger)
		return
	}

	id, ok := h.appointmentID(w, r)
	if !ok {
		return
	}

	appt, err := op(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, appt)
}

// appointmentID extracts and parses the {id} path segment.
func (h *BookingHandler) appointmentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/appointments/")
	idStr := rest
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		idStr = rest[:i]
	}
	if idStr == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "appointment ID is required", h.logger)
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "invalid appointment ID format", h.logger)
		return uuid.Nil, false
	}
	return id, true
}
