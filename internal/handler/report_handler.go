package handler

import (
	"net/http"

	"glowdesk/internal/model"
	"glowdesk/internal/service"

	"github.com/rs/zerolog"
)

// ReportHandler serves admin reports.
type ReportHandler struct {
	service service.ReportService
	logger  zerolog.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(service service.ReportService, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger.With().Str("handler", "report").Logger(),
	}
}

// StockCSV handles GET /api/admin/reports/stock.csv requests.
func (h *ReportHandler) StockCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeValidation, "method not allowed", h.logger)
		return
	}

	doc, err := h.service.StockCSV(r.Context())
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="lagerbestand.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc); err != nil {
		h.logger.Warn().Err(err).Msg("failed to write csv response")
	}
}
