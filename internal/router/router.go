package router

import (
	"net/http"
	"strings"

	"glowdesk/internal/auth"
	"glowdesk/internal/handler"
	"glowdesk/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates the HTTP router with all routes and middleware configured.
func New(
	bookingHandler *handler.BookingHandler,
	orderHandler *handler.OrderHandler,
	webhookHandler *handler.WebhookHandler,
	loyaltyHandler *handler.LoyaltyHandler,
	reportHandler *handler.ReportHandler,
	apiKey string,
	issuer *auth.TokenIssuer,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Appointment routes: collection POST, then {id} and {id}/<action>.
	appointmentRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/appointments" || r.URL.Path == "/api/appointments/" {
			bookingHandler.Create(w, r)
			return
		}

		switch {
		case strings.HasSuffix(r.URL.Path, "/cancel"):
			bookingHandler.Cancel(w, r)
		case strings.HasSuffix(r.URL.Path, "/confirm"):
			bookingHandler.Confirm(w, r)
		case strings.HasSuffix(r.URL.Path, "/complete"):
			bookingHandler.Complete(w, r)
		case strings.HasSuffix(r.URL.Path, "/no-show"):
			bookingHandler.NoShow(w, r)
		default:
			bookingHandler.GetByID(w, r)
		}
	}
	mux.HandleFunc("/api/appointments", appointmentRouteHandler)
	mux.HandleFunc("/api/appointments/", appointmentRouteHandler)

	// Order routes: collection POST, {id} GET, {id}/refund and
	// {id}/transition POST.
	orderRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/orders" || r.URL.Path == "/api/orders/" {
			orderHandler.Create(w, r)
			return
		}

		switch {
		case strings.HasSuffix(r.URL.Path, "/refund"):
			orderHandler.Refund(w, r)
		case strings.HasSuffix(r.URL.Path, "/transition"):
			orderHandler.Transition(w, r)
		default:
			orderHandler.GetByID(w, r)
		}
	}
	mux.HandleFunc("/api/orders", orderRouteHandler)
	mux.HandleFunc("/api/orders/", orderRouteHandler)

	// Payment provider webhook, authenticated by payload signature.
	mux.HandleFunc("/api/webhooks/payment", webhookHandler.HandlePaymentEvent)

	// Customer loyalty view.
	mux.HandleFunc("/api/loyalty/", loyaltyHandler.Summary)

	// Admin routes carry their own JWT check on top of the API key.
	adminMux := http.NewServeMux()
	adminMux.HandleFunc("/api/admin/reports/stock.csv", reportHandler.StockCSV)
	mux.Handle("/api/admin/", middleware.JWTAuth(issuer, logger)(adminMux))

	// Apply middleware in order: Recovery -> Logging -> CORS -> APIKeyAuth
	var h http.Handler = mux
	h = middleware.APIKeyAuth(apiKey, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
