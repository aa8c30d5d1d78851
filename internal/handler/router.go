package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"github.com/propex/propex/internal/service"
)

// RouterDeps bundles the services the router needs.
type RouterDeps struct {
	AccountSvc   *service.AccountService
	OrderSvc     *service.OrderService
	PortfolioSvc *service.PortfolioService
	PropertySvc  *service.PropertyService
	WatchlistSvc *service.WatchlistService
	WebhookSvc   *service.WebhookService
}

// NewRouter creates a chi router with all routes registered, CORS, request
// logging, and Content-Type validation middleware.
func NewRouter(deps RouterDeps, corsOrigins []string, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(cors.New(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler)
	r.Use(requestLogging(logger))
	r.Use(contentTypeJSON)

	// Create handlers.
	accountH := NewAccountHandler(deps.AccountSvc, deps.PortfolioSvc, deps.OrderSvc)
	orderH := NewOrderHandler(deps.OrderSvc)
	propertyH := NewPropertyHandler(deps.PropertySvc)
	watchlistH := NewWatchlistHandler(deps.WatchlistSvc)
	webhookH := NewWebhookHandler(deps.WebhookSvc)

	// Health check.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Account routes.
	r.Post("/accounts", accountH.OpenAccount)
	r.Get("/accounts/{user_id}", accountH.GetAccount)
	r.Post("/accounts/{user_id}/funds", accountH.AdjustFunds)
	r.Get("/accounts/{user_id}/portfolio", accountH.GetPortfolio)
	r.Get("/accounts/{user_id}/orders", accountH.ListOrders)

	// Watchlist routes.
	r.Post("/accounts/{user_id}/watchlist", watchlistH.Add)
	r.Get("/accounts/{user_id}/watchlist", watchlistH.List)
	r.Delete("/accounts/{user_id}/watchlist/{property_id}", watchlistH.Remove)

	// Order routes.
	r.Post("/orders", orderH.PlaceOrder)
	r.Get("/orders/{order_id}", orderH.GetOrder)
	r.Delete("/orders/{order_id}", orderH.CancelOrder)

	// Property routes.
	r.Get("/properties", propertyH.ListProperties)
	r.Get("/properties/{property_id}", propertyH.GetProperty)
	r.Get("/properties/{property_id}/depth", propertyH.GetDepth)
	r.Get("/properties/{property_id}/trades", propertyH.ListTrades)

	// Webhook routes.
	r.Post("/webhooks", webhookH.Upsert)
	r.Get("/webhooks", webhookH.List)
	r.Delete("/webhooks/{webhook_id}", webhookH.Delete)

	return r
}

// requestLogging returns middleware that logs each request's method, path,
// status code, and duration using slog.
func requestLogging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// contentTypeJSON is middleware that validates Content-Type for POST, PUT,
// and PATCH requests before the handler runs.
func contentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct == "" || !strings.HasPrefix(ct, "application/json") {
				WriteError(w, http.StatusBadRequest, "invalid_request",
					"Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
