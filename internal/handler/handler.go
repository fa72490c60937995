// Package handler provides HTTP handlers for the storefront widget proxy.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"storefront-widgets/internal/customer"
	"storefront-widgets/internal/model"
	"storefront-widgets/internal/pricing"
	"storefront-widgets/internal/widgets"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	prices    *pricing.Resolver
	customers *customer.Resolver
	widgets   *widgets.Service
	logger    *slog.Logger
}

// New creates a new Handler.
func New(prices *pricing.Resolver, customers *customer.Resolver, svc *widgets.Service, logger *slog.Logger) *Handler {
	return &Handler{
		prices:    prices,
		customers: customers,
		widgets:   svc,
		logger:    logger,
	}
}

// RegisterRoutes registers all HTTP routes with the given ServeMux.
// Uses Go 1.22+ method routing patterns.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Storefront routes, called by the widget bundle
	mux.HandleFunc("GET /api/storefront/pricing", h.handlePricing)
	mux.HandleFunc("GET /api/storefront/customer-context", h.handleCustomerContext)
	mux.HandleFunc("GET /api/storefront/tables/{id}", h.handleStorefrontTable)
	mux.HandleFunc("GET /api/storefront/products", h.handleProducts)

	// Admin routes: record store hooks
	mux.HandleFunc("POST /api/admin/tables", h.handleCreateTable)
	mux.HandleFunc("GET /api/admin/tables", h.handleListTables)
	mux.HandleFunc("GET /api/admin/tables/{id}", h.handleGetTable)
	mux.HandleFunc("PUT /api/admin/tables/{id}", h.handleUpdateTable)
	mux.HandleFunc("DELETE /api/admin/tables/{id}", h.handleDeleteTable)
	mux.HandleFunc("POST /api/admin/widgets", h.handleCreateWidget)
	mux.HandleFunc("GET /api/admin/widgets", h.handleListWidgets)
	mux.HandleFunc("GET /api/admin/widgets/{id}", h.handleGetWidget)
	mux.HandleFunc("PUT /api/admin/widgets/{id}", h.handleUpdateWidget)
	mux.HandleFunc("DELETE /api/admin/widgets/{id}", h.handleDeleteWidget)
	mux.HandleFunc("POST /api/admin/widgets/{id}/migrate", h.handleMigrateWidget)
	mux.HandleFunc("POST /api/admin/install", h.handleInstall)

	// MCP transport - JSON-RPC endpoint using official MCP SDK
	mux.Handle("/mcp", h.NewMCPHandler())

	// Health check
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /healthz", h.handleHealth)
}

// handleHealth returns a simple health check response.
// GET /health, GET /healthz
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

type healthResponse struct {
	Status string `json:"status"`
}

// === Response Helpers ===

// writeJSON sends a JSON response with the given status code.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeError sends an error response, extracting status/code from APIError if present.
// Uses errors.As() to unwrap error chains (e.g., fmt.Errorf wrapping).
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError

	if !errors.As(err, &apiErr) {
		apiErr = &model.APIError{
			Code:       "INTERNAL_ERROR",
			Message:    "an internal error occurred",
			StatusCode: http.StatusInternalServerError,
		}
		h.logger.Error("internal error", slog.String("error", err.Error()))
	} else if apiErr.StatusCode >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			slog.String("code", apiErr.Code),
			slog.String("error", err.Error()))
	}

	h.writeJSON(w, apiErr.StatusCode, errorResponse{
		Error: errorBody{
			Code:    apiErr.Code,
			Message: apiErr.Message,
		},
	})
}

// errorResponse is the JSON structure for error responses.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MaxRequestBodySize limits JSON request bodies to 1MB.
const MaxRequestBodySize = 1 << 20 // 1MB

// decodeJSON reads JSON from request body into v.
// Limits body size to MaxRequestBodySize to prevent memory exhaustion.
// Returns an APIError if decoding fails.
func decodeJSON(r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, MaxRequestBodySize)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// Don't expose internal error details to client
		return model.NewValidationError("body", "invalid JSON")
	}
	return nil
}
