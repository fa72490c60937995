package storefront

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// Error codes returned by Middleware.
const (
	CodeInvalidContext     = "invalid_widget_context"
	CodeVersionUnsupported = "widget_version_unsupported"
	CodeStoreMismatch      = "store_mismatch"
)

// PathPrefix is the route prefix the middleware guards.
const PathPrefix = "/api/storefront/"

type contextKey struct{}

// Options configures Middleware.
type Options struct {
	StoreHash        string // requests naming another store are rejected
	MinWidgetVersion string // "" disables the version gate
}

// Middleware parses Widget-Context on storefront routes, rejects stale
// bundles and foreign stores, and stores the parsed context for handlers.
// Other paths pass through untouched.
func Middleware(opts Options, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, PathPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			wc, err := ParseHeader(r.Header.Get(HeaderName))
			if err != nil {
				logger.WarnContext(r.Context(), "invalid widget context",
					slog.String("header", r.Header.Get(HeaderName)),
					slog.String("error", err.Error()))
				writeError(w, http.StatusBadRequest, CodeInvalidContext, err.Error())
				return
			}

			if !VersionSupported(wc.Version, opts.MinWidgetVersion) {
				writeError(w, http.StatusUpgradeRequired, CodeVersionUnsupported,
					"widget version "+wc.Version+" is older than the minimum "+opts.MinWidgetVersion)
				return
			}

			if wc.Store != "" && opts.StoreHash != "" && !strings.EqualFold(wc.Store, opts.StoreHash) {
				writeError(w, http.StatusBadRequest, CodeStoreMismatch,
					"widget context names a different store")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), wc)))
		})
	}
}

// WithContext returns ctx carrying wc.
func WithContext(ctx context.Context, wc *WidgetContext) context.Context {
	return context.WithValue(ctx, contextKey{}, wc)
}

// FromContext returns the parsed widget context, or nil when the request
// did not pass through Middleware.
func FromContext(ctx context.Context) *WidgetContext {
	wc, _ := ctx.Value(contextKey{}).(*WidgetContext)
	return wc
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}{}
	resp.Error.Code = code
	resp.Error.Message = message
	json.NewEncoder(w).Encode(resp)
}
