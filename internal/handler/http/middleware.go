package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/tomasherrera27/crypto-mart/pkg/httputil"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

// sessionIDKey is the context key for the storefront session ID.
const sessionIDKey contextKey = "session_id"

// SessionIDFromHeader is middleware that reads the X-Session-ID header
// identifying the browsing session and stores it in the request context.
// If the header is absent the request is rejected.
func SessionIDFromHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := r.Header.Get("X-Session-ID")
		if sid == "" {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "X-Session-ID header is required"},
			})
			return
		}
		ctx := context.WithValue(r.Context(), sessionIDKey, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionIDFromContext extracts the session ID from the request context.
func sessionIDFromContext(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(sessionIDKey).(string)
	return sid, ok && sid != ""
}

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{Code: "UNSUPPORTED_MEDIA_TYPE", Message: "Content-Type must be application/json"},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
