package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"newsdesk/pkg/requestcontext"
)

// RequestIDHeader carries a caller-supplied correlation id. A fresh UUID is
// generated when absent.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns every request a correlation id, echoes it on the
// response, and stores it in context for log lines.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
