package scope

import (
	"log/slog"
	"net/http"

	"newsdesk/internal/identity"
	"newsdesk/pkg/platform/httputil"
	"newsdesk/pkg/requestcontext"
)

// TenantHeader and TenantQueryParam are the explicit tenant reference inputs.
// The header wins when both are present.
const (
	TenantHeader     = "X-Tenant-UUID"
	TenantQueryParam = "tenant_uuid"
)

// Middleware resolves the active tenant once per request and stores it in
// context. Must run after authentication.
func Middleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			subject, ok := identity.FromContext(ctx)
			if !ok {
				// RequireAuth did not run; treat as unauthenticated.
				httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Envelope{
					Success: false,
					Message: "Unauthenticated",
				})
				return
			}

			explicit := r.Header.Get(TenantHeader)
			if explicit == "" {
				explicit = r.URL.Query().Get(TenantQueryParam)
			}

			access, err := Resolve(subject, explicit)
			if err != nil {
				logger.WarnContext(ctx, "tenant scope rejected",
					"error", err,
					"user_id", subject.UserID,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAccess(ctx, access)))
		})
	}
}
