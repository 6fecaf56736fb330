package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"newsdesk/internal/identity"
	id "newsdesk/pkg/domain"
	dErrors "newsdesk/pkg/domain-errors"
	"newsdesk/pkg/platform/httputil"
	"newsdesk/pkg/requestcontext"
)

// TokenValidator validates a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (*TokenClaims, error)
}

// RevocationChecker reports whether a token id has been revoked (logout).
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// TokenClaims are the claims the auth middleware consumes.
type TokenClaims struct {
	UserID string
	JTI    string
}

// RequireAuth validates the bearer token, checks revocation, loads the
// subject with its memberships, and stores both the user id and the subject
// in the request context. Requests without a valid token get 401.
func RequireAuth(validator TokenValidator, revocation RevocationChecker, resolver identity.Resolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeUnauthenticated(w, "Unauthenticated")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeUnauthenticated(w, "Invalid or expired token")
				return
			}

			if revocation != nil {
				if claims.JTI == "" {
					logger.WarnContext(ctx, "unauthorized access - missing token jti",
						"request_id", requestID,
					)
					writeUnauthenticated(w, "Invalid or expired token")
					return
				}
				revoked, err := revocation.IsRevoked(ctx, claims.JTI)
				if err != nil {
					logger.ErrorContext(ctx, "failed to check token revocation",
						"error", err,
						"request_id", requestID,
					)
					httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to validate token"))
					return
				}
				if revoked {
					logger.WarnContext(ctx, "unauthorized access - token revoked",
						"jti", claims.JTI,
						"request_id", requestID,
					)
					writeUnauthenticated(w, "Token has been revoked")
					return
				}
			}

			userID, err := id.ParseUserID(claims.UserID)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - malformed subject claim",
					"error", err,
					"request_id", requestID,
				)
				writeUnauthenticated(w, "Invalid or expired token")
				return
			}

			subject, err := resolver.ResolveSubject(ctx, userID)
			if err != nil {
				if dErrors.HasCode(err, dErrors.CodeNotFound) {
					logger.WarnContext(ctx, "unauthorized access - unknown subject",
						"user_id", userID,
						"request_id", requestID,
					)
					writeUnauthenticated(w, "Unauthenticated")
					return
				}
				logger.ErrorContext(ctx, "failed to resolve subject",
					"error", err,
					"user_id", userID,
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve subject"))
				return
			}

			ctx = requestcontext.WithUserID(ctx, userID)
			ctx = identity.WithSubject(ctx, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthenticated(w http.ResponseWriter, message string) {
	httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Envelope{
		Success: false,
		Message: message,
	})
}
