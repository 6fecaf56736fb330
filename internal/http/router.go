// Package httpapi assembles the HTTP surface: middleware chain, public auth
// endpoints, and the tenant-scoped API routes.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	loghandler "newsdesk/internal/activitylog/handler"
	authhandler "newsdesk/internal/auth/handler"
	"newsdesk/internal/identity"
	newshandler "newsdesk/internal/news/handler"
	"newsdesk/internal/platform/metrics"
	"newsdesk/internal/platform/middleware"
	"newsdesk/internal/scope"
	tenanthandler "newsdesk/internal/tenant/handler"
	userhandler "newsdesk/internal/user/handler"
	"newsdesk/pkg/platform/middleware/metadata"
	"newsdesk/pkg/platform/middleware/requesttime"
)

// Deps carries everything the router mounts.
type Deps struct {
	Auth        *authhandler.Handler
	Tenants     *tenanthandler.Handler
	Users       *userhandler.Handler
	News        *newshandler.Handler
	Logs        *loghandler.Handler
	Validator   middleware.TokenValidator
	Revocations middleware.RevocationChecker
	Resolver    identity.Resolver
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
}

// NewRouter builds the chi router with the full middleware chain. The auth
// surface stays outside the tenant scope; everything else requires a
// resolved tenant (or the super-admin global view).
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing())
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(middleware.RequestLogger(deps.Logger, deps.Metrics))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		deps.Auth.RegisterPublic(api)

		api.Group(func(protected chi.Router) {
			protected.Use(middleware.RequireAuth(deps.Validator, deps.Revocations, deps.Resolver, deps.Logger))
			deps.Auth.RegisterProtected(protected)

			protected.Group(func(scoped chi.Router) {
				scoped.Use(scope.Middleware(deps.Logger))
				deps.News.Register(scoped)
				deps.Tenants.Register(scoped)
				deps.Users.Register(scoped)
				deps.Logs.Register(scoped)
			})
		})
	})

	return r
}
