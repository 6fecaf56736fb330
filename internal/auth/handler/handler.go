// Package handler wires the authentication endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"newsdesk/internal/auth/service"
	"newsdesk/internal/identity"
	usermodels "newsdesk/internal/user/models"
	id "newsdesk/pkg/domain"
	dErrors "newsdesk/pkg/domain-errors"
	"newsdesk/pkg/platform/httputil"
	"newsdesk/pkg/requestcontext"
)

// Service defines the authentication operations.
type Service interface {
	Login(ctx context.Context, emailAddr, password string) (*service.LoginResult, error)
	Logout(ctx context.Context, tokenString string) error
	Refresh(ctx context.Context, tokenString string) (*service.LoginResult, error)
}

// UserReader loads the caller's own profile for /me.
type UserReader interface {
	Get(ctx context.Context, userID id.UserID) (*usermodels.UserDetails, error)
}

// Handler serves the authentication endpoints.
type Handler struct {
	service Service
	users   UserReader
	logger  *slog.Logger
}

// New constructs an auth handler.
func New(service Service, users UserReader, logger *slog.Logger) *Handler {
	return &Handler{service: service, users: users, logger: logger}
}

// RegisterPublic mounts the endpoints that work without a valid session:
// login, and refresh, which must accept expired-but-refreshable tokens.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/login", h.HandleLogin)
	r.Post("/refresh", h.HandleRefresh)
}

// RegisterProtected mounts the endpoints behind the auth middleware.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/logout", h.HandleLogout)
	r.Get("/me", h.HandleMe)
}

// HandleLogin handles POST /login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "Login successful", result)
}

// HandleLogout handles POST /logout.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	tokenString, ok := bearerToken(r)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Unauthenticated"))
		return
	}
	if err := h.service.Logout(r.Context(), tokenString); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "Logout successful", nil)
}

// HandleRefresh handles POST /refresh.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	tokenString, ok := bearerToken(r)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Unauthenticated"))
		return
	}
	result, err := h.service.Refresh(r.Context(), tokenString)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "Token refreshed", result)
}

// HandleMe handles GET /me.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subject, ok := identity.FromContext(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Unauthenticated"))
		return
	}

	details, err := h.users.Get(ctx, subject.UserID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "User data retrieved", details)
}

func bearerToken(r *http.Request) (string, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return token, ok && token != ""
}
