// Package handler wires the user endpoints to the user service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"newsdesk/internal/user/models"
	"newsdesk/internal/user/service"
	id "newsdesk/pkg/domain"
	dErrors "newsdesk/pkg/domain-errors"
	"newsdesk/pkg/platform/httputil"
	"newsdesk/pkg/requestcontext"
)

// Service defines the user operations the handler exposes.
type Service interface {
	List(ctx context.Context, tenantID *id.TenantID, filter models.UserFilter) ([]*models.UserDetails, int, error)
	Get(ctx context.Context, userID id.UserID) (*models.UserDetails, error)
	Create(ctx context.Context, input service.CreateUserInput) (*models.UserDetails, error)
	Update(ctx context.Context, userID id.UserID, input service.UpdateUserInput) (*models.UserDetails, error)
	Delete(ctx context.Context, userID id.UserID) error
}

// Handler serves the user endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a user handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the user endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/users", h.HandleList)
	r.Post("/users", h.HandleCreate)
	r.Get("/users/{uuid}", h.HandleGet)
	r.Put("/users/{uuid}", h.HandleUpdate)
	r.Delete("/users/{uuid}", h.HandleDelete)
}

// HandleList handles GET /users. tenant_uuid narrows the listing for
// super-admins.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var tenantID *id.TenantID
	if raw := r.URL.Query().Get("tenant_uuid"); raw != "" {
		parsed, err := id.ParseTenantID(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "Tenant not found"))
			return
		}
		tenantID = &parsed
	}

	filter := models.UserFilter{
		Search:  r.URL.Query().Get("search"),
		Page:    httputil.QueryInt(r, "page", 1),
		PerPage: httputil.QueryInt(r, "per_page", 15),
	}
	users, total, err := h.service.List(ctx, tenantID, filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	filter.Normalize()
	httputil.WriteList(w, "Users retrieved successfully", users, httputil.NewMeta(filter.Page, filter.PerPage, total))
}

// HandleGet handles GET /users/{uuid}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromPath(w, r)
	if !ok {
		return
	}
	details, err := h.service.Get(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "User retrieved successfully", details)
}

// HandleCreate handles POST /users.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateUserRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	details, err := h.service.Create(ctx, service.CreateUserInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		IsSuperAdmin: req.IsSuperAdmin,
		TenantID:     req.ParsedTenantID(),
		Role:         req.ParsedRole(),
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusCreated, "User created successfully", details)
}

// HandleUpdate handles PUT /users/{uuid}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID, ok := userIDFromPath(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateUserRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	details, err := h.service.Update(ctx, userID, service.UpdateUserInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		IsSuperAdmin: req.IsSuperAdmin,
		TenantID:     req.ParsedTenantID(),
		Role:         req.ParsedRole(),
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "User updated successfully", details)
}

// HandleDelete handles DELETE /users/{uuid}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromPath(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), userID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "User deleted successfully", nil)
}

func userIDFromPath(w http.ResponseWriter, r *http.Request) (id.UserID, bool) {
	userID, err := id.ParseUserID(chi.URLParam(r, "uuid"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "User not found"))
		return id.UserID{}, false
	}
	return userID, true
}
