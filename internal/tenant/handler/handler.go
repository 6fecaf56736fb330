// Package handler wires the tenant endpoints to the tenant service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"newsdesk/internal/tenant/models"
	"newsdesk/internal/tenant/service"
	id "newsdesk/pkg/domain"
	dErrors "newsdesk/pkg/domain-errors"
	"newsdesk/pkg/platform/httputil"
	"newsdesk/pkg/requestcontext"
)

// Service defines the tenant operations the handler exposes.
type Service interface {
	List(ctx context.Context, filter models.TenantFilter) ([]*models.Tenant, int, error)
	Get(ctx context.Context, tenantID id.TenantID) (*models.TenantDetails, error)
	Create(ctx context.Context, input service.CreateTenantInput) (*models.Tenant, error)
	Update(ctx context.Context, tenantID id.TenantID, input service.UpdateTenantInput) (*models.Tenant, error)
	Delete(ctx context.Context, tenantID id.TenantID) error
	AttachUser(ctx context.Context, tenantID id.TenantID, userID id.UserID, role id.Role) (*models.TenantDetails, error)
	DetachUser(ctx context.Context, tenantID id.TenantID, userID id.UserID) (*models.TenantDetails, error)
}

// Handler serves the tenant endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a tenant handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the tenant endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/tenants", h.HandleList)
	r.Post("/tenants", h.HandleCreate)
	r.Get("/tenants/{uuid}", h.HandleGet)
	r.Put("/tenants/{uuid}", h.HandleUpdate)
	r.Delete("/tenants/{uuid}", h.HandleDelete)
	r.Post("/tenants/{uuid}/users", h.HandleAttachUser)
	r.Delete("/tenants/{uuid}/users/{user_uuid}", h.HandleDetachUser)
}

// HandleList handles GET /tenants.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter := models.TenantFilter{
		Search:  r.URL.Query().Get("search"),
		Page:    httputil.QueryInt(r, "page", 1),
		PerPage: httputil.QueryInt(r, "per_page", 15),
	}
	tenants, total, err := h.service.List(ctx, filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	filter.Normalize()
	httputil.WriteList(w, "Tenants retrieved successfully", tenants, httputil.NewMeta(filter.Page, filter.PerPage, total))
}

// HandleGet handles GET /tenants/{uuid}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantIDFromPath(w, r)
	if !ok {
		return
	}
	details, err := h.service.Get(r.Context(), tenantID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "Tenant retrieved successfully", details)
}

// HandleCreate handles POST /tenants.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateTenantRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	tenant, err := h.service.Create(ctx, service.CreateTenantInput{Name: req.Name, Domain: req.Domain})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusCreated, "Tenant created successfully", tenant)
}

// HandleUpdate handles PUT /tenants/{uuid}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	tenantID, ok := tenantIDFromPath(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateTenantRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	tenant, err := h.service.Update(ctx, tenantID, service.UpdateTenantInput{Name: req.Name, Domain: req.Domain})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "Tenant updated successfully", tenant)
}

// HandleDelete handles DELETE /tenants/{uuid}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantIDFromPath(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), tenantID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "Tenant deleted successfully", nil)
}

// HandleAttachUser handles POST /tenants/{uuid}/users.
func (h *Handler) HandleAttachUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	tenantID, ok := tenantIDFromPath(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AttachUserRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	details, err := h.service.AttachUser(ctx, tenantID, req.ParsedUserID(), req.ParsedRole())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "User added to tenant successfully", details)
}

// HandleDetachUser handles DELETE /tenants/{uuid}/users/{user_uuid}.
func (h *Handler) HandleDetachUser(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantIDFromPath(w, r)
	if !ok {
		return
	}
	userID, err := id.ParseUserID(chi.URLParam(r, "user_uuid"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "User not found"))
		return
	}

	details, err := h.service.DetachUser(r.Context(), tenantID, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "User removed from tenant successfully", details)
}

func tenantIDFromPath(w http.ResponseWriter, r *http.Request) (id.TenantID, bool) {
	tenantID, err := id.ParseTenantID(chi.URLParam(r, "uuid"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "Tenant not found"))
		return id.TenantID{}, false
	}
	return tenantID, true
}
