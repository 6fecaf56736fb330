// Package handler wires the activity log read endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"newsdesk/internal/activitylog/models"
	id "newsdesk/pkg/domain"
	dErrors "newsdesk/pkg/domain-errors"
	"newsdesk/pkg/platform/httputil"
)

// Service defines the activity log read operations.
type Service interface {
	List(ctx context.Context, filter models.EntryFilter) ([]*models.Entry, int, error)
	GetByID(ctx context.Context, logID id.LogID) (*models.Entry, error)
}

// Handler serves the activity log endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an activity log handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the log endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/logs", h.HandleList)
	r.Get("/logs/{uuid}", h.HandleGet)
}

// HandleList handles GET /logs.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	filter := models.EntryFilter{
		Page:    httputil.QueryInt(r, "page", 1),
		PerPage: httputil.QueryInt(r, "per_page", 20),
	}
	if raw := query.Get("tenant_uuid"); raw != "" {
		tenantID, err := id.ParseTenantID(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "Tenant not found"))
			return
		}
		filter.TenantID = tenantID
	}
	if raw := query.Get("user_uuid"); raw != "" {
		userID, err := id.ParseUserID(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "User not found"))
			return
		}
		filter.ActorID = userID
	}
	if raw := query.Get("log_type"); raw != "" {
		logType, err := models.ParseLogType(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter.LogType = logType
	}
	if raw := query.Get("model_type"); raw != "" {
		kind, err := models.ParseEntityKind(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter.EntityKind = kind
	}

	entries, total, err := h.service.List(ctx, filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	filter.Normalize()
	httputil.WriteList(w, "Activity logs retrieved successfully", entries, httputil.NewMeta(filter.Page, filter.PerPage, total))
}

// HandleGet handles GET /logs/{uuid}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	logID, err := id.ParseLogID(chi.URLParam(r, "uuid"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "Log not found"))
		return
	}
	entry, err := h.service.GetByID(r.Context(), logID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "Activity log retrieved successfully", entry)
}
