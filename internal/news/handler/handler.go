// Package handler wires the news endpoints to the news service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"newsdesk/internal/news/models"
	"newsdesk/internal/news/service"
	id "newsdesk/pkg/domain"
	dErrors "newsdesk/pkg/domain-errors"
	"newsdesk/pkg/platform/httputil"
	"newsdesk/pkg/requestcontext"
)

// Service defines the news operations the handler exposes.
type Service interface {
	List(ctx context.Context, tenantRef string, filter models.NewsFilter) ([]*models.NewsDetails, int, error)
	Get(ctx context.Context, newsID id.NewsID) (*models.NewsDetails, error)
	Create(ctx context.Context, input service.CreateNewsInput) (*models.NewsDetails, error)
	Update(ctx context.Context, newsID id.NewsID, input service.UpdateNewsInput) (*models.NewsDetails, error)
	Delete(ctx context.Context, newsID id.NewsID) error
}

// Handler serves the news endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a news handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the news endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/news", h.HandleList)
	r.Post("/news", h.HandleCreate)
	r.Get("/news/{uuid}", h.HandleGet)
	r.Put("/news/{uuid}", h.HandleUpdate)
	r.Delete("/news/{uuid}", h.HandleDelete)
}

// HandleList handles GET /news.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	filter := models.NewsFilter{
		Search:  query.Get("search"),
		Page:    httputil.QueryInt(r, "page", 1),
		PerPage: httputil.QueryInt(r, "per_page", 15),
	}
	if raw := query.Get("author_uuid"); raw != "" {
		// An unresolvable author is ignored, like the tenant reference.
		if authorID, err := id.ParseUserID(raw); err == nil {
			filter.AuthorID = authorID
		}
	}
	if raw := query.Get("status"); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter.Status = status
	}

	articles, total, err := h.service.List(ctx, query.Get("tenant_uuid"), filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	filter.Normalize()
	httputil.WriteList(w, "News retrieved successfully", articles, httputil.NewMeta(filter.Page, filter.PerPage, total))
}

// HandleGet handles GET /news/{uuid}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	newsID, ok := newsIDFromPath(w, r)
	if !ok {
		return
	}
	details, err := h.service.Get(r.Context(), newsID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "News retrieved successfully", details)
}

// HandleCreate handles POST /news.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateNewsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	details, err := h.service.Create(ctx, service.CreateNewsInput{
		Title:     req.Title,
		Content:   req.Content,
		Status:    req.Status,
		TenantRef: req.TenantUUID,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusCreated, "News created successfully", details)
}

// HandleUpdate handles PUT /news/{uuid}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	newsID, ok := newsIDFromPath(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateNewsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	details, err := h.service.Update(ctx, newsID, service.UpdateNewsInput{
		Title:   req.Title,
		Content: req.Content,
		Status:  req.Status,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "News updated successfully", details)
}

// HandleDelete handles DELETE /news/{uuid}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	newsID, ok := newsIDFromPath(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), newsID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "News deleted successfully", nil)
}

func newsIDFromPath(w http.ResponseWriter, r *http.Request) (id.NewsID, bool) {
	newsID, err := id.ParseNewsID(chi.URLParam(r, "uuid"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "News not found"))
		return id.NewsID{}, false
	}
	return newsID, true
}
