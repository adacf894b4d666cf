// Package mediaassets serves the public and admin media asset endpoints.
package mediaassets

import (
	"context"
	"net/http"
	"strings"

	errorsfeature "github.com/dalemusser/stratacms/internal/app/features/errors"
	mediaassetstore "github.com/dalemusser/stratacms/internal/app/store/mediaassets"
	"github.com/dalemusser/stratacms/internal/app/system/i18n"
	"github.com/dalemusser/stratacms/internal/app/system/jsonutil"
	"github.com/dalemusser/stratacms/internal/app/system/queryparams"
	"github.com/dalemusser/stratacms/internal/app/system/timeouts"
	"github.com/dalemusser/stratacms/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler handles media asset HTTP requests.
type Handler struct {
	store   *mediaassetstore.Store
	uploads UploadConfig
	errLog  *errorsfeature.ErrorLogger
	logger  *zap.Logger
}

// NewHandler creates a new media asset handler.
func NewHandler(store *mediaassetstore.Store, uploads UploadConfig, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	if uploads.Provider == "" {
		uploads.Provider = models.MediaProviderOther
	}
	if uploads.MaxBytes <= 0 {
		uploads.MaxBytes = DefaultMaxUploadBytes
	}
	return &Handler{
		store:   store,
		uploads: uploads,
		errLog:  errLog,
		logger:  logger,
	}
}

type assetRequest struct {
	Slug      *string    `json:"slug"`
	Kind      *string    `json:"kind"`
	Provider  *string    `json:"provider"`
	URL       *string    `json:"url"`
	PublicID  *string    `json:"publicId"`
	Folder    *string    `json:"folder"`
	Format    *string    `json:"format"`
	Width     *int       `json:"width"`
	Height    *int       `json:"height"`
	Bytes     *int64     `json:"bytes"`
	Alt       *i18n.Text `json:"alt_i18n"`
	Caption   *i18n.Text `json:"caption_i18n"`
	Tags      *[]string  `json:"tags"`
	SortOrder *int       `json:"sortOrder"`
	IsActive  *bool      `json:"isActive"`
}

func (req assetRequest) missingRequired() bool {
	return req.Kind == nil || strings.TrimSpace(*req.Kind) == "" ||
		req.URL == nil || strings.TrimSpace(*req.URL) == "" ||
		req.SortOrder == nil
}

func (req assetRequest) createInput() mediaassetstore.CreateInput {
	in := mediaassetstore.CreateInput{
		Kind:      deref(req.Kind),
		URL:       deref(req.URL),
		Slug:      deref(req.Slug),
		Provider:  deref(req.Provider),
		PublicID:  deref(req.PublicID),
		Folder:    deref(req.Folder),
		Format:    deref(req.Format),
		Width:     req.Width,
		Height:    req.Height,
		Bytes:     req.Bytes,
		SortOrder: *req.SortOrder,
		IsActive:  req.IsActive,
	}
	if req.Alt != nil {
		in.Alt = *req.Alt
	}
	if req.Caption != nil {
		in.Caption = *req.Caption
	}
	if req.Tags != nil {
		in.Tags = *req.Tags
	}
	return in
}

func (req assetRequest) updateInput() mediaassetstore.UpdateInput {
	return mediaassetstore.UpdateInput{
		Slug:      req.Slug,
		Kind:      req.Kind,
		Provider:  req.Provider,
		URL:       req.URL,
		PublicID:  req.PublicID,
		Folder:    req.Folder,
		Format:    req.Format,
		Width:     req.Width,
		Height:    req.Height,
		Bytes:     req.Bytes,
		Alt:       req.Alt,
		Caption:   req.Caption,
		Tags:      req.Tags,
		SortOrder: req.SortOrder,
		IsActive:  req.IsActive,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// listOptions builds store options from the query string. The admin tier
// may include inactive assets and pin isActive.
func listOptions(r *http.Request, admin bool) mediaassetstore.ListOptions {
	q := r.URL.Query()
	opts := mediaassetstore.ListOptions{
		Page:     queryparams.PageFromRequest(r),
		Q:        query.Search(r, "q"),
		Kind:     queryparams.Enum(q.Get("kind"), models.MediaKinds),
		Provider: queryparams.Enum(q.Get("provider"), models.MediaProviders),
		Tag:      query.Get(r, "tag"),
	}
	if admin {
		opts.IncludeInactive = true
		opts.Active = queryparams.Bool(q.Get("isActive"))
	}
	return opts
}

// ListPublic handles GET /api/media-assets.
func (h *Handler) ListPublic(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

// ListAdmin handles GET /api/media-assets/admin.
func (h *Handler) ListAdmin(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, admin bool) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.store.List(ctx, listOptions(r, admin))
	if err != nil {
		h.errLog.Internal(w, r, "failed to list media assets", err)
		return
	}

	loc := i18n.FromRequest(r)
	jsonutil.OK(w, jsonutil.Page[models.MediaAssetView]{
		Items: i18n.LocalizeList(res.Items, loc, models.MediaAsset.Localized),
		Total: res.Total,
		Page:  res.Page,
		Limit: res.Limit,
	})
}

// GetPublic handles GET /api/media-assets/{id}. Inactive assets are hidden.
func (h *Handler) GetPublic(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, false)
}

// GetAdmin handles GET /api/media-assets/admin/{id}.
func (h *Handler) GetAdmin(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, true)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request, admin bool) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, err := h.store.GetByIDOrSlug(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.errLog.Internal(w, r, "failed to load media asset", err)
		return
	}
	if a == nil || (!admin && !a.IsActive) {
		jsonutil.NotFound(w, "not found")
		return
	}
	jsonutil.OK(w, a.Localized(i18n.FromRequest(r)))
}

// Create handles POST /api/media-assets.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req assetRequest
	if err := jsonutil.Decode(w, r, &req); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	if req.missingRequired() {
		jsonutil.BadRequest(w, "kind, url, sortOrder are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	a, err := h.store.Create(ctx, req.createInput())
	if err != nil {
		h.errLog.StoreError(w, r, "failed to create media asset", err)
		return
	}

	h.logger.Info("media asset created",
		zap.String("id", a.ID.Hex()),
		zap.String("slug", a.Slug))
	jsonutil.Created(w, a)
}

// Update handles PATCH /api/media-assets/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req assetRequest
	if err := jsonutil.Decode(w, r, &req); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	a, err := h.store.Update(ctx, chi.URLParam(r, "id"), req.updateInput())
	if err != nil {
		h.errLog.StoreError(w, r, "failed to update media asset", err)
		return
	}
	if a == nil {
		jsonutil.NotFound(w, "not found")
		return
	}
	jsonutil.OK(w, a)
}

// Delete handles DELETE /api/media-assets/{id}. Uploaded objects are
// removed from storage after the document is gone.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, err := h.store.Delete(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.errLog.Internal(w, r, "failed to delete media asset", err)
		return
	}
	if a == nil {
		jsonutil.NotFound(w, "not found")
		return
	}

	h.removeObject(ctx, *a)
	h.logger.Info("media asset deleted",
		zap.String("id", a.ID.Hex()),
		zap.String("slug", a.Slug))
	jsonutil.Done(w)
}
