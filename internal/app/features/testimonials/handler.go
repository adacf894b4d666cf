// Package testimonials serves the public and admin testimonial endpoints.
package testimonials

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	errorsfeature "github.com/dalemusser/stratacms/internal/app/features/errors"
	testimonialstore "github.com/dalemusser/stratacms/internal/app/store/testimonials"
	"github.com/dalemusser/stratacms/internal/app/system/i18n"
	"github.com/dalemusser/stratacms/internal/app/system/jsonutil"
	"github.com/dalemusser/stratacms/internal/app/system/queryparams"
	"github.com/dalemusser/stratacms/internal/app/system/timeouts"
	"github.com/dalemusser/stratacms/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler handles testimonial HTTP requests.
type Handler struct {
	store  *testimonialstore.Store
	errLog *errorsfeature.ErrorLogger
	logger *zap.Logger
}

// NewHandler creates a new testimonial handler.
func NewHandler(store *testimonialstore.Store, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{store: store, errLog: errLog, logger: logger}
}

type testimonialRequest struct {
	Slug           *string    `json:"slug"`
	Quote          *i18n.Text `json:"quote_i18n"`
	Rating         *int       `json:"rating"`
	AuthorName     *string    `json:"authorName"`
	AuthorRole     *i18n.Text `json:"authorRole_i18n"`
	AvatarInitials *string    `json:"avatarInitials"`
	Source         *string    `json:"source"`
	IsFeatured     *bool      `json:"isFeatured"`
	IsActive       *bool      `json:"isActive"`
	SortOrder      *int       `json:"sortOrder"`

	// AvatarAssetID is raw so that an explicit null clears the avatar.
	AvatarAssetID json.RawMessage `json:"avatarAssetId"`
	MediaAssetIDs *[]string       `json:"mediaAssetIds"`
}

func (req testimonialRequest) missingRequired() bool {
	return req.Quote == nil || req.Quote.IsEmpty() ||
		req.Rating == nil ||
		req.AuthorName == nil || strings.TrimSpace(*req.AuthorName) == "" ||
		req.SortOrder == nil
}

// refs holds the parsed ObjectID references of a request.
type refs struct {
	avatar      *primitive.ObjectID
	clearAvatar bool
	media       *[]primitive.ObjectID
}

// parseRefs converts avatarAssetId and mediaAssetIds. Problems are keyed
// by JSON field name.
func (req testimonialRequest) parseRefs() (refs, map[string]string) {
	var out refs
	problems := map[string]string{}

	if raw := bytes.TrimSpace(req.AvatarAssetID); len(raw) > 0 {
		if bytes.Equal(raw, []byte("null")) {
			out.clearAvatar = true
		} else {
			var hex string
			if err := json.Unmarshal(raw, &hex); err != nil {
				problems["avatarAssetId"] = "avatarAssetId must be a string id or null"
			} else if hex = strings.TrimSpace(hex); hex == "" {
				out.clearAvatar = true
			} else if oid, err := primitive.ObjectIDFromHex(hex); err != nil {
				problems["avatarAssetId"] = "avatarAssetId must be a valid id"
			} else {
				out.avatar = &oid
			}
		}
	}

	if req.MediaAssetIDs != nil {
		ids := make([]primitive.ObjectID, 0, len(*req.MediaAssetIDs))
		for _, hex := range *req.MediaAssetIDs {
			oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
			if err != nil {
				problems["mediaAssetIds"] = "mediaAssetIds must contain valid ids"
				break
			}
			ids = append(ids, oid)
		}
		out.media = &ids
	}

	if len(problems) > 0 {
		return refs{}, problems
	}
	return out, nil
}

func (req testimonialRequest) createInput(r refs) testimonialstore.CreateInput {
	in := testimonialstore.CreateInput{
		Slug:           deref(req.Slug),
		Quote:          *req.Quote,
		Rating:         *req.Rating,
		AuthorName:     *req.AuthorName,
		AvatarInitials: deref(req.AvatarInitials),
		AvatarAssetID:  r.avatar,
		Source:         deref(req.Source),
		IsActive:       req.IsActive,
		SortOrder:      *req.SortOrder,
	}
	if req.AuthorRole != nil {
		in.AuthorRole = *req.AuthorRole
	}
	if req.IsFeatured != nil {
		in.IsFeatured = *req.IsFeatured
	}
	if r.media != nil {
		in.MediaAssetIDs = *r.media
	}
	return in
}

func (req testimonialRequest) updateInput(r refs) testimonialstore.UpdateInput {
	return testimonialstore.UpdateInput{
		Slug:           req.Slug,
		Quote:          req.Quote,
		Rating:         req.Rating,
		AuthorName:     req.AuthorName,
		AuthorRole:     req.AuthorRole,
		AvatarInitials: req.AvatarInitials,
		AvatarAssetID:  r.avatar,
		ClearAvatar:    r.clearAvatar,
		MediaAssetIDs:  r.media,
		Source:         req.Source,
		IsFeatured:     req.IsFeatured,
		IsActive:       req.IsActive,
		SortOrder:      req.SortOrder,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func listOptions(r *http.Request, admin bool) testimonialstore.ListOptions {
	q := r.URL.Query()
	opts := testimonialstore.ListOptions{
		Page:       queryparams.PageFromRequest(r),
		Q:          query.Search(r, "q"),
		Source:     queryparams.Enum(q.Get("source"), models.TestimonialSources),
		IsFeatured: queryparams.Bool(q.Get("isFeatured")),
		MinRating:  queryparams.Float(q.Get("minRating")),
		MaxRating:  queryparams.Float(q.Get("maxRating")),
	}
	if admin {
		opts.IncludeInactive = true
		opts.Active = queryparams.Bool(q.Get("isActive"))
	}
	return opts
}

// ListPublic handles GET /api/testimonials.
func (h *Handler) ListPublic(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

// ListAdmin handles GET /api/testimonials/admin.
func (h *Handler) ListAdmin(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, admin bool) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.store.List(ctx, listOptions(r, admin))
	if err != nil {
		h.errLog.Internal(w, r, "failed to list testimonials", err)
		return
	}

	loc := i18n.FromRequest(r)
	jsonutil.OK(w, jsonutil.Page[models.TestimonialView]{
		Items: i18n.LocalizeList(res.Items, loc, models.Testimonial.Localized),
		Total: res.Total,
		Page:  res.Page,
		Limit: res.Limit,
	})
}

// GetPublic handles GET /api/testimonials/{id}.
func (h *Handler) GetPublic(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, false)
}

// GetAdmin handles GET /api/testimonials/admin/{id}.
func (h *Handler) GetAdmin(w http.ResponseWriter, r *http.Request) {
	h.get(w, r, true)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request, admin bool) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, err := h.store.GetByIDOrSlug(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.errLog.Internal(w, r, "failed to load testimonial", err)
		return
	}
	if t == nil || (!admin && !t.IsActive) {
		jsonutil.NotFound(w, "not found")
		return
	}
	jsonutil.OK(w, t.Localized(i18n.FromRequest(r)))
}

// Create handles POST /api/testimonials.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req testimonialRequest
	if err := jsonutil.Decode(w, r, &req); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	if req.missingRequired() {
		jsonutil.BadRequest(w, "quote_i18n, rating, authorName, sortOrder are required")
		return
	}
	ids, problems := req.parseRefs()
	if problems != nil {
		jsonutil.ValidationError(w, problems)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	t, err := h.store.Create(ctx, req.createInput(ids))
	if err != nil {
		h.errLog.StoreError(w, r, "failed to create testimonial", err)
		return
	}

	h.logger.Info("testimonial created",
		zap.String("id", t.ID.Hex()),
		zap.String("slug", t.Slug))
	jsonutil.Created(w, t)
}

// Update handles PATCH /api/testimonials/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req testimonialRequest
	if err := jsonutil.Decode(w, r, &req); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	ids, problems := req.parseRefs()
	if problems != nil {
		jsonutil.ValidationError(w, problems)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	t, err := h.store.Update(ctx, chi.URLParam(r, "id"), req.updateInput(ids))
	if err != nil {
		h.errLog.StoreError(w, r, "failed to update testimonial", err)
		return
	}
	if t == nil {
		jsonutil.NotFound(w, "not found")
		return
	}
	jsonutil.OK(w, t)
}

// Delete handles DELETE /api/testimonials/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, err := h.store.Delete(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.errLog.Internal(w, r, "failed to delete testimonial", err)
		return
	}
	if t == nil {
		jsonutil.NotFound(w, "not found")
		return
	}

	h.logger.Info("testimonial deleted", zap.String("id", t.ID.Hex()))
	jsonutil.Done(w)
}
