// internal/app/store/mediaassets/mediaassetstore.go
package mediaassetstore

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dalemusser/stratacms/internal/app/store/storeutil"
	"github.com/dalemusser/stratacms/internal/app/system/htmlsanitize"
	"github.com/dalemusser/stratacms/internal/app/system/i18n"
	"github.com/dalemusser/stratacms/internal/app/system/queryparams"
	"github.com/dalemusser/stratacms/internal/app/system/slug"
	"github.com/dalemusser/stratacms/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CollectionName is the MongoDB collection for media assets.
const CollectionName = "mediaassets"

// SlugFallback is used when no source text yields a slug.
const SlugFallback = "media"

// Field limits
const (
	MaxSlugLen     = 180
	MaxURLLen      = 2048
	MaxPublicIDLen = 300
	MaxFolderLen   = 300
	MaxFormatLen   = 40
	MaxTagLen      = 60
	MaxDimension   = 20000
)

// ReservedSlugs collide with the static /admin and /upload routes.
var ReservedSlugs = []string{"admin", "upload"}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// CreateInput holds the fields accepted when creating an asset.
// Nil pointers take their defaults (provider cloudinary, active true).
type CreateInput struct {
	Slug      string
	Kind      string
	Provider  string
	URL       string
	PublicID  string
	Folder    string
	Format    string
	Width     *int
	Height    *int
	Bytes     *int64
	Alt       i18n.Text
	Caption   i18n.Text
	Tags      []string
	SortOrder int
	IsActive  *bool
}

// UpdateInput holds the optional fields for updating an asset.
// All fields are pointers - nil means "don't update this field".
type UpdateInput struct {
	Slug      *string
	Kind      *string
	Provider  *string
	URL       *string
	PublicID  *string
	Folder    *string
	Format    *string
	Width     *int
	Height    *int
	Bytes     *int64
	Alt       *i18n.Text
	Caption   *i18n.Text
	Tags      *[]string
	SortOrder *int
	IsActive  *bool
}

// ListOptions lists every filter List understands.
type ListOptions struct {
	// Page and Limit are 1-based; zero values take the defaults (1, 20).
	Page queryparams.Page

	// Q matches slug, tags and every locale of alt/caption
	// (case-insensitive substring).
	Q string

	// Kind, Provider and Tag filter by equality when non-empty.
	Kind     string
	Provider string
	Tag      string

	// IncludeInactive drops the isActive=true constraint.
	IncludeInactive bool

	// Active pins isActive to a value. Only honored with IncludeInactive.
	Active *bool
}

// ListResult is one page of assets plus the total matching count.
type ListResult struct {
	Items []models.MediaAsset `json:"items"`
	Total int64               `json:"total"`
	Page  int64               `json:"page"`
	Limit int64               `json:"limit"`
}

// Create normalizes, validates and inserts a new asset with a unique slug.
func (s *Store) Create(ctx context.Context, in CreateInput) (models.MediaAsset, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	a := models.MediaAsset{
		ID:        primitive.NewObjectID(),
		Slug:      in.Slug,
		Kind:      in.Kind,
		Provider:  in.Provider,
		URL:       in.URL,
		PublicID:  in.PublicID,
		Folder:    in.Folder,
		Format:    in.Format,
		Width:     in.Width,
		Height:    in.Height,
		Bytes:     in.Bytes,
		Alt:       in.Alt,
		Caption:   in.Caption,
		Tags:      in.Tags,
		SortOrder: in.SortOrder,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.IsActive != nil {
		a.IsActive = *in.IsActive
	}

	normalizeAsset(&a)
	a.Slug = DeriveSlug(a)
	if err := Validate(a); err != nil {
		return models.MediaAsset{}, err
	}

	unique, err := slug.EnsureUnique(ctx, a.Slug, MaxSlugLen, storeutil.SlugTaken(s.c, primitive.NilObjectID, ReservedSlugs...))
	if err != nil {
		return models.MediaAsset{}, err
	}
	a.Slug = unique

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.MediaAsset{}, storeutil.ErrDuplicateSlug
		}
		return models.MediaAsset{}, err
	}
	return a, nil
}

// Update overlays the provided fields on the stored asset and saves it.
// The slug is re-derived only when in.Slug is set or the stored slug is
// empty. Returns nil, nil when no asset has this id.
func (s *Store) Update(ctx context.Context, id string, in UpdateInput) (*models.MediaAsset, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, nil
	}

	var a models.MediaAsset
	if err := s.c.FindOne(ctx, bson.M{"_id": oid}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	storedSlug := a.Slug

	applyUpdate(&a, in)
	normalizeAsset(&a)
	if in.Slug != nil || strings.TrimSpace(a.Slug) == "" {
		a.Slug = DeriveSlug(a)
	}
	if err := Validate(a); err != nil {
		return nil, err
	}

	if a.Slug != storedSlug {
		unique, err := slug.EnsureUnique(ctx, a.Slug, MaxSlugLen, storeutil.SlugTaken(s.c, oid, ReservedSlugs...))
		if err != nil {
			return nil, err
		}
		a.Slug = unique
	}
	a.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": oid}, a)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return nil, storeutil.ErrDuplicateSlug
		}
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, nil
	}
	return &a, nil
}

// Delete removes an asset and returns it. Returns nil, nil when missing.
func (s *Store) Delete(ctx context.Context, id string) (*models.MediaAsset, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, nil
	}
	var a models.MediaAsset
	if err := s.c.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// GetByIDOrSlug looks up by _id when key is an ObjectID hex string and by
// slug otherwise. Returns nil, nil when nothing matches.
func (s *Store) GetByIDOrSlug(ctx context.Context, key string) (*models.MediaAsset, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nil
	}
	filter := bson.M{"slug": key}
	if oid, err := primitive.ObjectIDFromHex(key); err == nil {
		filter = bson.M{"_id": oid}
	}

	var a models.MediaAsset
	if err := s.c.FindOne(ctx, filter).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// List returns one page of assets in display order.
func (s *Store) List(ctx context.Context, opts ListOptions) (ListResult, error) {
	page := opts.Page.Normalize()
	items, total, err := storeutil.FindPage[models.MediaAsset](ctx, s.c, listFilter(opts), page)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Items: items, Total: total, Page: page.Page, Limit: page.Limit}, nil
}

func listFilter(opts ListOptions) bson.M {
	filter := bson.M{}
	if !opts.IncludeInactive {
		filter["isActive"] = true
	} else if opts.Active != nil {
		filter["isActive"] = *opts.Active
	}
	if opts.Kind != "" {
		filter["kind"] = opts.Kind
	}
	if opts.Provider != "" {
		filter["provider"] = opts.Provider
	}
	if opts.Tag != "" {
		filter["tags"] = opts.Tag
	}
	if q := strings.TrimSpace(opts.Q); q != "" {
		fields := []string{"slug", "tags"}
		for _, l := range i18n.Supported {
			fields = append(fields, "alt_i18n."+string(l), "caption_i18n."+string(l))
		}
		for k, v := range storeutil.TextSearch(q, fields...) {
			filter[k] = v
		}
	}
	return filter
}

// DeriveSlug picks the slug source in order: explicit slug, alt text in
// the default locale, alt text in the other locales, publicId, "media".
func DeriveSlug(a models.MediaAsset) string {
	candidates := []string{a.Slug}
	candidates = append(candidates, a.Alt.Candidates()...)
	candidates = append(candidates, a.PublicID)
	return slug.Truncate(slug.FirstOf(SlugFallback, candidates...), MaxSlugLen)
}

// Validate checks field rules on a normalized asset.
func Validate(a models.MediaAsset) error {
	p := storeutil.Problems{}

	if a.Kind == "" {
		p.Add("kind", "kind is required")
	} else if !oneOf(a.Kind, models.MediaKinds) {
		p.Add("kind", "kind must be one of: "+strings.Join(models.MediaKinds, ", "))
	}
	if !oneOf(a.Provider, models.MediaProviders) {
		p.Add("provider", "provider must be one of: "+strings.Join(models.MediaProviders, ", "))
	}
	if a.URL == "" {
		p.Add("url", "url is required")
	} else if len(a.URL) > MaxURLLen {
		p.Add("url", "url must be at most "+strconv.Itoa(MaxURLLen)+" characters")
	}
	if utf8.RuneCountInString(a.PublicID) > MaxPublicIDLen {
		p.Add("publicId", "publicId must be at most "+strconv.Itoa(MaxPublicIDLen)+" characters")
	}
	if utf8.RuneCountInString(a.Folder) > MaxFolderLen {
		p.Add("folder", "folder must be at most "+strconv.Itoa(MaxFolderLen)+" characters")
	}
	if utf8.RuneCountInString(a.Format) > MaxFormatLen {
		p.Add("format", "format must be at most "+strconv.Itoa(MaxFormatLen)+" characters")
	}
	if a.Width != nil && (*a.Width < 1 || *a.Width > MaxDimension) {
		p.Add("width", "width must be between 1 and "+strconv.Itoa(MaxDimension))
	}
	if a.Height != nil && (*a.Height < 1 || *a.Height > MaxDimension) {
		p.Add("height", "height must be between 1 and "+strconv.Itoa(MaxDimension))
	}
	if a.Bytes != nil && *a.Bytes < 0 {
		p.Add("bytes", "bytes must not be negative")
	}
	for _, t := range a.Tags {
		if utf8.RuneCountInString(t) > MaxTagLen {
			p.Add("tags", "each tag must be at most "+strconv.Itoa(MaxTagLen)+" characters")
		}
	}
	if a.SortOrder < 0 {
		p.Add("sortOrder", "sortOrder must not be negative")
	}
	return p.Err()
}

func normalizeAsset(a *models.MediaAsset) {
	a.Kind = strings.ToLower(strings.TrimSpace(a.Kind))
	a.Provider = strings.ToLower(strings.TrimSpace(a.Provider))
	if a.Provider == "" {
		a.Provider = models.MediaProviderCloudinary
	}
	a.URL = strings.TrimSpace(a.URL)
	a.PublicID = strings.TrimSpace(a.PublicID)
	a.Folder = strings.TrimSpace(a.Folder)
	a.Format = strings.TrimSpace(a.Format)
	a.Alt = htmlsanitize.Text(a.Alt)
	a.Caption = htmlsanitize.Text(a.Caption)
	a.Tags = storeutil.TrimTags(a.Tags)
}

func applyUpdate(a *models.MediaAsset, in UpdateInput) {
	if in.Slug != nil {
		a.Slug = *in.Slug
	}
	if in.Kind != nil {
		a.Kind = *in.Kind
	}
	if in.Provider != nil {
		a.Provider = *in.Provider
	}
	if in.URL != nil {
		a.URL = *in.URL
	}
	if in.PublicID != nil {
		a.PublicID = *in.PublicID
	}
	if in.Folder != nil {
		a.Folder = *in.Folder
	}
	if in.Format != nil {
		a.Format = *in.Format
	}
	if in.Width != nil {
		a.Width = in.Width
	}
	if in.Height != nil {
		a.Height = in.Height
	}
	if in.Bytes != nil {
		a.Bytes = in.Bytes
	}
	if in.Alt != nil {
		a.Alt = *in.Alt
	}
	if in.Caption != nil {
		a.Caption = *in.Caption
	}
	if in.Tags != nil {
		a.Tags = *in.Tags
	}
	if in.SortOrder != nil {
		a.SortOrder = *in.SortOrder
	}
	if in.IsActive != nil {
		a.IsActive = *in.IsActive
	}
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
