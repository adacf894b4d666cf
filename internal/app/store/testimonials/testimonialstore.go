// internal/app/store/testimonials/testimonialstore.go
package testimonialstore

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

const CollectionName = "testimonials"

const SlugFallback = "testimonial"

const (
	MaxSlugLen        = 120
	MaxAuthorNameLen  = 160
	MaxInitialsLen    = 6
	MinRating         = 1
	MaxRating         = 5
	MaxMediaAssetRefs = 50
)

// ReservedSlugs collide with the static /admin route.
var ReservedSlugs = []string{"admin"}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

// CreateInput holds the fields accepted when creating a testimonial.
type CreateInput struct {
	Slug           string
	Quote          i18n.Text
	Rating         int
	AuthorName     string
	AuthorRole     i18n.Text
	AvatarInitials string
	AvatarAssetID  *primitive.ObjectID
	MediaAssetIDs  []primitive.ObjectID
	Source         string
	IsFeatured     bool
	IsActive       *bool
	SortOrder      int
}

// UpdateInput holds the optional fields for updating a testimonial.
// All fields are pointers - nil means "don't update this field".
// ClearAvatar removes the avatar reference.
type UpdateInput struct {
	Slug           *string
	Quote          *i18n.Text
	Rating         *int
	AuthorName     *string
	AuthorRole     *i18n.Text
	AvatarInitials *string
	AvatarAssetID  *primitive.ObjectID
	ClearAvatar    bool
	MediaAssetIDs  *[]primitive.ObjectID
	Source         *string
	IsFeatured     *bool
	IsActive       *bool
	SortOrder      *int
}

// ListOptions lists every filter List understands.
type ListOptions struct {
	Page queryparams.Page

	// Q matches slug, authorName and every locale of quote/authorRole.
	Q string

	Source     string
	IsFeatured *bool

	// MinRating and MaxRating bound rating inclusively when set.
	MinRating *float64
	MaxRating *float64

	IncludeInactive bool
	Active          *bool
}

// ListResult is one page of testimonials plus the total matching count.
type ListResult struct {
	Items []models.Testimonial `json:"items"`
	Total int64                `json:"total"`
	Page  int64                `json:"page"`
	Limit int64                `json:"limit"`
}

// Create normalizes, validates and inserts a new testimonial with a unique slug.
func (s *Store) Create(ctx context.Context, in CreateInput) (models.Testimonial, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	t := models.Testimonial{
		ID:             primitive.NewObjectID(),
		Slug:           in.Slug,
		Quote:          in.Quote,
		Rating:         in.Rating,
		AuthorName:     in.AuthorName,
		AuthorRole:     in.AuthorRole,
		AvatarInitials: in.AvatarInitials,
		AvatarAssetID:  in.AvatarAssetID,
		MediaAssetIDs:  in.MediaAssetIDs,
		Source:         in.Source,
		IsFeatured:     in.IsFeatured,
		IsActive:       true,
		SortOrder:      in.SortOrder,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if in.IsActive != nil {
		t.IsActive = *in.IsActive
	}

	normalizeTestimonial(&t)
	t.Slug = DeriveSlug(t)
	if err := Validate(t); err != nil {
		return models.Testimonial{}, err
	}

	unique, err := slug.EnsureUnique(ctx, t.Slug, MaxSlugLen, storeutil.SlugTaken(s.c, primitive.NilObjectID, ReservedSlugs...))
	if err != nil {
		return models.Testimonial{}, err
	}
	t.Slug = unique

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Testimonial{}, storeutil.ErrDuplicateSlug
		}
		return models.Testimonial{}, err
	}
	return t, nil
}

// Update overlays the provided fields and saves the testimonial.
// Returns nil, nil when no testimonial has this id.
func (s *Store) Update(ctx context.Context, id string, in UpdateInput) (*models.Testimonial, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, nil
	}

	var t models.Testimonial
	if err := s.c.FindOne(ctx, bson.M{"_id": oid}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	storedSlug := t.Slug

	applyUpdate(&t, in)
	normalizeTestimonial(&t)
	if in.Slug != nil || strings.TrimSpace(t.Slug) == "" {
		t.Slug = DeriveSlug(t)
	}
	if err := Validate(t); err != nil {
		return nil, err
	}

	if t.Slug != storedSlug {
		unique, err := slug.EnsureUnique(ctx, t.Slug, MaxSlugLen, storeutil.SlugTaken(s.c, oid, ReservedSlugs...))
		if err != nil {
			return nil, err
		}
		t.Slug = unique
	}
	t.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": oid}, t)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return nil, storeutil.ErrDuplicateSlug
		}
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, nil
	}
	return &t, nil
}

// Delete removes a testimonial and returns it. Returns nil, nil when missing.
func (s *Store) Delete(ctx context.Context, id string) (*models.Testimonial, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, nil
	}
	var t models.Testimonial
	if err := s.c.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// GetByIDOrSlug looks up by _id when key is an ObjectID hex string and by
// slug otherwise. Returns nil, nil when nothing matches.
func (s *Store) GetByIDOrSlug(ctx context.Context, key string) (*models.Testimonial, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nil
	}
	filter := bson.M{"slug": key}
	if oid, err := primitive.ObjectIDFromHex(key); err == nil {
		filter = bson.M{"_id": oid}
	}

	var t models.Testimonial
	if err := s.c.FindOne(ctx, filter).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// List returns one page of testimonials in display order.
func (s *Store) List(ctx context.Context, opts ListOptions) (ListResult, error) {
	page := opts.Page.Normalize()
	items, total, err := storeutil.FindPage[models.Testimonial](ctx, s.c, listFilter(opts), page)
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
	if opts.Source != "" {
		filter["source"] = opts.Source
	}
	if opts.IsFeatured != nil {
		filter["isFeatured"] = *opts.IsFeatured
	}
	if opts.MinRating != nil || opts.MaxRating != nil {
		r := bson.M{}
		if opts.MinRating != nil {
			r["$gte"] = *opts.MinRating
		}
		if opts.MaxRating != nil {
			r["$lte"] = *opts.MaxRating
		}
		filter["rating"] = r
	}
	if q := strings.TrimSpace(opts.Q); q != "" {
		fields := []string{"slug", "authorName"}
		for _, l := range i18n.Supported {
			fields = append(fields, "quote_i18n."+string(l), "authorRole_i18n."+string(l))
		}
		for k, v := range storeutil.TextSearch(q, fields...) {
			filter[k] = v
		}
	}
	return filter
}

// DeriveSlug picks the slug source in order: explicit slug, quote in the
// default locale, quote in the other locales, authorName, "testimonial".
func DeriveSlug(t models.Testimonial) string {
	candidates := []string{t.Slug}
	candidates = append(candidates, t.Quote.Candidates()...)
	candidates = append(candidates, t.AuthorName)
	return slug.Truncate(slug.FirstOf(SlugFallback, candidates...), MaxSlugLen)
}

// Validate checks field rules on a normalized testimonial.
func Validate(t models.Testimonial) error {
	p := storeutil.Problems{}

	if t.Quote.IsEmpty() {
		p.Add("quote", "quote is required in at least one language")
	}
	if t.Rating < MinRating || t.Rating > MaxRating {
		p.Add("rating", "rating must be between 1 and 5")
	}
	if t.AuthorName == "" {
		p.Add("authorName", "authorName is required")
	} else if utf8.RuneCountInString(t.AuthorName) > MaxAuthorNameLen {
		p.Add("authorName", "authorName must be at most "+strconv.Itoa(MaxAuthorNameLen)+" characters")
	}
	if utf8.RuneCountInString(t.AvatarInitials) > MaxInitialsLen {
		p.Add("avatarInitials", "avatarInitials must be at most "+strconv.Itoa(MaxInitialsLen)+" characters")
	}
	if len(t.MediaAssetIDs) > MaxMediaAssetRefs {
		p.Add("mediaAssetIds", "at most "+strconv.Itoa(MaxMediaAssetRefs)+" media assets may be attached")
	}
	valid := false
	for _, s := range models.TestimonialSources {
		if t.Source == s {
			valid = true
			break
		}
	}
	if !valid {
		p.Add("source", "source must be one of: "+strings.Join(models.TestimonialSources, ", "))
	}
	if t.SortOrder < 0 {
		p.Add("sortOrder", "sortOrder must not be negative")
	}
	return p.Err()
}

func normalizeTestimonial(t *models.Testimonial) {
	t.Quote = htmlsanitize.Text(t.Quote)
	t.AuthorRole = htmlsanitize.Text(t.AuthorRole)
	t.AuthorName = htmlsanitize.PlainText(t.AuthorName)
	t.AvatarInitials = strings.ToUpper(strings.TrimSpace(t.AvatarInitials))
	t.Source = strings.ToLower(strings.TrimSpace(t.Source))
	if t.Source == "" {
		t.Source = models.SourceWebsite
	}
	t.MediaAssetIDs = dedupeIDs(t.MediaAssetIDs)
}

func applyUpdate(t *models.Testimonial, in UpdateInput) {
	if in.Slug != nil {
		t.Slug = *in.Slug
	}
	if in.Quote != nil {
		t.Quote = *in.Quote
	}
	if in.Rating != nil {
		t.Rating = *in.Rating
	}
	if in.AuthorName != nil {
		t.AuthorName = *in.AuthorName
	}
	if in.AuthorRole != nil {
		t.AuthorRole = *in.AuthorRole
	}
	if in.AvatarInitials != nil {
		t.AvatarInitials = *in.AvatarInitials
	}
	if in.ClearAvatar {
		t.AvatarAssetID = nil
	} else if in.AvatarAssetID != nil {
		t.AvatarAssetID = in.AvatarAssetID
	}
	if in.MediaAssetIDs != nil {
		t.MediaAssetIDs = *in.MediaAssetIDs
	}
	if in.Source != nil {
		t.Source = *in.Source
	}
	if in.IsFeatured != nil {
		t.IsFeatured = *in.IsFeatured
	}
	if in.IsActive != nil {
		t.IsActive = *in.IsActive
	}
	if in.SortOrder != nil {
		t.SortOrder = *in.SortOrder
	}
}

func dedupeIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]primitive.ObjectID, 0, len(ids))
	seen := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		if id.IsZero() || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
