// internal/domain/models/testimonial.go
package models

import (
	"time"

	"github.com/dalemusser/stratacms/internal/app/system/i18n"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Testimonial is a customer review displayed on the site.
type Testimonial struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Slug string             `bson:"slug" json:"slug"`

	Quote      i18n.Text `bson:"quote_i18n" json:"quote_i18n"`
	Rating     int       `bson:"rating" json:"rating"` // 1..5
	AuthorName string    `bson:"authorName" json:"authorName"`
	AuthorRole i18n.Text `bson:"authorRole_i18n,omitempty" json:"authorRole_i18n,omitempty"`

	AvatarInitials string               `bson:"avatarInitials,omitempty" json:"avatarInitials,omitempty"`
	AvatarAssetID  *primitive.ObjectID  `bson:"avatarAssetId,omitempty" json:"avatarAssetId,omitempty"` // -> mediaassets
	MediaAssetIDs  []primitive.ObjectID `bson:"mediaAssetIds,omitempty" json:"mediaAssetIds,omitempty"`

	Source     string `bson:"source" json:"source"` // google, facebook, website, other
	IsFeatured bool   `bson:"isFeatured" json:"isFeatured"`
	IsActive   bool   `bson:"isActive" json:"isActive"`
	SortOrder  int    `bson:"sortOrder" json:"sortOrder"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Testimonial sources
const (
	SourceGoogle   = "google"
	SourceFacebook = "facebook"
	SourceWebsite  = "website"
	SourceOther    = "other"
)

// TestimonialSources lists the allowed source values.
var TestimonialSources = []string{SourceGoogle, SourceFacebook, SourceWebsite, SourceOther}

// TestimonialView is the locale-projected form of a Testimonial.
type TestimonialView struct {
	ID             primitive.ObjectID   `json:"_id"`
	Slug           string               `json:"slug"`
	Quote          string               `json:"quote"`
	Rating         int                  `json:"rating"`
	AuthorName     string               `json:"authorName"`
	AuthorRole     string               `json:"authorRole,omitempty"`
	AvatarInitials string               `json:"avatarInitials,omitempty"`
	AvatarAssetID  *primitive.ObjectID  `json:"avatarAssetId,omitempty"`
	MediaAssetIDs  []primitive.ObjectID `json:"mediaAssetIds,omitempty"`
	Source         string               `json:"source"`
	IsFeatured     bool                 `json:"isFeatured"`
	IsActive       bool                 `json:"isActive"`
	SortOrder      int                  `json:"sortOrder"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

// Localized projects the testimonial for loc.
func (t Testimonial) Localized(loc i18n.Locale) TestimonialView {
	return TestimonialView{
		ID:             t.ID,
		Slug:           t.Slug,
		Quote:          t.Quote.Resolve(loc),
		Rating:         t.Rating,
		AuthorName:     t.AuthorName,
		AuthorRole:     t.AuthorRole.Resolve(loc),
		AvatarInitials: t.AvatarInitials,
		AvatarAssetID:  t.AvatarAssetID,
		MediaAssetIDs:  t.MediaAssetIDs,
		Source:         t.Source,
		IsFeatured:     t.IsFeatured,
		IsActive:       t.IsActive,
		SortOrder:      t.SortOrder,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}
