// internal/domain/models/mediaasset.go
package models

import (
	"time"

	"github.com/dalemusser/stratacms/internal/app/system/i18n"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MediaAsset is an image or video shown on the site.
//
// Field names follow the existing "mediaassets" collection (camelCase,
// localized text under <field>_i18n).
type MediaAsset struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Slug     string             `bson:"slug" json:"slug"`
	Kind     string             `bson:"kind" json:"kind"`         // image, video
	Provider string             `bson:"provider" json:"provider"` // cloudinary, vdrive, s3, other
	URL      string             `bson:"url" json:"url"`

	// Storage metadata (all optional)
	PublicID string `bson:"publicId,omitempty" json:"publicId,omitempty"`
	Folder   string `bson:"folder,omitempty" json:"folder,omitempty"`
	Format   string `bson:"format,omitempty" json:"format,omitempty"`
	Width    *int   `bson:"width,omitempty" json:"width,omitempty"`
	Height   *int   `bson:"height,omitempty" json:"height,omitempty"`
	Bytes    *int64 `bson:"bytes,omitempty" json:"bytes,omitempty"`

	Alt     i18n.Text `bson:"alt_i18n,omitempty" json:"alt_i18n,omitempty"`
	Caption i18n.Text `bson:"caption_i18n,omitempty" json:"caption_i18n,omitempty"`

	Tags      []string `bson:"tags" json:"tags"`
	SortOrder int      `bson:"sortOrder" json:"sortOrder"`
	IsActive  bool     `bson:"isActive" json:"isActive"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Media kinds
const (
	MediaKindImage = "image"
	MediaKindVideo = "video"
)

// Media providers
const (
	MediaProviderCloudinary = "cloudinary"
	MediaProviderVDrive     = "vdrive"
	MediaProviderS3         = "s3"
	MediaProviderOther      = "other"
)

// MediaKinds lists the allowed kind values.
var MediaKinds = []string{MediaKindImage, MediaKindVideo}

// MediaProviders lists the allowed provider values.
var MediaProviders = []string{MediaProviderCloudinary, MediaProviderVDrive, MediaProviderS3, MediaProviderOther}

// MediaAssetView is the locale-projected form of a MediaAsset returned by
// list and get endpoints.
type MediaAssetView struct {
	ID        primitive.ObjectID `json:"_id"`
	Slug      string             `json:"slug"`
	Kind      string             `json:"kind"`
	Provider  string             `json:"provider"`
	URL       string             `json:"url"`
	PublicID  string             `json:"publicId,omitempty"`
	Folder    string             `json:"folder,omitempty"`
	Format    string             `json:"format,omitempty"`
	Width     *int               `json:"width,omitempty"`
	Height    *int               `json:"height,omitempty"`
	Bytes     *int64             `json:"bytes,omitempty"`
	Alt       string             `json:"alt,omitempty"`
	Caption   string             `json:"caption,omitempty"`
	Tags      []string           `json:"tags"`
	SortOrder int                `json:"sortOrder"`
	IsActive  bool               `json:"isActive"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// Localized projects the asset for loc. The receiver is not modified.
func (m MediaAsset) Localized(loc i18n.Locale) MediaAssetView {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	return MediaAssetView{
		ID:        m.ID,
		Slug:      m.Slug,
		Kind:      m.Kind,
		Provider:  m.Provider,
		URL:       m.URL,
		PublicID:  m.PublicID,
		Folder:    m.Folder,
		Format:    m.Format,
		Width:     m.Width,
		Height:    m.Height,
		Bytes:     m.Bytes,
		Alt:       m.Alt.Resolve(loc),
		Caption:   m.Caption.Resolve(loc),
		Tags:      tags,
		SortOrder: m.SortOrder,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
