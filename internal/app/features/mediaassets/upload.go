package mediaassets

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	mediaassetstore "github.com/dalemusser/stratacms/internal/app/store/mediaassets"
	"github.com/dalemusser/stratacms/internal/app/system/i18n"
	"github.com/dalemusser/stratacms/internal/app/system/jsonutil"
	"github.com/dalemusser/stratacms/internal/app/system/queryparams"
	"github.com/dalemusser/stratacms/internal/app/system/timeouts"
	"github.com/dalemusser/stratacms/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
)

// DefaultMaxUploadBytes caps a single upload (32 MB).
const DefaultMaxUploadBytes int64 = 32 << 20

// KeyPrefix is the storage prefix for uploaded media. Only objects under
// it are removed when their asset is deleted.
const KeyPrefix = "media/"

// ObjectStore is the part of storage.Store the media endpoints use.
type ObjectStore interface {
	Put(ctx context.Context, path string, r io.Reader, opts *storage.PutOptions) error
	Delete(ctx context.Context, path string) error
	URL(path string) string
}

// UploadConfig wires uploads into the handler.
type UploadConfig struct {
	// Objects receives uploaded files. Nil disables POST /upload.
	Objects ObjectStore

	// Provider is stored on assets created by upload (s3 or other).
	Provider string

	// MaxBytes bounds the multipart body. Zero means DefaultMaxUploadBytes.
	MaxBytes int64
}

var errUnsupportedType = errors.New("only image and video uploads are supported")

// Upload handles POST /api/media-assets/upload (multipart/form-data).
//
// Form fields: file (required), slug, sortOrder, isActive, tags
// (comma separated), alt_<locale> and caption_<locale>.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.uploads.Objects == nil {
		jsonutil.Error(w, http.StatusServiceUnavailable, "uploads are not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.uploads.MaxBytes)
	if err := r.ParseMultipartForm(h.uploads.MaxBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			jsonutil.BadRequest(w, fmt.Sprintf("file too large (max %d MB)", h.uploads.MaxBytes>>20))
			return
		}
		jsonutil.BadRequest(w, "expected a multipart/form-data body")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonutil.BadRequest(w, "file is required")
		return
	}
	defer file.Close()

	contentType, err := sniffContentType(file, header.Header.Get("Content-Type"))
	if err != nil {
		h.errLog.Internal(w, r, "failed to read upload", err)
		return
	}
	kind, err := kindFor(contentType)
	if err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}

	in := mediaassetstore.CreateInput{
		Kind:     kind,
		Provider: h.uploads.Provider,
		Slug:     strings.TrimSpace(r.FormValue("slug")),
		Alt:      localizedForm(r, "alt"),
		Caption:  localizedForm(r, "caption"),
		Tags:     strings.Split(r.FormValue("tags"), ","),
		IsActive: queryparams.Bool(r.FormValue("isActive")),
	}
	if v := strings.TrimSpace(r.FormValue("sortOrder")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			jsonutil.ValidationError(w, map[string]string{"sortOrder": "sortOrder must be an integer"})
			return
		}
		in.SortOrder = n
	}
	size := header.Size
	in.Bytes = &size

	if kind == models.MediaKindImage {
		cfg, format, err := image.DecodeConfig(file)
		if err != nil {
			jsonutil.BadRequest(w, "image could not be decoded")
			return
		}
		in.Width, in.Height = &cfg.Width, &cfg.Height
		in.Format = format
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			h.errLog.Internal(w, r, "failed to rewind upload", err)
			return
		}
	}

	now := time.Now().UTC()
	ext := extensionFor(header.Filename, contentType)
	if in.Format == "" {
		in.Format = strings.TrimPrefix(ext, ".")
	}
	in.Folder = fmt.Sprintf("media/%04d/%02d", now.Year(), int(now.Month()))
	key := path.Join(in.Folder, uuid.New().String()+ext)
	in.PublicID = key

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.uploads.Objects.Put(ctx, key, file, &storage.PutOptions{ContentType: contentType}); err != nil {
		h.errLog.Internal(w, r, "failed to store upload", err)
		return
	}
	in.URL = h.uploads.Objects.URL(key)

	a, err := h.store.Create(ctx, in)
	if err != nil {
		if derr := h.uploads.Objects.Delete(ctx, key); derr != nil {
			h.logger.Warn("failed to remove orphaned upload", zap.String("key", key), zap.Error(derr))
		}
		h.errLog.StoreError(w, r, "failed to create uploaded media asset", err)
		return
	}

	h.logger.Info("media uploaded",
		zap.String("id", a.ID.Hex()),
		zap.String("key", key),
		zap.String("content_type", contentType),
		zap.Int64("bytes", size))
	jsonutil.Created(w, a)
}

// removeObject deletes the stored object behind an uploaded asset. Assets
// that point at external providers are left alone.
func (h *Handler) removeObject(ctx context.Context, a models.MediaAsset) {
	if h.uploads.Objects == nil || !strings.HasPrefix(a.PublicID, KeyPrefix) {
		return
	}
	if err := h.uploads.Objects.Delete(ctx, a.PublicID); err != nil {
		h.logger.Warn("failed to delete stored media object",
			zap.String("id", a.ID.Hex()),
			zap.String("key", a.PublicID),
			zap.Error(err))
	}
}

// sniffContentType prefers the detected type unless detection is
// inconclusive. The reader is rewound before returning.
func sniffContentType(f io.ReadSeeker, declared string) (string, error) {
	buf := make([]byte, 512)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	detected := http.DetectContentType(buf[:n])
	if detected == "application/octet-stream" || strings.HasPrefix(detected, "text/plain") {
		if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != "" {
			return mt, nil
		}
	}
	if mt, _, err := mime.ParseMediaType(detected); err == nil {
		return mt, nil
	}
	return detected, nil
}

func kindFor(contentType string) (string, error) {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return models.MediaKindImage, nil
	case strings.HasPrefix(contentType, "video/"):
		return models.MediaKindVideo, nil
	}
	return "", errUnsupportedType
}

func extensionFor(filename, contentType string) string {
	if ext := strings.ToLower(path.Ext(filename)); ext != "" && len(ext) <= 6 {
		return ext
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}

// localizedForm collects <field>_<locale> form values.
func localizedForm(r *http.Request, field string) i18n.Text {
	t := i18n.Text{}
	for _, loc := range i18n.Supported {
		if v := strings.TrimSpace(r.FormValue(field + "_" + string(loc))); v != "" {
			t[string(loc)] = v
		}
	}
	return t
}
