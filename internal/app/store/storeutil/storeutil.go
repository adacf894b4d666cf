// internal/app/store/storeutil/storeutil.go
package storeutil

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/dalemusser/stratacms/internal/app/system/queryparams"
	"github.com/dalemusser/stratacms/internal/app/system/slug"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

// ErrDuplicateSlug is returned when a write collides with the unique slug
// index (two writers picked the same free slug concurrently).
var ErrDuplicateSlug = errors.New("slug already in use")

// Paginate returns *options.FindOptions with skip/limit given a 1-based page.
func Paginate(limit, page int64) *options.FindOptions {
	if limit <= 0 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}
	sk := (page - 1) * limit
	return options.Find().SetLimit(limit).SetSkip(sk)
}

// DisplayOrder sorts by sortOrder ascending, newest first within a position.
var DisplayOrder = bson.D{{Key: "sortOrder", Value: 1}, {Key: "createdAt", Value: -1}}

// FindPage runs the page query and the total count concurrently.
// total counts every document matching filter, not just the page.
func FindPage[T any](ctx context.Context, c *mongo.Collection, filter bson.M, p queryparams.Page) ([]T, int64, error) {
	p = p.Normalize()

	var (
		items []T
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		opts := Paginate(p.Limit, p.Page).SetSort(DisplayOrder)
		cur, err := c.Find(gctx, filter, opts)
		if err != nil {
			return err
		}
		defer cur.Close(gctx)
		return cur.All(gctx, &items)
	})
	g.Go(func() error {
		n, err := c.CountDocuments(gctx, filter)
		if err != nil {
			return err
		}
		total = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []T{}
	}
	return items, total, nil
}

// SlugTaken returns a slug.ExistsFunc that checks c for the candidate,
// ignoring the document with id exclude (zero means none). Reserved names
// are always reported as taken.
func SlugTaken(c *mongo.Collection, exclude primitive.ObjectID, reserved ...string) slug.ExistsFunc {
	return slug.Reserve(func(ctx context.Context, candidate string) (bool, error) {
		filter := bson.M{"slug": candidate}
		if !exclude.IsZero() {
			filter["_id"] = bson.M{"$ne": exclude}
		}
		n, err := c.CountDocuments(ctx, filter, options.Count().SetLimit(1))
		if err != nil {
			return false, err
		}
		return n > 0, nil
	}, reserved...)
}

// TextSearch builds an $or of case-insensitive substring matches of q over
// fields. q is matched literally.
func TextSearch(q string, fields ...string) bson.M {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
	or := make(bson.A, 0, len(fields))
	for _, f := range fields {
		or = append(or, bson.M{f: pattern})
	}
	return bson.M{"$or": or}
}

// ValidationError lists field-level problems found before a write.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Problems collects field errors; Err returns nil when none were added.
type Problems map[string]string

// Add records msg for field unless one is already recorded.
func (p Problems) Add(field, msg string) {
	if _, ok := p[field]; !ok {
		p[field] = msg
	}
}

// Err converts the collected problems to a *ValidationError, or nil.
func (p Problems) Err() error {
	if len(p) == 0 {
		return nil
	}
	return &ValidationError{Fields: map[string]string(p)}
}

// TrimTags trims each tag, drops blanks and duplicates, and keeps order.
func TrimTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
