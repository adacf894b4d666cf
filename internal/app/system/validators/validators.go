// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/stratacms/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("mediaassets", mediaAssetsSchema())
	ensure("testimonials", testimonialsSchema())
	ensure("users", usersSchema())
	ensure("rate_limits", nil)
	ensure("api_stats", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

func enum(values []string) bson.A {
	out := make(bson.A, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}

// localized matches an i18n map: locale code to string.
var localized = bson.M{
	"bsonType":             "object",
	"additionalProperties": bson.M{"bsonType": "string"},
}

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func mediaAssetsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"kind", "provider", "url", "slug", "isActive", "sortOrder"},
			"properties": bson.M{
				"kind":         bson.M{"enum": enum(models.MediaKinds)},
				"provider":     bson.M{"enum": enum(models.MediaProviders)},
				"url":          nonBlank,
				"slug":         nonBlank,
				"alt_i18n":     localized,
				"caption_i18n": localized,
				"tags":         bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
				"isActive":     bson.M{"bsonType": "bool"},
				"sortOrder":    bson.M{"bsonType": bson.A{"int", "long"}},
				"width":        bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
				"height":       bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
			},
		},
	}
}

func testimonialsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"quote_i18n", "rating", "authorName", "slug", "source", "isActive", "sortOrder"},
			"properties": bson.M{
				"quote_i18n":      localized,
				"authorRole_i18n": localized,
				"authorName":      nonBlank,
				"slug":            nonBlank,
				"rating":          bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1, "maximum": 5},
				"source":          bson.M{"enum": enum(models.TestimonialSources)},
				"isActive":        bson.M{"bsonType": "bool"},
				"isFeatured":      bson.M{"bsonType": "bool"},
				"sortOrder":       bson.M{"bsonType": bson.A{"int", "long"}},
				"mediaAssetIds":   bson.M{"bsonType": "array", "items": bson.M{"bsonType": "objectId"}},
			},
		},
	}
}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"email", "passwordHash", "role", "isActive"},
			"properties": bson.M{
				"email":        nonBlank,
				"fullName":     bson.M{"bsonType": "string"},
				"passwordHash": nonBlank,
				"role":         bson.M{"enum": enum(models.AllRoles())},
				"isActive":     bson.M{"bsonType": "bool"},
			},
		},
	}
}
