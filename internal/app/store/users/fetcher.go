// internal/app/store/users/fetcher.go
package userstore

import (
	"context"

	"github.com/dalemusser/stratacms/internal/app/system/auth"
	"github.com/dalemusser/stratacms/internal/app/system/normalize"
	"github.com/dalemusser/stratacms/internal/app/system/timeouts"
	"github.com/dalemusser/stratacms/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Fetcher implements auth.PrincipalFetcher to load fresh user data on each
// admin request.
type Fetcher struct {
	users  *mongo.Collection
	logger *zap.Logger
}

// NewFetcher creates a PrincipalFetcher that queries the given database.
func NewFetcher(db *mongo.Database, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		users:  db.Collection(CollectionName),
		logger: logger,
	}
}

// FetchPrincipal retrieves a user by ID and returns nil if the user is not
// found, inactive, holds an unknown role, or if any error occurs.
func (f *Fetcher) FetchPrincipal(ctx context.Context, userID string) *auth.Principal {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var u models.User
	proj := options.FindOne().SetProjection(bson.M{
		"_id":      1,
		"fullName": 1,
		"email":    1,
		"role":     1,
		"isActive": 1,
	})
	if err := f.users.FindOne(ctx, bson.M{"_id": oid}, proj).Decode(&u); err != nil {
		if err != mongo.ErrNoDocuments {
			f.logger.Warn("principal lookup failed", zap.String("user_id", userID), zap.Error(err))
		}
		return nil
	}

	role := normalize.Role(u.Role)
	if !u.IsActive || !models.IsValidRole(role) {
		return nil
	}

	return &auth.Principal{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
		Role:  role,
	}
}
