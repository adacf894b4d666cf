// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/stratacms/internal/app/system/normalize"
	"github.com/dalemusser/stratacms/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CollectionName is the MongoDB collection for CMS operators.
const CollectionName = "users"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName)}
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	errBadRole        = errors.New("invalid role")
	errNoEmail        = errors.New("email is required")
	errNoPassword     = errors.New("password hash is required")
)

// GetByID loads a user by ObjectID. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by normalized email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing & validating fields.
// u.PasswordHash must already be a bcrypt hash; IsActive is stored as given.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FullName = normalize.Name(u.FullName)
	u.Email = normalize.Email(u.Email)
	u.Role = normalize.Role(u.Role)
	if u.Role == "" {
		u.Role = models.RoleSuperAdmin
	}

	if u.Email == "" {
		return models.User{}, errNoEmail
	}
	if u.PasswordHash == "" {
		return models.User{}, errNoPassword
	}
	if !models.IsValidRole(u.Role) {
		return models.User{}, errBadRole
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// EnsureUser creates u unless a user with the same email already exists.
// The existing account is left untouched. Reports whether a user was created.
func (s *Store) EnsureUser(ctx context.Context, u models.User) (bool, error) {
	_, err := s.GetByEmail(ctx, u.Email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return false, err
	}
	if _, err := s.Create(ctx, u); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			// Lost a race with another instance seeding the same account.
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// TouchLastLogin records a successful login.
func (s *Store) TouchLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	at = at.UTC().Truncate(time.Millisecond)
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"lastLoginAt": at,
		"updatedAt":   at,
	}})
	return err
}

