// internal/app/store/ratelimit/store.go
package ratelimit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/stratacms/internal/app/system/normalize"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection for login attempt counters.
const CollectionName = "rate_limits"

// Attempt tracks failed login attempts for one key.
type Attempt struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Key          string             `bson:"key"`          // "email:<addr>" or "ip:<addr>"
	AttemptCount int                `bson:"attemptCount"` // failures in the current window
	WindowStart  time.Time          `bson:"windowStart"`
	LockedUntil  *time.Time         `bson:"lockedUntil"`
	LastAttempt  time.Time          `bson:"lastAttempt"` // TTL index field
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

// Store manages rate limit tracking for admin login attempts.
type Store struct {
	c               *mongo.Collection
	maxAttempts     int
	windowDuration  time.Duration
	lockoutDuration time.Duration
	now             func() time.Time
}

// New creates a rate limit Store. maxAttempts failures inside window lock
// the key for lockout.
func New(db *mongo.Database, maxAttempts int, window, lockout time.Duration) *Store {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Store{
		c:               db.Collection(CollectionName),
		maxAttempts:     maxAttempts,
		windowDuration:  window,
		lockoutDuration: lockout,
		now:             time.Now,
	}
}

// EmailKey builds the counter key for a login email.
// Case and diacritic variants of one address share a counter.
func EmailKey(email string) string {
	return "email:" + text.Fold(normalize.Email(email))
}

// IPKey builds the counter key for a client address.
func IPKey(ip string) string {
	return "ip:" + strings.TrimSpace(ip)
}

// CheckAllowed reports whether key may attempt a login.
// Returns:
//   - allowed: true if the login attempt should be processed
//   - remaining: attempts left before lockout (-1 if locked)
//   - lockedUntil: when the lockout expires (nil if not locked)
//
// Lookup errors fail open.
func (s *Store) CheckAllowed(ctx context.Context, key string) (allowed bool, remaining int, lockedUntil *time.Time) {
	now := s.now()

	var attempt Attempt
	err := s.c.FindOne(ctx, bson.M{"key": key}).Decode(&attempt)
	if err != nil {
		return true, s.maxAttempts, nil
	}

	if attempt.LockedUntil != nil && now.Before(*attempt.LockedUntil) {
		return false, -1, attempt.LockedUntil
	}
	if now.After(attempt.WindowStart.Add(s.windowDuration)) {
		return true, s.maxAttempts, nil
	}

	remaining = s.maxAttempts - attempt.AttemptCount
	if remaining <= 0 {
		// Window still open but the lockout has lapsed: one more try.
		return true, 1, nil
	}
	return true, remaining, nil
}

// RecordFailure counts a failed attempt for key and locks it when the limit
// is reached. The counter is incremented atomically so concurrent failures
// are all counted.
func (s *Store) RecordFailure(ctx context.Context, key string) (lockedOut bool, lockedUntil *time.Time, err error) {
	now := s.now().UTC().Truncate(time.Millisecond)

	// Start a fresh window for keys whose window has elapsed.
	if _, err := s.c.UpdateOne(ctx,
		bson.M{"key": key, "windowStart": bson.M{"$lt": now.Add(-s.windowDuration)}},
		bson.M{"$set": bson.M{"attemptCount": 0, "windowStart": now, "lockedUntil": nil}},
	); err != nil {
		return false, nil, err
	}

	var attempt Attempt
	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"key": key},
		bson.M{
			"$inc":         bson.M{"attemptCount": 1},
			"$set":         bson.M{"lastAttempt": now, "updatedAt": now},
			"$setOnInsert": bson.M{"windowStart": now, "createdAt": now, "lockedUntil": nil},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&attempt)
	if err != nil {
		return false, nil, err
	}

	if attempt.AttemptCount < s.maxAttempts {
		return false, nil, nil
	}

	until := now.Add(s.lockoutDuration)
	if _, err := s.c.UpdateOne(ctx,
		bson.M{"_id": attempt.ID},
		bson.M{"$set": bson.M{"lockedUntil": until}},
	); err != nil {
		return false, nil, err
	}
	return true, &until, nil
}

// Clear removes the counter for key after a successful login.
func (s *Store) Clear(ctx context.Context, key string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"key": key})
	return err
}

// GetAttempt returns the current attempt record for key, or nil.
func (s *Store) GetAttempt(ctx context.Context, key string) (*Attempt, error) {
	var attempt Attempt
	err := s.c.FindOne(ctx, bson.M{"key": key}).Decode(&attempt)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}
