// Package apistats stores per-endpoint request statistics in fixed time buckets.
package apistats

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection for API statistics.
const CollectionName = "api_stats"

// StatType identifies the endpoint group being tracked.
type StatType string

const (
	StatTypeMediaList         StatType = "media_list"
	StatTypeMediaGet          StatType = "media_get"
	StatTypeTestimonialList   StatType = "testimonial_list"
	StatTypeTestimonialGet    StatType = "testimonial_get"
	StatTypeReservationSubmit StatType = "reservation_submit"
	StatTypeLogin             StatType = "auth_login"
)

// AllStatTypes lists every StatType in display order.
var AllStatTypes = []StatType{
	StatTypeMediaList,
	StatTypeMediaGet,
	StatTypeTestimonialList,
	StatTypeTestimonialGet,
	StatTypeReservationSubmit,
	StatTypeLogin,
}

// Bucket is one time bucket of aggregated statistics for a stat type.
type Bucket struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Bucket         time.Time          `bson:"bucket" json:"bucket"`
	BucketDuration string             `bson:"bucketDuration" json:"bucketDuration"`
	StatType       StatType           `bson:"statType" json:"statType"`
	Requests       int64              `bson:"requests" json:"requests"`
	ClientErrors   int64              `bson:"clientErrors" json:"clientErrors"` // 4xx
	ServerErrors   int64              `bson:"serverErrors" json:"serverErrors"` // 5xx
	TotalMs        int64              `bson:"totalMs" json:"totalMs"`
	MinMs          int64              `bson:"minMs" json:"minMs"`
	MaxMs          int64              `bson:"maxMs" json:"maxMs"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// AvgMs returns the average response time in milliseconds.
func (b *Bucket) AvgMs() float64 {
	if b.Requests == 0 {
		return 0
	}
	return float64(b.TotalMs) / float64(b.Requests)
}

// Store provides API statistics persistence.
type Store struct {
	c   *mongo.Collection
	now func() time.Time
}

// New creates a new API stats store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(CollectionName), now: time.Now}
}

// TruncateToBucket truncates a time to the start of its bucket.
func TruncateToBucket(t time.Time, duration time.Duration) time.Time {
	return t.UTC().Truncate(duration)
}

// Record adds one request to the current bucket for statType, creating the
// bucket if needed. status is the HTTP status written to the client.
func (s *Store) Record(ctx context.Context, statType StatType, bucketDuration time.Duration, durationMs int64, status int) error {
	now := s.now().UTC()
	bucket := TruncateToBucket(now, bucketDuration)
	durationStr := bucketDuration.String()

	inc := bson.M{"requests": 1, "totalMs": durationMs}
	switch {
	case status >= 500:
		inc["serverErrors"] = 1
	case status >= 400:
		inc["clientErrors"] = 1
	}

	// $min/$max also initialise the fields on insert, so they stay out of $setOnInsert.
	update := bson.M{
		"$inc": inc,
		"$set": bson.M{"updatedAt": now},
		"$setOnInsert": bson.M{
			"_id":            primitive.NewObjectID(),
			"bucket":         bucket,
			"bucketDuration": durationStr,
			"statType":       statType,
		},
		"$min": bson.M{"minMs": durationMs},
		"$max": bson.M{"maxMs": durationMs},
	}

	_, err := s.c.UpdateOne(ctx, bson.M{
		"bucket":         bucket,
		"statType":       statType,
		"bucketDuration": durationStr,
	}, update, options.Update().SetUpsert(true))
	return err
}

// GetRange returns the buckets of one stat type in [start, end], oldest first.
func (s *Store) GetRange(ctx context.Context, statType StatType, start, end time.Time) ([]Bucket, error) {
	filter := bson.M{
		"statType": statType,
		"bucket":   bson.M{"$gte": start.UTC(), "$lte": end.UTC()},
	}
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "bucket", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	buckets := []Bucket{}
	if err := cur.All(ctx, &buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}

// DeleteOlderThan deletes buckets that started before cutoff.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"bucket": bson.M{"$lt": cutoff.UTC()}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Summary totals one stat type over a time range.
type Summary struct {
	StatType     StatType  `json:"statType"`
	Requests     int64     `json:"requests"`
	ClientErrors int64     `json:"clientErrors"`
	ServerErrors int64     `json:"serverErrors"`
	AvgMs        float64   `json:"avgMs"`
	MinMs        int64     `json:"minMs"`
	MaxMs        int64     `json:"maxMs"`
	FirstBucket  time.Time `json:"firstBucket"`
	LastBucket   time.Time `json:"lastBucket"`
}

// ErrorRate returns the share of requests that failed, as a percentage.
func (s Summary) ErrorRate() float64 {
	if s.Requests == 0 {
		return 0
	}
	return float64(s.ClientErrors+s.ServerErrors) / float64(s.Requests) * 100
}

// GetSummary returns one Summary per stat type with data in [start, end],
// sorted by stat type.
func (s *Store) GetSummary(ctx context.Context, start, end time.Time) ([]Summary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"bucket": bson.M{"$gte": start.UTC(), "$lte": end.UTC()},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":          "$statType",
			"requests":     bson.M{"$sum": "$requests"},
			"clientErrors": bson.M{"$sum": "$clientErrors"},
			"serverErrors": bson.M{"$sum": "$serverErrors"},
			"totalMs":      bson.M{"$sum": "$totalMs"},
			"minMs":        bson.M{"$min": "$minMs"},
			"maxMs":        bson.M{"$max": "$maxMs"},
			"firstBucket":  bson.M{"$min": "$bucket"},
			"lastBucket":   bson.M{"$max": "$bucket"},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	summaries := []Summary{}
	for cur.Next(ctx) {
		var doc struct {
			ID           string    `bson:"_id"`
			Requests     int64     `bson:"requests"`
			ClientErrors int64     `bson:"clientErrors"`
			ServerErrors int64     `bson:"serverErrors"`
			TotalMs      int64     `bson:"totalMs"`
			MinMs        int64     `bson:"minMs"`
			MaxMs        int64     `bson:"maxMs"`
			FirstBucket  time.Time `bson:"firstBucket"`
			LastBucket   time.Time `bson:"lastBucket"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}

		avg := float64(0)
		if doc.Requests > 0 {
			avg = float64(doc.TotalMs) / float64(doc.Requests)
		}
		summaries = append(summaries, Summary{
			StatType:     StatType(doc.ID),
			Requests:     doc.Requests,
			ClientErrors: doc.ClientErrors,
			ServerErrors: doc.ServerErrors,
			AvgMs:        avg,
			MinMs:        doc.MinMs,
			MaxMs:        doc.MaxMs,
			FirstBucket:  doc.FirstBucket,
			LastBucket:   doc.LastBucket,
		})
	}
	return summaries, cur.Err()
}
