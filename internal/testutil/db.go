// Package testutil holds shared helpers for handler and store tests.
package testutil

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/stratacms/internal/app/system/indexes"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// DefaultTestURI is used when STRATACMS_TEST_MONGO_URI is unset.
	DefaultTestURI = "mongodb://localhost:27017"
	// TestDBPrefix starts every per-test database name.
	TestDBPrefix = "stratacms_test"

	// MongoDB rejects database names longer than 63 bytes.
	maxDBName = 63
)

// sharedClient is dialed on first use and reused by every test in the binary.
var sharedClient = sync.OnceValues(func() (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(testURI()).
		SetMaxPoolSize(200).
		SetMinPoolSize(4).
		SetMaxConnIdleTime(30 * time.Second).
		SetServerSelectionTimeout(5 * time.Second)

	c, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := c.Ping(ctx, nil); err != nil {
		_ = c.Disconnect(context.Background())
		return nil, err
	}
	return c, nil
})

func testURI() string {
	if uri := strings.TrimSpace(os.Getenv("STRATACMS_TEST_MONGO_URI")); uri != "" {
		return uri
	}
	return DefaultTestURI
}

// SetupTestDB returns an empty database, private to t, with production
// indexes in place. It is dropped again when t finishes. Tests are skipped
// when no MongoDB is reachable.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	client, err := sharedClient()
	if err != nil {
		t.Skipf("skipping: test MongoDB unavailable: %v", err)
	}

	db := client.Database(dbNameFor(t.Name()))

	ctx, cancel := TestContext()
	defer cancel()
	if err := db.Drop(ctx); err != nil {
		t.Fatalf("drop %s: %v", db.Name(), err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes on %s: %v", db.Name(), err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Drop(ctx); err != nil {
			t.Logf("drop %s on cleanup: %v", db.Name(), err)
		}
	})
	return db
}

// dbNameFor maps a test name onto a legal database name. Long names are
// cut and suffixed with a hash of the full name so subtests stay distinct.
func dbNameFor(testName string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, testName)

	name := TestDBPrefix + "_" + clean
	if len(name) <= maxDBName {
		return name
	}
	sum := sha1.Sum([]byte(testName))
	suffix := "_" + hex.EncodeToString(sum[:4])
	return name[:maxDBName-len(suffix)] + suffix
}

// TestContext returns a context bounded for a single test's database work.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
