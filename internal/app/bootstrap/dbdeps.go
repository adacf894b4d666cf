// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/stratacms/internal/app/system/mailer"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database and backend dependencies for the CMS.
//
// It is created in ConnectDB and passed to the later lifecycle hooks
// (EnsureSchema, Startup, BuildHandler, Shutdown).
type DBDeps struct {
	// MongoDB client and database
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// FileStorage holds uploaded media objects.
	FileStorage storage.Store

	// Mailer delivers reservation requests.
	Mailer *mailer.Mailer
}
