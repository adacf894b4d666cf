// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ways a request can authenticate against the admin API.
const (
	ViaToken  = "token"
	ViaAPIKey = "api_key"
)

// APIKeyPrincipalID identifies requests authenticated with the shared API key.
const APIKeyPrincipalID = "api-key"

/*─────────────────────────────────────────────────────────────────────────────*
| PrincipalFetcher interface                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// PrincipalFetcher loads fresh user data for a verified token subject.
type PrincipalFetcher interface {
	// FetchPrincipal retrieves a user by ID. Returns nil if the user is not
	// found, inactive, or any other condition that should reject the token.
	FetchPrincipal(ctx context.Context, userID string) *Principal
}

/*─────────────────────────────────────────────────────────────────────────────*
| Current-user helper                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

// Principal is the authenticated caller in the request context.
// Token callers are loaded fresh from the database on each request so role
// changes and deactivation take effect before the token expires.
type Principal struct {
	ID    string
	Name  string
	Email string
	Role  string
	Via   string // ViaToken or ViaAPIKey
}

// UserID returns the principal's ID as an ObjectID.
// API key principals and malformed IDs yield a zero ObjectID.
func (p *Principal) UserID() primitive.ObjectID {
	oid, err := primitive.ObjectIDFromHex(p.ID)
	if err != nil {
		return primitive.NilObjectID
	}
	return oid
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the principal and a "found?" flag from the request context.
func CurrentUser(r *http.Request) (*Principal, bool) {
	p, ok := r.Context().Value(currentUserKey).(*Principal)
	return p, ok
}

func withPrincipal(r *http.Request, p *Principal) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, p))
}

// WithTestUser injects a Principal into the request context for testing.
func WithTestUser(r *http.Request, p *Principal) *http.Request {
	return withPrincipal(r, p)
}
