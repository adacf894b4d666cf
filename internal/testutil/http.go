package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/dalemusser/stratacms/internal/app/system/auth"
	"github.com/dalemusser/stratacms/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID    string
	Name  string
	Email string
	Role  string
}

// AdminUser returns a TestUser with the super_admin role.
func AdminUser() TestUser {
	return TestUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test Admin",
		Email: "admin@test.com",
		Role:  models.RoleSuperAdmin,
	}
}

// EditorUser returns a TestUser with the editor role.
func EditorUser() TestUser {
	return TestUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test Editor",
		Email: "editor@test.com",
		Role:  models.RoleEditor,
	}
}

// WithUser adds a user to the request context for testing authenticated handlers.
// This bypasses RequireAdmin and injects the principal directly.
func WithUser(r *http.Request, user TestUser) *http.Request {
	return auth.WithTestUser(r, &auth.Principal{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
		Via:   auth.ViaToken,
	})
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewJSONRequest creates a request whose body is body encoded as JSON.
// A string or []byte body is sent verbatim so tests can post malformed JSON.
func NewJSONRequest(method, target string, body any) *http.Request {
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(b)
	case []byte:
		rdr = bytes.NewReader(b)
	default:
		buf, err := json.Marshal(b)
		if err != nil {
			panic("testutil: marshal request body: " + err.Error())
		}
		rdr = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, target, rdr)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// NewAuthenticatedRequest creates an HTTP request with a user in context.
func NewAuthenticatedRequest(method, target string, user TestUser) *http.Request {
	return WithUser(NewRequest(method, target), user)
}

// NewAuthenticatedJSONRequest combines NewJSONRequest and WithUser.
func NewAuthenticatedJSONRequest(method, target string, body any, user TestUser) *http.Request {
	return WithUser(NewJSONRequest(method, target, body), user)
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

type testingT interface {
	Helper()
	Errorf(string, ...any)
	Fatalf(string, ...any)
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t testingT, expected int) {
	t.Helper()
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body %s)", r.Code, expected, r.Body.String())
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t testingT, expected string) {
	t.Helper()
	if body := r.Body.String(); !strings.Contains(body, expected) {
		t.Errorf("response body does not contain %q: %s", expected, body)
	}
}

// DecodeJSON decodes the response body into v, failing the test on error.
func (r *ResponseRecorder) DecodeJSON(t testingT, v any) {
	t.Helper()
	if ct := r.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if err := json.Unmarshal(r.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", r.Body.String(), err)
	}
}

// ErrorMessage returns the "error" field of a JSON error body.
func (r *ResponseRecorder) ErrorMessage(t testingT) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	r.DecodeJSON(t, &body)
	return body.Error
}
