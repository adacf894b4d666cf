package apicors

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	tests := []struct {
		name       string
		origins    []string
		origin     string
		preflight  bool
		wantOrigin string
		wantStatus int
	}{
		{"wildcard", nil, "https://achi.vn", false, "*", http.StatusTeapot},
		{"star entry", []string{"*"}, "https://achi.vn", false, "*", http.StatusTeapot},
		{"listed origin", []string{"https://achi.vn/"}, "https://achi.vn", false, "https://achi.vn", http.StatusTeapot},
		{"unlisted origin", []string{"https://achi.vn"}, "https://evil.example", false, "", http.StatusTeapot},
		{"preflight", nil, "https://achi.vn", true, "*", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := http.MethodGet
			if tt.preflight {
				method = http.MethodOptions
			}
			req := httptest.NewRequest(method, "/api/testimonials", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rec := httptest.NewRecorder()
			Middleware(tt.origins...)(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if rec.Header().Get("Access-Control-Allow-Credentials") != "" {
				t.Error("credentials must not be allowed")
			}
		})
	}
}
