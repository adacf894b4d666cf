package queryparams

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBool(t *testing.T) {
	tests := []struct {
		raw  string
		want *bool
	}{
		{"1", ptr(true)},
		{"true", ptr(true)},
		{"TRUE", ptr(true)},
		{" yes ", ptr(true)},
		{"y", ptr(true)},
		{"on", ptr(true)},
		{"0", ptr(false)},
		{"false", ptr(false)},
		{"No", ptr(false)},
		{"n", ptr(false)},
		{"off", ptr(false)},
		{"", nil},
		{"maybe", nil},
		{"2", nil},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := Bool(tt.raw)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("Bool(%q) = %v, want nil", tt.raw, *got)
			case tt.want != nil && got == nil:
				t.Errorf("Bool(%q) = nil, want %v", tt.raw, *tt.want)
			case tt.want != nil && *got != *tt.want:
				t.Errorf("Bool(%q) = %v, want %v", tt.raw, *got, *tt.want)
			}
		})
	}
}

func TestFloat(t *testing.T) {
	if got := Float("4.5"); got == nil || *got != 4.5 {
		t.Errorf("Float(4.5) = %v, want 4.5", got)
	}
	for _, raw := range []string{"", "abc", "NaN", "Inf", "-Inf"} {
		if got := Float(raw); got != nil {
			t.Errorf("Float(%q) = %v, want nil", raw, *got)
		}
	}
}

func TestEnum(t *testing.T) {
	allowed := []string{"image", "video"}
	tests := []struct {
		raw  string
		want string
	}{
		{"image", "image"},
		{" VIDEO ", "video"},
		{"audio", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Enum(tt.raw, allowed); got != tt.want {
			t.Errorf("Enum(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestPageFromRequest(t *testing.T) {
	tests := []struct {
		query string
		want  Page
		skip  int64
	}{
		{"", Page{Page: 1, Limit: 20}, 0},
		{"page=2&limit=10", Page{Page: 2, Limit: 10}, 10},
		{"page=2&per_page=5", Page{Page: 2, Limit: 5}, 5},
		{"page=abc&limit=-1", Page{Page: 1, Limit: 20}, 0},
		{"page=3&limit=1000", Page{Page: 3, Limit: MaxLimit}, 2 * MaxLimit},
		{"page=99999999999999999999", Page{Page: 1, Limit: 20}, 0},
		{"page=9223372036854775807&limit=20", Page{Page: MaxPage, Limit: 20}, (MaxPage - 1) * 20},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/media-assets?"+tt.query, nil)
			got := PageFromRequest(r)
			if got != tt.want {
				t.Errorf("PageFromRequest(%q) = %+v, want %+v", tt.query, got, tt.want)
			}
			if got.Skip() != tt.skip {
				t.Errorf("PageFromRequest(%q).Skip() = %d, want %d", tt.query, got.Skip(), tt.skip)
			}
			if got.Skip() < 0 {
				t.Errorf("PageFromRequest(%q).Skip() = %d, want non-negative", tt.query, got.Skip())
			}
		})
	}
}

func TestPage_Normalize(t *testing.T) {
	got := Page{}.Normalize()
	if got.Page != DefaultPage || got.Limit != DefaultLimit {
		t.Errorf("Page{}.Normalize() = %+v, want defaults", got)
	}

	huge := Page{Page: math.MaxInt64, Limit: 500}.Normalize()
	if huge.Page != MaxPage || huge.Limit != MaxLimit {
		t.Errorf("Normalize() of huge page = %+v, want page %d limit %d", huge, MaxPage, MaxLimit)
	}
	if huge.Skip() < 0 {
		t.Errorf("Skip() = %d after Normalize, want non-negative", huge.Skip())
	}
}

func ptr(b bool) *bool { return &b }
