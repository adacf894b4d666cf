// Package queryparams coerces list query parameters into typed values.
//
// Parsing is permissive: a value that is absent or not understood means
// "not set" (the caller applies its documented default or skips the
// filter). Nothing here returns an error to the client.
package queryparams

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/waffle/pantry/pagination"
)

// Pagination defaults.
const (
	DefaultPage  int64 = 1
	DefaultLimit int64 = 20
	MaxLimit     int64 = 100

	// MaxPage keeps Skip within int64 at any limit up to MaxLimit. Pages
	// past the data are simply empty.
	MaxPage = math.MaxInt64/MaxLimit + 1
)

var (
	truthy = map[string]bool{"1": true, "true": true, "yes": true, "y": true, "on": true}
	falsy  = map[string]bool{"0": true, "false": true, "no": true, "n": true, "off": true}
)

// Bool parses a boolean-like token. Accepted truthy tokens are 1, true,
// yes, y, on; falsy tokens are 0, false, no, n, off (case-insensitive).
// Anything else yields nil.
func Bool(raw string) *bool {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case truthy[s]:
		v := true
		return &v
	case falsy[s]:
		v := false
		return &v
	}
	return nil
}

// Float parses a finite number, or nil.
func Float(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Enum lowercases and trims raw and returns it if it is one of allowed,
// otherwise "".
func Enum(raw string, allowed []string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	for _, a := range allowed {
		if s == a {
			return s
		}
	}
	return ""
}

// Page is a resolved 1-based page request.
type Page struct {
	Page  int64
	Limit int64
}

// Skip returns the number of documents to skip.
func (p Page) Skip() int64 {
	return (p.Page - 1) * p.Limit
}

// PageFromRequest reads page and limit (or per_page). Both default when
// absent or invalid; limit is capped at MaxLimit and page at MaxPage.
func PageFromRequest(r *http.Request) Page {
	pg := pagination.FromRequestWithDefaults(r, int(DefaultLimit), int(MaxLimit))
	return Page{Page: int64(pg.Page), Limit: int64(pg.Limit())}.Normalize()
}

// Normalize applies the defaults and caps.
func (p Page) Normalize() Page {
	if p.Page <= 0 {
		p.Page = DefaultPage
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	return p
}
