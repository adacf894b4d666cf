// Package htmlsanitize strips markup from user-supplied text that is stored
// and served as plain text (alt text, captions, quotes).
// It uses bluemonday's strict policy, which removes every element and drops
// the contents of script and style blocks.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/dalemusser/stratacms/internal/app/system/i18n"
	"github.com/microcosm-cc/bluemonday"
)

var (
	// policy is the shared strict policy.
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// PlainText removes all HTML from s and returns readable text.
// Entities produced by the policy are decoded again so "Fish & Chips"
// round-trips unchanged.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	if !strings.ContainsAny(s, "<>&") {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(html.UnescapeString(getPolicy().Sanitize(s)))
}

// Text applies PlainText to every value of t and drops values that end up
// blank or belong to unsupported locales.
func Text(t i18n.Text) i18n.Text {
	if len(t) == 0 {
		return nil
	}
	out := make(i18n.Text, len(t))
	for k, v := range t {
		out[k] = PlainText(v)
	}
	return out.Clean()
}
