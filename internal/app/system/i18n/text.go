package i18n

import (
	"sort"
	"strings"
)

// Text is a localized string stored as an object keyed by locale code,
// e.g. {"vi": "Chả giò", "en": "Spring rolls"}.
type Text map[string]string

// Resolve returns the value for loc, falling back to the default locale,
// then to the other supported locales, then to any other key present.
// Blank values are skipped. Returns "" when nothing is set.
func (t Text) Resolve(loc Locale) string {
	if len(t) == 0 {
		return ""
	}
	if v := t[string(loc)]; strings.TrimSpace(v) != "" {
		return v
	}
	for _, l := range FallbackOrder() {
		if v := t[string(l)]; strings.TrimSpace(v) != "" {
			return v
		}
	}

	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := t[k]; strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// Candidates returns the values in fallback order (default locale first),
// including blanks.
func (t Text) Candidates() []string {
	order := FallbackOrder()
	out := make([]string, 0, len(order))
	for _, l := range order {
		out = append(out, t[string(l)])
	}
	return out
}

// Clean returns a copy holding only supported locales with trimmed,
// non-blank values. A result with no entries is nil.
func (t Text) Clean() Text {
	var out Text
	for _, l := range Supported {
		v := strings.TrimSpace(t[string(l)])
		if v == "" {
			continue
		}
		if out == nil {
			out = Text{}
		}
		out[string(l)] = v
	}
	return out
}

// IsEmpty reports whether no supported locale carries a value.
func (t Text) IsEmpty() bool {
	return len(t.Clean()) == 0
}

// LocalizeList projects every document through project. The input slice is
// not modified.
func LocalizeList[T any, V any](docs []T, loc Locale, project func(T, Locale) V) []V {
	out := make([]V, 0, len(docs))
	for _, d := range docs {
		out = append(out, project(d, loc))
	}
	return out
}
