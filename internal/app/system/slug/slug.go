// Package slug turns free text into URL-safe identifiers and resolves
// collisions against a collection.
package slug

import (
	"context"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// dStroke covers the Vietnamese letters that have no decomposed form.
var dStroke = strings.NewReplacer("đ", "d", "Đ", "D")

// Slugify normalizes text to lowercase ASCII letters, digits and single
// hyphens, with no leading or trailing hyphen. It returns "" when nothing
// usable remains.
func Slugify(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	folded = strings.ToLower(strings.TrimSpace(dStroke.Replace(folded)))

	var b strings.Builder
	b.Grow(len(folded))
	pendingHyphen := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// OrFallback slugifies text, returning fallback if the result is empty.
func OrFallback(text, fallback string) string {
	if s := Slugify(text); s != "" {
		return s
	}
	return fallback
}

// FirstOf slugifies the first candidate that yields a non-empty slug.
// If none does, fallback is returned.
func FirstOf(fallback string, candidates ...string) string {
	for _, c := range candidates {
		if s := Slugify(c); s != "" {
			return s
		}
	}
	return fallback
}

// Truncate cuts s to at most max bytes without leaving a trailing hyphen.
// Slugs are ASCII, so byte and rune lengths agree.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return strings.TrimRight(s[:max], "-")
}

// ExistsFunc reports whether a slug is already taken by some other document.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

// Reserve wraps exists so that names always count as taken. Slugs that
// collide with static route segments are reserved this way.
func Reserve(exists ExistsFunc, names ...string) ExistsFunc {
	if len(names) == 0 {
		return exists
	}
	reserved := make(map[string]bool, len(names))
	for _, n := range names {
		reserved[n] = true
	}
	return func(ctx context.Context, candidate string) (bool, error) {
		if reserved[candidate] {
			return true, nil
		}
		return exists(ctx, candidate)
	}
}

// EnsureUnique returns base if it is free, otherwise the first free
// candidate of base-2, base-3, ... When max is positive the base is cut so
// that base plus suffix stays within max bytes. The search is unbounded;
// it stops early only on an error from exists or a cancelled context.
func EnsureUnique(ctx context.Context, base string, max int, exists ExistsFunc) (string, error) {
	candidate := Truncate(base, max)
	for n := 2; ; n++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = withSuffix(base, n, max)
	}
}

func withSuffix(base string, n, max int) string {
	suffix := "-" + strconv.Itoa(n)
	if max > 0 && len(base)+len(suffix) > max {
		base = Truncate(base, max-len(suffix))
	}
	if base == "" {
		return suffix[1:]
	}
	return base + suffix
}
