// Package i18n resolves the locale a request asks for and projects localized
// text fields down to a single string.
//
// Content is authored in a fixed set of locales (Supported). One of them is
// the configured default; every lookup that cannot be satisfied for the
// requested locale falls back to the default, then to the remaining
// supported locales in declaration order.
package i18n

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// Locale is a supported content locale code.
type Locale string

const (
	Vietnamese Locale = "vi"
	English    Locale = "en"
)

// Supported lists the locales content may be authored in.
var Supported = []Locale{Vietnamese, English}

var (
	mu         sync.RWMutex
	defaultLoc = Vietnamese
	matcher    = newMatcher(Vietnamese)
)

// Configure sets the default locale. It is called once during config validation.
func Configure(def Locale) error {
	def = Locale(strings.ToLower(strings.TrimSpace(string(def))))
	if !IsSupported(def) {
		return fmt.Errorf("unsupported default locale %q", def)
	}
	mu.Lock()
	defaultLoc = def
	matcher = newMatcher(def)
	mu.Unlock()
	return nil
}

// Default returns the configured default locale.
func Default() Locale {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLoc
}

// IsSupported reports whether l is one of the supported locale codes.
func IsSupported(l Locale) bool {
	for _, s := range Supported {
		if s == l {
			return true
		}
	}
	return false
}

// FallbackOrder returns the default locale followed by the other supported
// locales.
func FallbackOrder() []Locale {
	return ordered(Default())
}

func ordered(def Locale) []Locale {
	out := make([]Locale, 0, len(Supported))
	out = append(out, def)
	for _, l := range Supported {
		if l != def {
			out = append(out, l)
		}
	}
	return out
}

func newMatcher(def Locale) language.Matcher {
	order := ordered(def)
	tags := make([]language.Tag, 0, len(order))
	for _, l := range order {
		tags = append(tags, language.Make(string(l)))
	}
	return language.NewMatcher(tags)
}

// DetectLocale maps a raw hint ("en", "vi-VN", "vi-VN,en;q=0.8", "EN")
// to a supported locale. Empty, malformed and unmatched hints yield the
// default locale.
func DetectLocale(hint string) Locale {
	mu.RLock()
	def, m := defaultLoc, matcher
	mu.RUnlock()

	hint = strings.TrimSpace(hint)
	if hint == "" {
		return def
	}

	tags, _, err := language.ParseAcceptLanguage(hint)
	if err != nil || len(tags) == 0 {
		t, perr := language.Parse(hint)
		if perr != nil {
			return def
		}
		tags = []language.Tag{t}
	}

	_, idx, conf := m.Match(tags...)
	if conf == language.No {
		return def
	}
	order := ordered(def)
	if idx < 0 || idx >= len(order) {
		return def
	}
	return order[idx]
}

// FromRequest resolves the request locale. The first non-empty hint wins:
// ?locale=, ?lang=, X-Locale, X-Language, Accept-Language.
func FromRequest(r *http.Request) Locale {
	q := r.URL.Query()
	hints := []string{
		q.Get("locale"),
		q.Get("lang"),
		r.Header.Get("X-Locale"),
		r.Header.Get("X-Language"),
		r.Header.Get("Accept-Language"),
	}
	for _, h := range hints {
		if strings.TrimSpace(h) != "" {
			return DetectLocale(h)
		}
	}
	return Default()
}
