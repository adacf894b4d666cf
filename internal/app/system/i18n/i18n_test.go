package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDetectLocale(t *testing.T) {
	tests := []struct {
		hint string
		want Locale
	}{
		{"", Vietnamese},
		{"   ", Vietnamese},
		{"vi", Vietnamese},
		{"en", English},
		{"EN", English},
		{"en-US", English},
		{"vi-VN,en;q=0.8", Vietnamese},
		{"en-GB,vi;q=0.9", English},
		{"fr,en;q=0.5", English},
		{"fr", Vietnamese},
		{"!!not a locale!!", Vietnamese},
	}

	for _, tt := range tests {
		t.Run(tt.hint, func(t *testing.T) {
			if got := DetectLocale(tt.hint); got != tt.want {
				t.Errorf("DetectLocale(%q) = %q, want %q", tt.hint, got, tt.want)
			}
		})
	}
}

func TestConfigure(t *testing.T) {
	t.Cleanup(func() { _ = Configure(Vietnamese) })

	if err := Configure("de"); err == nil {
		t.Error("Configure(de) should fail for an unsupported locale")
	}
	if err := Configure(" EN "); err != nil {
		t.Fatalf("Configure(EN) error = %v", err)
	}
	if got := Default(); got != English {
		t.Errorf("Default() = %q, want %q", got, English)
	}
	if got := DetectLocale("fr"); got != English {
		t.Errorf("DetectLocale(fr) after Configure(en) = %q, want %q", got, English)
	}
	order := FallbackOrder()
	if len(order) != 2 || order[0] != English || order[1] != Vietnamese {
		t.Errorf("FallbackOrder() = %v, want [en vi]", order)
	}
}

func TestFromRequest(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		headers map[string]string
		want    Locale
	}{
		{"nothing", "/", nil, Vietnamese},
		{"locale param", "/?locale=en", map[string]string{"Accept-Language": "vi"}, English},
		{"locale beats lang", "/?locale=vi&lang=en", nil, Vietnamese},
		{"lang param", "/?lang=en", map[string]string{"X-Locale": "vi"}, English},
		{"x-locale header", "/", map[string]string{"X-Locale": "en", "X-Language": "vi"}, English},
		{"x-language header", "/", map[string]string{"X-Language": "en", "Accept-Language": "vi"}, English},
		{"accept-language", "/", map[string]string{"Accept-Language": "en-US,en;q=0.9"}, English},
		{"first hint wins even if unknown", "/?locale=fr", map[string]string{"Accept-Language": "en"}, Vietnamese},
		{"blank param skipped", "/?locale=%20", map[string]string{"Accept-Language": "en"}, English},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := FromRequest(req); got != tt.want {
				t.Errorf("FromRequest(%s) = %q, want %q", tt.target, got, tt.want)
			}
		})
	}
}

func TestText_Resolve(t *testing.T) {
	both := Text{"vi": "Chả giò", "en": "Spring rolls"}
	onlyEN := Text{"en": "Spring rolls"}
	onlyVI := Text{"vi": "Chả giò"}
	blankVI := Text{"vi": "  ", "en": "Spring rolls"}
	foreign := Text{"fr": "Rouleaux"}

	tests := []struct {
		name string
		text Text
		loc  Locale
		want string
	}{
		{"exact vi", both, Vietnamese, "Chả giò"},
		{"exact en", both, English, "Spring rolls"},
		{"falls back to other supported", onlyEN, Vietnamese, "Spring rolls"},
		{"falls back to default", onlyVI, English, "Chả giò"},
		{"blank value skipped", blankVI, Vietnamese, "Spring rolls"},
		{"unknown key as last resort", foreign, English, "Rouleaux"},
		{"nil", nil, English, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.text.Resolve(tt.loc); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.loc, got, tt.want)
			}
		})
	}
}

func TestText_ResolveDefaultOnlyIsStable(t *testing.T) {
	text := Text{"vi": "Gỏi cuốn"}
	for _, loc := range Supported {
		if got := text.Resolve(loc); got != "Gỏi cuốn" {
			t.Errorf("Resolve(%q) = %q, want %q", loc, got, "Gỏi cuốn")
		}
	}
}

func TestText_Clean(t *testing.T) {
	in := Text{"vi": "  Phở  ", "en": "   ", "fr": "Soupe"}
	got := in.Clean()

	if len(got) != 1 || got["vi"] != "Phở" {
		t.Errorf("Clean() = %v, want map[vi:Phở]", got)
	}
	if in["vi"] != "  Phở  " {
		t.Error("Clean() must not modify the receiver")
	}
	if Text(nil).Clean() != nil {
		t.Error("Clean() of nil should be nil")
	}
	if !(Text{"en": " "}).IsEmpty() {
		t.Error("IsEmpty() should be true for blank values")
	}
}

func TestLocalizeList(t *testing.T) {
	docs := []Text{
		{"vi": "Một", "en": "One"},
		{"vi": "Hai"},
	}
	got := LocalizeList(docs, English, func(d Text, loc Locale) string { return d.Resolve(loc) })

	want := []string{"One", "Hai"}
	if len(got) != len(want) {
		t.Fatalf("LocalizeList() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("LocalizeList()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if docs[1]["en"] != "" {
		t.Error("LocalizeList() must not mutate input documents")
	}
}
