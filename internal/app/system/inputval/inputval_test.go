package inputval

import (
	"testing"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		// Valid emails
		{"user@example.com", true},
		{"user.name@example.com", true},
		{"user+tag@example.com", true},
		{"user@subdomain.example.com", true},
		{"user123@example.co.uk", true},

		// Invalid emails
		{"", false},
		{"   ", false},
		{"notanemail", false},
		{"@example.com", false},
		{"user@", false},
		{"user@.com", false},
		{"user example.com", false},
		{"user@@example.com", false},
		{"Name <user@example.com>", false}, // ParseAddress accepts this but we want bare email
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			got := IsValidEmail(tt.email)
			if got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestIsValidHTTPURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		// Valid URLs
		{"http://example.com", true},
		{"https://example.com", true},
		{"https://example.com/path", true},
		{"https://example.com/path?query=value", true},
		{"https://subdomain.example.com", true},
		{"http://localhost:8080", true},

		// Invalid URLs
		{"", false},
		{"   ", false},
		{"example.com", false},          // No scheme
		{"ftp://example.com", false},    // Wrong scheme
		{"file:///path/to/file", false}, // Wrong scheme
		{"javascript:alert(1)", false},  // Wrong scheme
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got := IsValidHTTPURL(tt.url)
			if got != tt.want {
				t.Errorf("IsValidHTTPURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestIsValidObjectID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		// Valid ObjectIDs (24 hex characters)
		{"507f1f77bcf86cd799439011", true},
		{"000000000000000000000000", true},
		{"ffffffffffffffffffffffff", true},

		// Invalid ObjectIDs
		{"", false},
		{"   ", false},
		{"507f1f77bcf86cd79943901", false},  // Too short (23 chars)
		{"507f1f77bcf86cd7994390111", false}, // Too long (25 chars)
		{"507f1f77bcf86cd79943901g", false},  // Invalid hex char
		{"not-an-object-id", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got := IsValidObjectID(tt.id)
			if got != tt.want {
				t.Errorf("IsValidObjectID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestIsValidPhone(t *testing.T) {
	tests := map[string]bool{
		"0901 234 567":    true,
		"+84 (28) 3822-1": true,
		"+84-90-123-4567": true,
		"1234567":         false,
		"call me":         false,
		"":                false,
	}
	for in, want := range tests {
		if got := IsValidPhone(in); got != want {
			t.Errorf("IsValidPhone(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestIsValidDateAndClock(t *testing.T) {
	dates := map[string]bool{
		"2025-12-31": true,
		"2025-02-30": false,
		"31/12/2025": false,
	}
	for in, want := range dates {
		if got := IsValidDate(in); got != want {
			t.Errorf("IsValidDate(%q) = %v, want %v", in, got, want)
		}
	}
	clocks := map[string]bool{
		"18:30": true,
		"00:00": true,
		"24:10": false,
		"6pm":   false,
	}
	for in, want := range clocks {
		if got := IsValidClock(in); got != want {
			t.Errorf("IsValidClock(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestIsValidLocale(t *testing.T) {
	tests := map[string]bool{
		"vi":    true,
		" EN ":  true,
		"fr":    false,
		"vi-VN": false,
	}
	for in, want := range tests {
		if got := IsValidLocale(in); got != want {
			t.Errorf("IsValidLocale(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestValidate(t *testing.T) {
	type TestInput struct {
		Name  string `validate:"required" label:"Name"`
		Email string `validate:"required,email" label:"Email"`
	}

	tests := []struct {
		name      string
		input     TestInput
		wantError bool
	}{
		{
			name:      "valid input",
			input:     TestInput{Name: "John", Email: "john@example.com"},
			wantError: false,
		},
		{
			name:      "missing name",
			input:     TestInput{Name: "", Email: "john@example.com"},
			wantError: true,
		},
		{
			name:      "missing email",
			input:     TestInput{Name: "John", Email: ""},
			wantError: true,
		},
		{
			name:      "invalid email",
			input:     TestInput{Name: "John", Email: "notanemail"},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.input)
			if tt.wantError && !result.HasErrors() {
				t.Errorf("Validate() expected errors, got none")
			}
			if !tt.wantError && result.HasErrors() {
				t.Errorf("Validate() expected no errors, got: %s", result.First())
			}
		})
	}
}

func TestResult_First(t *testing.T) {
	// Empty result
	r := &Result{}
	if got := r.First(); got != "" {
		t.Errorf("First() on empty result = %q, want empty string", got)
	}

	// Result with errors
	r = &Result{
		Errors: []FieldError{
			{Field: "name", Label: "Name", Message: "Name is required."},
			{Field: "email", Label: "Email", Message: "Email is required."},
		},
	}
	if got := r.First(); got != "Name is required." {
		t.Errorf("First() = %q, want %q", got, "Name is required.")
	}
}

func TestResult_All(t *testing.T) {
	// Empty result
	r := &Result{}
	if got := r.All(); got != "" {
		t.Errorf("All() on empty result = %q, want empty string", got)
	}

	// Result with errors
	r = &Result{
		Errors: []FieldError{
			{Field: "name", Label: "Name", Message: "Name is required."},
			{Field: "email", Label: "Email", Message: "Email is required."},
		},
	}
	want := "Name is required.; Email is required."
	if got := r.All(); got != want {
		t.Errorf("All() = %q, want %q", got, want)
	}
}

func TestResult_HasErrors(t *testing.T) {
	// Empty result
	r := &Result{}
	if r.HasErrors() {
		t.Error("HasErrors() on empty result should return false")
	}

	// Result with errors
	r = &Result{
		Errors: []FieldError{
			{Field: "name", Label: "Name", Message: "Name is required."},
		},
	}
	if !r.HasErrors() {
		t.Error("HasErrors() with errors should return true")
	}
}

func TestResult_Fields(t *testing.T) {
	r := &Result{Errors: []FieldError{
		{Field: "fullName", Message: "Full name is required."},
		{Field: "fullName", Message: "second"},
		{Field: "guestCount", Message: "Guests must be at least 1."},
	}}
	got := r.Fields()
	if len(got) != 2 || got["fullName"] != "Full name is required." {
		t.Errorf("Fields() = %v", got)
	}
}

func TestValidate_CustomRules(t *testing.T) {
	type Input struct {
		URL    string `json:"url" validate:"httpurl" label:"URL"`
		Avatar string `json:"avatarAssetId" validate:"objectid" label:"Avatar"`
		Locale string `json:"locale" validate:"locale" label:"Locale"`
		Phone  string `json:"phone" validate:"phone" label:"Phone"`
	}

	tests := []struct {
		name  string
		in    Input
		field string
	}{
		{"all empty is fine", Input{}, ""},
		{"all valid", Input{"https://cdn.example.com/a.jpg", "507f1f77bcf86cd799439011", "en", "0901234567"}, ""},
		{"ftp url", Input{URL: "ftp://example.com"}, "url"},
		{"bad id", Input{Avatar: "invalid-id"}, "avatarAssetId"},
		{"bad locale", Input{Locale: "fr"}, "locale"},
		{"short phone", Input{Phone: "12"}, "phone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.in)
			if tt.field == "" {
				if res.HasErrors() {
					t.Errorf("Validate() = %s, want no errors", res.All())
				}
				return
			}
			if _, ok := res.Fields()[tt.field]; !ok {
				t.Errorf("Validate() fields = %v, want %q", res.Fields(), tt.field)
			}
		})
	}
}

func TestValidate_NumericMessages(t *testing.T) {
	type Input struct {
		Guests int `json:"guestCount" validate:"min=1,max=100" label:"Guests"`
	}
	if got := Validate(Input{Guests: 0}).First(); got != "Guests must be at least 1." {
		t.Errorf("min message = %q", got)
	}
	if got := Validate(Input{Guests: 101}).First(); got != "Guests must be at most 100." {
		t.Errorf("max message = %q", got)
	}
	if res := Validate(Input{Guests: 4}); res.HasErrors() {
		t.Errorf("Validate(4) = %s", res.All())
	}
}

func TestValidate_MinMaxRules(t *testing.T) {
	type LengthInput struct {
		Short string `validate:"min=3" label:"Short field"`
		Long  string `validate:"max=5" label:"Long field"`
	}

	// Valid lengths
	result := Validate(LengthInput{Short: "abc", Long: "12345"})
	if result.HasErrors() {
		t.Errorf("Validate() valid lengths should pass, got: %s", result.First())
	}

	// Too short
	result = Validate(LengthInput{Short: "ab", Long: "123"})
	if !result.HasErrors() {
		t.Error("Validate() short=ab should fail min=3")
	}

	// Too long
	result = Validate(LengthInput{Short: "abcd", Long: "123456"})
	if !result.HasErrors() {
		t.Error("Validate() long=123456 should fail max=5")
	}
}

func TestValidate_OneOfRule(t *testing.T) {
	type EnumInput struct {
		Source string `validate:"oneof=website phone walk_in other" label:"Source"`
	}

	result := Validate(EnumInput{Source: "walk_in"})
	if result.HasErrors() {
		t.Errorf("Validate() oneof=walk_in should be valid, got: %s", result.First())
	}

	result = Validate(EnumInput{Source: "yelp"})
	if !result.HasErrors() {
		t.Error("Validate() oneof=yelp should fail")
	}
}

func TestValidate_PointerStruct(t *testing.T) {
	type Input struct {
		Name string `validate:"required" label:"Name"`
	}

	input := &Input{Name: "test"}
	result := Validate(input)
	if result.HasErrors() {
		t.Errorf("Validate() pointer struct should work, got: %s", result.First())
	}
}

func TestValidate_NonStruct(t *testing.T) {
	// Validate with non-struct should not panic
	result := Validate("not a struct")
	// Should return empty result (no fields to validate)
	if result == nil {
		t.Error("Validate() non-struct should return non-nil result")
	}
}

func TestValidate_JSONTags(t *testing.T) {
	type Input struct {
		FullName string `json:"fullName" validate:"required" label:"Full name"`
	}

	result := Validate(Input{FullName: ""})
	if !result.HasErrors() {
		t.Error("Validate() empty FullName should fail")
	}
	// The label should be used in the message
	if result.First() != "Full name is required." {
		t.Errorf("Validate() error message = %q, want label-based message", result.First())
	}
}

func TestValidate_NoLabel(t *testing.T) {
	type Input struct {
		Name string `validate:"required"` // No label tag
	}

	result := Validate(Input{Name: ""})
	if !result.HasErrors() {
		t.Error("Validate() empty Name should fail")
	}
	// Should use field name when no label
	if result.First() != "Name is required." {
		t.Errorf("Validate() error message = %q, want field name message", result.First())
	}
}
