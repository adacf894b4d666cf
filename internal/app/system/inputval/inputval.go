// Package inputval validates decoded JSON request bodies using
// waffle/pantry/validate.
//
// Define an input struct with validate tags and optional label tags, decode
// the body into it, and call Validate. Field keys in the Result use the json
// tag name so they line up with what the client sent.
//
//	type ReservationInput struct {
//	    FullName   string `json:"fullName" validate:"required,max=160" label:"Full name"`
//	    GuestCount int    `json:"guestCount" validate:"min=1,max=100" label:"Guests"`
//	}
//
//	if res := inputval.Validate(in); res.HasErrors() {
//	    jsonutil.ValidationError(w, res.Fields())
//	    return
//	}
package inputval

import (
	"net/mail"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/stratacms/internal/app/system/i18n"
	"github.com/dalemusser/stratacms/internal/app/system/normalize"
	"github.com/dalemusser/waffle/pantry/validate"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MinPhoneDigits is the fewest digits accepted by the phone rule.
const MinPhoneDigits = 8

// Result holds validation results with user-friendly messages.
type Result struct {
	Errors []FieldError
}

// FieldError represents a validation error for a single field.
type FieldError struct {
	Field   string
	Label   string
	Message string
}

// HasErrors returns true if there are any validation errors.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// First returns the first error message, or empty string if no errors.
func (r *Result) First() string {
	if len(r.Errors) > 0 {
		return r.Errors[0].Message
	}
	return ""
}

// All returns all error messages joined with "; ".
func (r *Result) All() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Fields maps field key to its first message, for jsonutil.ValidationError.
func (r *Result) Fields() map[string]string {
	out := make(map[string]string, len(r.Errors))
	for _, e := range r.Errors {
		if _, seen := out[e.Field]; !seen {
			out[e.Field] = e.Message
		}
	}
	return out
}

var (
	customValidator *validate.Validator
	validatorOnce   sync.Once
)

func getValidator() *validate.Validator {
	validatorOnce.Do(func() {
		customValidator = validate.New(validate.WithStopOnFirstError())

		rules := map[string]func(string) bool{
			"httpurl":  IsValidHTTPURL,
			"objectid": IsValidObjectID,
			"locale":   IsValidLocale,
			"phone":    IsValidPhone,
			"date":     IsValidDate,
			"clock":    IsValidClock,
		}
		for name, check := range rules {
			check := check
			customValidator.RegisterRuleFunc(name, func(value any) bool {
				s, ok := value.(string)
				if !ok {
					return false
				}
				// Optional fields: pair with "required" to forbid blanks.
				if strings.TrimSpace(s) == "" {
					return true
				}
				return check(s)
			}, name)
		}
	})
	return customValidator
}

// Validate validates a struct and returns a Result with user-friendly errors.
//
// Built-in rules (pantry/validate): required, email, oneof, min, max.
// Rules registered here, all of which accept an empty string:
//   - httpurl: http:// or https:// URL
//   - objectid: MongoDB ObjectID hex
//   - locale: a supported locale code
//   - phone: at least MinPhoneDigits digits, optional leading +
//   - date: YYYY-MM-DD
//   - clock: HH:MM, 24-hour
func Validate(s any) *Result {
	result := &Result{}

	err := getValidator().Struct(s)
	if err == nil {
		return result
	}

	info := fieldInfo(s)

	if errs, ok := err.(validate.Errors); ok {
		for _, e := range errs {
			fi := info[e.Field]
			label := fi.label
			if label == "" {
				label = e.Field
			}
			result.Errors = append(result.Errors, FieldError{
				Field:   e.Field,
				Label:   label,
				Message: formatMessage(label, e.Rule, e.Param, fi.numeric),
			})
		}
	}

	return result
}

type fieldMeta struct {
	label   string
	numeric bool
}

// fieldInfo reads label tags and kinds, keyed by json name when present.
func fieldInfo(s any) map[string]fieldMeta {
	out := make(map[string]fieldMeta)

	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return out
	}

	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		name := field.Name
		if jsonTag := field.Tag.Get("json"); jsonTag != "" {
			if part := strings.Split(jsonTag, ",")[0]; part != "" && part != "-" {
				name = part
			}
		}

		kind := field.Type.Kind()
		if kind == reflect.Ptr {
			kind = field.Type.Elem().Kind()
		}
		meta := fieldMeta{label: field.Tag.Get("label")}
		switch kind {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			meta.numeric = true
		}
		out[name] = meta
		if name != field.Name {
			out[field.Name] = meta
		}
	}

	return out
}

func formatMessage(label, rule, param string, numeric bool) string {
	switch rule {
	case "required":
		return label + " is required."
	case "email":
		return "A valid email address is required."
	case "oneof", "enum":
		return label + " must be one of: " + strings.ReplaceAll(param, " ", ", ") + "."
	case "min":
		if numeric {
			return label + " must be at least " + param + "."
		}
		return label + " must be at least " + param + " characters."
	case "max":
		if numeric {
			return label + " must be at most " + param + "."
		}
		return label + " must be at most " + param + " characters."
	case "httpurl":
		return label + " must be a valid URL starting with http:// or https://."
	case "objectid":
		return label + " is not a valid ID."
	case "locale":
		codes := make([]string, len(i18n.Supported))
		for i, l := range i18n.Supported {
			codes[i] = string(l)
		}
		return label + " must be one of: " + strings.Join(codes, ", ") + "."
	case "phone":
		return label + " must be a valid phone number."
	case "date":
		return label + " must be a date like 2025-12-31."
	case "clock":
		return label + " must be a time like 18:30."
	default:
		return label + " is invalid."
	}
}

// IsValidEmail reports whether email is a bare RFC 5322 address.
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	// ParseAddress also accepts "Name <email>".
	return addr.Address == email
}

// IsValidHTTPURL checks if the given string is a valid http:// or https:// URL.
func IsValidHTTPURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// IsValidObjectID checks if the given string is a valid MongoDB ObjectID hex.
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	return err == nil
}

// IsValidLocale reports whether s names a supported locale exactly.
func IsValidLocale(s string) bool {
	return i18n.IsSupported(i18n.Locale(strings.ToLower(strings.TrimSpace(s))))
}

// IsValidPhone accepts common separators and requires MinPhoneDigits digits.
func IsValidPhone(s string) bool {
	p := normalize.Phone(s)
	return len(strings.TrimPrefix(p, "+")) >= MinPhoneDigits
}

// IsValidDate accepts calendar dates in YYYY-MM-DD form.
func IsValidDate(s string) bool {
	_, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	return err == nil
}

// IsValidClock accepts HH:MM in 24-hour form.
func IsValidClock(s string) bool {
	_, err := time.Parse("15:04", strings.TrimSpace(s))
	return err == nil
}
