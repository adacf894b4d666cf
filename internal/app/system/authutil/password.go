// internal/app/system/authutil/password.go
package authutil

import (
	"errors"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Password rules for CMS operator accounts. MaxPasswordLength is bcrypt's
// input limit; longer inputs would be silently truncated.
const (
	MinPasswordLength = 10
	MaxPasswordLength = 72
	BcryptCost        = 12
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 10 characters")
	ErrPasswordTooLong  = errors.New("password must be at most 72 bytes")
	ErrPasswordCommon   = errors.New("password is too common")
)

// commonPasswords are rejected regardless of case. Entries shorter than
// MinPasswordLength fail the length rule first and are omitted.
var commonPasswords = map[string]bool{
	"1234567890":    true,
	"0123456789":    true,
	"12345678910":   true,
	"1111111111":    true,
	"password12":    true,
	"password123":   true,
	"qwertyuiop":    true,
	"matkhau123":    true,
	"matkhau1234":   true,
	"admin12345":    true,
	"administrator": true,
	"iloveyou123":   true,
	"changeme123":   true,
	"letmein123":    true,
	"welcome123":    true,
}

// ValidatePassword checks a candidate password against the rules.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	if commonPasswords[strings.ToLower(password)] {
		return ErrPasswordCommon
	}
	return nil
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plain-text password with a bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var (
	dummyHash     []byte
	dummyHashOnce sync.Once
)

// BurnCompare spends one bcrypt comparison against a throwaway hash.
// Login calls it when the account does not exist so the response time
// matches a failed password check.
func BurnCompare(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("stratacms-unused-credential"), BcryptCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
