// internal/app/system/auth/jwt.go
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// MinSecretLength is the shortest signing secret accepted in production.
const MinSecretLength = 32

// ErrInvalidToken is returned for any token that fails parsing or validation.
var ErrInvalidToken = errors.New("invalid or expired token")

// KeyConfigError reports an unusable signing secret.
type KeyConfigError struct {
	Message string
}

func (e *KeyConfigError) Error() string {
	return "auth key configuration error: " + e.Message
}

// Claims is the JWT payload issued at login.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 access tokens.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer validates the secret and returns an issuer.
// In production (secure=true) a short or placeholder secret is an error;
// in development it only logs a warning.
func NewTokenIssuer(secret, issuer string, ttl time.Duration, secure bool, logger *zap.Logger) (*TokenIssuer, error) {
	if secret == "" {
		return nil, &KeyConfigError{Message: "jwt secret is empty; provide ≥32 random chars"}
	}
	if ttl <= 0 {
		return nil, &KeyConfigError{Message: "token ttl must be positive"}
	}

	isWeak := len(secret) < MinSecretLength || isDefaultKey(secret)
	if isWeak {
		if secure {
			return nil, &KeyConfigError{
				Message: "jwt secret is too weak for production; provide ≥32 random chars",
			}
		}
		logger.Warn("jwt secret is weak; 32+ random chars required in production",
			zap.Int("length", len(secret)),
			zap.Bool("is_default", isDefaultKey(secret)))
	}

	return &TokenIssuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// TTL returns the lifetime of issued tokens.
func (ti *TokenIssuer) TTL() time.Duration { return ti.ttl }

// Issue signs a token for userID carrying role.
func (ti *TokenIssuer) Issue(userID, role string) (string, time.Time, error) {
	now := ti.now().UTC()
	exp := now.Add(ti.ttl)
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    ti.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify parses a token and checks signature, algorithm, issuer and expiry.
func (ti *TokenIssuer) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return ti.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(ti.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ti.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// isDefaultKey checks if the secret appears to be a placeholder value.
func isDefaultKey(key string) bool {
	lower := strings.ToLower(key)
	patterns := []string{
		"dev-only",
		"change-me",
		"changeme",
		"placeholder",
		"default",
		"example",
		"insecure",
		"secret123",
		"password",
	}
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
