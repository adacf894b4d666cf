package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/dalemusser/stratacms/internal/app/system/jsonutil"
	"github.com/dalemusser/stratacms/internal/app/system/normalize"
	"github.com/dalemusser/stratacms/internal/domain/models"
	"go.uber.org/zap"
)

// AdminConfig wires RequireAdmin.
type AdminConfig struct {
	Tokens  *TokenIssuer
	Fetcher PrincipalFetcher

	// APIKey, when set, is accepted as a bearer credential and acts with
	// the super_admin role. Empty disables API key access.
	APIKey string

	Logger *zap.Logger
}

// RequireAdmin returns middleware that authenticates a bearer credential
// (JWT access token or the configured API key) and requires one of the
// allowed roles. Missing or bad credentials yield 401; a valid caller
// without an allowed role yields 403.
//
// Usage in routes.go:
//
//	r.Group(func(r chi.Router) {
//	    r.Use(auth.RequireAdmin(adminCfg, models.RoleSuperAdmin, models.RoleEditor))
//	    r.Post("/", h.Create)
//	})
func RequireAdmin(cfg AdminConfig, allowed ...string) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[normalize.Role(role)] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			credential, ok := BearerToken(r)
			if !ok {
				logger.Debug("admin request rejected: missing bearer credential",
					zap.String("path", r.URL.Path))
				jsonutil.Unauthorized(w, "missing bearer token")
				return
			}

			p := authenticate(r, cfg, credential, logger)
			if p == nil {
				jsonutil.Unauthorized(w, "invalid or expired token")
				return
			}

			if len(set) > 0 {
				if _, has := set[normalize.Role(p.Role)]; !has {
					logger.Info("admin request forbidden: role not allowed",
						zap.String("user_id", p.ID),
						zap.String("role", p.Role),
						zap.String("path", r.URL.Path))
					jsonutil.Forbidden(w, "insufficient role")
					return
				}
			}

			next.ServeHTTP(w, withPrincipal(r, p))
		})
	}
}

func authenticate(r *http.Request, cfg AdminConfig, credential string, logger *zap.Logger) *Principal {
	if cfg.APIKey != "" && subtle.ConstantTimeCompare([]byte(credential), []byte(cfg.APIKey)) == 1 {
		return &Principal{
			ID:   APIKeyPrincipalID,
			Name: "API key",
			Role: models.RoleSuperAdmin,
			Via:  ViaAPIKey,
		}
	}

	if cfg.Tokens == nil {
		logger.Warn("admin request rejected: token auth not configured",
			zap.String("path", r.URL.Path))
		return nil
	}
	claims, err := cfg.Tokens.Verify(credential)
	if err != nil {
		logger.Debug("admin request rejected: token verification failed",
			zap.String("path", r.URL.Path),
			zap.String("remote_addr", r.RemoteAddr))
		return nil
	}

	if cfg.Fetcher == nil {
		return &Principal{ID: claims.Subject, Role: claims.Role, Via: ViaToken}
	}
	p := cfg.Fetcher.FetchPrincipal(r.Context(), claims.Subject)
	if p == nil {
		logger.Info("admin request rejected: user not found or inactive",
			zap.String("user_id", claims.Subject),
			zap.String("path", r.URL.Path))
		return nil
	}
	p.Via = ViaToken
	return p
}

// BearerToken extracts the credential from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", false
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	tok := strings.TrimSpace(parts[1])
	return tok, tok != ""
}
