// internal/app/features/login/login.go
//
// Package login issues bearer tokens to CMS operators.
package login

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	errorsfeature "github.com/dalemusser/stratacms/internal/app/features/errors"
	apistatsstore "github.com/dalemusser/stratacms/internal/app/store/apistats"
	"github.com/dalemusser/stratacms/internal/app/store/ratelimit"
	userstore "github.com/dalemusser/stratacms/internal/app/store/users"
	apistatsystem "github.com/dalemusser/stratacms/internal/app/system/apistats"
	"github.com/dalemusser/stratacms/internal/app/system/auth"
	"github.com/dalemusser/stratacms/internal/app/system/authutil"
	"github.com/dalemusser/stratacms/internal/app/system/inputval"
	"github.com/dalemusser/stratacms/internal/app/system/jsonutil"
	"github.com/dalemusser/stratacms/internal/app/system/network"
	"github.com/dalemusser/stratacms/internal/app/system/timeouts"
	"github.com/dalemusser/stratacms/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const invalidCredentials = "invalid email or password"

// Handler serves POST /api/auth/login and GET /api/auth/me.
type Handler struct {
	users          *userstore.Store
	rateLimitStore *ratelimit.Store // nil if rate limiting disabled
	tokens         *auth.TokenIssuer
	errLog         *errorsfeature.ErrorLogger
	logger         *zap.Logger
	now            func() time.Time
}

// NewHandler creates a login handler.
// rateLimitStore can be nil to disable rate limiting.
func NewHandler(
	users *userstore.Store,
	rateLimitStore *ratelimit.Store,
	tokens *auth.TokenIssuer,
	errLog *errorsfeature.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		users:          users,
		rateLimitStore: rateLimitStore,
		tokens:         tokens,
		errLog:         errLog,
		logger:         logger,
		now:            time.Now,
	}
}

// Routes returns the router mounted at /api/auth. requireAdmin guards /me.
// Login attempts are recorded in API stats when stats is non-nil.
func Routes(h *Handler, requireAdmin func(http.Handler) http.Handler, stats *apistatsystem.Recorder) http.Handler {
	r := chi.NewRouter()
	r.With(apistatsystem.MiddlewareWithRecorder(stats, apistatsstore.StatTypeLogin)).Post("/login", h.handleLogin)
	r.With(requireAdmin).Get("/me", h.serveMe)
	return r
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email" label:"Email"`
	Password string `json:"password" validate:"required" label:"Password"`
}

// UserView is the operator profile returned to clients.
type UserView struct {
	ID          string     `json:"id"`
	FullName    string     `json:"fullName,omitempty"`
	Email       string     `json:"email,omitempty"`
	Role        string     `json:"role"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	Via         string     `json:"via,omitempty"`
}

// LoginResponse is returned on a successful login.
type LoginResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserView  `json:"user"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := jsonutil.Decode(w, r, &in); err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	in.Email = strings.TrimSpace(in.Email)
	if res := inputval.Validate(in); res.HasErrors() {
		jsonutil.ValidationError(w, res.Fields())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	key := ratelimit.EmailKey(in.Email)
	ip := zap.String("ip", network.ClientIP(r))

	// Check rate limit before processing
	if h.rateLimitStore != nil {
		allowed, _, lockedUntil := h.rateLimitStore.CheckAllowed(ctx, key)
		if !allowed {
			h.logger.Warn("login rate limited", zap.String("key", key), ip)
			h.tooManyAttempts(w, lockedUntil)
			return
		}
	}

	user, err := h.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			h.errLog.Internal(w, r, "database error during login lookup", err)
			return
		}
		authutil.BurnCompare(in.Password)
		h.logger.Info("login failed: user not found", zap.String("key", key), ip)
		h.fail(ctx, w, key)
		return
	}

	if !authutil.CheckPassword(in.Password, user.PasswordHash) {
		h.logger.Info("login failed: wrong password", zap.String("user_id", user.ID.Hex()), ip)
		h.fail(ctx, w, key)
		return
	}
	if !user.IsActive || !models.IsValidRole(user.Role) {
		h.logger.Info("login failed: user disabled or without admin role",
			zap.String("user_id", user.ID.Hex()),
			zap.String("role", user.Role), ip)
		h.fail(ctx, w, key)
		return
	}

	// Clear rate limit on successful login
	if h.rateLimitStore != nil {
		if err := h.rateLimitStore.Clear(ctx, key); err != nil {
			h.logger.Warn("failed to clear login attempts", zap.String("key", key), zap.Error(err))
		}
	}

	now := h.now().UTC()
	if err := h.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		h.logger.Warn("failed to record last login", zap.String("user_id", user.ID.Hex()), zap.Error(err))
	} else {
		t := now.Truncate(time.Millisecond)
		user.LastLoginAt = &t
	}

	token, expiresAt, err := h.tokens.Issue(user.ID.Hex(), user.Role)
	if err != nil {
		h.errLog.Internal(w, r, "failed to sign access token", err)
		return
	}

	h.logger.Info("login succeeded",
		zap.String("user_id", user.ID.Hex()),
		zap.String("role", user.Role), ip)
	jsonutil.OK(w, LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
		User: UserView{
			ID:          user.ID.Hex(),
			FullName:    user.FullName,
			Email:       user.Email,
			Role:        user.Role,
			LastLoginAt: user.LastLoginAt,
		},
	})
}

// fail records a failed attempt and answers 401, or 429 once the key is
// locked.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, key string) {
	if h.rateLimitStore != nil {
		lockedOut, lockedUntil, err := h.rateLimitStore.RecordFailure(ctx, key)
		if err != nil {
			h.logger.Warn("failed to record login failure", zap.String("key", key), zap.Error(err))
		} else if lockedOut {
			h.logger.Warn("login locked out", zap.String("key", key))
			h.tooManyAttempts(w, lockedUntil)
			return
		}
	}
	jsonutil.Unauthorized(w, invalidCredentials)
}

func (h *Handler) tooManyAttempts(w http.ResponseWriter, lockedUntil *time.Time) {
	retryAfter := 60
	if lockedUntil != nil {
		retryAfter = int(math.Ceil(lockedUntil.Sub(h.now()).Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
	}
	jsonutil.TooManyRequests(w, "too many failed login attempts, try again later", retryAfter)
}

func (h *Handler) serveMe(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.CurrentUser(r)
	if !ok {
		jsonutil.Unauthorized(w, "missing bearer token")
		return
	}
	jsonutil.OK(w, UserView{
		ID:       p.ID,
		FullName: p.Name,
		Email:    p.Email,
		Role:     p.Role,
		Via:      p.Via,
	})
}
