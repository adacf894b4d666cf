// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	apistatsfeature "github.com/dalemusser/stratacms/internal/app/features/apistats"
	errorsfeature "github.com/dalemusser/stratacms/internal/app/features/errors"
	healthfeature "github.com/dalemusser/stratacms/internal/app/features/health"
	loginfeature "github.com/dalemusser/stratacms/internal/app/features/login"
	mediaassetsfeature "github.com/dalemusser/stratacms/internal/app/features/mediaassets"
	reservationsfeature "github.com/dalemusser/stratacms/internal/app/features/reservations"
	testimonialsfeature "github.com/dalemusser/stratacms/internal/app/features/testimonials"
	apistatsstore "github.com/dalemusser/stratacms/internal/app/store/apistats"
	mediaassetstore "github.com/dalemusser/stratacms/internal/app/store/mediaassets"
	"github.com/dalemusser/stratacms/internal/app/store/ratelimit"
	testimonialstore "github.com/dalemusser/stratacms/internal/app/store/testimonials"
	userstore "github.com/dalemusser/stratacms/internal/app/store/users"
	"github.com/dalemusser/stratacms/internal/app/system/apicors"
	"github.com/dalemusser/stratacms/internal/app/system/apistats"
	"github.com/dalemusser/stratacms/internal/app/system/auth"
	"github.com/dalemusser/stratacms/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for the CMS.
//
// WAFFLE calls this after configuration, DB connections, schema setup and
// Startup have completed.
//
// Layout:
//   - /health, /ready, /readyz, /livez: probes
//   - /api/media-assets, /api/testimonials: public reads, admin writes
//   - /api/reservations: public reservation email
//   - /api/auth: operator login and /me
//   - /api/admin/stats: request statistics (admin)
//   - storage_local_url: uploaded files when storage is local
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Tokens must be signed with a strong secret in production.
	secure := coreCfg.Env == "prod"
	tokens, err := auth.NewTokenIssuer(appCfg.JWTSecret, appCfg.JWTIssuer, appCfg.JWTTTL, secure, logger)
	if err != nil {
		logger.Error("token issuer init failed", zap.Error(err))
		return nil, err
	}

	// RequireAdmin re-reads the user on every request so deactivation and
	// role changes take effect before the token expires.
	adminCfg := auth.AdminConfig{
		Tokens:  tokens,
		Fetcher: userstore.NewFetcher(deps.MongoDatabase, logger),
		APIKey:  appCfg.APIKey,
		Logger:  logger,
	}
	requireAdmin := auth.RequireAdmin(adminCfg, models.AllRoles()...)

	errLog := errorsfeature.NewErrorLogger(logger)

	// Startup normally creates the recorder; fall back for callers that skip it.
	recorder := statsRecorder
	statsStore := apistatsstore.New(deps.MongoDatabase)
	if recorder == nil {
		recorder = apistats.NewRecorder(statsStore, logger, appCfg.APIStatsBucket)
	}

	r := chi.NewRouter()

	// ─────────────────────────────────────────────────────────────────────────────
	// Global Middleware (applies to ALL routes)
	// ─────────────────────────────────────────────────────────────────────────────

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)

	// Request timeout middleware: prevents requests from hanging indefinitely.
	r.Use(chimw.Timeout(30 * time.Second))

	// CORS middleware: must be early in the chain to handle preflight requests.
	r.Use(middleware.CORSFromConfig(coreCfg))

	// Security headers middleware: adds X-Frame-Options, X-Content-Type-Options, etc.
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	// ─────────────────────────────────────────────────────────────────────────────
	// Routes
	// ─────────────────────────────────────────────────────────────────────────────

	// Health check endpoints for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	// Uploaded files (local storage only)
	if appCfg.StorageType == "local" || appCfg.StorageType == "" {
		r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))
	}

	uploads := mediaassetsfeature.UploadConfig{
		Objects:  deps.FileStorage,
		Provider: models.MediaProviderOther,
		MaxBytes: appCfg.UploadMaxBytes,
	}
	if appCfg.StorageType == "s3" {
		uploads.Provider = models.MediaProviderS3
	}
	mediaHandler := mediaassetsfeature.NewHandler(mediaassetstore.New(deps.MongoDatabase), uploads, errLog, logger)
	testimonialsHandler := testimonialsfeature.NewHandler(testimonialstore.New(deps.MongoDatabase), errLog, logger)
	reservationsHandler := reservationsfeature.NewHandler(deps.Mailer, appCfg.MailTo, appCfg.MailFromName, logger)

	// Rate limiting for login attempts (nil if disabled)
	var rateLimitStore *ratelimit.Store
	if appCfg.RateLimitEnabled {
		rateLimitStore = ratelimit.New(
			deps.MongoDatabase,
			appCfg.RateLimitLoginAttempts,
			appCfg.RateLimitLoginWindow,
			appCfg.RateLimitLoginLockout,
		)
	}
	loginHandler := loginfeature.NewHandler(userstore.New(deps.MongoDatabase), rateLimitStore, tokens, errLog, logger)

	statsHandler := apistatsfeature.NewHandler(statsStore, recorder.BucketDuration(), errLog, logger)

	// JSON API. Bearer auth only, so no CSRF and permissive CORS.
	r.Route("/api", func(api chi.Router) {
		api.Use(apicors.Middleware(appCfg.APICORSOrigins...))

		api.Mount("/media-assets", mediaassetsfeature.Routes(mediaHandler, requireAdmin, recorder))
		api.Mount("/testimonials", testimonialsfeature.Routes(testimonialsHandler, requireAdmin, recorder))
		api.Mount("/reservations", reservationsfeature.Routes(reservationsHandler, recorder))
		api.Mount("/auth", loginfeature.Routes(loginHandler, requireAdmin, recorder))

		api.Route("/admin/stats", func(sr chi.Router) {
			sr.Use(requireAdmin)
			sr.Mount("/", apistatsfeature.Routes(statsHandler))
		})
	})

	// JSON 404/405 for everything else
	errHandler := errorsfeature.NewHandler()
	r.NotFound(errHandler.NotFound)
	r.MethodNotAllowed(errHandler.MethodNotAllowed)

	logger.Info("HTTP routes configured",
		zap.Bool("api_key_enabled", appCfg.APIKey != ""),
		zap.Bool("login_rate_limit", appCfg.RateLimitEnabled),
		zap.String("storage", appCfg.StorageType),
	)

	return r, nil
}
