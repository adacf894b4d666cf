// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/stratacms/internal/app/system/i18n"
	"github.com/dalemusser/stratacms/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// EnvVarPrefix is the prefix for environment variables.
const EnvVarPrefix = "STRATACMS"

// devJWTSecret is the shipped default. ValidateConfig refuses it in prod.
const devJWTSecret = "dev-only-jwt-secret-change-me-please-0123456789"

// appConfigKeys defines the configuration keys for this application.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: STRATACMS_MONGO_URI, STRATACMS_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "stratacms", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "default_locale", Default: "vi", Desc: "Default content locale: 'vi' or 'en'"},

	// Access tokens
	{Name: "jwt_secret", Default: devJWTSecret, Desc: "HS256 signing secret for access tokens (32+ chars in production)"},
	{Name: "jwt_issuer", Default: "stratacms", Desc: "Issuer claim for access tokens"},
	{Name: "jwt_ttl", Default: "12h", Desc: "Access token lifetime (e.g., 12h, 30m)"},

	// Rate limiting configuration
	{Name: "rate_limit_enabled", Default: true, Desc: "Enable rate limiting for login attempts"},
	{Name: "rate_limit_login_attempts", Default: 5, Desc: "Max failed login attempts before lockout"},
	{Name: "rate_limit_login_window", Default: "15m", Desc: "Time window for counting failed attempts"},
	{Name: "rate_limit_login_lockout", Default: "15m", Desc: "Lockout duration after exceeding limit"},

	// Service credential for admin routes
	{Name: "api_key", Default: "", Desc: "API key accepted as a bearer credential on admin routes (leave empty to disable)"},

	{Name: "api_cors_origins", Default: "", Desc: "Comma-separated origins allowed to call /api (empty allows any)"},

	// File storage configuration
	{Name: "storage_type", Default: "local", Desc: "Storage backend: 'local' or 's3'"},
	{Name: "storage_local_path", Default: "./uploads", Desc: "Local storage path for uploaded files"},
	{Name: "storage_local_url", Default: "/files", Desc: "URL prefix for serving local files"},
	{Name: "upload_max_bytes", Default: 32 << 20, Desc: "Largest accepted media upload in bytes"},

	// S3/CloudFront configuration
	{Name: "storage_s3_region", Default: "", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_prefix", Default: "uploads/", Desc: "S3 key prefix"},
	{Name: "storage_cf_url", Default: "", Desc: "CloudFront distribution URL"},
	{Name: "storage_cf_keypair_id", Default: "", Desc: "CloudFront key pair ID"},
	{Name: "storage_cf_key_path", Default: "", Desc: "Path to CloudFront private key file"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "localhost", Desc: "SMTP server host"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "", Desc: "From email address (default: SMTP username)"},
	{Name: "mail_from_name", Default: "Achi Vegan House", Desc: "From display name, also the brand in reservation emails"},
	{Name: "mail_to", Default: "", Desc: "Inbox receiving reservation requests (default: SMTP username)"},

	// Handler timeouts
	{Name: "timeout_ping", Default: "2s", Desc: "Health check database ping timeout"},
	{Name: "timeout_short", Default: "5s", Desc: "Single-document read/write timeout"},
	{Name: "timeout_medium", Default: "10s", Desc: "List query timeout"},
	{Name: "timeout_long", Default: "30s", Desc: "Upload and outbound mail timeout"},

	// API stats configuration
	{Name: "api_stats_bucket", Default: "1h", Desc: "API stats bucket duration (e.g., '1m', '15m', '1h', '24h')"},
	{Name: "api_stats_retention", Default: "2160h", Desc: "How long API stats buckets are kept (0 keeps everything)"},

	// Admin seeding configuration
	{Name: "seed_admin_email", Default: "", Desc: "Email of admin user to create on startup"},
	{Name: "seed_admin_name", Default: "Admin", Desc: "Name of admin user to create on startup"},
	{Name: "seed_admin_password", Default: "", Desc: "Initial password of the seeded admin user"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, STRATACMS_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvVarPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		DefaultLocale: strings.ToLower(strings.TrimSpace(appValues.String("default_locale"))),

		JWTSecret: appValues.String("jwt_secret"),
		JWTIssuer: appValues.String("jwt_issuer"),
		JWTTTL:    appValues.Duration("jwt_ttl", 12*time.Hour),

		// Rate limiting
		RateLimitEnabled:       appValues.Bool("rate_limit_enabled"),
		RateLimitLoginAttempts: appValues.Int("rate_limit_login_attempts"),
		RateLimitLoginWindow:   appValues.Duration("rate_limit_login_window", 15*time.Minute),
		RateLimitLoginLockout:  appValues.Duration("rate_limit_login_lockout", 15*time.Minute),

		APIKey:         strings.TrimSpace(appValues.String("api_key")),
		APICORSOrigins: splitList(appValues.String("api_cors_origins")),

		// File storage
		StorageType:      strings.ToLower(appValues.String("storage_type")),
		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  appValues.String("storage_local_url"),
		UploadMaxBytes:   int64(appValues.Int("upload_max_bytes")),

		// S3/CloudFront
		StorageS3Region:    appValues.String("storage_s3_region"),
		StorageS3Bucket:    appValues.String("storage_s3_bucket"),
		StorageS3Prefix:    appValues.String("storage_s3_prefix"),
		StorageCFURL:       appValues.String("storage_cf_url"),
		StorageCFKeyPairID: appValues.String("storage_cf_keypair_id"),
		StorageCFKeyPath:   appValues.String("storage_cf_key_path"),

		// Email/SMTP
		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),
		MailTo:       appValues.String("mail_to"),

		TimeoutPing:   appValues.Duration("timeout_ping", timeouts.DefaultPing),
		TimeoutShort:  appValues.Duration("timeout_short", timeouts.DefaultShort),
		TimeoutMedium: appValues.Duration("timeout_medium", timeouts.DefaultMedium),
		TimeoutLong:   appValues.Duration("timeout_long", timeouts.DefaultLong),

		// API stats
		APIStatsBucket:    appValues.Duration("api_stats_bucket", 1*time.Hour),
		APIStatsRetention: appValues.Duration("api_stats_retention", 90*24*time.Hour),

		// Admin seeding
		SeedAdminEmail:    strings.ToLower(strings.TrimSpace(appValues.String("seed_admin_email"))),
		SeedAdminName:     appValues.String("seed_admin_name"),
		SeedAdminPassword: appValues.String("seed_admin_password"),
	}

	// Mail sender and reservation inbox default to the SMTP account.
	if appCfg.MailFrom == "" {
		appCfg.MailFrom = appCfg.MailSMTPUser
	}
	if appCfg.MailTo == "" {
		appCfg.MailTo = appCfg.MailSMTPUser
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation and applies the
// process-wide settings (default locale, handler timeouts) it has checked.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if err := i18n.Configure(i18n.Locale(appCfg.DefaultLocale)); err != nil {
		logger.Error("invalid default locale", zap.String("default_locale", appCfg.DefaultLocale))
		return err
	}

	switch appCfg.StorageType {
	case "local", "":
	case "s3":
		if appCfg.StorageS3Bucket == "" || appCfg.StorageS3Region == "" {
			return fmt.Errorf("storage_type s3 requires storage_s3_bucket and storage_s3_region")
		}
	default:
		return fmt.Errorf("unknown storage type: %s", appCfg.StorageType)
	}

	if coreCfg.Env == "prod" && appCfg.JWTSecret == devJWTSecret {
		logger.Error("refusing to start with the development jwt_secret in prod")
		return fmt.Errorf("jwt_secret must be set in production")
	}
	if appCfg.JWTTTL <= 0 {
		return fmt.Errorf("jwt_ttl must be positive")
	}

	if appCfg.SeedAdminEmail != "" && appCfg.SeedAdminPassword == "" {
		logger.Warn("seed_admin_email is set without seed_admin_password; admin will not be seeded",
			zap.String("seed_admin_email", appCfg.SeedAdminEmail))
	}
	if appCfg.MailTo == "" {
		logger.Warn("no reservation inbox configured (mail_to or mail_smtp_user); reservation emails will fail")
	}

	timeouts.Configure(timeouts.Config{
		Ping:   appCfg.TimeoutPing,
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})

	return nil
}

// splitList parses a comma-separated config value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
