// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for the CMS.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers
// framework-level settings (ports, TLS, logging, CORS, body limits); AppConfig
// is everything specific to the restaurant CMS. The struct is passed to every
// lifecycle hook.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB (default: stratacms)
	MongoMaxPoolSize uint64 // Maximum connections in pool (default: 100)
	MongoMinPoolSize uint64 // Minimum connections to keep warm (default: 10)

	// Content localization
	DefaultLocale string // Locale used when a request names none (vi or en)

	// Access tokens issued by POST /api/auth/login
	JWTSecret string        // HS256 signing secret (≥32 random chars in production)
	JWTIssuer string        // iss claim
	JWTTTL    time.Duration // Token lifetime (default: 12h)

	// Rate limiting configuration
	RateLimitEnabled       bool          // Enable rate limiting for login attempts (default: true)
	RateLimitLoginAttempts int           // Max failed login attempts before lockout (default: 5)
	RateLimitLoginWindow   time.Duration // Time window for counting failed attempts (default: 15m)
	RateLimitLoginLockout  time.Duration // Lockout duration after exceeding limit (default: 15m)

	// Service credential for admin routes. Empty disables it.
	APIKey string

	// Public API CORS. Empty allows any origin.
	APICORSOrigins []string

	// File storage configuration
	StorageType      string // Storage backend: "local" or "s3"
	StorageLocalPath string // Local storage path (e.g., "./uploads")
	StorageLocalURL  string // URL prefix for serving local files (e.g., "/files")
	UploadMaxBytes   int64  // Largest accepted upload

	// S3/CloudFront configuration (only used if StorageType is "s3")
	StorageS3Region    string // AWS region
	StorageS3Bucket    string // S3 bucket name
	StorageS3Prefix    string // Key prefix (e.g., "uploads/")
	StorageCFURL       string // CloudFront distribution URL
	StorageCFKeyPairID string // CloudFront key pair ID
	StorageCFKeyPath   string // Path to CloudFront private key file

	// Email/SMTP configuration
	MailSMTPHost string // SMTP server host (e.g., localhost for Mailpit)
	MailSMTPPort int    // SMTP server port (e.g., 1025 for Mailpit, 587 for SES)
	MailSMTPUser string // SMTP username
	MailSMTPPass string // SMTP password
	MailFrom     string // From address; falls back to MailSMTPUser
	MailFromName string // From display name and reservation email brand
	MailTo       string // Reservation inbox; falls back to MailSMTPUser

	// Handler timeouts
	TimeoutPing   time.Duration
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration

	// API statistics
	APIStatsBucket    time.Duration // Bucket size (default: 1h)
	APIStatsRetention time.Duration // Buckets older than this are pruned (default: 90 days)

	// Admin seeding configuration
	SeedAdminEmail    string // Email of the admin user to create on startup (if set)
	SeedAdminName     string // Name of the admin user to create on startup
	SeedAdminPassword string // Initial password for the seeded admin
}
