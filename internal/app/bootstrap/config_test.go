package bootstrap

import (
	"reflect"
	"testing"
	"time"

	"github.com/dalemusser/stratacms/internal/app/system/i18n"
	"github.com/dalemusser/stratacms/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func validAppConfig() AppConfig {
	return AppConfig{
		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "stratacms",
		DefaultLocale: "vi",
		JWTSecret:     "k9Jx2QmVtR7wLp4ZsN8yB3cF6hD1gA5e",
		JWTIssuer:     "stratacms",
		JWTTTL:        12 * time.Hour,
		StorageType:   "local",
		MailTo:        "inbox@example.com",
	}
}

func TestValidateConfig(t *testing.T) {
	t.Cleanup(func() {
		timeouts.Reset()
		_ = i18n.Configure(i18n.Vietnamese)
	})

	tests := []struct {
		name    string
		env     string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"valid", "dev", func(*AppConfig) {}, false},
		{"missing mongo uri", "dev", func(c *AppConfig) { c.MongoURI = "" }, true},
		{"unsupported locale", "dev", func(c *AppConfig) { c.DefaultLocale = "fr" }, true},
		{"english default", "dev", func(c *AppConfig) { c.DefaultLocale = "en" }, false},
		{"unknown storage", "dev", func(c *AppConfig) { c.StorageType = "ftp" }, true},
		{"s3 without bucket", "dev", func(c *AppConfig) { c.StorageType = "s3" }, true},
		{"s3 configured", "dev", func(c *AppConfig) {
			c.StorageType = "s3"
			c.StorageS3Bucket = "media"
			c.StorageS3Region = "ap-southeast-1"
		}, false},
		{"dev secret in dev", "dev", func(c *AppConfig) { c.JWTSecret = devJWTSecret }, false},
		{"dev secret in prod", "prod", func(c *AppConfig) { c.JWTSecret = devJWTSecret }, true},
		{"zero ttl", "dev", func(c *AppConfig) { c.JWTTTL = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validAppConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(&config.CoreConfig{Env: tt.env}, cfg, zap.NewNop())
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateConfig_AppliesSettings(t *testing.T) {
	t.Cleanup(func() {
		timeouts.Reset()
		_ = i18n.Configure(i18n.Vietnamese)
	})

	cfg := validAppConfig()
	cfg.DefaultLocale = "en"
	cfg.TimeoutPing = 750 * time.Millisecond
	if err := ValidateConfig(&config.CoreConfig{Env: "dev"}, cfg, zap.NewNop()); err != nil {
		t.Fatalf("ValidateConfig() error = %v", err)
	}
	if got := i18n.Default(); got != i18n.English {
		t.Errorf("i18n.Default() = %q, want en", got)
	}
	if got := timeouts.Ping(); got != 750*time.Millisecond {
		t.Errorf("timeouts.Ping() = %v, want 750ms", got)
	}
	if got := timeouts.Short(); got != timeouts.DefaultShort {
		t.Errorf("timeouts.Short() = %v, want default", got)
	}
}

func TestSplitList(t *testing.T) {
	tests := map[string][]string{
		"":                                nil,
		" , ":                             nil,
		"https://a.example":               {"https://a.example"},
		"https://a.example, https://b.io": {"https://a.example", "https://b.io"},
	}
	for in, want := range tests {
		if got := splitList(in); !reflect.DeepEqual(got, want) {
			t.Errorf("splitList(%q) = %v, want %v", in, got, want)
		}
	}
}
