// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	apistatsstore "github.com/dalemusser/stratacms/internal/app/store/apistats"
	userstore "github.com/dalemusser/stratacms/internal/app/store/users"
	"github.com/dalemusser/stratacms/internal/app/system/apistats"
	"github.com/dalemusser/stratacms/internal/app/system/authutil"
	"github.com/dalemusser/stratacms/internal/app/system/tasks"
	"github.com/dalemusser/stratacms/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time work after the schema is in place and before the
// HTTP handler is built: seeding the first admin account and starting the
// background jobs.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.SeedAdminEmail != "" && appCfg.SeedAdminPassword != "" {
		if err := ensureAdminUser(ctx, deps, appCfg, logger); err != nil {
			logger.Error("failed to seed admin user", zap.Error(err))
			return err
		}
	}

	statsStore := apistatsstore.New(deps.MongoDatabase)
	statsRecorder = apistats.NewRecorder(statsStore, logger, appCfg.APIStatsBucket)
	startTaskRunner(statsStore, appCfg, logger)

	return nil
}

var (
	taskRunner    *tasks.Runner
	statsRecorder *apistats.Recorder
)

func startTaskRunner(stats tasks.StatsPruner, appCfg AppConfig, logger *zap.Logger) {
	taskRunner = tasks.New(logger)
	taskRunner.Register(tasks.APIStatsRetentionJob(stats, appCfg.APIStatsRetention, logger))
	taskRunner.Start()
}

// ensureAdminUser creates the configured super admin unless an account with
// that email already exists. An existing account is never modified.
func ensureAdminUser(ctx context.Context, deps DBDeps, appCfg AppConfig, logger *zap.Logger) error {
	if err := authutil.ValidatePassword(appCfg.SeedAdminPassword); err != nil {
		return fmt.Errorf("seed_admin_password: %w", err)
	}
	hash, err := authutil.HashPassword(appCfg.SeedAdminPassword)
	if err != nil {
		return err
	}

	name := appCfg.SeedAdminName
	if name == "" {
		name = "Admin"
	}

	created, err := userstore.New(deps.MongoDatabase).EnsureUser(ctx, models.User{
		FullName:     name,
		Email:        appCfg.SeedAdminEmail,
		PasswordHash: hash,
		Role:         models.RoleSuperAdmin,
		IsActive:     true,
	})
	if err != nil {
		return err
	}
	if created {
		logger.Info("created admin user", zap.String("email", appCfg.SeedAdminEmail))
	} else {
		logger.Debug("admin user already configured", zap.String("email", appCfg.SeedAdminEmail))
	}
	return nil
}
