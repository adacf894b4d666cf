// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"
	"errors"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown runs after the HTTP server has drained. It stops the task
// runner, waits for in-flight stats writes and then closes MongoDB, all
// within WAFFLE's shutdown deadline carried by ctx. Every step runs even if
// an earlier one fails; the failures are joined.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	var errs []error

	if taskRunner != nil {
		if err := taskRunner.Stop(ctx); err != nil {
			logger.Warn("task runner stop", zap.Error(err))
			errs = append(errs, err)
		}
		taskRunner = nil
	}

	// Stats writes still need the client.
	if statsRecorder != nil {
		statsRecorder.Wait(ctx)
	}

	if deps.MongoClient != nil {
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect", zap.Error(err))
			errs = append(errs, err)
		} else {
			logger.Info("MongoDB client disconnected")
		}
	}

	return errors.Join(errs...)
}
