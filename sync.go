package main

import (
	"log/slog"
	"time"

	"github.com/lexandro/assetmod-mcp/assets"
)

// verifier repairs drift between the asset registry and the filesystem.
type verifier interface {
	Verify() (assets.VerifyResult, error)
}

// runPeriodicSync starts a background loop that verifies registry consistency at the given interval.
// It runs until the provided stop channel is closed.
func runPeriodicSync(interval time.Duration, target verifier, logger *slog.Logger, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("periodic sync started", "interval", interval)

	for {
		select {
		case <-stop:
			logger.Info("periodic sync stopped")
			return
		case <-ticker.C:
			performSyncVerification(target, logger)
		}
	}
}

// performSyncVerification runs one verification and logs its outcome.
func performSyncVerification(target verifier, logger *slog.Logger) (assets.VerifyResult, error) {
	result, err := target.Verify()
	if err != nil {
		logger.Error("sync verification failed", "error", err)
		return result, err
	}

	totalDiscrepancies := result.MissingFiles + result.StaleFiles + result.ReclassifiedFiles
	if totalDiscrepancies > 0 {
		logger.Info("sync verification complete",
			"missing", result.MissingFiles,
			"stale", result.StaleFiles,
			"reclassified", result.ReclassifiedFiles,
			"duration", result.Duration,
		)
	} else {
		logger.Debug("sync verification complete, registry is in sync", "duration", result.Duration)
	}
	return result, nil
}
