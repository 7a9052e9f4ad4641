// Package bootstrap provides dependency initialization for the video optimizer API.
package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/cinematiclanding/video-optimizer-api/internal/cloudinary"
	"github.com/cinematiclanding/video-optimizer-api/internal/config"
	"github.com/cinematiclanding/video-optimizer-api/internal/optimizer"
	"github.com/cinematiclanding/video-optimizer-api/internal/storage"
)

// Dependencies holds all initialized dependencies for the HTTP server.
type Dependencies struct {
	OptimizerService *optimizer.Service
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	store, err := initStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	provider, err := cloudinary.NewClient(
		cfg.CloudinaryCloudName,
		cfg.CloudinaryAPIKey,
		cfg.CloudinaryAPISecret,
	)
	if err != nil {
		return nil, fmt.Errorf("create Cloudinary client: %w", err)
	}

	svc := optimizer.NewService(provider, store, logger,
		optimizer.WithProviderTimeout(cfg.ProviderTimeout),
	)

	return &Dependencies{
		OptimizerService: svc,
	}, nil
}

// initStorage creates the appropriate storage backend based on configuration.
func initStorage(cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Store, err := storage.NewS3Storage(cfg.TempDir, s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Info("S3 raw-upload archival configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return s3Store, nil
	}

	localStore, err := storage.NewLocalStorage(cfg.TempDir)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}
	logger.Info("local staging configured",
		slog.String("temp_dir", cfg.TempDir),
	)
	return localStore, nil
}
