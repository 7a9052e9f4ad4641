// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Static errors for configuration validation.
var (
	// ErrCloudNameRequired is returned when CLOUDINARY_CLOUD_NAME is not set.
	ErrCloudNameRequired = errors.New("config: CLOUDINARY_CLOUD_NAME is required")
	// ErrAPIKeyRequired is returned when CLOUDINARY_API_KEY is not set.
	ErrAPIKeyRequired = errors.New("config: CLOUDINARY_API_KEY is required")
	// ErrAPISecretRequired is returned when CLOUDINARY_API_SECRET is not set.
	ErrAPISecretRequired = errors.New("config: CLOUDINARY_API_SECRET is required")
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	Port int `env:"PORT, default=8080" json:"port"`

	// Cloudinary settings
	CloudinaryCloudName string `env:"CLOUDINARY_CLOUD_NAME, required" json:"cloudinary_cloud_name"`
	CloudinaryAPIKey    string `env:"CLOUDINARY_API_KEY, required" json:"-"`    // Masked in JSON
	CloudinaryAPISecret string `env:"CLOUDINARY_API_SECRET, required" json:"-"` // Masked in JSON

	// Staging settings
	TempDir        string `env:"TEMP_DIR, default=/tmp/video-optimizer" json:"temp_dir"`
	UploadMaxBytes int64  `env:"UPLOAD_MAX_BYTES, default=524288000" json:"upload_max_bytes"`

	// Provider call settings
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT, default=5m" json:"provider_timeout"`

	// Optional S3 settings for raw-upload archival
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// S3Enabled returns true if S3 archival configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// Load reads configuration from environment variables using go-envconfig.
// It returns an error if required variables are not set.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		// Map envconfig errors to our domain errors for required fields
		if strings.Contains(err.Error(), "CLOUDINARY_CLOUD_NAME") {
			return nil, ErrCloudNameRequired
		}
		if strings.Contains(err.Error(), "CLOUDINARY_API_KEY") {
			return nil, ErrAPIKeyRequired
		}
		if strings.Contains(err.Error(), "CLOUDINARY_API_SECRET") {
			return nil, ErrAPISecretRequired
		}
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present.
func (c *Config) Validate() error {
	if c.CloudinaryCloudName == "" {
		return ErrCloudNameRequired
	}
	if c.CloudinaryAPIKey == "" {
		return ErrAPIKeyRequired
	}
	if c.CloudinaryAPISecret == "" {
		return ErrAPISecretRequired
	}
	return nil
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %d, CloudinaryCloudName: %s, TempDir: %s, UploadMaxBytes: %d, ProviderTimeout: %s, S3Bucket: %s, S3Region: %s, LogFormat: %s, LogLevel: %s}",
		c.Port,
		c.CloudinaryCloudName,
		c.TempDir,
		c.UploadMaxBytes,
		c.ProviderTimeout,
		c.S3Bucket,
		c.S3Region,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
