package config

import (
	"strings"
	"time"
)

// StorageConfig contains course material storage configuration.
// Materials are stored in an S3 bucket (or any S3-compatible endpoint).
type StorageConfig struct {
	Bucket    string `env:"STORAGE_S3_BUCKET"`
	Prefix    string `env:"STORAGE_S3_PREFIX"     envDefault:"materials"`
	Region    string `env:"STORAGE_S3_REGION"     envDefault:"us-east-1"`
	Endpoint  string `env:"STORAGE_S3_ENDPOINT"` // optional, for MinIO-style deployments
	AccessKey string `env:"STORAGE_S3_ACCESS_KEY"`
	SecretKey string `env:"STORAGE_S3_SECRET_KEY"`

	// MaxUploadSize caps a single material upload in bytes.
	MaxUploadSize int64 `env:"STORAGE_MAX_UPLOAD_SIZE" envDefault:"52428800"`

	// URLExpiry is the lifetime of presigned download URLs.
	URLExpiry time.Duration `env:"STORAGE_URL_EXPIRY" envDefault:"15m"`

	// DownloadTokenSecret signs short-lived download tokens. Required in
	// production; a dev-only fallback is derived when empty.
	DownloadTokenSecret string `env:"STORAGE_DOWNLOAD_TOKEN_SECRET"`

	// DownloadTokenTTL is the lifetime of an issued download token.
	DownloadTokenTTL time.Duration `env:"STORAGE_DOWNLOAD_TOKEN_TTL" envDefault:"5m"`
}

// Sanitize applies guardrails to storage configuration values.
func (s *StorageConfig) Sanitize() {
	s.Bucket = strings.TrimSpace(s.Bucket)
	s.Prefix = strings.Trim(strings.TrimSpace(s.Prefix), "/")
	if s.MaxUploadSize < 0 {
		s.MaxUploadSize = 0
	}
	if s.URLExpiry <= 0 {
		s.URLExpiry = 15 * time.Minute
	}
	if s.DownloadTokenTTL <= 0 {
		s.DownloadTokenTTL = 5 * time.Minute
	}
}

// IsEnabled reports whether the material storage backend is configured.
func (s *StorageConfig) IsEnabled() bool {
	return s.Bucket != ""
}
