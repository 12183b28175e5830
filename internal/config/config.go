package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort    string
	DatabaseURL string // empty selects the embedded SQLite store
	SQLitePath  string
	LogLevel    string

	JWTSecret    string
	JWTExpiresIn time.Duration

	RedisURL string

	BlobBackend string // "local" or "s3"
	UploadsDir  string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3Prefix    string
	MaxUploadMB int64

	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

func Load() Config {
	_ = godotenv.Load()

	return Config{
		HTTPPort:      getenv("HTTP_PORT", "8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SQLitePath:    getenv("SQLITE_PATH", "data/cvportal.db"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTExpiresIn:  parseDuration(os.Getenv("JWT_EXPIRES_IN"), 24*time.Hour),
		RedisURL:      os.Getenv("REDIS_URL"),
		BlobBackend:   getenv("BLOB_BACKEND", "local"),
		UploadsDir:    getenv("UPLOADS_DIR", "./uploads"),
		S3Bucket:      os.Getenv("S3_BUCKET"),
		S3Region:      getenv("S3_REGION", "us-east-1"),
		S3Endpoint:    os.Getenv("S3_ENDPOINT"),
		S3Prefix:      os.Getenv("S3_PREFIX"),
		MaxUploadMB:   parseInt(os.Getenv("MAX_UPLOAD_MB"), 10),
		AdminUsername: getenv("ADMIN_USERNAME", "admin"),
		AdminEmail:    getenv("ADMIN_EMAIL", "admin@cvportal.local"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
}

func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is empty")
	}
	switch c.BlobBackend {
	case "local":
		if c.UploadsDir == "" {
			return errors.New("UPLOADS_DIR is empty")
		}
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET is required for the s3 blob backend")
		}
	default:
		return errors.New("BLOB_BACKEND must be local or s3")
	}
	if c.MaxUploadMB <= 0 {
		return errors.New("MAX_UPLOAD_MB must be positive")
	}
	return nil
}

// MaxUploadBytes is the multipart limit for CV uploads.
func (c Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}

func parseInt(s string, def int64) int64 {
	if s == "" {
		return def
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return def
}
