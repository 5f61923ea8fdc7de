/*
Copyright (C) 2026 AmbRadio

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Database backend selection.
type DatabaseBackend string

const (
	DatabasePostgres DatabaseBackend = "postgres"
	DatabaseMySQL    DatabaseBackend = "mysql"
	DatabaseSQLite   DatabaseBackend = "sqlite"
)

// Icecast holds the connection parameters for the external streaming
// server. The source password is a service credential; it is never
// accepted from request input.
type Icecast struct {
	Hostname       string
	Port           int
	MountPoint     string
	SourcePassword string
	PublicBaseURL  string // Optional public URL shown to listeners (defaults to http://host:port)
}

// BaseURL returns the listener-facing base URL of the streaming server.
func (i Icecast) BaseURL() string {
	if i.PublicBaseURL != "" {
		return strings.TrimRight(i.PublicBaseURL, "/")
	}
	return fmt.Sprintf("http://%s:%d", i.Hostname, i.Port)
}

// AdminURL returns the admin API base URL of the streaming server.
func (i Icecast) AdminURL() string {
	return fmt.Sprintf("http://%s:%d/admin", i.Hostname, i.Port)
}

// StreamURL returns the public URL of the configured mount.
func (i Icecast) StreamURL() string {
	return i.BaseURL() + i.MountPoint
}

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment     string
	HTTPBind        string
	HTTPPort        int
	BaseURL         string // Public base URL of the dashboard (e.g., https://radio.example.com)
	DBBackend       DatabaseBackend
	DBDSN           string
	MediaRoot       string
	JWTSigningKey   string
	MetricsBind     string
	MaxUploadSizeMB int // Optional multipart upload limit override (MB)

	// Icecast status/control integration
	Icecast      Icecast
	PollInterval time.Duration

	// S3 media storage (filesystem backend used when bucket is empty)
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Region          string
	S3Bucket          string
	S3Endpoint        string // For S3-compatible services (MinIO, Spaces, etc.)
	S3PublicBaseURL   string // Optional CDN URL
	S3UsePathStyle    bool   // Required for MinIO

	// Snapshot cache / distributed eventing
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	NATSURL       string

	// Tracing configuration
	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64

	LegacyEnvWarnings []string
}

// Load reads environment variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment:     getEnvAny([]string{"AMBRADIO_ENV", "ENVIRONMENT"}, "development"),
		HTTPBind:        getEnv("AMBRADIO_HTTP_BIND", "0.0.0.0"),
		HTTPPort:        getEnvInt("AMBRADIO_HTTP_PORT", 8080),
		BaseURL:         getEnv("AMBRADIO_BASE_URL", ""),
		DBBackend:       DatabaseBackend(getEnv("AMBRADIO_DB_BACKEND", string(DatabasePostgres))),
		DBDSN:           getEnv("AMBRADIO_DB_DSN", ""),
		MediaRoot:       getEnv("AMBRADIO_MEDIA_ROOT", "./media"),
		JWTSigningKey:   getEnv("AMBRADIO_JWT_SIGNING_KEY", ""),
		MetricsBind:     getEnv("AMBRADIO_METRICS_BIND", "127.0.0.1:9000"),
		MaxUploadSizeMB: getEnvInt("AMBRADIO_MAX_UPLOAD_SIZE_MB", 0),

		Icecast: Icecast{
			Hostname:       getEnvAny([]string{"AMBRADIO_ICECAST_HOSTNAME", "ICECAST_HOSTNAME"}, ""),
			Port:           getEnvIntAny([]string{"AMBRADIO_ICECAST_PORT", "ICECAST_PORT"}, 8000),
			MountPoint:     getEnvAny([]string{"AMBRADIO_ICECAST_MOUNT_POINT", "ICECAST_MOUNT_POINT"}, "/stream"),
			SourcePassword: getEnvAny([]string{"AMBRADIO_ICECAST_PASSWORD", "ICECAST_PASSWORD"}, ""),
			PublicBaseURL:  getEnvAny([]string{"AMBRADIO_ICECAST_PUBLIC_URL", "ICECAST_PUBLIC_URL"}, ""),
		},
		PollInterval: time.Duration(getEnvInt("AMBRADIO_POLL_INTERVAL_SECONDS", 15)) * time.Second,

		S3AccessKeyID:     getEnvAny([]string{"AMBRADIO_S3_ACCESS_KEY_ID", "AWS_ACCESS_KEY_ID"}, ""),
		S3SecretAccessKey: getEnvAny([]string{"AMBRADIO_S3_SECRET_ACCESS_KEY", "AWS_SECRET_ACCESS_KEY"}, ""),
		S3Region:          getEnvAny([]string{"AMBRADIO_S3_REGION", "AWS_REGION"}, "us-east-1"),
		S3Bucket:          getEnvAny([]string{"AMBRADIO_S3_BUCKET", "S3_BUCKET"}, ""),
		S3Endpoint:        getEnvAny([]string{"AMBRADIO_S3_ENDPOINT", "S3_ENDPOINT"}, ""),
		S3PublicBaseURL:   getEnvAny([]string{"AMBRADIO_S3_PUBLIC_BASE_URL", "S3_PUBLIC_BASE_URL"}, ""),
		S3UsePathStyle:    getEnvBool("AMBRADIO_S3_USE_PATH_STYLE", false),

		RedisAddr:     getEnv("AMBRADIO_REDIS_ADDR", ""),
		RedisPassword: getEnv("AMBRADIO_REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("AMBRADIO_REDIS_DB", 0),
		NATSURL:       getEnv("AMBRADIO_NATS_URL", ""),

		TracingEnabled:    getEnvBool("AMBRADIO_TRACING_ENABLED", false),
		OTLPEndpoint:      getEnv("AMBRADIO_OTLP_ENDPOINT", "localhost:4317"),
		TracingSampleRate: getEnvFloat("AMBRADIO_TRACING_SAMPLE_RATE", 1.0),
	}

	if cfg.DBBackend != DatabasePostgres && cfg.DBBackend != DatabaseMySQL && cfg.DBBackend != DatabaseSQLite {
		return nil, fmt.Errorf("unsupported database backend %q", cfg.DBBackend)
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("AMBRADIO_DB_DSN must be provided")
	}

	if cfg.JWTSigningKey == "" {
		return nil, fmt.Errorf("AMBRADIO_JWT_SIGNING_KEY must be provided")
	}

	// Missing Icecast coordinates are a startup error, not a runtime fallback.
	if cfg.Icecast.Hostname == "" {
		return nil, fmt.Errorf("AMBRADIO_ICECAST_HOSTNAME or ICECAST_HOSTNAME must be provided")
	}
	if cfg.Icecast.SourcePassword == "" {
		return nil, fmt.Errorf("AMBRADIO_ICECAST_PASSWORD or ICECAST_PASSWORD must be provided")
	}
	if !strings.HasPrefix(cfg.Icecast.MountPoint, "/") {
		cfg.Icecast.MountPoint = "/" + cfg.Icecast.MountPoint
	}

	if strings.EqualFold(cfg.Environment, "production") && strings.EqualFold(cfg.Icecast.SourcePassword, "hackme") {
		return nil, fmt.Errorf("ICECAST_PASSWORD must be set to a non-default value in production")
	}

	if cfg.PollInterval < time.Second {
		cfg.PollInterval = time.Second
	}

	cfg.LegacyEnvWarnings = detectLegacyEnvWarnings()

	return cfg, nil
}

func detectLegacyEnvWarnings() []string {
	legacy := map[string]string{
		"ENVIRONMENT":         "use AMBRADIO_ENV",
		"ICECAST_HOSTNAME":    "use AMBRADIO_ICECAST_HOSTNAME",
		"ICECAST_PORT":        "use AMBRADIO_ICECAST_PORT",
		"ICECAST_MOUNT_POINT": "use AMBRADIO_ICECAST_MOUNT_POINT",
		"ICECAST_PASSWORD":    "use AMBRADIO_ICECAST_PASSWORD",
	}

	warnings := make([]string, 0, len(legacy))
	for key, recommendation := range legacy {
		if os.Getenv(key) != "" {
			warnings = append(warnings, fmt.Sprintf("legacy env key %s is set; %s", key, recommendation))
		}
	}
	return warnings
}

// MaxUploadSizeBytes returns the configured upload limit in bytes.
// A value of 0 means "not configured" and callers should use endpoint defaults.
func (c *Config) MaxUploadSizeBytes() int64 {
	if c == nil || c.MaxUploadSizeMB <= 0 {
		return 0
	}
	return int64(c.MaxUploadSizeMB) * 1024 * 1024
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "true" || v == "1" || v == "yes" {
			return true
		}
		if v == "false" || v == "0" || v == "no" {
			return false
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}

// getEnvAny returns the first non-empty environment variable value from keys, or def if none set.
func getEnvAny(keys []string, def string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

// getEnvIntAny returns the first set integer environment variable value from keys, or def.
func getEnvIntAny(keys []string, def int) int {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				return parsed
			}
		}
	}
	return def
}
