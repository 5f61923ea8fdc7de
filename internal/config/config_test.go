package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AMBRADIO_DB_DSN", "host=localhost user=test dbname=test sslmode=disable")
	t.Setenv("AMBRADIO_JWT_SIGNING_KEY", "supersecret")
	t.Setenv("AMBRADIO_ICECAST_HOSTNAME", "icecast.example.com")
	t.Setenv("AMBRADIO_ICECAST_PASSWORD", "sourcepass")
}

func TestLoadReadsCriticalEnvKeys(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AMBRADIO_ICECAST_PORT", "5994")
	t.Setenv("AMBRADIO_ICECAST_MOUNT_POINT", "/live")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Icecast.Hostname != "icecast.example.com" {
		t.Fatalf("unexpected icecast hostname: %q", cfg.Icecast.Hostname)
	}
	if cfg.Icecast.Port != 5994 {
		t.Fatalf("unexpected icecast port: %d", cfg.Icecast.Port)
	}
	if cfg.Icecast.MountPoint != "/live" {
		t.Fatalf("unexpected mount point: %q", cfg.Icecast.MountPoint)
	}
	if cfg.Icecast.AdminURL() != "http://icecast.example.com:5994/admin" {
		t.Fatalf("unexpected admin URL: %q", cfg.Icecast.AdminURL())
	}
	if cfg.Icecast.StreamURL() != "http://icecast.example.com:5994/live" {
		t.Fatalf("unexpected stream URL: %q", cfg.Icecast.StreamURL())
	}
}

func TestLoadFailsWithoutIcecastCredentials(t *testing.T) {
	t.Setenv("AMBRADIO_DB_DSN", "file::memory:?cache=shared")
	t.Setenv("AMBRADIO_DB_BACKEND", "sqlite")
	t.Setenv("AMBRADIO_JWT_SIGNING_KEY", "supersecret")
	t.Setenv("AMBRADIO_ICECAST_HOSTNAME", "icecast.example.com")
	t.Setenv("AMBRADIO_ICECAST_PASSWORD", "")
	t.Setenv("ICECAST_PASSWORD", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected load to fail without a source password")
	}
}

func TestLoadNormalizesMountPoint(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AMBRADIO_ICECAST_MOUNT_POINT", "radio")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Icecast.MountPoint != "/radio" {
		t.Fatalf("expected leading slash, got %q", cfg.Icecast.MountPoint)
	}
}

func TestLoadClampsPollInterval(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AMBRADIO_POLL_INTERVAL_SECONDS", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PollInterval < time.Second {
		t.Fatalf("expected poll interval clamp, got %s", cfg.PollInterval)
	}
}

func TestLoadReportsLegacyEnvWarnings(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ICECAST_HOSTNAME", "legacy.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.LegacyEnvWarnings) == 0 {
		t.Fatal("expected legacy env warnings")
	}
}

func TestLoadProductionRejectsDefaultSourcePassword(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AMBRADIO_ENV", "production")
	t.Setenv("AMBRADIO_ICECAST_PASSWORD", "hackme")

	if _, err := Load(); err == nil {
		t.Fatal("expected production config load to reject the default source password")
	}
}
