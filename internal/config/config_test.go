package config

import (
	"os"
	"testing"
	"time"
)

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	unsetEnv(t, "PORT", "LISTEN_ADDR", "SITE_BASE_URL", "UPLOAD_URL_PATH", "DISCORD_REDIRECT_URL",
		"MAX_UPLOAD_MB", "PRESENCE_INTERVAL", "DISCORD_CLIENT_ID", "DISCORD_CLIENT_SECRET")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.ListenAddr != ":8080" {
		t.Fatalf("expected listen addr :8080, got %q", cfg.ListenAddr)
	}
	if cfg.UploadURLPath != "/uploads" {
		t.Fatalf("expected /uploads, got %q", cfg.UploadURLPath)
	}
	if cfg.Discord.RedirectURL != "http://localhost:8080/api/discord/callback" {
		t.Fatalf("unexpected redirect url %q", cfg.Discord.RedirectURL)
	}
	if cfg.Discord.PresenceInterval != 30*time.Second {
		t.Fatalf("expected 30s presence interval, got %v", cfg.Discord.PresenceInterval)
	}
	if cfg.MaxUploadBytes() != 20<<20 {
		t.Fatalf("unexpected upload limit %d", cfg.MaxUploadBytes())
	}
	if cfg.Discord.Configured() {
		t.Fatal("discord should not be configured without credentials")
	}
}

func TestLoadOverrides(t *testing.T) {
	unsetEnv(t, "LISTEN_ADDR", "DISCORD_REDIRECT_URL", "UPLOAD_DIR", "MAX_UPLOAD_MB")
	t.Setenv("PORT", "9000")
	t.Setenv("SITE_BASE_URL", "https://dropss.example/")
	t.Setenv("UPLOAD_URL_PATH", "media/")
	t.Setenv("DISCORD_CLIENT_ID", "client")
	t.Setenv("DISCORD_CLIENT_SECRET", "secret")
	t.Setenv("PRESENCE_INTERVAL", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.ListenAddr != ":9000" {
		t.Fatalf("expected :9000, got %q", cfg.ListenAddr)
	}
	if got := cfg.UploadBaseURL(); got != "https://dropss.example/media" {
		t.Fatalf("unexpected upload base url %q", got)
	}
	if cfg.Discord.RedirectURL != "https://dropss.example/api/discord/callback" {
		t.Fatalf("unexpected redirect url %q", cfg.Discord.RedirectURL)
	}
	if !cfg.Discord.Configured() {
		t.Fatal("expected discord to be configured")
	}
	if cfg.Discord.PresenceInterval != 5*time.Second {
		t.Fatalf("expected 5s, got %v", cfg.Discord.PresenceInterval)
	}
}

func TestLoadRejectsMalformedDuration(t *testing.T) {
	t.Setenv("PRESENCE_INTERVAL", "soon")
	if _, err := Load(); err == nil {
		t.Fatal("expected malformed duration to fail")
	}
}
