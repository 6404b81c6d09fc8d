package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr    string        `env:"LISTEN_ADDR"`
	Port          string        `env:"PORT"              envDefault:"8080"`
	DatabaseDSN   string        `env:"DATABASE_DSN"      envDefault:"dropss.db"`
	SessionSecret string        `env:"SESSION_SECRET"    envDefault:"dropss-dev-secret"`
	GinMode       string        `env:"GIN_MODE"          envDefault:"release"`
	UploadDir     string        `env:"UPLOAD_DIR"        envDefault:"web/static/uploads"`
	UploadURLPath string        `env:"UPLOAD_URL_PATH"   envDefault:"/uploads"`
	SiteBaseURL   string        `env:"SITE_BASE_URL"     envDefault:"http://localhost:8080"`
	MaxUploadMB   int64         `env:"MAX_UPLOAD_MB"     envDefault:"20"`
	ShutdownGrace time.Duration `env:"SHUTDOWN_GRACE"    envDefault:"10s"`

	Discord DiscordConfig

	DemoEmail    string `env:"DEMO_EMAIL"`
	DemoPassword string `env:"DEMO_PASSWORD"`
}

// DiscordConfig carries the OAuth application credentials and API endpoints.
type DiscordConfig struct {
	ClientID         string        `env:"DISCORD_CLIENT_ID"`
	ClientSecret     string        `env:"DISCORD_CLIENT_SECRET"`
	RedirectURL      string        `env:"DISCORD_REDIRECT_URL"`
	APIBaseURL       string        `env:"DISCORD_API_BASE_URL"  envDefault:"https://discord.com/api"`
	PresenceInterval time.Duration `env:"PRESENCE_INTERVAL"     envDefault:"30s"`
}

// Configured reports whether OAuth credentials were supplied.
func (d DiscordConfig) Configured() bool {
	return strings.TrimSpace(d.ClientID) != "" && strings.TrimSpace(d.ClientSecret) != ""
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() (AppConfig, error) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.Port = strings.TrimSpace(cfg.Port)
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	cfg.ListenAddr = strings.TrimSpace(cfg.ListenAddr)
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = fmt.Sprintf(":%s", cfg.Port)
	}

	cfg.SiteBaseURL = strings.TrimRight(strings.TrimSpace(cfg.SiteBaseURL), "/")
	cfg.UploadURLPath = "/" + strings.Trim(strings.TrimSpace(cfg.UploadURLPath), "/")
	if cfg.UploadURLPath == "/" {
		cfg.UploadURLPath = "/uploads"
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 20
	}

	cfg.Discord.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.Discord.APIBaseURL), "/")
	if cfg.Discord.RedirectURL == "" {
		cfg.Discord.RedirectURL = cfg.SiteBaseURL + "/api/discord/callback"
	}
	if cfg.Discord.PresenceInterval <= 0 {
		cfg.Discord.PresenceInterval = 30 * time.Second
	}

	return cfg, nil
}

// UploadBaseURL is the public URL prefix under which stored blobs are served.
func (c AppConfig) UploadBaseURL() string {
	return c.SiteBaseURL + c.UploadURLPath
}

// MaxUploadBytes converts the configured upload limit to bytes.
func (c AppConfig) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}
