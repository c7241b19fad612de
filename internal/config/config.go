package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.yaml.in/yaml/v4"
)

type Config struct {
	APIBaseURL    string               `yaml:"api_base_url"`
	ListenAddr    string               `yaml:"listen_addr"`
	DBPath        string               `yaml:"db_path"`
	AuthToken     string               `yaml:"auth_token"`
	AuthEnabled   bool                 `yaml:"auth_enabled"`
	OIDCProviders []OIDCProviderConfig `yaml:"oidc_providers"`
	Timezone      string               `yaml:"timezone"`
	Log           LogConfig            `yaml:"log"`
	Cache         CacheConfig          `yaml:"cache"`
	Nudge         NudgeConfig          `yaml:"nudge"`
}

type OIDCProviderConfig struct {
	Id           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	IssuerURL    string   `yaml:"issuer_url"`
	RedirectURL  string   `yaml:"redirect_url"`
	Scopes       []string `yaml:"scopes"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type CacheConfig struct {
	// Backend is "bolt" (default, shares the database file), "redis" or
	// "memory".
	Backend string      `yaml:"backend"`
	Redis   RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type NudgeConfig struct {
	Email        string `yaml:"email"`
	ResendAPIKey string `yaml:"resend_api_key"`
	From         string `yaml:"from"`
	// Hours is the window before midnight in which a pending habit is
	// worth a reminder.
	Hours int `yaml:"hours"`
	// DailyAt is the HH:MM local time the nudge daemon fires.
	DailyAt string `yaml:"daily_at"`
}

// Load reads the YAML file named by HABITS_CONFIG (default config.yaml) and
// applies defaults and environment overrides.
func Load() (*Config, error) {
	path := getenv("HABITS_CONFIG", "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.APIBaseURL == "" {
		c.APIBaseURL = "http://localhost:8080"
	}
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.DBPath == "" {
		c.DBPath = "habits.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "bolt"
	}
	if c.Nudge.From == "" {
		c.Nudge.From = "onboarding@resend.dev"
	}
	if c.Nudge.Hours == 0 {
		c.Nudge.Hours = 6
	}
	if c.Nudge.DailyAt == "" {
		c.Nudge.DailyAt = "20:00"
	}
}

func (c *Config) applyEnv() {
	c.APIBaseURL = getenv("HABITS_API_BASE", c.APIBaseURL)
	c.DBPath = getenv("HABITS_DB_PATH", c.DBPath)
	c.AuthToken = getenv("HABITS_AUTH_TOKEN", c.AuthToken)
	c.Cache.Redis.Addr = getenv("HABITS_REDIS_ADDR", c.Cache.Redis.Addr)
	c.Nudge.ResendAPIKey = getenv("HABITS_RESEND_API_KEY", c.Nudge.ResendAPIKey)
	c.Nudge.Email = getenv("HABITS_NOTIFY_EMAIL", c.Nudge.Email)
}

func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "bolt", "memory":
	case "redis":
		if c.Cache.Redis.Addr == "" {
			return fmt.Errorf("cache.redis.addr is required for the redis cache backend")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if _, err := time.Parse("15:04", c.Nudge.DailyAt); err != nil {
		return fmt.Errorf("nudge.daily_at must be HH:MM, got %q", c.Nudge.DailyAt)
	}
	if c.Nudge.Hours < 1 || c.Nudge.Hours > 24 {
		return fmt.Errorf("nudge.hours must be between 1 and 24")
	}
	for _, p := range c.OIDCProviders {
		if p.Id == "" || p.IssuerURL == "" {
			return fmt.Errorf("oidc provider requires id and issuer_url")
		}
	}
	return nil
}

// Location is the zone that decides which calendar day is "today".
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) LogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(c.Log.Level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	return lvl, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
