package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"go.yaml.in/yaml/v4"
)

func writeConfig(t *testing.T, c any) string {
	t.Helper()
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	d, err := yaml.Marshal(c)
	if err != nil {
		t.Fatalf("failed to marshal config: %v", err)
	}
	if err := os.WriteFile(configFile, d, 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return configFile
}

func TestLoad_MissingConfig(t *testing.T) {
	t.Setenv("HABITS_CONFIG", "nonexistent.yaml")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing config file, got nil")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HABITS_CONFIG", writeConfig(t, &Config{}))

	cfg, err := Load()
	if err != nil {
		t.Fatal("error opening config:", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("got listen addr %q, want :8080", cfg.ListenAddr)
	}
	if cfg.DBPath != "habits.db" {
		t.Errorf("got db path %q, want habits.db", cfg.DBPath)
	}
	if cfg.Cache.Backend != "bolt" {
		t.Errorf("got cache backend %q, want bolt", cfg.Cache.Backend)
	}
	if cfg.Nudge.DailyAt != "20:00" {
		t.Errorf("got daily_at %q, want 20:00", cfg.Nudge.DailyAt)
	}
	if cfg.Nudge.Hours != 6 {
		t.Errorf("got nudge hours %d, want 6", cfg.Nudge.Hours)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HABITS_CONFIG", writeConfig(t, &Config{DBPath: "from-file.db"}))
	t.Setenv("HABITS_DB_PATH", "from-env.db")
	t.Setenv("HABITS_AUTH_TOKEN", "hab_live_abc")

	cfg, err := Load()
	if err != nil {
		t.Fatal("error opening config:", err)
	}
	if cfg.DBPath != "from-env.db" {
		t.Errorf("got db path %q, want from-env.db", cfg.DBPath)
	}
	if cfg.AuthToken != "hab_live_abc" {
		t.Errorf("got auth token %q, want hab_live_abc", cfg.AuthToken)
	}
}

func TestLoad_RedisBackendRequiresAddr(t *testing.T) {
	t.Setenv("HABITS_CONFIG", writeConfig(t, &Config{Cache: CacheConfig{Backend: "redis"}}))
	t.Setenv("HABITS_REDIS_ADDR", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for redis backend without addr")
	}
}

func TestLoad_BadTimezone(t *testing.T) {
	t.Setenv("HABITS_CONFIG", writeConfig(t, &Config{Timezone: "Mars/Olympus"}))

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestLoad_BadNudgeSchedule(t *testing.T) {
	t.Setenv("HABITS_CONFIG", writeConfig(t, &Config{Nudge: NudgeConfig{DailyAt: "8pm"}}))

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed nudge.daily_at")
	}
}

func TestLogLevel(t *testing.T) {
	c := &Config{Log: LogConfig{Level: "debug"}}
	lvl, err := c.LogLevel()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lvl != slog.LevelDebug {
		t.Fatalf("got %v want debug", lvl)
	}
}
