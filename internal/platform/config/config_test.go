package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom("", map[string]string{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(cfg, func() Config { c := Default(); c.normalize(); return c }()) {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if cfg.Rules.WhistleCooldown() != 30*time.Second {
		t.Fatalf("expected 30s cooldown, got %v", cfg.Rules.WhistleCooldown())
	}
}

func TestLoadFrom_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "companions.toml")
	body := `
addr = ":9090"
zones = ["lobby", "arena"]
tick_interval = "100ms"

[storage]
driver = "sqlite"
sqlite_path = "/tmp/companions.db"

[rules]
mount_regen = true
health_required_to_move = 35
pet_types = ["minecraft:wolf", "mod:fox"]
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFrom(path, map[string]string{
		"COMPANIONS_ADDR":                           ":7070",
		"COMPANIONS_RULES_WHISTLE_COOLDOWN_SECONDS": "0",
		"COMPANIONS_RULES_MOUNT_TYPES":              "mod:drake, minecraft:horse",
		"COMPANIONS_FEEDBACK_WEBHOOK_URL":           "http://localhost:9000/cues",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Addr != ":7070" {
		t.Fatalf("env should win over file, got addr %q", cfg.Addr)
	}
	if !reflect.DeepEqual(cfg.Zones, []string{"lobby", "arena"}) {
		t.Fatalf("unexpected zones %v", cfg.Zones)
	}
	if cfg.TickInterval != 100*time.Millisecond {
		t.Fatalf("unexpected tick interval %v", cfg.TickInterval)
	}
	if cfg.Storage.Driver != StorageSQLite || cfg.Storage.SQLitePath != "/tmp/companions.db" {
		t.Fatalf("unexpected storage %+v", cfg.Storage)
	}
	if !cfg.Rules.MountRegen || !cfg.Rules.PetRegen {
		t.Fatalf("expected file override plus default, got %+v", cfg.Rules)
	}
	if cfg.Rules.HealthRequiredToMove != 35 || cfg.Rules.HealthRequiredToFight != 20 {
		t.Fatalf("unexpected thresholds %+v", cfg.Rules)
	}
	if cfg.Rules.WhistleCooldown() != 0 {
		t.Fatalf("expected cooldown disabled, got %v", cfg.Rules.WhistleCooldown())
	}
	if !reflect.DeepEqual(cfg.Rules.MountTypes, []string{"mod:drake", "minecraft:horse"}) {
		t.Fatalf("unexpected mount types %v", cfg.Rules.MountTypes)
	}
	if !reflect.DeepEqual(cfg.Rules.PetTypes, []string{"minecraft:wolf", "mod:fox"}) {
		t.Fatalf("unexpected pet types %v", cfg.Rules.PetTypes)
	}
	if cfg.Feedback.WebhookURL != "http://localhost:9000/cues" {
		t.Fatalf("unexpected webhook %q", cfg.Feedback.WebhookURL)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no zones", func(c *Config) { c.Zones = nil }, "at least one zone"},
		{"dup zone", func(c *Config) { c.Zones = []string{"a", "a"} }, "duplicate zone"},
		{"fight range", func(c *Config) { c.Rules.HealthRequiredToFight = 101 }, "health_required_to_fight"},
		{"move range", func(c *Config) { c.Rules.HealthRequiredToMove = -1 }, "health_required_to_move"},
		{"driver", func(c *Config) { c.Storage.Driver = "redis" }, "unknown storage driver"},
		{"sqlite path", func(c *Config) { c.Storage.Driver = StorageSQLite }, "sqlite_path"},
		{"pg dsn", func(c *Config) { c.Storage.Driver = StoragePostgres }, "postgres_dsn"},
		{"tick", func(c *Config) { c.TickInterval = 0 }, "tick_interval"},
	}

	for _, tc := range cases {
		cfg := Default()
		tc.mutate(&cfg)
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: expected error containing %q, got %v", tc.name, tc.want, err)
		}
	}

	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults should be valid: %v", err)
	}
}

func TestLoadFrom_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("zones = ["), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFrom(path, map[string]string{}); err == nil {
		t.Fatal("expected parse error")
	}
}
