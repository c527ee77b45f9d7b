package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

const (
	// PathEnv apunta al archivo TOML opcional.
	PathEnv   = "COMPANIONS_CONFIG"
	envPrefix = "COMPANIONS_"
)

const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

type Config struct {
	Addr  string   `toml:"addr" env:"ADDR"`
	Zones []string `toml:"zones" env:"ZONES" envSeparator:","`
	// TickInterval es el período de tick de cada zona del host en memoria.
	TickInterval time.Duration `toml:"tick_interval" env:"TICK_INTERVAL"`

	Storage  StorageConfig  `toml:"storage" envPrefix:"STORAGE_"`
	Rules    RulesConfig    `toml:"rules" envPrefix:"RULES_"`
	Feedback FeedbackConfig `toml:"feedback" envPrefix:"FEEDBACK_"`
}

type StorageConfig struct {
	Driver      string `toml:"driver" env:"DRIVER"`
	SQLitePath  string `toml:"sqlite_path" env:"SQLITE_PATH"`
	PostgresDSN string `toml:"postgres_dsn" env:"POSTGRES_DSN"`
}

// RulesConfig son los toggles de comportamiento de los compañeros.
type RulesConfig struct {
	PetRegen      bool `toml:"pet_regen" env:"PET_REGEN"`
	MountRegen    bool `toml:"mount_regen" env:"MOUNT_REGEN"`
	PetImmortal   bool `toml:"pet_immortal" env:"PET_IMMORTAL"`
	MountImmortal bool `toml:"mount_immortal" env:"MOUNT_IMMORTAL"`
	// porcentaje de vida
	HealthRequiredToFight  int  `toml:"health_required_to_fight" env:"HEALTH_REQUIRED_TO_FIGHT"`
	HealthRequiredToMove   int  `toml:"health_required_to_move" env:"HEALTH_REQUIRED_TO_MOVE"`
	WhistleCooldownSeconds int  `toml:"whistle_cooldown_seconds" env:"WHISTLE_COOLDOWN_SECONDS"`
	DisableFriendlyFire    bool `toml:"disable_friendly_fire" env:"DISABLE_FRIENDLY_FIRE"`

	PetTypes   []string `toml:"pet_types" env:"PET_TYPES" envSeparator:","`
	MountTypes []string `toml:"mount_types" env:"MOUNT_TYPES" envSeparator:","`
}

type FeedbackConfig struct {
	WebhookURL    string        `toml:"webhook_url" env:"WEBHOOK_URL"`
	WebhookKey    string        `toml:"webhook_key" env:"WEBHOOK_KEY"`
	WebhookHeader string        `toml:"webhook_header" env:"WEBHOOK_HEADER"`
	Timeout       time.Duration `toml:"timeout" env:"TIMEOUT"`
}

func Default() Config {
	return Config{
		Addr:         ":8080",
		Zones:        []string{"overworld", "nether", "end"},
		TickInterval: 50 * time.Millisecond,
		Storage: StorageConfig{
			Driver: StorageMemory,
		},
		Rules: RulesConfig{
			PetRegen:               true,
			MountRegen:             false,
			PetImmortal:            true,
			MountImmortal:          true,
			HealthRequiredToFight:  20,
			HealthRequiredToMove:   20,
			WhistleCooldownSeconds: 30,
			DisableFriendlyFire:    true,
			PetTypes:               []string{"minecraft:wolf", "minecraft:cat", "minecraft:parrot"},
			MountTypes: []string{
				"minecraft:horse", "minecraft:donkey", "minecraft:mule",
				"minecraft:llama", "minecraft:pig",
			},
		},
		Feedback: FeedbackConfig{
			Timeout: 5 * time.Second,
		},
	}
}

// Load arma la config: defaults, archivo de COMPANIONS_CONFIG si existe,
// y por último variables COMPANIONS_*.
func Load() (Config, error) {
	return LoadFrom(os.Getenv(PathEnv), nil)
}

// LoadFrom es Load con path y entorno explícitos. environ nil usa el del proceso.
func LoadFrom(path string, environ map[string]string) (Config, error) {
	cfg := Default()

	if path = strings.TrimSpace(path); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("load config file: %w", err)
		}
	}

	opts := env.Options{Prefix: envPrefix, Environment: environ}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Zones = trimAll(c.Zones)
	c.Rules.PetTypes = trimAll(c.Rules.PetTypes)
	c.Rules.MountTypes = trimAll(c.Rules.MountTypes)
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
}

func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("addr required"))
	}
	if len(c.Zones) == 0 {
		errs = append(errs, errors.New("at least one zone required"))
	}
	seen := map[string]bool{}
	for _, z := range c.Zones {
		if seen[z] {
			errs = append(errs, fmt.Errorf("duplicate zone %q", z))
		}
		seen[z] = true
	}
	if c.TickInterval <= 0 {
		errs = append(errs, errors.New("tick_interval must be positive"))
	}

	switch c.Storage.Driver {
	case StorageMemory:
	case StorageSQLite:
		if strings.TrimSpace(c.Storage.SQLitePath) == "" {
			errs = append(errs, errors.New("storage.sqlite_path required for sqlite"))
		}
	case StoragePostgres:
		if strings.TrimSpace(c.Storage.PostgresDSN) == "" {
			errs = append(errs, errors.New("storage.postgres_dsn required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}

	if !percent(c.Rules.HealthRequiredToFight) {
		errs = append(errs, fmt.Errorf("health_required_to_fight out of range: %d", c.Rules.HealthRequiredToFight))
	}
	if !percent(c.Rules.HealthRequiredToMove) {
		errs = append(errs, fmt.Errorf("health_required_to_move out of range: %d", c.Rules.HealthRequiredToMove))
	}

	return errors.Join(errs...)
}

// WhistleCooldown: cero o negativo desactiva el cooldown.
func (r RulesConfig) WhistleCooldown() time.Duration {
	return time.Duration(r.WhistleCooldownSeconds) * time.Second
}

func percent(v int) bool { return v >= 0 && v <= 100 }

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
