// Package config provides Viper-based configuration loading for the lurefish game core.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backend identifiers.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// DatabaseConfig holds PostgreSQL connection settings for the postgres storage backend.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// StorageConfig selects and configures the key-value store backing saved games.
type StorageConfig struct {
	// Backend is one of "memory", "sqlite", or "postgres".
	Backend string `mapstructure:"backend"`
	// SQLitePath is the database file used by the sqlite backend.
	SQLitePath string `mapstructure:"sqlite_path"`
	// Namespace prefixes every key in shared backends (postgres) so several profiles can coexist.
	Namespace string `mapstructure:"namespace"`
	// Database holds the connection settings used by the postgres backend.
	Database DatabaseConfig `mapstructure:"database"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is "stderr", "stdout", or a file path. The console front end owns stdout.
	Output string `mapstructure:"output"`
}

// GameConfig holds gameplay timings and content locations.
type GameConfig struct {
	// CatalogPath is an optional YAML catalog; empty uses the embedded default catalog.
	CatalogPath string `mapstructure:"catalog_path"`
	// ScriptDir is an optional directory of per-scene Lua scripts; empty disables scripting.
	ScriptDir string `mapstructure:"script_dir"`
	// ScriptInstructionLimit bounds each Lua hook call; 0 uses the scripting default.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`

	CastDelay         time.Duration `mapstructure:"cast_delay"`
	BiteCheckInterval time.Duration `mapstructure:"bite_check_interval"`
	BiteTimeout       time.Duration `mapstructure:"bite_timeout"`
	ReelTickInterval  time.Duration `mapstructure:"reel_tick_interval"`
	ResultDelay       time.Duration `mapstructure:"result_delay"`
	// ClockTick is the real time that elapses per game minute.
	ClockTick time.Duration `mapstructure:"clock_tick"`
	// Seed fixes the dice sequence for reproducible sessions; 0 seeds randomly.
	Seed uint64 `mapstructure:"seed"`
	// NotificationTTL is the display duration hint attached to notifications.
	NotificationTTL time.Duration `mapstructure:"notification_ttl"`
	// AutoSaveInterval is the period of the full-state auto-save.
	AutoSaveInterval time.Duration `mapstructure:"autosave_interval"`
	// Debounce maps storage data types (settings, player, ...) to their debounce delays.
	Debounce map[string]time.Duration `mapstructure:"debounce"`
	// Params overrides individual fishing tunables by name (e.g. base_bite_chance).
	Params map[string]float64 `mapstructure:"params"`
}

// TelnetConfig holds settings for serving the console to remote terminals.
type TelnetConfig struct {
	// Enabled starts the Telnet acceptor.
	Enabled bool `mapstructure:"enabled"`
	// Host is the bind address for the Telnet listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the Telnet listener; 0 picks a free port.
	Port int `mapstructure:"port"`
	// ReadTimeout disconnects a session that sends nothing for this long; 0 never does.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the per-write timeout for Telnet connections.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// MaxSessions caps concurrent sessions; 0 means unlimited.
	MaxSessions int `mapstructure:"max_sessions"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (t TelnetConfig) Addr() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// FrontendConfig holds view-layer adapter settings.
type FrontendConfig struct {
	// Console enables the stdin/stdout text front end.
	Console bool `mapstructure:"console"`
	// WSAddr is the "host:port" for the WebSocket bridge; empty disables it.
	WSAddr string `mapstructure:"ws_addr"`
	// Telnet serves the console over TCP.
	Telnet TelnetConfig `mapstructure:"telnet"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Game     GameConfig     `mapstructure:"game"`
	Frontend FrontendConfig `mapstructure:"frontend"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateStorage(c.Storage); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGame(c.Game); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateTelnet(c.Frontend.Telnet); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	switch s.Backend {
	case BackendMemory:
		return nil
	case BackendSQLite:
		if s.SQLitePath == "" {
			return errors.New("storage.sqlite_path must not be empty for the sqlite backend")
		}
		return nil
	case BackendPostgres:
		return validateDatabase(s.Database)
	default:
		return fmt.Errorf("storage.backend must be one of [memory, sqlite, postgres], got %q", s.Backend)
	}
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "storage.database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("storage.database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "storage.database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "storage.database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("storage.database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("storage.database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("storage.database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "storage.database.min_conns must not exceed storage.database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateGame(g GameConfig) error {
	var errs []string
	positive := []struct {
		name string
		d    time.Duration
	}{
		{"game.cast_delay", g.CastDelay},
		{"game.bite_check_interval", g.BiteCheckInterval},
		{"game.bite_timeout", g.BiteTimeout},
		{"game.reel_tick_interval", g.ReelTickInterval},
		{"game.result_delay", g.ResultDelay},
		{"game.clock_tick", g.ClockTick},
		{"game.autosave_interval", g.AutoSaveInterval},
	}
	for _, p := range positive {
		if p.d <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be > 0, got %s", p.name, p.d))
		}
	}
	if g.BiteTimeout > 0 && g.BiteCheckInterval > g.BiteTimeout {
		errs = append(errs, "game.bite_check_interval must not exceed game.bite_timeout")
	}
	for k, d := range g.Debounce {
		if d < 0 {
			errs = append(errs, fmt.Sprintf("game.debounce.%s must not be negative", k))
		}
	}
	if g.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("game.script_instruction_limit must be >= 0, got %d", g.ScriptInstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateTelnet(t TelnetConfig) error {
	if !t.Enabled {
		return nil
	}
	var errs []string
	if t.Port < 0 || t.Port > 65535 {
		errs = append(errs, fmt.Sprintf("frontend.telnet.port must be 0-65535, got %d", t.Port))
	}
	if t.ReadTimeout < 0 || t.WriteTimeout < 0 {
		errs = append(errs, "frontend.telnet timeouts must not be negative")
	}
	if t.MaxSessions < 0 {
		errs = append(errs, fmt.Sprintf("frontend.telnet.max_sessions must be >= 0, got %d", t.MaxSessions))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with LUREFISH_ prefix
	v.SetEnvPrefix("LUREFISH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("storage.backend", BackendSQLite)
	v.SetDefault("storage.sqlite_path", "data/lurefish.db")
	v.SetDefault("storage.namespace", "default")
	v.SetDefault("storage.database.host", "localhost")
	v.SetDefault("storage.database.port", 5432)
	v.SetDefault("storage.database.user", "lurefish")
	v.SetDefault("storage.database.password", "lurefish")
	v.SetDefault("storage.database.name", "lurefish")
	v.SetDefault("storage.database.sslmode", "disable")
	v.SetDefault("storage.database.max_conns", 4)
	v.SetDefault("storage.database.min_conns", 1)
	v.SetDefault("storage.database.max_conn_lifetime", "1h")

	v.SetDefault("game.cast_delay", "1500ms")
	v.SetDefault("game.bite_check_interval", "1s")
	v.SetDefault("game.bite_timeout", "30s")
	v.SetDefault("game.reel_tick_interval", "100ms")
	v.SetDefault("game.result_delay", "2s")
	v.SetDefault("game.clock_tick", "6s")
	v.SetDefault("game.seed", 0)
	v.SetDefault("game.notification_ttl", "3s")
	v.SetDefault("game.autosave_interval", "1m")
	v.SetDefault("game.debounce", map[string]string{
		"settings":     "500ms",
		"achievements": "500ms",
		"player":       "1s",
		"equipment":    "1s",
		"inventory":    "1s",
		"tasks":        "1s",
		"game_state":   "1s",
		"statistics":   "1s",
	})

	v.SetDefault("frontend.console", true)
	v.SetDefault("frontend.ws_addr", "")
	v.SetDefault("frontend.telnet.enabled", false)
	v.SetDefault("frontend.telnet.host", "127.0.0.1")
	v.SetDefault("frontend.telnet.port", 4000)
	v.SetDefault("frontend.telnet.read_timeout", "30m")
	v.SetDefault("frontend.telnet.write_timeout", "10s")
	v.SetDefault("frontend.telnet.max_sessions", 8)
}
