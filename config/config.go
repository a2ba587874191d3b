// Package config loads songboard settings from TOML and the environment.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joeshaw/envdecode"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	Auth     AuthConfig     `toml:"auth"`
	Songs    SongsConfig    `toml:"songs"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host        string `toml:"host" env:"SONGBOARD_HOST"`
	Port        int    `toml:"port" env:"SONGBOARD_PORT"`
	StaticDir   string `toml:"static_dir" env:"SONGBOARD_STATIC_DIR"`
	CORSOrigins string `toml:"cors_origins" env:"SONGBOARD_CORS_ORIGINS"`
}

// DatabaseConfig contains PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN            string `toml:"dsn" env:"SONGBOARD_DATABASE_DSN"`
	MaxOpenConns   int    `toml:"max_open_conns" env:"SONGBOARD_DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns   int    `toml:"max_idle_conns" env:"SONGBOARD_DATABASE_MAX_IDLE_CONNS"`
	ConnectRetries uint64 `toml:"connect_retries" env:"SONGBOARD_DATABASE_CONNECT_RETRIES"`
}

// RedisConfig contains the token storage connection.
type RedisConfig struct {
	Host     string `toml:"host" env:"SONGBOARD_REDIS_HOST"`
	Port     int    `toml:"port" env:"SONGBOARD_REDIS_PORT"`
	Password string `toml:"password" env:"SONGBOARD_REDIS_PASSWORD"`
	Database int    `toml:"database" env:"SONGBOARD_REDIS_DATABASE"`
}

// AuthConfig controls bearer token issuance. A zero TTL issues tokens that never expire.
type AuthConfig struct {
	TokenTTLMinutes int `toml:"token_ttl_minutes" env:"SONGBOARD_TOKEN_TTL_MINUTES"`
}

// SongsConfig holds listing and suggestion limits.
type SongsConfig struct {
	PerPage              int `toml:"per_page" env:"SONGBOARD_SONGS_PER_PAGE"`
	SuggestionsPerMinute int `toml:"suggestions_per_minute" env:"SONGBOARD_SUGGESTIONS_PER_MINUTE"`
	SuggestionBurst      int `toml:"suggestion_burst" env:"SONGBOARD_SUGGESTION_BURST"`
}

// LogConfig selects the log level ("debug", "info", "warn", "error").
type LogConfig struct {
	Level string `toml:"level" env:"SONGBOARD_LOG_LEVEL"`
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// TokenTTL converts the configured minutes to a duration.
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLMinutes) * time.Minute
}

// LoadConfig reads and parses a TOML configuration file on top of the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, config.Validate()
}

// DefaultConfig returns a Config loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Load returns the configuration used by the commands: defaults, then the file at path when it exists,
// then SONGBOARD_* environment overrides.
func Load(path string) (*Config, error) {
	config := DefaultConfig()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, err := LoadConfig(path)
			if err != nil {
				return nil, err
			}
			config = loaded
		}
	}

	if err := ApplyEnv(config); err != nil {
		return nil, err
	}
	return config, config.Validate()
}

// ApplyEnv overrides fields whose environment variable is set.
func ApplyEnv(config *Config) error {
	if err := envdecode.Decode(config); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return fmt.Errorf("failed to decode environment: %w", err)
	}
	return nil
}

// Validate reports settings that would make the server unusable.
func (c *Config) Validate() error {
	switch {
	case c.Database.DSN == "":
		return fmt.Errorf("%w: database.dsn is empty", ErrInvalidConfig)
	case c.Server.Port <= 0 || c.Server.Port > 65535:
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port)
	case c.Songs.PerPage <= 0:
		return fmt.Errorf("%w: songs.per_page must be positive", ErrInvalidConfig)
	case c.Auth.TokenTTLMinutes < 0:
		return fmt.Errorf("%w: auth.token_ttl_minutes must not be negative", ErrInvalidConfig)
	}
	return nil
}

// CreateConfigFile writes the embedded example config to path.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

var ErrInvalidConfig = errors.New("invalid configuration")
