// Package config loads daemon and client settings from YAML with
// environment overrides
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	IDs     IDsConfig     `yaml:"ids"`
	Logging LoggingConfig `yaml:"logging"`
	Seed    SeedConfig    `yaml:"seed"`
	Client  ClientConfig  `yaml:"client"`
}

// ServerConfig controls the daemon's HTTP and websocket listener
type ServerConfig struct {
	ListenAddr     string        `yaml:"listen_addr"`
	ClientBuffer   int           `yaml:"client_buffer"`
	PingInterval   time.Duration `yaml:"ping_interval"`
	PongTimeout    time.Duration `yaml:"pong_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	MaxMessageSize int64         `yaml:"max_message_size"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

// StorageConfig selects where boards are persisted
type StorageConfig struct {
	Backend    string `yaml:"backend"`
	SQLitePath string `yaml:"sqlite_path"`
	RedisURL   string `yaml:"redis_url"`
	KeyPrefix  string `yaml:"key_prefix"`
	Preload    bool   `yaml:"preload"`
}

// IDsConfig selects the identifier format (uuid or ulid)
type IDsConfig struct {
	Format string `yaml:"format"`
}

// LoggingConfig controls logrus output
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// SeedConfig describes a board created on startup when no boards exist
type SeedConfig struct {
	BoardName string   `yaml:"board_name"`
	Lists     []string `yaml:"lists"`
}

// ClientConfig is used by the CLI
type ClientConfig struct {
	ServerURL string `yaml:"server_url"`
	Theme     Theme  `yaml:"theme"`
}

// Default returns the built-in configuration
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load loads config from TABLERO_CONFIG or the user's config directory,
// then applies environment overrides. Returns defaults if the file doesn't
// exist.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		cfg := Default()
		return cfg, cfg.applyEnv()
	}
	return LoadFile(path)
}

// LoadFile loads config from an explicit path
func LoadFile(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	// Fill in any missing values with defaults
	cfg.applyDefaults()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Path returns the path to the config file
func Path() (string, error) {
	if p := os.Getenv("TABLERO_CONFIG"); p != "" {
		return p, nil
	}

	// Try XDG_CONFIG_HOME first
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "tablero", "config.yaml"), nil
	}

	// Fall back to ~/.config
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "tablero", "config.yaml"), nil
}

// DataDir returns ~/.tablero, where the default database and log live
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tablero"
	}
	return filepath.Join(home, ".tablero")
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	s := &c.Server
	if s.ListenAddr == "" {
		s.ListenAddr = "127.0.0.1:7420"
	}
	if s.ClientBuffer <= 0 {
		s.ClientBuffer = 64
	}
	if s.PingInterval <= 0 {
		s.PingInterval = 30 * time.Second
	}
	if s.PongTimeout <= 0 {
		s.PongTimeout = 90 * time.Second
	}
	if s.WriteTimeout <= 0 {
		s.WriteTimeout = 10 * time.Second
	}
	if s.MaxMessageSize <= 0 {
		s.MaxMessageSize = 1 << 20
	}

	st := &c.Storage
	if st.Backend == "" {
		st.Backend = StorageMemory
	}
	if st.SQLitePath == "" {
		st.SQLitePath = filepath.Join(DataDir(), "boards.db")
	}
	if st.KeyPrefix == "" {
		st.KeyPrefix = "tablero:"
	}

	if c.IDs.Format == "" {
		c.IDs.Format = "uuid"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	if c.Client.ServerURL == "" {
		c.Client.ServerURL = "http://" + s.ListenAddr
	}
	c.Client.Theme.ApplyDefaults()
}

// applyEnv overrides values from TABLERO_* variables
func (c *Config) applyEnv() error {
	if v := os.Getenv("TABLERO_LISTEN_ADDR"); v != "" {
		c.Server.ListenAddr = v
	}
	if v := os.Getenv("TABLERO_STORAGE"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("TABLERO_SQLITE_PATH"); v != "" {
		c.Storage.SQLitePath = v
	}
	if v := os.Getenv("TABLERO_REDIS_URL"); v != "" {
		c.Storage.RedisURL = v
	}
	if v := os.Getenv("TABLERO_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("TABLERO_SERVER_URL"); v != "" {
		c.Client.ServerURL = v
	}
	if v := os.Getenv("TABLERO_CLIENT_BUFFER"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid TABLERO_CLIENT_BUFFER %q", v)
		}
		c.Server.ClientBuffer = n
	}
	if os.Getenv("DEBUG") != "" {
		c.Logging.Level = "debug"
	}
	return c.Validate()
}

// Validate checks enumerated values
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StorageMemory, StorageSQLite:
	case StorageRedis:
		if c.Storage.RedisURL == "" {
			return errors.New("storage.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	switch c.IDs.Format {
	case "uuid", "ulid":
	default:
		return fmt.Errorf("unknown id format %q", c.IDs.Format)
	}
	return nil
}
