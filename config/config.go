package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" env:"CMDAPI_ADDR"`
}

type StoreConfig struct {
	Driver string `yaml:"driver" env:"CMDAPI_STORE_DRIVER"`
	Path   string `yaml:"path" env:"CMDAPI_STORE_PATH"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

var (
	ErrUnknownDriver = errors.New("unknown store driver")
	ErrUnknownFormat = errors.New("unknown log format")
)

var defaultServer = ServerConfig{
	Addr: "127.0.0.1:5000",
}

var defaultStore = StoreConfig{
	Driver: "sqlite",
}

var defaultLog = LogConfig{
	Level:  "info",
	Format: "text",
}

func Default() *Config {
	cfg := &Config{
		Server: defaultServer,
		Store:  defaultStore,
		Log:    defaultLog,
	}
	cfg.PopulateDefaults()
	return cfg
}

// Read loads the YAML file at path, applies environment overrides and
// fills anything still unset with defaults. An empty path skips the file.
func Read(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.PopulateDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *ServerConfig) PopulateDefaults() {
	if c.Addr == "" {
		c.Addr = defaultServer.Addr
	}
}

func (c *StoreConfig) PopulateDefaults() {
	if c.Driver == "" {
		c.Driver = defaultStore.Driver
	}

	if c.Path == "" && c.Driver == "sqlite" {
		c.Path = DefaultStorePath()
	}
}

func (c *LogConfig) PopulateDefaults() {
	if c.Level == "" {
		c.Level = defaultLog.Level
	}

	if c.Format == "" {
		c.Format = defaultLog.Format
	}
}

func (c *Config) PopulateDefaults() {
	c.Server.PopulateDefaults()
	c.Store.PopulateDefaults()
	c.Log.PopulateDefaults()
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Store.Driver)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, c.Log.Format)
	}
	return nil
}

// DefaultStorePath is ~/.cmdapi/commands.db, or a file in the working
// directory when the home directory cannot be resolved.
func DefaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "commands.db"
	}
	return filepath.Join(home, ".cmdapi", "commands.db")
}
