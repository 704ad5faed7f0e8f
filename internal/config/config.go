// Package config loads application configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Paths    PathsConfig    `yaml:"paths"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// PathsConfig holds the filesystem locations the icon pipeline works with.
type PathsConfig struct {
	// UserIcons and SystemIcons are the externally populated icon-theme
	// roots searched for candidates. Read-only from this program's view.
	UserIcons   string `yaml:"user_icons"`
	SystemIcons string `yaml:"system_icons"`
	// AppIcons is where normalized icons are persisted.
	AppIcons string `yaml:"app_icons"`
	// Applications is where launcher entries are written.
	Applications string `yaml:"applications"`
	// FaviconCache is where downloaded favicon candidates land.
	FaviconCache string `yaml:"favicon_cache"`
}

// DatabaseConfig holds SQLite settings for the web app registry.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// HomeDir returns the current user's home directory, falling back to $HOME.
func HomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return os.Getenv("HOME")
}

// Default returns a Config with the conventional freedesktop paths.
func Default() *Config {
	home := HomeDir()
	return &Config{
		Paths: PathsConfig{
			UserIcons:    filepath.Join(home, ".local/share/icons"),
			SystemIcons:  "/usr/share/icons",
			AppIcons:     filepath.Join(home, ".local/share/icons/QuickWebApps"),
			Applications: filepath.Join(home, ".local/share/applications"),
			FaviconCache: filepath.Join(home, ".cache/quick-webapps/favicons"),
		},
		Database: DatabaseConfig{
			Path: filepath.Join(home, ".local/share/quick-webapps/webapps.db"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads config from a YAML file (if it exists) and overrides with
// environment variables. Environment variables take precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv("QW_USER_ICONS"); v != "" {
		c.Paths.UserIcons = v
	}
	if v := os.Getenv("QW_SYSTEM_ICONS"); v != "" {
		c.Paths.SystemIcons = v
	}
	if v := os.Getenv("QW_APP_ICONS"); v != "" {
		c.Paths.AppIcons = v
	}
	if v := os.Getenv("QW_APPLICATIONS"); v != "" {
		c.Paths.Applications = v
	}
	if v := os.Getenv("QW_FAVICON_CACHE"); v != "" {
		c.Paths.FaviconCache = v
	}
	if v := os.Getenv("QW_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("QW_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("QW_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("QW_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
}

func (c *Config) validate() error {
	if c.Paths.AppIcons == "" {
		return fmt.Errorf("app icons path is required")
	}
	if c.Paths.Applications == "" {
		return fmt.Errorf("applications path is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	return nil
}
