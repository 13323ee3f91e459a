// Package config resolves lab settings from built-in defaults, an optional
// YAML file and LAB_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// FileEnv names the variable that points at an alternate config file.
const FileEnv = "LAB_CONFIG"

type Config struct {
	DBPath    string `yaml:"db_path" env:"LAB_DB_PATH"`
	LogLevel  string `yaml:"log_level" env:"LAB_LOG_LEVEL"`
	LogFormat string `yaml:"log_format" env:"LAB_LOG_FORMAT"`
	Locale    string `yaml:"locale" env:"LAB_LOCALE"`
	NoQuests  bool   `yaml:"no_quests" env:"LAB_NO_QUESTS"`
}

// Default returns the settings used when nothing overrides them. An empty
// DBPath means the storage default.
func Default() Config {
	return Config{
		LogLevel:  "warn",
		LogFormat: "text",
		Locale:    "en-US",
	}
}

// DefaultPath is ~/.config/productlab/config.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config dir: %w", err)
	}
	return filepath.Join(dir, "productlab", "config.yaml"), nil
}

// Load builds the effective configuration. A missing default file is not an
// error; a missing file named by LAB_CONFIG is.
func Load() (Config, error) {
	cfg := Default()

	path, explicit := os.LookupEnv(FileEnv)
	if !explicit || path == "" {
		p, err := DefaultPath()
		if err != nil {
			return Config{}, err
		}
		path, explicit = p, false
	}
	if err := cfg.mergeFile(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			err = nil
		}
		if err != nil {
			return Config{}, err
		}
	}

	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// ParseEnv overlays environment variables onto target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks enumerated settings and normalizes their case.
func (c *Config) Validate() error {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel)
	}

	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}

	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("locale %q: %w", c.Locale, err)
	}
	return nil
}

// Tag returns the parsed locale, falling back to American English.
func (c Config) Tag() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.AmericanEnglish
	}
	return tag
}
