package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultServerAddress  = ":8090"
	defaultMaxGenerations = 8
	defaultSessionTTL     = 60
	defaultCleanInterval  = 5
)

// Config represents runtime configuration for the service.
type Config struct {
	BasicConfig     BasicConfig               `json:"basic_config"`
	DefaultProvider string                    `json:"default_provider"`
	Providers       map[string]ProviderConfig `json:"providers"`
	Redis           RedisConfig               `json:"redis"`
}

type ProviderConfig struct {
	BaseURL   string `json:"base_url"`
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
}

type BasicConfig struct {
	ServerAddress  string `json:"server_address"`
	MaxGenerations int    `json:"max_generations"`
	// SessionTTL and CleanInterval are expressed in minutes.
	SessionTTL    int `json:"session_ttl"`
	CleanInterval int `json:"clean_interval"`
}

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// Load reads configuration from the provided path (defaults to config.json).
// A missing file at the default path yields the built-in defaults.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = "config.json"
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	var cfg Config
	file, err := os.Open(absPath)
	switch {
	case err == nil:
		defer file.Close()
		if err := json.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("open config %s: %w", absPath, err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.BasicConfig.ServerAddress == "" {
		c.BasicConfig.ServerAddress = defaultServerAddress
	}
	if c.BasicConfig.MaxGenerations <= 0 {
		c.BasicConfig.MaxGenerations = defaultMaxGenerations
	}
	if c.BasicConfig.SessionTTL <= 0 {
		c.BasicConfig.SessionTTL = defaultSessionTTL
	}
	if c.BasicConfig.CleanInterval <= 0 {
		c.BasicConfig.CleanInterval = defaultCleanInterval
	}
	if len(c.Providers) == 0 {
		c.Providers = map[string]ProviderConfig{
			"gemini": {Model: "gemini-2.5-flash"},
		}
	}
	c.DefaultProvider = strings.ToLower(strings.TrimSpace(c.DefaultProvider))
	if c.DefaultProvider == "" {
		if _, ok := c.Providers["gemini"]; ok {
			c.DefaultProvider = "gemini"
		} else {
			for name := range c.Providers {
				c.DefaultProvider = name
				break
			}
		}
	}
	if c.Redis.Host == "" {
		c.Redis.Host = "127.0.0.1"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
}

func (c *Config) validate() error {
	if _, ok := c.Providers[c.DefaultProvider]; !ok {
		return fmt.Errorf("default_provider %q is not configured", c.DefaultProvider)
	}
	for name, p := range c.Providers {
		if strings.TrimSpace(p.Model) == "" {
			return fmt.Errorf("provider %s: model must be configured", name)
		}
	}
	return nil
}

// Provider looks up a provider section, falling back to the default provider for an empty name.
func (c *Config) Provider(name string) (string, ProviderConfig, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = c.DefaultProvider
	}
	p, ok := c.Providers[name]
	return name, p, ok
}
