package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. YAML configuration file (config.yaml, optional)
// 3. Default values (lowest priority)
func Load() (*Config, error) {
	return LoadFromFile("config.yaml")
}

// LoadFromFile behaves like Load but reads the given YAML file.
func LoadFromFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// The YAML file is optional; a missing file is not an error.
	if path != "" {
		_ = k.Load(file.Provider(path), yaml.Parser())
	}

	// Environment variables win over everything else. Double underscores
	// separate nesting levels so single underscores survive in key names
	// (HTTPKIT_API__BASE_URL -> api.base_url).
	if err := k.Load(envprovider.Provider("HTTPKIT_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "HTTPKIT_")
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.env":   EnvDevelopment,
		"app.debug": false,

		"api.base_url":       "",
		"api.timeout":        "30s",
		"api.retry.attempts": 3,
		"api.retry.delay":    "1s",

		"ratelimit.window":       "60s",
		"ratelimit.max_requests": 200,
		"ratelimit.critical_paths": []string{
			"/auth/login",
			"/auth/refresh",
			"/health",
		},

		"log.level":   "info",
		"log.pretty":  false,
		"log.enabled": true,
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}
