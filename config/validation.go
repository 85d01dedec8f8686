package config

import (
	"fmt"
	"slices"
)

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Validate checks the configuration and returns the first failure found.
func Validate(cfg *Config) error {
	if err := validateApp(&cfg.App); err != nil {
		return fmt.Errorf("app config: %w", err)
	}

	if err := validateAPI(&cfg.API); err != nil {
		return fmt.Errorf("api config: %w", err)
	}

	if err := validateRateLimit(&cfg.RateLimit); err != nil {
		return fmt.Errorf("ratelimit config: %w", err)
	}

	return nil
}

func validateApp(cfg *AppConfig) error {
	validEnvs := []string{EnvDevelopment, EnvStaging, EnvProduction}
	if !slices.Contains(validEnvs, cfg.Env) {
		return fmt.Errorf("env must be one of %v, got %q", validEnvs, cfg.Env)
	}
	return nil
}

func validateAPI(cfg *APIConfig) error {
	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	if cfg.Retry.Attempts < 0 {
		return fmt.Errorf("retry attempts cannot be negative")
	}

	if cfg.Retry.Delay <= 0 {
		return fmt.Errorf("retry delay must be positive")
	}

	return nil
}

func validateRateLimit(cfg *RateLimitConfig) error {
	if cfg.Window <= 0 {
		return fmt.Errorf("window must be positive")
	}

	if cfg.MaxRequests <= 0 {
		return fmt.Errorf("max_requests must be positive")
	}

	return nil
}
