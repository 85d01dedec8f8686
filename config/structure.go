package config

import "time"

// Config is the root configuration for the httpkit client.
type Config struct {
	App       AppConfig       `koanf:"app"`
	API       APIConfig       `koanf:"api"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
	Log       LogConfig       `koanf:"log"`
}

type AppConfig struct {
	Env   string `koanf:"env"`
	Debug bool   `koanf:"debug"`
}

// APIConfig describes the upstream API the client talks to.
type APIConfig struct {
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
	Retry   RetryConfig   `koanf:"retry"`
}

// RetryConfig bounds the retry orchestrator.
type RetryConfig struct {
	// Attempts is the maximum number of retries for network and 5xx failures.
	Attempts int `koanf:"attempts"`
	// Delay is the base delay for exponential backoff.
	Delay time.Duration `koanf:"delay"`
}

// RateLimitConfig shapes the client-side admission gate.
type RateLimitConfig struct {
	// Window is the sliding-window duration.
	Window time.Duration `koanf:"window"`
	// MaxRequests is the window capacity before admission is rejected.
	MaxRequests int `koanf:"max_requests"`
	// CriticalPaths are endpoints the gate always admits (login, token
	// refresh, health checks).
	CriticalPaths []string `koanf:"critical_paths"`
}

type LogConfig struct {
	Level   string `koanf:"level"`
	Pretty  bool   `koanf:"pretty"`
	Enabled bool   `koanf:"enabled"`
}

// IsDevelopment reports whether the app runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == EnvDevelopment
}
