package ratelimit

import (
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Settings are the user-facing rate limit options
type Settings struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       []string
	Blacklist       []string
}

// DefaultConfig returns the configuration used when none is given
func DefaultConfig() *Config {
	return NewConfig(Settings{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
	})
}

// NewConfig builds a limiter configuration with the default endpoint tiers
func NewConfig(s Settings) *Config {
	if !s.Enabled {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    s.DefaultLimit,
		DefaultWindow:   s.DefaultWindow,
		CleanupInterval: s.CleanupInterval,
		Whitelist:       toSet(s.Whitelist),
		Blacklist:       toSet(s.Blacklist),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Tier 1: batch scoring fans out to many embedding calls
		{Path: "/v1/match/batch", Method: "POST", Limit: 60, Window: time.Hour, Burst: 5},

		// Tier 2: single scoring requests
		{Path: "/v1/match", Method: "POST", Limit: 600, Window: time.Minute, Burst: 50},
		{Path: "/v1/leads/score", Method: "POST", Limit: 300, Window: time.Minute, Burst: 30},
		{Path: "/v1/calibrate", Method: "POST", Limit: 600, Window: time.Minute, Burst: 50},

		// Tier 3: writes
		{Path: "/v1/profiles/", Method: "PUT", Limit: 300, Window: time.Minute, Burst: 30},
		{Path: "/v1/leads/", Method: "PUT", Limit: 300, Window: time.Minute, Burst: 30},
		{Path: "/v1/matches/", Method: "POST", Limit: 300, Window: time.Minute, Burst: 30},

		// Reads use the default limit; /health and /metrics are unlimited
	}
}

// toSet converts a list of addresses into a lookup set, ignoring blanks
func toSet(list []string) map[string]bool {
	result := make(map[string]bool, len(list))
	for _, item := range list {
		item = strings.TrimSpace(item)
		if item != "" {
			result[item] = true
		}
	}
	return result
}
