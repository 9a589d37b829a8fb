// Package config loads fitscore configuration from an optional file, FITSCORE_* environment
// variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jonathan/fitscore/internal/cache"
	"github.com/jonathan/fitscore/internal/embedding"
	"github.com/jonathan/fitscore/internal/lead"
	"github.com/jonathan/fitscore/internal/logger"
	"github.com/jonathan/fitscore/internal/scoring"
	"github.com/jonathan/fitscore/internal/server/ratelimit"
)

// EnvPrefix is prepended to every environment override, e.g. FITSCORE_EMBEDDING_PROVIDER
const EnvPrefix = "FITSCORE"

// Config is the full application configuration
type Config struct {
	Log             LogConfig         `mapstructure:"log"`
	Embedding       EmbeddingConfig   `mapstructure:"embedding"`
	Engine          EngineConfig      `mapstructure:"engine"`
	Weights         BasicWeights      `mapstructure:"weights"`
	AdvancedWeights AdvancedWeights   `mapstructure:"advancedWeights"`
	LeadWeights     LeadWeights       `mapstructure:"leadWeights"`
	Lead            LeadConfig        `mapstructure:"lead"`
	Calibration     CalibrationConfig `mapstructure:"calibration"`
	Redis           RedisConfig       `mapstructure:"redis"`
	Database        DatabaseConfig    `mapstructure:"database"`
	Server          ServerConfig      `mapstructure:"server"`
	RateLimit       RateLimitConfig   `mapstructure:"rate_limit"`
}

// LogConfig controls the zap logger
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EmbeddingConfig selects and configures the embedding provider
type EmbeddingConfig struct {
	Provider      string `mapstructure:"provider"`
	Model         string `mapstructure:"model"`
	Endpoint      string `mapstructure:"endpoint"`
	APIKey        string `mapstructure:"api_key"`
	APIKeyFile    string `mapstructure:"api_key_file"`
	Dimensions    int    `mapstructure:"dimensions"`
	MaxInputChars int    `mapstructure:"max_input_chars"`
}

// EngineConfig holds orchestration limits
type EngineConfig struct {
	EmbedTimeout     time.Duration `mapstructure:"embed_timeout"`
	BatchConcurrency int           `mapstructure:"batch_concurrency"`
}

// BasicWeights is the basic ensemble weight table
type BasicWeights struct {
	Skill        float64 `mapstructure:"skill"`
	Experience   float64 `mapstructure:"experience"`
	Location     float64 `mapstructure:"location"`
	CulturalFit  float64 `mapstructure:"culturalFit"`
	Language     float64 `mapstructure:"language"`
	Compensation float64 `mapstructure:"compensation"`
}

// AdvancedWeights is the advanced ensemble weight table
type AdvancedWeights struct {
	Neural       float64 `mapstructure:"neural"`
	Behavioral   float64 `mapstructure:"behavioral"`
	Trajectory   float64 `mapstructure:"trajectory"`
	InvertedRisk float64 `mapstructure:"invertedRisk"`
	Market       float64 `mapstructure:"market"`
	Retention    float64 `mapstructure:"retention"`
}

// LeadWeights is the lead qualification weight table
type LeadWeights struct {
	FinancialHealth      float64 `mapstructure:"financialHealth"`
	HiringUrgency        float64 `mapstructure:"hiringUrgency"`
	RelocationSupport    float64 `mapstructure:"relocationSupport"`
	CommunicationQuality float64 `mapstructure:"communicationQuality"`
	IndustryMatch        float64 `mapstructure:"industryMatch"`
	SizeCompatibility    float64 `mapstructure:"sizeCompatibility"`
}

// LeadConfig holds lead qualification settings
type LeadConfig struct {
	Industries []string `mapstructure:"industries"`
	MinScore   int      `mapstructure:"min_score"`
}

// CalibrationConfig holds the historical calibrator settings
type CalibrationConfig struct {
	Window float64 `mapstructure:"window"`
	Blend  float64 `mapstructure:"blend"`
}

// RedisConfig configures the embedding cache. The cache is off unless Enabled.
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// DatabaseConfig configures the PostgreSQL collaborator. Persistence is off when URL is empty.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBatchSize    int           `mapstructure:"max_batch_size"`
}

// RateLimitConfig configures per-client request limits
type RateLimitConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	DefaultLimit    int           `mapstructure:"default_limit"`
	DefaultWindow   time.Duration `mapstructure:"default_window"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	Whitelist       []string      `mapstructure:"whitelist"`
	Blacklist       []string      `mapstructure:"blacklist"`
}

// Load reads configuration. When path is empty, fitscore.{yaml,json,...} is looked up in the
// working directory and ./configs, and a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("fitscore")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.resolveSecrets(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration produced by defaults alone
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// Defaults always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logger.FormatConsole)

	v.SetDefault("embedding.provider", string(embedding.ProviderStub))
	v.SetDefault("embedding.model", "")
	v.SetDefault("embedding.endpoint", "")
	v.SetDefault("embedding.api_key", "")
	v.SetDefault("embedding.api_key_file", "")
	v.SetDefault("embedding.dimensions", embedding.DefaultDimensions)
	v.SetDefault("embedding.max_input_chars", embedding.DefaultMaxInputChars)

	v.SetDefault("engine.embed_timeout", 5*time.Second)
	v.SetDefault("engine.batch_concurrency", 8)

	for name, weight := range scoring.DefaultBasicWeights() {
		v.SetDefault("weights."+name, weight)
	}
	for name, weight := range scoring.DefaultAdvancedWeights() {
		v.SetDefault("advancedWeights."+name, weight)
	}
	for name, weight := range lead.DefaultWeights() {
		v.SetDefault("leadWeights."+name, weight)
	}

	v.SetDefault("lead.industries", lead.DefaultIndustries())
	v.SetDefault("lead.min_score", 70)

	v.SetDefault("calibration.window", scoring.DefaultCalibrationWindow)
	v.SetDefault("calibration.blend", scoring.DefaultCalibrationBlend)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)

	v.SetDefault("database.url", "")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.max_batch_size", 100)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.default_limit", 1000)
	v.SetDefault("rate_limit.default_window", time.Minute)
	v.SetDefault("rate_limit.cleanup_interval", 5*time.Minute)
	v.SetDefault("rate_limit.whitelist", []string{})
	v.SetDefault("rate_limit.blacklist", []string{})
}

// resolveSecrets loads the embedding API key, preferring the key file
func (c *Config) resolveSecrets() error {
	if c.Embedding.APIKeyFile == "" && c.Embedding.APIKey == "" {
		return nil
	}
	key, err := loadSecret(secretSource{
		Name:  "embedding API key",
		Value: c.Embedding.APIKey,
		File:  c.Embedding.APIKeyFile,
	})
	if err != nil {
		return err
	}
	c.Embedding.APIKey = key
	return nil
}

// Validate checks that the configuration has usable values
func (c *Config) Validate() error {
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return err
	}

	switch embedding.ProviderKind(c.Embedding.Provider) {
	case embedding.ProviderStub:
	case embedding.ProviderGemini, embedding.ProviderOpenAI:
		if c.Embedding.APIKey == "" {
			return fmt.Errorf("embedding.api_key or embedding.api_key_file is required for provider %q", c.Embedding.Provider)
		}
	default:
		return fmt.Errorf("unknown embedding.provider %q", c.Embedding.Provider)
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive")
	}

	if c.Engine.EmbedTimeout <= 0 {
		return fmt.Errorf("engine.embed_timeout must be positive")
	}
	if c.Engine.BatchConcurrency <= 0 {
		return fmt.Errorf("engine.batch_concurrency must be positive")
	}

	if err := c.Weights.ToWeights().Validate(); err != nil {
		return fmt.Errorf("weights: %w", err)
	}
	if err := c.AdvancedWeights.ToWeights().Validate(); err != nil {
		return fmt.Errorf("advancedWeights: %w", err)
	}
	if err := c.LeadWeights.ToWeights().Validate(); err != nil {
		return fmt.Errorf("leadWeights: %w", err)
	}

	if c.Lead.MinScore < 0 || c.Lead.MinScore > 100 {
		return fmt.Errorf("lead.min_score must be between 0 and 100")
	}
	if c.Calibration.Window < 0 {
		return fmt.Errorf("calibration.window must be non-negative")
	}
	if c.Calibration.Blend < 0 || c.Calibration.Blend > 1 {
		return fmt.Errorf("calibration.blend must be between 0 and 1")
	}

	if c.Redis.Enabled && c.Redis.Address == "" {
		return fmt.Errorf("redis.address is required when redis is enabled")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Server.MaxBatchSize <= 0 {
		return fmt.Errorf("server.max_batch_size must be positive")
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.DefaultLimit <= 0 {
			return fmt.Errorf("rate_limit.default_limit must be positive")
		}
		if c.RateLimit.DefaultWindow <= 0 {
			return fmt.Errorf("rate_limit.default_window must be positive")
		}
	}

	return nil
}

// ToWeights converts the table to scoring weights
func (w BasicWeights) ToWeights() scoring.Weights {
	return scoring.Weights{
		scoring.FactorSkill:        w.Skill,
		scoring.FactorExperience:   w.Experience,
		scoring.FactorLocation:     w.Location,
		scoring.FactorCulturalFit:  w.CulturalFit,
		scoring.FactorLanguage:     w.Language,
		scoring.FactorCompensation: w.Compensation,
	}
}

// ToWeights converts the table to scoring weights
func (w AdvancedWeights) ToWeights() scoring.Weights {
	return scoring.Weights{
		scoring.FactorNeural:       w.Neural,
		scoring.FactorBehavioral:   w.Behavioral,
		scoring.FactorTrajectory:   w.Trajectory,
		scoring.FactorInvertedRisk: w.InvertedRisk,
		scoring.FactorMarket:       w.Market,
		scoring.FactorRetention:    w.Retention,
	}
}

// ToWeights converts the table to scoring weights
func (w LeadWeights) ToWeights() scoring.Weights {
	return scoring.Weights{
		lead.FactorFinancialHealth:      w.FinancialHealth,
		lead.FactorHiringUrgency:        w.HiringUrgency,
		lead.FactorRelocationSupport:    w.RelocationSupport,
		lead.FactorCommunicationQuality: w.CommunicationQuality,
		lead.FactorIndustryMatch:        w.IndustryMatch,
		lead.FactorSizeCompatibility:    w.SizeCompatibility,
	}
}

// ProviderConfig converts the embedding section to a provider configuration
func (e EmbeddingConfig) ProviderConfig() *embedding.Config {
	return &embedding.Config{
		Provider:      embedding.ProviderKind(e.Provider),
		Model:         e.Model,
		Endpoint:      e.Endpoint,
		APIKey:        e.APIKey,
		Dimensions:    e.Dimensions,
		MaxInputChars: e.MaxInputChars,
	}
}

// CacheConfig converts the redis section to a cache configuration
func (r RedisConfig) CacheConfig() cache.Config {
	return cache.Config{Address: r.Address, Password: r.Password, DB: r.DB}
}

// Calibrator builds the configured calibrator
func (c CalibrationConfig) Calibrator() scoring.Calibrator {
	return scoring.Calibrator{Window: c.Window, Blend: c.Blend}
}

// Settings converts the rate limit section for the limiter
func (r RateLimitConfig) Settings() ratelimit.Settings {
	return ratelimit.Settings{
		Enabled:         r.Enabled,
		DefaultLimit:    r.DefaultLimit,
		DefaultWindow:   r.DefaultWindow,
		CleanupInterval: r.CleanupInterval,
		Whitelist:       r.Whitelist,
		Blacklist:       r.Blacklist,
	}
}
