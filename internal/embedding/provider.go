// Package embedding provides text embedding providers behind a common interface.
// Providers are selected by configuration: a deterministic stub for tests and offline use,
// and network-backed providers for Gemini and OpenAI-compatible endpoints.
package embedding

import (
	"context"
	"fmt"
	"unicode/utf8"
)

// Vector is a fixed-length embedding.
type Vector = []float32

// Provider maps free text to a fixed-length vector.
//
//go:generate mockgen -source=./provider.go -destination=./mocks/provider.mock.go -package=embmocks Provider
type Provider interface {
	// Embed returns a vector of Dimensions() length. Empty text yields a zero vector.
	Embed(ctx context.Context, text string) (Vector, error)
	// Dimensions returns the fixed length of every returned vector
	Dimensions() int
	// Name identifies the provider and model, e.g. "gemini/text-embedding-004"
	Name() string
	// Close releases any resources held by the provider
	Close() error
}

// ProviderKind selects a Provider implementation
type ProviderKind string

// Supported providers
const (
	// ProviderStub is the deterministic hashing provider
	ProviderStub ProviderKind = "stub"
	// ProviderGemini is the Google Gemini embedding API
	ProviderGemini ProviderKind = "gemini"
	// ProviderOpenAI is any OpenAI-compatible /embeddings endpoint
	ProviderOpenAI ProviderKind = "openai"
)

// Default settings
const (
	DefaultDimensions    = 1536
	DefaultMaxInputChars = 8000
)

// Config holds provider configuration
type Config struct {
	Provider ProviderKind
	Model    string
	// Endpoint overrides the provider's base URL (OpenAI-compatible servers, proxies)
	Endpoint      string
	APIKey        string
	Dimensions    int
	MaxInputChars int
}

// DefaultConfig returns the default configuration (the deterministic stub)
func DefaultConfig() *Config {
	return &Config{
		Provider:      ProviderStub,
		Dimensions:    DefaultDimensions,
		MaxInputChars: DefaultMaxInputChars,
	}
}

// DefaultModel returns the model used when none is configured
func DefaultModel(kind ProviderKind) string {
	switch kind {
	case ProviderGemini:
		return "text-embedding-004"
	case ProviderOpenAI:
		return "text-embedding-3-small"
	default:
		return "hash-v1"
	}
}

// WithModel returns a copy of the Config using the given model
func (c *Config) WithModel(model string) *Config {
	copied := *c
	copied.Model = model
	return &copied
}

// model resolves the configured model or the provider default
func (c *Config) model() string {
	if c.Model != "" {
		return c.Model
	}
	return DefaultModel(c.Provider)
}

func (c *Config) dimensions() int {
	if c.Dimensions > 0 {
		return c.Dimensions
	}
	return DefaultDimensions
}

func (c *Config) maxInputChars() int {
	if c.MaxInputChars > 0 {
		return c.MaxInputChars
	}
	return DefaultMaxInputChars
}

// NewProvider creates a Provider based on configuration
func NewProvider(ctx context.Context, cfg *Config) (Provider, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	switch cfg.Provider {
	case ProviderStub, "":
		return NewStubProvider(cfg.dimensions()), nil
	case ProviderGemini:
		return NewGeminiProvider(ctx, cfg)
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

// fitDimensions pads with zeros or truncates so every vector has the provider's length
func fitDimensions(values []float32, dims int) Vector {
	out := make(Vector, dims)
	copy(out, values)
	return out
}

// truncateText cuts text to at most maxChars runes
func truncateText(text string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxChars])
}
