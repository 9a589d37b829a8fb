package embedding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ProviderStub, cfg.Provider)
	assert.Equal(t, DefaultDimensions, cfg.Dimensions)
	assert.Equal(t, "hash-v1", cfg.model())
}

func TestConfig_WithModel(t *testing.T) {
	cfg := &Config{Provider: ProviderOpenAI}
	assert.Equal(t, "text-embedding-3-small", cfg.model())

	custom := cfg.WithModel("text-embedding-3-large")
	assert.Equal(t, "text-embedding-3-large", custom.model())
	assert.Empty(t, cfg.Model, "original config must not change")
}

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     *Config
		want    string
		wantErr string
	}{
		{name: "nil config uses stub", cfg: nil, want: "stub/hash-v1-1536"},
		{name: "empty kind uses stub", cfg: &Config{Dimensions: 8}, want: "stub/hash-v1-8"},
		{name: "openai without key", cfg: &Config{Provider: ProviderOpenAI}, wantErr: "API key is required"},
		{name: "gemini without key", cfg: &Config{Provider: ProviderGemini}, wantErr: "API key is required"},
		{name: "openai with key", cfg: &Config{Provider: ProviderOpenAI, APIKey: "k"}, want: "openai/text-embedding-3-small"},
		{name: "unknown", cfg: &Config{Provider: "bogus"}, wantErr: "unknown embedding provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(ctx, tt.cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer func() { _ = p.Close() }()
			assert.Equal(t, tt.want, p.Name())
		})
	}
}

func TestFitDimensions(t *testing.T) {
	assert.Equal(t, Vector{1, 2, 0}, fitDimensions([]float32{1, 2}, 3))
	assert.Equal(t, Vector{1, 2}, fitDimensions([]float32{1, 2, 3}, 2))
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "héll", truncateText("héllo", 4))
	assert.Equal(t, "hello", truncateText("hello", 10))
	assert.Equal(t, "hello", truncateText("hello", 0))
}

func TestExtractEmbedding_Empty(t *testing.T) {
	_, err := extractEmbedding(nil, 4)
	assert.Error(t, err)
}
