package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIProvider implements Provider for OpenAI-compatible embedding endpoints
type OpenAIProvider struct {
	client        *openai.Client
	model         string
	dimensions    int
	maxInputChars int
}

// NewOpenAIProvider creates a provider for the configured endpoint and credential
func NewOpenAIProvider(cfg *Config) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}

	return &OpenAIProvider{
		client:        openai.NewClient(opts...),
		model:         cfg.model(),
		dimensions:    cfg.dimensions(),
		maxInputChars: cfg.maxInputChars(),
	}, nil
}

// Embed embeds text with the configured model. Empty text is not sent to the API.
func (p *OpenAIProvider) Embed(ctx context.Context, text string) (Vector, error) {
	text = truncateText(strings.TrimSpace(text), p.maxInputChars)
	if text == "" {
		return make(Vector, p.dimensions), nil
	}

	resp, err := p.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.F[openai.EmbeddingNewParamsInputUnion](openai.EmbeddingNewParamsInputArrayOfStrings{text}),
		Model: openai.F(openai.EmbeddingModel(p.model)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}
	if resp == nil || len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("no embedding in response")
	}

	values := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		values[i] = float32(v)
	}
	return fitDimensions(values, p.dimensions), nil
}

// Dimensions returns the vector length
func (p *OpenAIProvider) Dimensions() int {
	return p.dimensions
}

// Name returns the provider and model
func (p *OpenAIProvider) Name() string {
	return fmt.Sprintf("%s/%s", ProviderOpenAI, p.model)
}

// Close is a no-op; the HTTP client holds no resources that need releasing
func (p *OpenAIProvider) Close() error {
	return nil
}
