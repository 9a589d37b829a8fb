package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProvider implements Provider for Google Gemini embedding models
type GeminiProvider struct {
	client        *genai.Client
	model         string
	dimensions    int
	maxInputChars int
}

// NewGeminiProvider creates a new Gemini embedding provider
func NewGeminiProvider(ctx context.Context, cfg *Config) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client:        client,
		model:         cfg.model(),
		dimensions:    cfg.dimensions(),
		maxInputChars: cfg.maxInputChars(),
	}, nil
}

// Embed embeds text with the configured model. Empty text is not sent to the API.
func (p *GeminiProvider) Embed(ctx context.Context, text string) (Vector, error) {
	text = truncateText(strings.TrimSpace(text), p.maxInputChars)
	if text == "" {
		return make(Vector, p.dimensions), nil
	}

	model := p.client.EmbeddingModel(p.model)
	resp, err := model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("failed to embed content: %w", err)
	}

	return extractEmbedding(resp, p.dimensions)
}

// Dimensions returns the vector length
func (p *GeminiProvider) Dimensions() int {
	return p.dimensions
}

// Name returns the provider and model
func (p *GeminiProvider) Name() string {
	return fmt.Sprintf("%s/%s", ProviderGemini, p.model)
}

// Close releases resources held by the client
func (p *GeminiProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

// extractEmbedding extracts the vector from a Gemini API response
func extractEmbedding(resp *genai.EmbedContentResponse, dims int) (Vector, error) {
	if resp == nil || resp.Embedding == nil {
		return nil, fmt.Errorf("no embedding in response")
	}
	if len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("empty embedding in response")
	}
	return fitDimensions(resp.Embedding.Values, dims), nil
}
