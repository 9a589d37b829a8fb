package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// StubProvider is a deterministic embedder that hashes word tokens into a fixed number of
// buckets (feature hashing) and L2-normalises the result. Texts sharing vocabulary score as
// similar, identical texts score 100. It never fails.
type StubProvider struct {
	dimensions int
}

// NewStubProvider creates a stub provider
func NewStubProvider(dimensions int) *StubProvider {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &StubProvider{dimensions: dimensions}
}

// Embed returns the hashed bag-of-words vector of text
func (p *StubProvider) Embed(_ context.Context, text string) (Vector, error) {
	vector := make(Vector, p.dimensions)

	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
	if len(tokens) == 0 {
		return vector, nil
	}

	for _, token := range tokens {
		h := fnv.New64a()
		_, _ = h.Write([]byte(token))
		sum := h.Sum64()

		idx := int(sum % uint64(p.dimensions))
		// Use a bit outside the index range for the sign so collisions partly cancel
		if (sum>>63)&1 == 1 {
			vector[idx]--
		} else {
			vector[idx]++
		}
	}

	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vector {
			vector[i] = float32(float64(vector[i]) / norm)
		}
	}

	return vector, nil
}

// Dimensions returns the vector length
func (p *StubProvider) Dimensions() int {
	return p.dimensions
}

// Name identifies the stub
func (p *StubProvider) Name() string {
	return fmt.Sprintf("%s/%s-%d", ProviderStub, DefaultModel(ProviderStub), p.dimensions)
}

// Close is a no-op
func (p *StubProvider) Close() error {
	return nil
}
