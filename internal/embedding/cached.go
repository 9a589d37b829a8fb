package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/fitscore/internal/cache"
	"github.com/jonathan/fitscore/internal/metrics"
)

// DefaultCacheTTL is how long cached vectors live
const DefaultCacheTTL = 24 * time.Hour

// Cache is the subset of the key/value store used for vectors. Get returns cache.ErrMiss
// when the key is absent.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedProvider wraps a Provider with a vector cache. Cache failures never fail an Embed
// call; they are logged and the wrapped provider is used.
type CachedProvider struct {
	next    Provider
	cache   Cache
	ttl     time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// CacheOption configures a CachedProvider
type CacheOption func(*CachedProvider)

// WithCacheTTL sets the expiry of cached vectors
func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(p *CachedProvider) {
		if ttl > 0 {
			p.ttl = ttl
		}
	}
}

// WithCacheLogger sets the logger used for cache failures
func WithCacheLogger(logger *zap.Logger) CacheOption {
	return func(p *CachedProvider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithCacheMetrics records hits and misses
func WithCacheMetrics(m *metrics.Metrics) CacheOption {
	return func(p *CachedProvider) {
		p.metrics = m
	}
}

// NewCachedProvider wraps next with c
func NewCachedProvider(next Provider, c Cache, opts ...CacheOption) *CachedProvider {
	p := &CachedProvider{
		next:   next,
		cache:  c,
		ttl:    DefaultCacheTTL,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Embed returns the cached vector for text, embedding and storing it on a miss
func (p *CachedProvider) Embed(ctx context.Context, text string) (Vector, error) {
	key := p.key(text)

	if vec, ok := p.lookup(ctx, key); ok {
		return vec, nil
	}

	vec, err := p.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(vec)
	if err == nil {
		err = p.cache.Set(ctx, key, data, p.ttl)
	}
	if err != nil {
		p.logger.Warn("failed to store embedding in cache", zap.String("key", key), zap.Error(err))
	}
	return vec, nil
}

func (p *CachedProvider) lookup(ctx context.Context, key string) (Vector, bool) {
	data, err := p.cache.Get(ctx, key)
	if errors.Is(err, cache.ErrMiss) {
		p.metrics.CacheResult("miss")
		return nil, false
	}
	if err != nil {
		p.metrics.CacheResult("error")
		p.logger.Warn("embedding cache lookup failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	var vec Vector
	if err := json.Unmarshal(data, &vec); err != nil || len(vec) != p.next.Dimensions() {
		p.metrics.CacheResult("error")
		p.logger.Warn("discarding malformed cached embedding", zap.String("key", key))
		return nil, false
	}

	p.metrics.CacheResult("hit")
	return vec, true
}

// key derives the cache key from the provider identity and a digest of the text
func (p *CachedProvider) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("fitscore:emb:%s:%s", p.next.Name(), hex.EncodeToString(sum[:]))
}

// Dimensions returns the wrapped provider's vector length
func (p *CachedProvider) Dimensions() int {
	return p.next.Dimensions()
}

// Name returns the wrapped provider's name
func (p *CachedProvider) Name() string {
	return p.next.Name()
}

// Close closes the wrapped provider. The cache is owned by the caller.
func (p *CachedProvider) Close() error {
	return p.next.Close()
}
