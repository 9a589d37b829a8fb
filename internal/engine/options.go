package engine

import (
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/jonathan/fitscore/internal/lead"
	"github.com/jonathan/fitscore/internal/metrics"
	"github.com/jonathan/fitscore/internal/scoring"
)

// Engine defaults
const (
	DefaultEmbedTimeout     = 5 * time.Second
	DefaultBatchConcurrency = 8
)

// Option configures an Engine
type Option func(*Engine)

// WithWeights sets the basic ensemble weights
func WithWeights(w scoring.Weights) Option {
	return func(e *Engine) {
		if w != nil {
			e.weights = w
		}
	}
}

// WithAdvancedWeights sets the advanced ensemble weights
func WithAdvancedWeights(w scoring.Weights) Option {
	return func(e *Engine) {
		if w != nil {
			e.advancedWeights = w
		}
	}
}

// WithQualifier sets the lead qualifier
func WithQualifier(q *lead.Qualifier) Option {
	return func(e *Engine) {
		if q != nil {
			e.qualifier = q
		}
	}
}

// WithCalibrator sets the historical calibrator
func WithCalibrator(c scoring.Calibrator) Option {
	return func(e *Engine) {
		e.calibrator = c
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics enables Prometheus instrumentation
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithTracer sets the tracer used for scoring spans
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithEmbedTimeout bounds each embedding call
func WithEmbedTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.embedTimeout = d
		}
	}
}

// WithBatchConcurrency limits the number of pairs scored at once
func WithBatchConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.batchConcurrency = n
		}
	}
}

// withClock overrides the time source in tests
func withClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}
