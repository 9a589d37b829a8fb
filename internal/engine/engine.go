// Package engine orchestrates compatibility scoring: it embeds profile text, runs the factor
// scorers, combines them with a weight table, attaches advice and optionally calibrates the
// result against history.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/fitscore/internal/embedding"
	"github.com/jonathan/fitscore/internal/lead"
	"github.com/jonathan/fitscore/internal/metrics"
	"github.com/jonathan/fitscore/internal/scoring"
	"github.com/jonathan/fitscore/internal/types"
)

const tracerName = "github.com/jonathan/fitscore/internal/engine"

// Engine scores candidate/opportunity pairs and lead records. It is safe for concurrent use.
type Engine struct {
	provider         embedding.Provider
	weights          scoring.Weights
	advancedWeights  scoring.Weights
	qualifier        *lead.Qualifier
	calibrator       scoring.Calibrator
	logger           *zap.Logger
	metrics          *metrics.Metrics
	tracer           trace.Tracer
	embedTimeout     time.Duration
	batchConcurrency int
	now              func() time.Time
}

// New creates an Engine using provider for embeddings
func New(provider embedding.Provider, opts ...Option) (*Engine, error) {
	if provider == nil {
		return nil, fmt.Errorf("embedding provider is required")
	}

	e := &Engine{
		provider:         provider,
		weights:          scoring.DefaultBasicWeights(),
		advancedWeights:  scoring.DefaultAdvancedWeights(),
		calibrator:       scoring.NewCalibrator(),
		logger:           zap.NewNop(),
		tracer:           otel.Tracer(tracerName),
		embedTimeout:     DefaultEmbedTimeout,
		batchConcurrency: DefaultBatchConcurrency,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid weights: %w", err)
	}
	if err := e.advancedWeights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid advanced weights: %w", err)
	}
	if e.qualifier == nil {
		q, err := lead.NewQualifier(nil, nil)
		if err != nil {
			return nil, err
		}
		e.qualifier = q
	}

	return e, nil
}

// ScoreMatch scores a pair with the basic weight table
func (e *Engine) ScoreMatch(ctx context.Context, candidate, opportunity *types.EntityProfile) (*types.MatchResult, error) {
	return e.Score(ctx, types.ModeBasic, candidate, opportunity, nil)
}

// ScoreAdvanced scores a pair with the advanced weight table
func (e *Engine) ScoreAdvanced(ctx context.Context, candidate, opportunity *types.EntityProfile) (*types.MatchResult, error) {
	return e.Score(ctx, types.ModeAdvanced, candidate, opportunity, nil)
}

// ScoreMatchCalibrated scores a pair with the basic table and calibrates the result against history
func (e *Engine) ScoreMatchCalibrated(ctx context.Context, candidate, opportunity *types.EntityProfile, history []types.HistoricalRecord) (*types.MatchResult, error) {
	return e.Score(ctx, types.ModeBasic, candidate, opportunity, history)
}

// Calibrate adjusts a raw score using the engine's calibrator
func (e *Engine) Calibrate(raw float64, history []types.HistoricalRecord) float64 {
	return e.calibrator.Calibrate(raw, history)
}

// Score runs the full pipeline for one pair. When history is non-empty the result carries a
// calibrated score. Embedding failures degrade the result instead of failing it.
func (e *Engine) Score(ctx context.Context, mode types.Mode, candidate, opportunity *types.EntityProfile, history []types.HistoricalRecord) (*types.MatchResult, error) {
	ctx, span := e.tracer.Start(ctx, "engine.Score", trace.WithAttributes(attribute.String("mode", string(mode))))
	defer span.End()

	if err := validatePair(candidate, opportunity, history); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid input")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("candidate.id", candidate.ID),
		attribute.String("opportunity.id", opportunity.ID),
	)

	start := e.now()
	vectors := e.embedPair(ctx, candidate, opportunity)

	var (
		factors map[string]int
		weights scoring.Weights
		kind    string
	)
	if mode == types.ModeAdvanced {
		factors, weights, kind = scoring.AdvancedFactors(candidate, opportunity, vectors), e.advancedWeights, metrics.KindMatchAdvanced
	} else {
		mode = types.ModeBasic
		factors, weights, kind = scoring.BasicFactors(candidate, opportunity, vectors), e.weights, metrics.KindMatchBasic
	}

	overall := scoring.Combine(factors, weights)
	gaps := scoring.SkillGaps(candidate, opportunity)

	result := &types.MatchResult{
		ID:            uuid.New(),
		CandidateID:   candidate.ID,
		OpportunityID: opportunity.ID,
		Mode:          mode,
		OverallScore:  overall,
		Confidence: scoring.Confidence(scoring.ConfidenceInputs{
			CandidateEmbedding:   vectors.Candidate != nil,
			HasHistory:           candidate.HasHistory() || len(history) > 0,
			OpportunityEmbedding: vectors.Opportunity != nil,
		}),
		Factors:         factors,
		Recommendations: scoring.Recommendations(overall, gaps),
		RedFlags:        scoring.RedFlags(candidate, opportunity),
		SkillGaps:       gaps,
		ComputedAt:      e.now().UTC(),
	}

	if len(history) > 0 {
		calibrated := roundTo(e.calibrator.Calibrate(float64(overall), history), 2)
		result.CalibratedScore = &calibrated
	}

	e.metrics.ObserveScore(kind, overall, e.now().Sub(start))
	span.SetAttributes(attribute.Int("overall_score", overall), attribute.Int("confidence", result.Confidence))
	e.logger.Debug("scored match",
		zap.String("candidate_id", candidate.ID),
		zap.String("opportunity_id", opportunity.ID),
		zap.String("mode", string(mode)),
		zap.Int("overall_score", overall),
		zap.Int("confidence", result.Confidence),
	)

	return result, nil
}

// ScoreLead computes the qualification value of a lead record
func (e *Engine) ScoreLead(ctx context.Context, l *types.LeadProfile) (*types.LeadScore, error) {
	_, span := e.tracer.Start(ctx, "engine.ScoreLead")
	defer span.End()

	if l == nil {
		err := requiredError("lead")
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := l.Validate(); err != nil {
		verr := newValidationError("lead", err)
		span.SetStatus(codes.Error, verr.Error())
		return nil, verr
	}

	start := e.now()
	sub, overall, reasons := e.qualifier.Score(l)
	e.metrics.ObserveScore(metrics.KindLead, overall, e.now().Sub(start))
	span.SetAttributes(attribute.String("lead.id", l.ID), attribute.Int("overall_fit", overall))

	return &types.LeadScore{
		ID:         uuid.New(),
		LeadID:     l.ID,
		OverallFit: overall,
		SubScores:  sub,
		Reasons:    reasons,
		ComputedAt: e.now().UTC(),
	}, nil
}

func validatePair(candidate, opportunity *types.EntityProfile, history []types.HistoricalRecord) error {
	if candidate == nil {
		return requiredError("candidate")
	}
	if opportunity == nil {
		return requiredError("opportunity")
	}
	if err := candidate.Validate(); err != nil {
		return newValidationError("candidate", err)
	}
	if err := opportunity.Validate(); err != nil {
		return newValidationError("opportunity", err)
	}
	for i := range history {
		if err := history[i].Validate(); err != nil {
			return newValidationError(fmt.Sprintf("history[%d]", i), err)
		}
	}
	return nil
}

// embedPair embeds both profiles concurrently. A nil vector means unavailable.
func (e *Engine) embedPair(ctx context.Context, candidate, opportunity *types.EntityProfile) scoring.Vectors {
	var (
		g       errgroup.Group
		vectors scoring.Vectors
	)
	g.Go(func() error {
		vectors.Candidate = e.embed(ctx, candidate)
		return nil
	})
	g.Go(func() error {
		vectors.Opportunity = e.embed(ctx, opportunity)
		return nil
	})
	_ = g.Wait()
	return vectors
}

func (e *Engine) embed(ctx context.Context, profile *types.EntityProfile) embedding.Vector {
	text := ProfileText(profile)
	if text == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.embedTimeout)
	defer cancel()

	start := e.now()
	vec, err := e.provider.Embed(ctx, text)
	e.metrics.ObserveEmbedding(e.provider.Name(), err, e.now().Sub(start))
	if err != nil {
		level := zap.WarnLevel
		if errors.Is(err, context.Canceled) {
			level = zap.DebugLevel
		}
		e.logger.Log(level, "embedding unavailable, scoring without it",
			zap.String("profile_id", profile.ID),
			zap.String("provider", e.provider.Name()),
			zap.Error(err),
		)
		return nil
	}
	if isZero(vec) {
		e.logger.Debug("embedding has no signal, scoring without it", zap.String("profile_id", profile.ID))
		return nil
	}
	return vec
}

// isZero reports whether v is empty or has zero norm
func isZero(v embedding.Vector) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// ProfileText is the free text embedded for a profile: its description followed by its skills
func ProfileText(p *types.EntityProfile) string {
	parts := make([]string, 0, 2)
	if d := strings.TrimSpace(p.Description); d != "" {
		parts = append(parts, d)
	}
	if len(p.Skills) > 0 {
		parts = append(parts, "Skills: "+strings.Join(p.Skills, ", "))
	}
	return strings.Join(parts, "\n")
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
