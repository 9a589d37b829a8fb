package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/fitscore/internal/cache"
	"github.com/jonathan/fitscore/internal/config"
	"github.com/jonathan/fitscore/internal/db"
	"github.com/jonathan/fitscore/internal/embedding"
	"github.com/jonathan/fitscore/internal/engine"
	"github.com/jonathan/fitscore/internal/lead"
	"github.com/jonathan/fitscore/internal/logger"
	"github.com/jonathan/fitscore/internal/metrics"
	"github.com/jonathan/fitscore/internal/schemas"
)

// app holds the collaborators shared by the subcommands
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	metrics  *metrics.Metrics
	provider embedding.Provider
	engine   *engine.Engine
	closers  []func()
}

// newApp loads configuration and wires the engine. The caller must call close.
func newApp(ctx context.Context, m *metrics.Metrics) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	a := &app{cfg: cfg, logger: log, metrics: m}
	a.closers = append(a.closers, func() { _ = log.Sync() })

	if err := a.buildProvider(ctx); err != nil {
		a.close()
		return nil, err
	}
	if err := a.buildEngine(); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

// buildProvider creates the configured embedding provider, behind the Redis cache when enabled
func (a *app) buildProvider(ctx context.Context) error {
	provider, err := embedding.NewProvider(ctx, a.cfg.Embedding.ProviderConfig())
	if err != nil {
		return fmt.Errorf("failed to create embedding provider: %w", err)
	}
	a.closers = append(a.closers, func() { _ = provider.Close() })

	if !a.cfg.Redis.Enabled {
		a.provider = provider
		return nil
	}

	rdb := cache.NewRedis(a.cfg.Redis.CacheConfig())
	if err := rdb.Ping(ctx); err != nil {
		// The cache is an optimisation; scoring proceeds without it
		a.logger.Warn("embedding cache unavailable", zap.String("address", a.cfg.Redis.Address), zap.Error(err))
	}
	a.closers = append(a.closers, func() { _ = rdb.Close() })

	a.provider = embedding.NewCachedProvider(provider, rdb,
		embedding.WithCacheTTL(a.cfg.Redis.TTL),
		embedding.WithCacheLogger(a.logger),
		embedding.WithCacheMetrics(a.metrics),
	)
	return nil
}

func (a *app) buildEngine() error {
	qualifier, err := lead.NewQualifier(a.cfg.LeadWeights.ToWeights(), a.cfg.Lead.Industries)
	if err != nil {
		return fmt.Errorf("failed to create lead qualifier: %w", err)
	}

	e, err := engine.New(a.provider,
		engine.WithWeights(a.cfg.Weights.ToWeights()),
		engine.WithAdvancedWeights(a.cfg.AdvancedWeights.ToWeights()),
		engine.WithQualifier(qualifier),
		engine.WithCalibrator(a.cfg.Calibration.Calibrator()),
		engine.WithLogger(a.logger),
		engine.WithMetrics(a.metrics),
		engine.WithEmbedTimeout(a.cfg.Engine.EmbedTimeout),
		engine.WithBatchConcurrency(a.cfg.Engine.BatchConcurrency),
	)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	a.engine = e
	return nil
}

// openStore connects to PostgreSQL. It returns nil when no database is configured.
func (a *app) openStore(ctx context.Context) (*db.DB, error) {
	if a.cfg.Database.URL == "" {
		return nil, nil
	}
	database, err := db.Connect(ctx, a.cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.closers = append(a.closers, database.Close)
	return database, nil
}

// close releases resources in reverse order of acquisition
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// readJSONFile validates the file at path against the named schema and decodes it into v.
// A path of "-" reads stdin.
func readJSONFile(in io.Reader, path, schemaName string, v any) error {
	var (
		content []byte
		err     error
	)
	if path == "-" {
		content, err = io.ReadAll(in)
	} else {
		content, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := schemas.Validate(schemaName, content); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := json.Unmarshal(content, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	return nil
}

// singleStdin rejects flag sets where more than one flag reads stdin
func singleStdin(paths map[string]string) error {
	var flags []string
	for flag, path := range paths {
		if path == "-" {
			flags = append(flags, "--"+flag)
		}
	}
	if len(flags) > 1 {
		sort.Strings(flags)
		return fmt.Errorf("only one input can be read from stdin, got %s", strings.Join(flags, " and "))
	}
	return nil
}

// writeJSON writes v as indented JSON to outPath, or to out when outPath is empty
func writeJSON(out io.Writer, outPath string, v any) error {
	jsonOutput, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	jsonOutput = append(jsonOutput, '\n')

	if outPath == "" {
		_, err := out.Write(jsonOutput)
		return err
	}

	// Ensure output directory exists
	outputDir := filepath.Dir(outPath)
	if outputDir != "" && outputDir != "." {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
		}
	}
	if err := os.WriteFile(outPath, jsonOutput, 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", outPath, err)
	}
	return nil
}
