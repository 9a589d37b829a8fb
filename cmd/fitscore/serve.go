package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/fitscore/internal/metrics"
	"github.com/jonathan/fitscore/internal/server"
	"github.com/jonathan/fitscore/internal/server/ratelimit"
)

var (
	servePort    int
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the scoring, lead qualification and calibration endpoints. Persistence is enabled when database.url is set.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default: server.port from config)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply the database schema before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, metrics.New())
	if err != nil {
		return err
	}
	defer a.close()

	opts := server.Options{
		Engine:       a.engine,
		Metrics:      a.metrics,
		Logger:       a.logger,
		RateLimit:    ratelimit.NewConfig(a.cfg.RateLimit.Settings()),
		Config:       a.cfg.Server,
		LeadMinScore: a.cfg.Lead.MinScore,
	}
	if servePort > 0 {
		opts.Config.Port = servePort
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store != nil {
		if serveMigrate {
			if err := store.Migrate(ctx); err != nil {
				return err
			}
		}
		opts.Store = store
	} else {
		a.logger.Warn("database.url is not set; persistence endpoints are disabled")
	}

	srv, err := server.New(opts)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	a.logger.Info("starting fitscore API",
		zap.Int("port", opts.Config.Port),
		zap.String("embedding_provider", a.provider.Name()),
		zap.Bool("persistence", store != nil),
	)
	return srv.Start(ctx)
}
