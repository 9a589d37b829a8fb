package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/fitscore/internal/db"
	"github.com/jonathan/fitscore/internal/server"
	"github.com/jonathan/fitscore/internal/types"
	"github.com/jonathan/fitscore/schemas"
)

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Calibrate a raw score against historical outcomes",
	Long: `Blends a raw score with the observed success of past results scored nearby. History comes
from --history, or from the recorded outcomes in the database when one is configured.`,
	RunE: runCalibrate,
}

var (
	calibrateRaw     float64
	calibrateHistory string
	calibrateLimit   int
)

func init() {
	calibrateCmd.Flags().Float64Var(&calibrateRaw, "raw", 0, "Raw score 0-100 (required)")
	calibrateCmd.Flags().StringVar(&calibrateHistory, "history", "", "Path to history JSON file (default: stored outcomes)")
	calibrateCmd.Flags().IntVar(&calibrateLimit, "limit", db.DefaultHistoryLimit, "Maximum stored outcomes to use")

	if err := calibrateCmd.MarkFlagRequired("raw"); err != nil {
		panic(fmt.Sprintf("failed to mark raw flag as required: %v", err))
	}

	rootCmd.AddCommand(calibrateCmd)
}

func runCalibrate(cmd *cobra.Command, _ []string) error {
	if calibrateRaw < 0 || calibrateRaw > 100 {
		return fmt.Errorf("invalid --raw %v: must be between 0 and 100", calibrateRaw)
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.close()

	var (
		history []types.HistoricalRecord
		source  = "none"
	)
	switch {
	case calibrateHistory != "":
		if err := readJSONFile(cmd.InOrStdin(), calibrateHistory, schemas.History, &history); err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}
		source = "request"
	default:
		store, err := a.openStore(ctx)
		if err != nil {
			return err
		}
		if store != nil {
			if history, err = store.CalibrationHistory(ctx, calibrateLimit); err != nil {
				return err
			}
			source = "stored"
		}
	}

	return writeJSON(cmd.OutOrStdout(), "", server.CalibrateResponse{
		RawScore:        calibrateRaw,
		CalibratedScore: a.engine.Calibrate(calibrateRaw, history),
		HistorySize:     len(history),
		HistorySource:   source,
	})
}
