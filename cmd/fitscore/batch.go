package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/fitscore/internal/observability"
	"github.com/jonathan/fitscore/internal/server"
	"github.com/jonathan/fitscore/internal/types"
	"github.com/jonathan/fitscore/schemas"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Score many candidate/opportunity pairs concurrently",
	Long: `Scores every pair of a {"mode": ..., "pairs": [...]} document with bounded concurrency.
Results are index-aligned with the input; a failing pair reports its error without affecting
the others.`,
	RunE: runBatch,
}

var (
	batchInput  string
	batchMode   string
	batchOutput string
)

func init() {
	batchCmd.Flags().StringVarP(&batchInput, "in", "i", "", "Path to batch request JSON file, or - for stdin (required)")
	batchCmd.Flags().StringVarP(&batchMode, "mode", "m", "", "Override the document's mode: basic or advanced")
	batchCmd.Flags().StringVarP(&batchOutput, "out", "o", "", "Path to output file (default: stdout)")

	if err := batchCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, _ []string) error {
	var req server.BatchRequest
	if err := readJSONFile(cmd.InOrStdin(), batchInput, schemas.BatchRequest, &req); err != nil {
		return fmt.Errorf("failed to load batch: %w", err)
	}
	if batchMode != "" {
		req.Mode = types.Mode(batchMode)
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.close()

	items := a.engine.ScoreBatch(ctx, req.Pairs, types.ParseMode(string(req.Mode)))

	if verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintBatch(items)
	}
	return writeJSON(cmd.OutOrStdout(), batchOutput, server.NewBatchResponse(items))
}
