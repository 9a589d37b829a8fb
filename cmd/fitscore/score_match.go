package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/fitscore/internal/observability"
	"github.com/jonathan/fitscore/internal/types"
	"github.com/jonathan/fitscore/schemas"
)

var scoreMatchCmd = &cobra.Command{
	Use:   "score-match",
	Short: "Score a candidate against an opportunity",
	Long: `Scores one candidate/opportunity pair and prints the MatchResult JSON: overall score,
per-factor scores, confidence, recommendations and red flags. With --history the result also
carries a calibrated score.`,
	RunE: runScoreMatch,
}

var (
	scoreMatchCandidate   string
	scoreMatchOpportunity string
	scoreMatchMode        string
	scoreMatchHistory     string
	scoreMatchOutput      string
)

func init() {
	scoreMatchCmd.Flags().StringVarP(&scoreMatchCandidate, "candidate", "c", "", "Path to candidate profile JSON file, or - for stdin (required)")
	scoreMatchCmd.Flags().StringVarP(&scoreMatchOpportunity, "opportunity", "p", "", "Path to opportunity profile JSON file (required)")
	scoreMatchCmd.Flags().StringVarP(&scoreMatchMode, "mode", "m", string(types.ModeBasic), "Weight table: basic or advanced")
	scoreMatchCmd.Flags().StringVar(&scoreMatchHistory, "history", "", "Path to calibration history JSON file")
	scoreMatchCmd.Flags().StringVarP(&scoreMatchOutput, "out", "o", "", "Path to output file (default: stdout)")

	if err := scoreMatchCmd.MarkFlagRequired("candidate"); err != nil {
		panic(fmt.Sprintf("failed to mark candidate flag as required: %v", err))
	}
	if err := scoreMatchCmd.MarkFlagRequired("opportunity"); err != nil {
		panic(fmt.Sprintf("failed to mark opportunity flag as required: %v", err))
	}

	rootCmd.AddCommand(scoreMatchCmd)
}

func runScoreMatch(cmd *cobra.Command, _ []string) error {
	if scoreMatchMode != string(types.ModeBasic) && scoreMatchMode != string(types.ModeAdvanced) {
		return fmt.Errorf("invalid mode %q: must be basic or advanced", scoreMatchMode)
	}

	if err := singleStdin(map[string]string{
		"candidate":   scoreMatchCandidate,
		"opportunity": scoreMatchOpportunity,
		"history":     scoreMatchHistory,
	}); err != nil {
		return err
	}

	var candidate, opportunity types.EntityProfile
	if err := readJSONFile(cmd.InOrStdin(), scoreMatchCandidate, schemas.EntityProfile, &candidate); err != nil {
		return fmt.Errorf("failed to load candidate: %w", err)
	}
	if err := readJSONFile(cmd.InOrStdin(), scoreMatchOpportunity, schemas.EntityProfile, &opportunity); err != nil {
		return fmt.Errorf("failed to load opportunity: %w", err)
	}

	var history []types.HistoricalRecord
	if scoreMatchHistory != "" {
		if err := readJSONFile(cmd.InOrStdin(), scoreMatchHistory, schemas.History, &history); err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.close()

	result, err := a.engine.Score(ctx, types.ParseMode(scoreMatchMode), &candidate, &opportunity, history)
	if err != nil {
		return fmt.Errorf("failed to score match: %w", err)
	}

	if verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintMatchResult(result)
	}
	return writeJSON(cmd.OutOrStdout(), scoreMatchOutput, result)
}
