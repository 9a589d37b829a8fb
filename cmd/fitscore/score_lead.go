package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/fitscore/internal/observability"
	"github.com/jonathan/fitscore/internal/server"
	"github.com/jonathan/fitscore/internal/types"
	"github.com/jonathan/fitscore/schemas"
)

var scoreLeadCmd = &cobra.Command{
	Use:   "score-lead",
	Short: "Qualify companies as recruitment leads",
	Long: `Scores each lead in a {"leads": [...], "lead_ids": [...]} document on financial health,
hiring urgency, relocation support, communication, industry and size, and marks the leads whose
overall fit reaches --min-score. Leads named in lead_ids are loaded from the database.`,
	RunE: runScoreLead,
}

var (
	scoreLeadInput    string
	scoreLeadMinScore int
	scoreLeadOutput   string
)

func init() {
	scoreLeadCmd.Flags().StringVarP(&scoreLeadInput, "leads", "l", "", "Path to leads JSON file, or - for stdin (required)")
	scoreLeadCmd.Flags().IntVar(&scoreLeadMinScore, "min-score", 0, "Qualification threshold 0-100 (default: lead.min_score from config)")
	scoreLeadCmd.Flags().StringVarP(&scoreLeadOutput, "out", "o", "", "Path to output file (default: stdout)")

	if err := scoreLeadCmd.MarkFlagRequired("leads"); err != nil {
		panic(fmt.Sprintf("failed to mark leads flag as required: %v", err))
	}

	rootCmd.AddCommand(scoreLeadCmd)
}

func runScoreLead(cmd *cobra.Command, _ []string) error {
	var req server.LeadBatchRequest
	if err := readJSONFile(cmd.InOrStdin(), scoreLeadInput, schemas.LeadBatch, &req); err != nil {
		return fmt.Errorf("failed to load leads: %w", err)
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.close()

	minScore := a.cfg.Lead.MinScore
	if cmd.Flags().Changed("min-score") {
		if scoreLeadMinScore < 0 || scoreLeadMinScore > 100 {
			return fmt.Errorf("invalid --min-score %d: must be between 0 and 100", scoreLeadMinScore)
		}
		minScore = scoreLeadMinScore
	}

	var src server.LeadSource
	if len(req.LeadIDs) > 0 {
		store, err := a.openStore(ctx)
		if err != nil {
			return err
		}
		if store == nil {
			return fmt.Errorf("database.url is required to score stored leads")
		}
		src = store
	}
	leads, err := req.Resolve(ctx, src)
	if err != nil {
		return err
	}

	scores := make([]*types.LeadScore, 0, len(leads))
	for i := range leads {
		score, err := a.engine.ScoreLead(ctx, &leads[i])
		if err != nil {
			return fmt.Errorf("failed to score lead %d: %w", i, err)
		}
		scores = append(scores, score)
	}

	if verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintLeadScores(scores, minScore)
	}
	return writeJSON(cmd.OutOrStdout(), scoreLeadOutput, server.NewLeadBatchResponse(scores, minScore))
}
