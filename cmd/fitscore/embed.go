package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"
)

var embedCmd = &cobra.Command{
	Use:   "embed [text]",
	Short: "Embed text with the configured provider",
	Long:  "Embeds text with the configured embedding provider (and cache) and prints the vector, for checking provider credentials and dimensions.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runEmbed,
}

var embedFull bool

// embedPreview is the number of leading components printed without --full
const embedPreview = 8

// EmbedOutput is the JSON printed by the embed command
type EmbedOutput struct {
	Provider   string    `json:"provider"`
	Dimensions int       `json:"dimensions"`
	Norm       float64   `json:"norm"`
	Vector     []float32 `json:"vector"`
	Truncated  bool      `json:"truncated,omitempty"`
}

func init() {
	embedCmd.Flags().BoolVar(&embedFull, "full", false, "Print every component instead of a preview")
	rootCmd.AddCommand(embedCmd)
}

func runEmbed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.close()

	vec, err := a.provider.Embed(ctx, strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("failed to embed text: %w", err)
	}

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}

	out := EmbedOutput{
		Provider:   a.provider.Name(),
		Dimensions: len(vec),
		Norm:       math.Sqrt(sum),
		Vector:     vec,
	}
	if !embedFull && len(vec) > embedPreview {
		out.Vector = vec[:embedPreview]
		out.Truncated = true
	}
	return writeJSON(cmd.OutOrStdout(), "", out)
}
