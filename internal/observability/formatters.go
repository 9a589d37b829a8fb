// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/jonathan/fitscore/internal/engine"
	"github.com/jonathan/fitscore/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// barWidth is the width of a 0-100 score bar
	barWidth = 20
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len([]rune(line)) > boxWidth-4 {
			line = string([]rune(line)[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// scoreBar renders a 0-100 score as a fixed-width bar
func scoreBar(score int) string {
	filled := max(0, min(barWidth, score*barWidth/100))
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

// writeList writes up to maxItemsToShow bullet items under a heading
func writeList(sb *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(heading + ":\n")
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
	sb.WriteString("\n")
}

// PrintMatchResult outputs the overall score, every factor and the advice of a match.
func (p *Printer) PrintMatchResult(result *types.MatchResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Candidate:   %s\n", result.CandidateID))
	sb.WriteString(fmt.Sprintf("Opportunity: %s\n", result.OpportunityID))
	sb.WriteString(fmt.Sprintf("Mode:        %s\n", result.Mode))
	sb.WriteString(fmt.Sprintf("Overall:     %3d %s\n", result.OverallScore, scoreBar(result.OverallScore)))
	sb.WriteString(fmt.Sprintf("Confidence:  %3d\n", result.Confidence))
	if result.CalibratedScore != nil {
		sb.WriteString(fmt.Sprintf("Calibrated:  %.2f\n", *result.CalibratedScore))
	}
	sb.WriteString("\n")

	names := make([]string, 0, len(result.Factors))
	for name := range result.Factors {
		names = append(names, name)
	}
	slices.Sort(names)
	sb.WriteString("Factors:\n")
	for _, name := range names {
		sb.WriteString(fmt.Sprintf("  %-14s %3d %s\n", name, result.Factors[name], scoreBar(result.Factors[name])))
	}
	sb.WriteString("\n")

	writeList(&sb, "Skill gaps", result.SkillGaps)
	writeList(&sb, "Red flags", result.RedFlags)
	writeList(&sb, "Recommendations", result.Recommendations)

	p.printBox("MATCH RESULT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintBatch outputs one line per pair of a batch, with failures inline.
func (p *Printer) PrintBatch(items []engine.BatchItem) {
	if len(items) == 0 {
		return
	}

	var sb strings.Builder
	failed := 0
	for _, item := range items {
		if item.Err != nil {
			failed++
			sb.WriteString(fmt.Sprintf("#%-3d error: %v\n", item.Index, item.Err))
			continue
		}
		r := item.Result
		sb.WriteString(fmt.Sprintf("#%-3d %s → %s  %3d (conf %d)\n", item.Index, r.CandidateID, r.OpportunityID, r.OverallScore, r.Confidence))
	}
	sb.WriteString(fmt.Sprintf("\n%d scored, %d failed", len(items)-failed, failed))

	p.printBox("BATCH RESULTS", sb.String())
}

// PrintLeadScores outputs each lead's fit, sub-scores and whether it clears minScore.
func (p *Printer) PrintLeadScores(scores []*types.LeadScore, minScore int) {
	if len(scores) == 0 {
		return
	}

	var sb strings.Builder
	qualified := 0
	for i, s := range scores {
		mark := "✗"
		if s.OverallFit >= minScore {
			mark = "✓"
			qualified++
		}
		sb.WriteString(fmt.Sprintf("%s %s  %3d %s\n", mark, s.LeadID, s.OverallFit, scoreBar(s.OverallFit)))
		sb.WriteString(fmt.Sprintf("    financial %d, urgency %d, relocation %d\n",
			s.SubScores.FinancialHealth, s.SubScores.HiringUrgency, s.SubScores.RelocationSupport))
		sb.WriteString(fmt.Sprintf("    communication %d, industry %d, size %d\n",
			s.SubScores.CommunicationQuality, s.SubScores.IndustryMatch, s.SubScores.SizeCompatibility))
		if len(s.Reasons) > 0 {
			sb.WriteString(fmt.Sprintf("    %s\n", s.Reasons[0]))
		}
		if i < len(scores)-1 {
			sb.WriteString("\n")
		}
	}
	sb.WriteString(fmt.Sprintf("\n%d of %d leads at or above %d", qualified, len(scores), minScore))

	p.printBox("LEAD QUALIFICATION", sb.String())
}
