package observability

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/fitscore/internal/engine"
	"github.com/jonathan/fitscore/internal/types"
)

func TestPrintMatchResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	calibrated := 74.33
	result := &types.MatchResult{
		CandidateID:     "cand-1",
		OpportunityID:   "job-1",
		Mode:            types.ModeBasic,
		OverallScore:    82,
		Confidence:      85,
		Factors:         map[string]int{"skill": 100, "location": 30},
		Recommendations: []string{"Strong match"},
		RedFlags:        []string{"Relocation required"},
		SkillGaps:       []string{"kubernetes"},
		CalibratedScore: &calibrated,
	}

	p.PrintMatchResult(result)
	output := buf.String()

	assert.Contains(t, output, "MATCH RESULT")
	assert.Contains(t, output, "cand-1")
	assert.Contains(t, output, "74.33")
	assert.Contains(t, output, "Relocation required")
	assert.Contains(t, output, "kubernetes")
	assert.Less(t, strings.Index(output, "location"), strings.Index(output, "skill"), "factors are sorted")
}

func TestPrintMatchResult_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintMatchResult(nil)
	assert.Empty(t, buf.String())
}

func TestPrintBatch(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintBatch([]engine.BatchItem{
		{Index: 0, Result: &types.MatchResult{CandidateID: "c", OpportunityID: "o", OverallScore: 70, Confidence: 60}},
		{Index: 1, Err: errors.New("invalid candidate: is required")},
	})
	output := buf.String()

	assert.Contains(t, output, "BATCH RESULTS")
	assert.Contains(t, output, "invalid candidate")
	assert.Contains(t, output, "1 scored, 1 failed")
}

func TestPrintLeadScores(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintLeadScores([]*types.LeadScore{
		{LeadID: "lead-a", OverallFit: 90, Reasons: []string{"Strong relocation support"}},
		{LeadID: "lead-b", OverallFit: 40},
	}, 70)
	output := buf.String()

	assert.Contains(t, output, "✓ lead-a")
	assert.Contains(t, output, "✗ lead-b")
	assert.Contains(t, output, "1 of 2 leads at or above 70")
}

func TestPrintBox_LongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("x", 200))
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth)
	}
}

func TestScoreBar(t *testing.T) {
	assert.Equal(t, strings.Repeat("░", barWidth), scoreBar(0))
	assert.Equal(t, strings.Repeat("█", barWidth), scoreBar(100))
	assert.Equal(t, strings.Repeat("█", barWidth), scoreBar(150))
	assert.Equal(t, 10, strings.Count(scoreBar(50), "█"))
}
