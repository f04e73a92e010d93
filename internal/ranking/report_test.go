// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ranking

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/meshintel/collabrank/pkg/types"
)

func sampleSummary() Summary {
	return Summary{
		Institution:   "Portsmouth U.",
		Model:         DefaultModel,
		GeneratedAt:   time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
		BudgetUsed:    270,
		BudgetCeiling: 275,
		Candidates:    5,
		Covered:       4,
		Entries: []types.RankingEntry{
			{Rank: 1, BAI: "J.Smith.1", DisplayName: "Jane Smith", Overlap: "Torsion.", Potential: "High.", Recommendation: "Overlap."},
		},
		Warnings: []types.Warning{
			{Stage: types.StageRankingParse, Subject: "X.Nobody.9", Reason: "cites no known profile"},
		},
	}
}

func TestWriteOutputs(t *testing.T) {
	dir := t.TempDir()
	raw := "1. Jane Smith - J.Smith.1\n   **Research overlap:** Torsion.\n"

	require.NoError(t, WriteOutputs(dir, sampleSummary(), raw))

	md, err := os.ReadFile(filepath.Join(dir, "ranking.md"))
	require.NoError(t, err)
	assert.Contains(t, string(md), "# Collaborator Ranking: Portsmouth U.")
	assert.Contains(t, string(md), "Budget: 270 of 275 tokens")
	// Raw model text survives verbatim even when parsing warned.
	assert.Contains(t, string(md), "1. Jane Smith - J.Smith.1")
	assert.Contains(t, string(md), "## Warnings")
	assert.Contains(t, string(md), "X.Nobody.9")

	data, err := os.ReadFile(filepath.Join(dir, "ranking.yaml"))
	require.NoError(t, err)
	var got Summary
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, sampleSummary(), got)
}

func TestWriteOutputsCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	require.NoError(t, WriteOutputs(dir, sampleSummary(), "raw"))
	_, err := os.Stat(filepath.Join(dir, "ranking.yaml"))
	assert.NoError(t, err)
}
