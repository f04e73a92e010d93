// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ranking

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/meshintel/collabrank/pkg/types"
)

const (
	markdownFile = "ranking.md"
	yamlFile     = "ranking.yaml"
)

// Summary is the persisted outcome of one ranking run: the structured
// entries plus enough accounting to audit what the model saw.
type Summary struct {
	Institution string    `yaml:"institution"`
	Model       string    `yaml:"model"`
	GeneratedAt time.Time `yaml:"generated_at"`

	// Budget accounting from allocation time.
	BudgetUsed    int `yaml:"budget_used"`
	BudgetCeiling int `yaml:"budget_ceiling"`

	// Provider-reported usage, zero when unreported.
	PromptTokens int `yaml:"prompt_tokens,omitempty"`
	OutputTokens int `yaml:"output_tokens,omitempty"`

	// Candidates is the merged candidate count; Covered counts those with
	// at least one digest in the payload.
	Candidates int `yaml:"candidates"`
	Covered    int `yaml:"covered"`

	Entries  []types.RankingEntry `yaml:"entries"`
	Warnings []types.Warning      `yaml:"warnings,omitempty"`
}

// WriteOutputs persists the run under dir as ranking.md (human-readable,
// raw model text verbatim) and ranking.yaml (structured). The raw text is
// always written, even when parsing produced warnings, so nothing the model
// said is lost.
func WriteOutputs(dir string, s Summary, raw string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	md := renderMarkdown(s, raw)
	if err := os.WriteFile(filepath.Join(dir, markdownFile), []byte(md), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", markdownFile, err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding ranking summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, yamlFile), data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", yamlFile, err)
	}
	return nil
}

func renderMarkdown(s Summary, raw string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Collaborator Ranking: %s\n\n", s.Institution)
	fmt.Fprintf(&b, "Generated %s by %s.\n\n", s.GeneratedAt.Format("2006-01-02 15:04 MST"), s.Model)
	fmt.Fprintf(&b, "Budget: %d of %d tokens. Candidates: %d (%d with papers in context).\n\n",
		s.BudgetUsed, s.BudgetCeiling, s.Candidates, s.Covered)

	b.WriteString("## Ranking\n\n")
	b.WriteString(strings.TrimSpace(raw))
	b.WriteString("\n")

	if len(s.Warnings) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for _, w := range s.Warnings {
			fmt.Fprintf(&b, "- [%s] %s: %s\n", w.Stage, w.Subject, w.Reason)
		}
	}
	return b.String()
}
