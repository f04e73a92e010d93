package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/meshintel/collabrank/internal/discover"
	"github.com/meshintel/collabrank/internal/pipeline"
	"github.com/meshintel/collabrank/pkg/types"
)

const (
	defaultOutputDir = "output"

	researchersMarkdown = "researchers.md"
	researchersYAML     = "researchers.yaml"
)

var discoverCmd = &cobra.Command{
	Use:   `discover "<institution>"`,
	Short: "Discover researchers at an institution without ranking them",
	Long: `Discover runs the discovery stages only: web search for researcher names,
profile resolution against the bibliographic database, affiliation expansion
through institution records, and merge. The deduplicated candidate set is
written as a markdown table and a structured snapshot.`,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().Int("workers", 0, "concurrent profile lookups (default 4)")
	discoverCmd.Flags().String("output", defaultOutputDir, "directory for discovery artifacts")

	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf(`provide exactly one institution name, e.g. collabrank discover "Portsmouth U."`)
	}
	institution := args[0]
	workers, _ := cmd.Flags().GetInt("workers")
	outputDir, _ := cmd.Flags().GetString("output")

	key := openaiKey()
	if key == "" {
		return fmt.Errorf("web search needs an OpenAI API key: add .secrets/openai-api-key or set OPENAI_API_KEY")
	}

	deps := pipeline.Deps{
		Inspire: inspireClient(),
		Names:   discover.NewOpenAISearchSource(key, ""),
	}
	cfg := types.PipelineConfig{}
	cfg.Discovery.Workers = workers

	report := &types.RunReport{Institution: institution}
	profiles, err := pipeline.Discover(cmd.Context(), deps, cfg, institution, report, os.Stdout)
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		return fmt.Errorf("discovery at %s: %w", institution, pipeline.ErrNoResearchers)
	}

	if err := writeDiscoveryArtifacts(outputDir, institution, profiles, report); err != nil {
		return err
	}
	fmt.Printf("Wrote %d researchers to %s\n", len(profiles), outputDir)
	if report.HasWarnings() {
		fmt.Printf("warning: %d non-fatal failures recorded in %s\n", len(report.Warnings), researchersYAML)
	}
	return nil
}

func writeDiscoveryArtifacts(dir, institution string, profiles []types.ResearcherProfile, report *types.RunReport) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Researchers at %s\n\n", institution)
	fmt.Fprintf(&b, "%d researchers (%d resolved from %d names, %d via affiliation).\n\n",
		report.Merged, report.NamesResolved, report.NamesSearched, report.Expanded)
	b.WriteString("| Name | Identifier | Papers | Found via | Profile |\n")
	b.WriteString("|------|-----------|--------|-----------|--------|\n")
	for _, p := range profiles {
		fmt.Fprintf(&b, "| %s | %s | %d | %s | %s |\n",
			p.DisplayName, p.BAI, p.PublicationCount, p.Provenance, p.ProfileURL())
	}
	if err := os.WriteFile(filepath.Join(dir, researchersMarkdown), []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", researchersMarkdown, err)
	}

	snapshot := struct {
		Report      *types.RunReport          `yaml:"report"`
		Researchers []types.ResearcherProfile `yaml:"researchers"`
	}{report, profiles}
	data, err := yaml.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encoding discovery snapshot: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, researchersYAML), data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", researchersYAML, err)
	}
	return nil
}
