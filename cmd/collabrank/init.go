package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/meshintel/collabrank/internal/digest"
	"github.com/meshintel/collabrank/pkg/types"
)

const (
	confidentialDir = "confidential"
	gatherFile      = "GatherContext.md"
	baseContextFile = "BaseContext.md"

	defaultInitMaxPapers = 100
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Build your own research context from your publication record",
	Long: `Init fetches your recent papers from the bibliographic database and
renders them, together with any research statements you have placed in
confidential/GatherContext.md, into confidential/BaseContext.md. The ranking
stages read that file as your side of the comparison.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().String("bai", "", "your own bibliographic profile identifier (required)")
	initCmd.Flags().Int("max-papers", defaultInitMaxPapers, "number of most-recent papers to include")

	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	bai, _ := cmd.Flags().GetString("bai")
	if bai == "" {
		return fmt.Errorf("provide your profile identifier with --bai (e.g. --bai J.Smith.1)")
	}
	maxPapers, _ := cmd.Flags().GetInt("max-papers")
	if maxPapers < 1 {
		return fmt.Errorf("--max-papers must be at least 1, got %d", maxPapers)
	}

	client := inspireClient()
	fetcher := &digest.Fetcher{Client: client, MaxPapers: maxPapers}

	fmt.Printf("Fetching up to %d papers for %s\n", maxPapers, bai)
	digests, err := fetcher.FetchDigests(cmd.Context(), types.ResearcherProfile{BAI: bai})
	if err != nil {
		return fmt.Errorf("fetching publication list for %s: %w", bai, err)
	}
	if len(digests) == 0 {
		return fmt.Errorf("no papers found for %s: check the identifier", bai)
	}
	fmt.Printf("Fetched %d papers\n", len(digests))

	var b strings.Builder
	fmt.Fprintf(&b, "# My Research Context\n\nGenerated %s for %s.\n\n",
		time.Now().Format("2006-01-02"), bai)

	gatherPath := filepath.Join(confidentialDir, gatherFile)
	if statements, err := os.ReadFile(gatherPath); err == nil {
		b.WriteString("## Part 1: My Research Statements and Plans\n\n")
		b.Write(statements)
		b.WriteString("\n\n---\n\n")
		fmt.Printf("Included research statements from %s\n", gatherPath)
	} else {
		fmt.Printf("No %s found; context will contain publications only\n", gatherPath)
	}

	b.WriteString("## Part 2: My Publication List\n\n")
	for _, d := range digests {
		b.WriteString(digest.Render(d))
		b.WriteString("\n")
	}

	if err := os.MkdirAll(confidentialDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", confidentialDir, err)
	}
	outPath := filepath.Join(confidentialDir, baseContextFile)
	if err := os.WriteFile(outPath, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}

	fmt.Printf("Wrote %s\n", outPath)
	return nil
}
