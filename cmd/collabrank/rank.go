package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/meshintel/collabrank/internal/budget"
	"github.com/meshintel/collabrank/internal/digest"
	"github.com/meshintel/collabrank/internal/discover"
	"github.com/meshintel/collabrank/internal/pipeline"
	"github.com/meshintel/collabrank/internal/ranking"
	"github.com/meshintel/collabrank/pkg/types"
)

const (
	defaultTokenCeiling   = 900000
	defaultRankingTimeout = 10 * time.Minute
	defaultCacheDir       = ".cache"
)

var rankCmd = &cobra.Command{
	Use:   `rank "<institution>"`,
	Short: "Discover, digest, and rank collaborators at an institution",
	Long: `Rank runs the full pipeline: discovery, paper digesting, context budget
allocation, and a single ranking call. Results are written as ranking.md
(readable) and ranking.yaml (structured) in the output directory.

Run "collabrank init" first to build confidential/BaseContext.md, your side
of the comparison.`,
	RunE: runRank,
}

func init() {
	rankCmd.Flags().Int("max-researchers", 0, "cap the candidate set (0 = no cap)")
	rankCmd.Flags().Int("token-ceiling", defaultTokenCeiling, "hard token budget for the ranking payload")
	rankCmd.Flags().Int("max-papers", 0, "papers digested per researcher (default 30)")
	rankCmd.Flags().String("output", defaultOutputDir, "directory for ranking artifacts")
	rankCmd.Flags().String("context", filepath.Join(confidentialDir, baseContextFile), "your research context file")
	rankCmd.Flags().String("model", "", "ranking model (default "+ranking.DefaultModel+")")
	rankCmd.Flags().String("cache-dir", defaultCacheDir, "digest cache directory (empty disables caching)")
	rankCmd.Flags().Duration("timeout", defaultRankingTimeout, "ranking call timeout")

	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf(`provide exactly one institution name, e.g. collabrank rank "Portsmouth U."`)
	}
	institution := args[0]

	maxResearchers, _ := cmd.Flags().GetInt("max-researchers")
	if cmd.Flags().Changed("max-researchers") && maxResearchers < 1 {
		return fmt.Errorf("--max-researchers must be at least 1, got %d", maxResearchers)
	}
	ceiling, _ := cmd.Flags().GetInt("token-ceiling")
	if ceiling <= 0 {
		return fmt.Errorf("--token-ceiling must be positive, got %d", ceiling)
	}
	maxPapers, _ := cmd.Flags().GetInt("max-papers")
	outputDir, _ := cmd.Flags().GetString("output")
	contextFile, _ := cmd.Flags().GetString("context")
	model, _ := cmd.Flags().GetString("model")
	cacheDir, _ := cmd.Flags().GetString("cache-dir")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	userContext, err := loadUserContext(contextFile)
	if err != nil {
		return err
	}

	openai := openaiKey()
	if openai == "" {
		return fmt.Errorf("web search needs an OpenAI API key: add .secrets/openai-api-key or set OPENAI_API_KEY")
	}
	google := googleKey()
	if google == "" {
		return fmt.Errorf("ranking needs a Google API key: add .secrets/google-api-key or set GOOGLE_API_KEY")
	}

	backend, err := ranking.NewGeminiBackend(cmd.Context(), google, model)
	if err != nil {
		return err
	}

	deps := pipeline.Deps{
		Inspire: inspireClient(),
		Names:   discover.NewOpenAISearchSource(openai, ""),
		Backend: backend,
	}
	if cacheDir != "" {
		cache, err := digest.OpenCache(cacheDir, 0)
		if err != nil {
			return err
		}
		defer cache.Close()
		deps.Cache = cache
	}

	cfg := types.PipelineConfig{}
	cfg.Digest.MaxPapers = maxPapers
	cfg.Budget.TokenCeiling = ceiling
	cfg.Ranking.Model = model
	cfg.Ranking.OutputDir = outputDir
	cfg.Ranking.Timeout = timeout

	out, err := pipeline.Run(cmd.Context(), deps, cfg,
		pipeline.Options{
			Institution:    institution,
			UserContext:    userContext,
			MaxResearchers: maxResearchers,
		}, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Printf("\nRanked %d researchers:\n", len(out.Entries))
	for _, e := range out.Entries {
		fmt.Printf("  %2d. %s (%s)\n", e.Rank, e.DisplayName, e.BAI)
	}
	if out.Report.HasWarnings() {
		fmt.Printf("\n%d non-fatal failures recorded; see ranking.yaml\n", len(out.Report.Warnings))
	}
	return nil
}

// loadUserContext reads the user's context file into a sized block.
func loadUserContext(path string) (types.ContextBlock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.ContextBlock{}, fmt.Errorf("%s not found: run \"collabrank init --bai <your-identifier>\" first", path)
		}
		return types.ContextBlock{}, fmt.Errorf("reading context file: %w", err)
	}

	text := string(data)
	return types.ContextBlock{
		Label:     "user-context",
		Text:      text,
		TokenCost: budget.CharEstimator{}.Estimate(text),
	}, nil
}
