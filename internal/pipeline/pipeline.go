// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline wires the discovery, digest, budget, and ranking stages
// into complete runs. Non-fatal failures accumulate in the run report; a
// run ends with either a ranking and its artifacts or one fatal error
// naming the stage that failed.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/meshintel/collabrank/internal/budget"
	"github.com/meshintel/collabrank/internal/digest"
	"github.com/meshintel/collabrank/internal/discover"
	"github.com/meshintel/collabrank/internal/inspire"
	"github.com/meshintel/collabrank/internal/ranking"
	"github.com/meshintel/collabrank/pkg/types"
)

// ErrNoResearchers is returned when discovery produces an empty candidate
// set; there is nothing to rank.
var ErrNoResearchers = errors.New("no researchers discovered")

// Deps are the external capabilities a run needs. Tests substitute fakes.
type Deps struct {
	Inspire *inspire.Client
	Names   discover.NameSource
	Backend ranking.Backend

	// Cache is optional; nil disables digest caching.
	Cache *digest.Cache
}

// Options are the per-run inputs alongside the static configuration.
type Options struct {
	// Institution is the target institution as given on the command line.
	Institution string

	// UserContext is the user's own pre-built context block, token cost
	// already estimated.
	UserContext types.ContextBlock

	// MaxResearchers caps the merged candidate set; zero means no cap.
	MaxResearchers int

	// TopN is the ranked-list length requested from the model; zero
	// selects the ranking default.
	TopN int
}

// Outcome is a completed run: structured entries, the verbatim model text,
// and the persisted summary.
type Outcome struct {
	Report  *types.RunReport
	Entries []types.RankingEntry
	Raw     string
	Summary ranking.Summary
}

// Discover runs the discovery stages only: name search, profile
// resolution, affiliation expansion, and merge. The returned profiles are
// sorted by descending publication count, ties by identifier.
func Discover(ctx context.Context, deps Deps, cfg types.PipelineConfig, institution string, report *types.RunReport, w io.Writer) ([]types.ResearcherProfile, error) {
	fmt.Fprintf(w, "Discovering researchers at %s\n", institution)

	var names []string
	if deps.Names != nil {
		found, err := deps.Names.DiscoverNames(ctx, institution)
		if err != nil {
			// Name search is one of two discovery paths; losing it
			// shrinks coverage but affiliation expansion can still
			// find people through any seeds resolved later.
			report.Warn(types.StageResolution, institution, "name search failed: "+err.Error())
			fmt.Fprintf(w, "warning: name search failed: %v\n", err)
		}
		names = found
	}
	report.NamesSearched = len(names)
	fmt.Fprintf(w, "Web search found %d candidate names\n", len(names))

	resolver := &discover.Resolver{
		Client:        deps.Inspire,
		MinSimilarity: cfg.Discovery.MinSimilarity,
		Workers:       cfg.Discovery.Workers,
	}
	resolved := resolver.ResolveAll(ctx, names, report, w)
	report.NamesResolved = len(resolved)
	fmt.Fprintf(w, "Resolved %d of %d names\n", len(resolved), len(names))

	expander := &discover.Expander{
		Client:     deps.Inspire,
		MaxAuthors: cfg.Discovery.MaxAffiliationAuthors,
	}
	instIDs := expander.InstitutionIDs(ctx, resolved, institution, report, w)
	expanded := expander.Expand(ctx, instIDs, report, w)
	report.Expanded = len(expanded)
	fmt.Fprintf(w, "Affiliation expansion found %d researchers across %d institution records\n",
		len(expanded), len(instIDs))

	merged := discover.Merge(resolved, expanded)
	discover.SortProfiles(merged)
	report.Merged = len(merged)
	fmt.Fprintf(w, "Merged candidate set: %d researchers\n", len(merged))

	return merged, nil
}

// Run executes the full pipeline and writes ranking artifacts to the
// configured output directory.
func Run(ctx context.Context, deps Deps, cfg types.PipelineConfig, opts Options, w io.Writer) (*Outcome, error) {
	report := &types.RunReport{Institution: opts.Institution, StartedAt: time.Now()}

	profiles, err := Discover(ctx, deps, cfg, opts.Institution, report, w)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("discovery at %s: %w", opts.Institution, ErrNoResearchers)
	}
	if opts.MaxResearchers > 0 && len(profiles) > opts.MaxResearchers {
		// Profiles are already in deterministic order, so the cap keeps
		// the most-published researchers.
		profiles = profiles[:opts.MaxResearchers]
		fmt.Fprintf(w, "Capped candidate set to %d researchers\n", len(profiles))
	}

	fetcher := &digest.Fetcher{
		Client:        deps.Inspire,
		Cache:         deps.Cache,
		MaxPapers:     cfg.Digest.MaxPapers,
		AbstractLimit: cfg.Digest.AbstractLimit,
		Workers:       cfg.Digest.Workers,
	}
	fmt.Fprintf(w, "Fetching paper digests for %d researchers\n", len(profiles))
	digestsByBAI := fetcher.FetchAll(ctx, profiles, report, w)

	candidates := make([]budget.Candidate, len(profiles))
	for i, p := range profiles {
		candidates[i] = budget.Candidate{Profile: p, Digests: digestsByBAI[p.BAI]}
	}

	result, err := budget.Allocate(opts.UserContext, candidates, cfg.Budget.TokenCeiling, nil)
	if err != nil {
		return nil, fmt.Errorf("budget allocation: %w", err)
	}
	fmt.Fprintf(w, "Context budget: %d of %d tokens, %d of %d researchers covered\n",
		result.TotalCost, result.Ceiling, result.CoveredProfiles(), len(profiles))

	payload, err := ranking.BuildPayload(result, opts.Institution, opts.TopN)
	if err != nil {
		return nil, err
	}

	rankCtx := ctx
	if cfg.Ranking.Timeout > 0 {
		var cancel context.CancelFunc
		rankCtx, cancel = context.WithTimeout(ctx, cfg.Ranking.Timeout)
		defer cancel()
	}
	model := cfg.Ranking.Model
	if model == "" {
		model = ranking.DefaultModel
	}
	fmt.Fprintf(w, "Ranking with %s\n", model)
	resp, err := deps.Backend.Rank(rankCtx, payload)
	if err != nil {
		return nil, fmt.Errorf("ranking: %w", err)
	}

	entries := ranking.Parse(resp.Text, profiles, report)
	for _, warn := range report.Warnings {
		if warn.Stage == types.StageRankingParse {
			fmt.Fprintf(w, "warning: %s: %s\n", warn.Subject, warn.Reason)
		}
	}

	summary := ranking.Summary{
		Institution:   opts.Institution,
		Model:         model,
		GeneratedAt:   time.Now(),
		BudgetUsed:    result.TotalCost,
		BudgetCeiling: result.Ceiling,
		PromptTokens:  resp.PromptTokens,
		OutputTokens:  resp.OutputTokens,
		Candidates:    len(profiles),
		Covered:       result.CoveredProfiles(),
		Entries:       entries,
		Warnings:      report.Warnings,
	}
	if cfg.Ranking.OutputDir != "" {
		if err := ranking.WriteOutputs(cfg.Ranking.OutputDir, summary, resp.Text); err != nil {
			return nil, err
		}
		fmt.Fprintf(w, "Wrote ranking artifacts to %s\n", cfg.Ranking.OutputDir)
	}

	return &Outcome{
		Report:  report,
		Entries: entries,
		Raw:     resp.Text,
		Summary: summary,
	}, nil
}
