// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package digest compacts a researcher's recent publications into fixed-shape,
// token-bounded digests, with an on-disk cache keyed by profile identifier.
package digest

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/meshintel/collabrank/internal/budget"
	"github.com/meshintel/collabrank/internal/inspire"
	"github.com/meshintel/collabrank/pkg/types"
)

const (
	// DefaultMaxPapers is the per-profile digest limit.
	DefaultMaxPapers = 30

	// DefaultAbstractLimit is the abstract excerpt cap in runes.
	DefaultAbstractLimit = 1200

	// DefaultWorkers bounds concurrent per-profile fetches.
	DefaultWorkers = 4

	// maxNamedAuthors is how many authors are listed before collapsing
	// to "et al.".
	maxNamedAuthors = 3
)

// Fetcher retrieves recent publications per profile and compacts them into
// digests. A nil Cache disables caching.
type Fetcher struct {
	Client        *inspire.Client
	Cache         *Cache
	Estimator     budget.Estimator
	MaxPapers     int
	AbstractLimit int
	Workers       int
}

func (f *Fetcher) estimator() budget.Estimator {
	if f.Estimator != nil {
		return f.Estimator
	}
	return budget.CharEstimator{}
}

// FetchDigests returns up to MaxPapers digests for the profile, most recent
// first. A profile with no retrievable papers yields an empty slice and no
// error. A fresh cache entry is served instead of querying the network.
func (f *Fetcher) FetchDigests(ctx context.Context, profile types.ResearcherProfile) ([]types.PaperDigest, error) {
	maxPapers := f.MaxPapers
	if maxPapers <= 0 {
		maxPapers = DefaultMaxPapers
	}

	if f.Cache != nil {
		if cached, ok, err := f.Cache.Get(profile.BAI); err == nil && ok {
			if len(cached) > maxPapers {
				cached = cached[:maxPapers]
			}
			return cached, nil
		}
	}

	papers, err := f.Client.RecentLiterature(ctx, profile.BAI, maxPapers)
	if err != nil {
		return nil, err
	}

	ds := make([]types.PaperDigest, 0, len(papers))
	for _, p := range papers {
		if len(ds) == maxPapers {
			break
		}
		ds = append(ds, f.digest(p))
	}

	if f.Cache != nil {
		// Cache writes are best-effort; a failed write costs one
		// re-fetch later, not the run.
		_ = f.Cache.Put(profile.BAI, ds)
	}
	return ds, nil
}

// FetchAll fetches digests for every profile with a bounded worker pool.
// An API failure for one profile yields an empty digest set and a fetch
// warning; it never blocks digests for other profiles.
func (f *Fetcher) FetchAll(ctx context.Context, profiles []types.ResearcherProfile, report *types.RunReport, w io.Writer) map[string][]types.PaperDigest {
	workers := f.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	out := make(map[string][]types.PaperDigest, len(profiles))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, profile := range profiles {
		g.Go(func() error {
			ds, err := f.FetchDigests(gctx, profile)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Warn(types.StageFetch, profile.BAI, err.Error())
				fmt.Fprintf(w, "  %-20s fetch failed: %v\n", profile.BAI, err)
				out[profile.BAI] = nil
				return nil
			}
			out[profile.BAI] = ds
			fmt.Fprintf(w, "  %-20s %d papers\n", profile.BAI, len(ds))
			return nil
		})
	}
	g.Wait()
	return out
}

// digest compacts one literature record.
func (f *Fetcher) digest(p inspire.Paper) types.PaperDigest {
	limit := f.AbstractLimit
	if limit <= 0 {
		limit = DefaultAbstractLimit
	}

	d := types.PaperDigest{
		Title:     p.Title,
		Authors:   collapseAuthors(p.Authors),
		Venue:     venue(p),
		Citations: p.Citations,
		Abstract:  truncateRunes(p.Abstract, limit),
	}
	d.TokenCost = f.estimator().Estimate(Render(d))
	return d
}

// Render produces the markdown block for one digest. Token costs are
// estimated on this exact form, so changing it changes cached costs.
func Render(d types.PaperDigest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### %s\n", d.Title)
	fmt.Fprintf(&b, "**Authors:** %s\n", d.Authors)
	fmt.Fprintf(&b, "**Publication:** %s\n", d.Venue)
	fmt.Fprintf(&b, "**Citations:** %d\n", d.Citations)
	fmt.Fprintf(&b, "**Abstract:** %s\n", d.Abstract)
	return b.String()
}

// collapseAuthors joins up to three names and summarizes the rest.
func collapseAuthors(authors []string) string {
	if len(authors) <= maxNamedAuthors {
		return strings.Join(authors, ", ")
	}
	return fmt.Sprintf("%s, et al. (%d total)",
		strings.Join(authors[:maxNamedAuthors], ", "), len(authors))
}

func venue(p inspire.Paper) string {
	if p.ArxivID != "" {
		return "arXiv:" + p.ArxivID
	}
	if p.Journal != "" {
		return p.Journal
	}
	return "Unpublished"
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
