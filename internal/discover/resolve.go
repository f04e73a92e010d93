// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/meshintel/collabrank/internal/inspire"
	"github.com/meshintel/collabrank/pkg/types"
)

// ErrNotFound reports that no profile cleared the similarity threshold for
// a name. Returning it is preferred over guessing at an ambiguous match.
var ErrNotFound = errors.New("no matching profile")

const (
	// resolveCandidates is how many author records are scored per name.
	resolveCandidates = 5

	// DefaultMinSimilarity is the score below which a name resolves to
	// not-found. Score 0.8 corresponds to last name plus first initial;
	// 0.75 admits that and rejects last-name-only matches (0.5).
	DefaultMinSimilarity = 0.75

	// DefaultWorkers bounds concurrent lookups in ResolveAll.
	DefaultWorkers = 4
)

// Resolver maps free-text researcher names to canonical INSPIRE profiles.
type Resolver struct {
	Client        *inspire.Client
	MinSimilarity float64
	Workers       int
}

// Resolve returns the profile whose canonical name best matches the input
// under normalized-name equivalence, or ErrNotFound when no candidate
// clears the similarity threshold. When several candidates tie, the one
// with the most attributed publications wins.
func (r *Resolver) Resolve(ctx context.Context, name string) (types.ResearcherProfile, error) {
	if strings.TrimSpace(name) == "" {
		return types.ResearcherProfile{}, fmt.Errorf("empty name")
	}

	minSim := r.MinSimilarity
	if minSim <= 0 {
		minSim = DefaultMinSimilarity
	}

	candidates, err := r.Client.SearchAuthors(ctx, name, resolveCandidates)
	if err != nil {
		return types.ResearcherProfile{}, err
	}

	var best inspire.Author
	bestScore := 0.0
	for _, c := range candidates {
		if c.BAI == "" {
			continue
		}
		score := MatchScore(name, c.PreferredName)
		if score > bestScore || (score == bestScore && score > 0 && c.PublicationCount > best.PublicationCount) {
			best = c
			bestScore = score
		}
	}

	if bestScore < minSim {
		return types.ResearcherProfile{}, ErrNotFound
	}

	return types.ResearcherProfile{
		BAI:              best.BAI,
		RecordID:         best.RecordID,
		DisplayName:      best.PreferredName,
		PublicationCount: best.PublicationCount,
		Provenance:       types.ProvenanceNameMatch,
	}, nil
}

// ResolveAll resolves names concurrently with a bounded worker pool.
// Per-name failures are recorded in the report and never abort the run;
// results keep input order with failed names omitted.
func (r *Resolver) ResolveAll(ctx context.Context, names []string, report *types.RunReport, w io.Writer) []types.ResearcherProfile {
	workers := r.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	resolved := make([]*types.ResearcherProfile, len(names))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, name := range names {
		g.Go(func() error {
			profile, err := r.Resolve(gctx, name)
			if err != nil {
				mu.Lock()
				report.Warn(types.StageResolution, name, err.Error())
				fmt.Fprintf(w, "  %-40s not matched (%v)\n", name, err)
				mu.Unlock()
				return nil
			}
			mu.Lock()
			resolved[i] = &profile
			fmt.Fprintf(w, "  %-40s %s\n", name, profile.BAI)
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	var out []types.ResearcherProfile
	for _, p := range resolved {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}

// MatchScore scores how well a free-text name matches a canonical profile
// name under normalized equivalence (case, diacritics, and punctuation
// insensitive, middle names ignored):
//
//	1.0  last name and full first name match
//	0.8  last name matches and first initials agree
//	0.5  only the last name matches (or a first name is missing)
//	0.0  last names differ
func MatchScore(query, candidate string) float64 {
	qFirst, qLast := splitName(query)
	cFirst, cLast := splitName(candidate)

	if qLast == "" || cLast == "" || qLast != cLast {
		return 0
	}
	if qFirst == "" || cFirst == "" {
		return 0.5
	}
	if qFirst == cFirst {
		return 1.0
	}
	if qFirst[0] == cFirst[0] {
		// One side abbreviated to an initial still counts as an
		// initial-level match; differing full first names do not.
		if len(qFirst) == 1 || len(cFirst) == 1 {
			return 0.8
		}
		return 0
	}
	return 0
}

// splitName parses a name into normalized (first, last) parts. Both
// "First Middle Last" and INSPIRE's "Last, First" forms are handled;
// middle tokens are discarded.
func splitName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}

	if before, after, found := strings.Cut(name, ","); found {
		last = normalizeNamePart(before)
		if fields := strings.Fields(after); len(fields) > 0 {
			first = normalizeNamePart(fields[0])
		}
		return first, last
	}

	fields := strings.Fields(name)
	last = normalizeNamePart(fields[len(fields)-1])
	if len(fields) > 1 {
		first = normalizeNamePart(fields[0])
	}
	return first, last
}

// foldDiacritics removes combining marks after NFD decomposition, so
// "Kovač" and "Kovac" compare equal.
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeNamePart lowercases, folds diacritics, and strips everything
// but letters.
func normalizeNamePart(s string) string {
	folded, _, err := transform.String(foldDiacritics, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
