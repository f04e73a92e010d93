// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/meshintel/collabrank/internal/inspire"
	"github.com/meshintel/collabrank/pkg/types"
)

// DefaultMaxAffiliationAuthors caps the authors returned per institution query.
const DefaultMaxAffiliationAuthors = 250

// Expander enumerates researchers through institution affiliation records.
// Web search under-counts people who are not prominent on institutional
// pages (postdocs, visiting researchers); affiliation data is the ground
// truth for "currently there".
type Expander struct {
	Client     *inspire.Client
	MaxAuthors int

	// Now is the reference time for current-affiliation checks. Zero
	// means time.Now; tests pin it.
	Now time.Time
}

func (e *Expander) now() time.Time {
	if e.Now.IsZero() {
		return time.Now()
	}
	return e.Now
}

// InstitutionIDs derives institution record numbers from the seed profiles'
// current positions and filters them to the target institution by name
// keywords. When no resolved institution name matches the keywords, all
// discovered IDs are kept with a warning rather than silently expanding
// nothing. The returned slice is sorted for deterministic query order.
func (e *Expander) InstitutionIDs(ctx context.Context, seeds []types.ResearcherProfile, institution string, report *types.RunReport, w io.Writer) []string {
	discovered := make(map[string]bool)
	for _, seed := range seeds {
		if seed.RecordID == "" {
			continue
		}
		author, err := e.Client.GetAuthor(ctx, seed.RecordID)
		if err != nil {
			report.Warn(types.StageExpansion, seed.BAI, fmt.Sprintf("affiliation lookup: %v", err))
			continue
		}
		for _, id := range author.CurrentInstitutionIDs() {
			discovered[id] = true
		}
	}
	if len(discovered) == 0 {
		return nil
	}

	keywords := institutionKeywords(institution)

	var matched, all []string
	for id := range discovered {
		all = append(all, id)
		name, err := e.Client.InstitutionName(ctx, id)
		if err != nil {
			report.Warn(types.StageExpansion, id, fmt.Sprintf("institution name lookup: %v", err))
			continue
		}
		if matchesKeywords(name, keywords) {
			matched = append(matched, id)
			fmt.Fprintf(w, "  institution %s: %s\n", id, name)
		}
	}

	ids := matched
	if len(ids) == 0 {
		report.Warn(types.StageExpansion, institution,
			fmt.Sprintf("no institution name matched; expanding all %d discovered institutions", len(all)))
		ids = all
	}
	sort.Strings(ids)
	return ids
}

// Expand returns all profiles currently affiliated with any of the given
// institutions. A failed institution query shrinks coverage and is surfaced
// as a warning; it never aborts the run. Profiles whose matching position
// has already ended are excluded.
func (e *Expander) Expand(ctx context.Context, instIDs []string, report *types.RunReport, w io.Writer) []types.ResearcherProfile {
	maxAuthors := e.MaxAuthors
	if maxAuthors <= 0 {
		maxAuthors = DefaultMaxAffiliationAuthors
	}
	now := e.now()

	byBAI := make(map[string]types.ResearcherProfile)
	for _, id := range instIDs {
		authors, err := e.Client.AuthorsAtInstitution(ctx, id, maxAuthors)
		if err != nil {
			report.Warn(types.StageExpansion, id, fmt.Sprintf("institution query: %v", err))
			fmt.Fprintf(w, "warning: institution %s query failed: %v\n", id, err)
			continue
		}

		count := 0
		for _, a := range authors {
			if a.BAI == "" || !a.CurrentlyAt(id, now) {
				continue
			}
			byBAI[a.BAI] = types.ResearcherProfile{
				BAI:              a.BAI,
				RecordID:         a.RecordID,
				DisplayName:      a.PreferredName,
				PublicationCount: a.PublicationCount,
				Provenance:       types.ProvenanceAffiliation,
			}
			count++
		}
		fmt.Fprintf(w, "  institution %s: %d current researchers\n", id, count)
	}

	profiles := make([]types.ResearcherProfile, 0, len(byBAI))
	for _, p := range byBAI {
		profiles = append(profiles, p)
	}
	return profiles
}

// institutionKeywords extracts the discriminating words of an institution
// name: lowercase, longer than three characters.
func institutionKeywords(institution string) []string {
	var keywords []string
	for _, word := range strings.Fields(institution) {
		word = strings.ToLower(strings.Trim(word, ",."))
		if len(word) > 3 {
			keywords = append(keywords, word)
		}
	}
	return keywords
}

func matchesKeywords(name string, keywords []string) bool {
	lower := strings.ToLower(name)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
