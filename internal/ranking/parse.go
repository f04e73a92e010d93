// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ranking

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/meshintel/collabrank/pkg/types"
)

// headRe matches a ranked-list head line: "1. Jane Smith - J.Smith.1",
// with or without the bracket decoration the output format shows.
var headRe = regexp.MustCompile(`^\s*(\d+)\.\s*\[?([^\[\]]+?)\]?\s*-\s*\[?([^\[\]\s]+?)\]?\s*$`)

// Field labels emitted by the ranking model.
const (
	overlapLabel        = "**Research overlap:**"
	potentialLabel      = "**Collaboration potential:**"
	recommendationLabel = "**Recommendation:**"
)

// Parse extracts structured entries from the raw ranking text. Entries must
// cite a known profile by identifier, or failing that by display name; an
// entry citing neither is dropped with a ranking-parse warning. The raw text
// is never modified, so a warned entry is still readable in the saved output.
func Parse(raw string, profiles []types.ResearcherProfile, report *types.RunReport) []types.RankingEntry {
	byBAI := make(map[string]types.ResearcherProfile, len(profiles))
	byName := make(map[string]types.ResearcherProfile, len(profiles))
	for _, p := range profiles {
		byBAI[p.BAI] = p
		byName[normalizeName(p.DisplayName)] = p
	}

	var entries []types.RankingEntry
	var cur *types.RankingEntry
	var curField *string

	flush := func() {
		if cur != nil {
			entries = append(entries, *cur)
		}
		cur, curField = nil, nil
	}

	for _, line := range strings.Split(raw, "\n") {
		if m := headRe.FindStringSubmatch(line); m != nil {
			flush()
			rank, _ := strconv.Atoi(m[1])
			name := strings.TrimSpace(m[2])
			cited := strings.TrimSpace(m[3])

			profile, ok := byBAI[cited]
			if !ok {
				profile, ok = byName[normalizeName(name)]
			}
			if !ok {
				report.Warn(types.StageRankingParse, cited,
					fmt.Sprintf("ranked entry %d (%q) cites no known profile", rank, name))
				continue
			}
			cur = &types.RankingEntry{
				Rank:        rank,
				BAI:         profile.BAI,
				DisplayName: profile.DisplayName,
			}
			continue
		}
		if cur == nil {
			continue
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, overlapLabel):
			cur.Overlap = strings.TrimSpace(strings.TrimPrefix(trimmed, overlapLabel))
			curField = &cur.Overlap
		case strings.HasPrefix(trimmed, potentialLabel):
			cur.Potential = strings.TrimSpace(strings.TrimPrefix(trimmed, potentialLabel))
			curField = &cur.Potential
		case strings.HasPrefix(trimmed, recommendationLabel):
			cur.Recommendation = strings.TrimSpace(strings.TrimPrefix(trimmed, recommendationLabel))
			curField = &cur.Recommendation
		case trimmed == "":
			curField = nil
		case curField != nil:
			// Continuation of a wrapped field line.
			*curField += " " + trimmed
		}
	}
	flush()

	return entries
}

// normalizeName lowercases, folds diacritics, strips everything but letters,
// and reorders "Last, First" to match "First Last".
func normalizeName(name string) string {
	if i := strings.Index(name, ","); i >= 0 {
		name = strings.TrimSpace(name[i+1:]) + " " + strings.TrimSpace(name[:i])
	}
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		strings.ToLower(name))
	if err != nil {
		folded = strings.ToLower(name)
	}
	var b strings.Builder
	for _, r := range folded {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
