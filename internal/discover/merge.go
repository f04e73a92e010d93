// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"sort"

	"github.com/meshintel/collabrank/pkg/types"
)

// Merge unions resolved and expanded profiles into a deduplicated candidate
// set keyed by BAI. A profile found by both paths is recorded once with
// provenance "both"; field values from the affiliation record win because
// affiliation queries return the fresher publication counts. The returned
// order is unspecified; downstream stages impose their own.
func Merge(resolved, expanded []types.ResearcherProfile) []types.ResearcherProfile {
	byBAI := make(map[string]types.ResearcherProfile, len(resolved)+len(expanded))

	for _, p := range resolved {
		if p.BAI == "" {
			continue
		}
		p.Provenance = types.ProvenanceNameMatch
		byBAI[p.BAI] = p
	}

	for _, p := range expanded {
		if p.BAI == "" {
			continue
		}
		if _, seen := byBAI[p.BAI]; seen {
			p.Provenance = types.ProvenanceBoth
		} else {
			p.Provenance = types.ProvenanceAffiliation
		}
		byBAI[p.BAI] = p
	}

	merged := make([]types.ResearcherProfile, 0, len(byBAI))
	for _, p := range byBAI {
		merged = append(merged, p)
	}
	return merged
}

// SortProfiles orders profiles by descending publication count, ties broken
// by ascending BAI. This is the documented deterministic order used for
// capping and display.
func SortProfiles(profiles []types.ResearcherProfile) {
	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].PublicationCount != profiles[j].PublicationCount {
			return profiles[i].PublicationCount > profiles[j].PublicationCount
		}
		return profiles[i].BAI < profiles[j].BAI
	})
}
