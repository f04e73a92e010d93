// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshintel/collabrank/pkg/types"
)

func profile(bai string, pubs int) types.ResearcherProfile {
	return types.ResearcherProfile{BAI: bai, DisplayName: bai, PublicationCount: pubs}
}

func TestMergeDeduplicatesByBAI(t *testing.T) {
	// Expansion returns 3 profiles; name search resolved 2 of the same 3
	// plus 1 the affiliation data does not know about.
	resolved := []types.ResearcherProfile{profile("A.One.1", 10), profile("B.Two.1", 20), profile("D.Four.1", 5)}
	expanded := []types.ResearcherProfile{profile("A.One.1", 11), profile("B.Two.1", 21), profile("C.Three.1", 30)}

	merged := Merge(resolved, expanded)
	require.Len(t, merged, 4)

	byBAI := make(map[string]types.ResearcherProfile)
	for _, p := range merged {
		_, dup := byBAI[p.BAI]
		require.False(t, dup, "duplicate BAI %s in merged set", p.BAI)
		byBAI[p.BAI] = p
	}

	assert.Equal(t, types.ProvenanceBoth, byBAI["A.One.1"].Provenance)
	assert.Equal(t, types.ProvenanceBoth, byBAI["B.Two.1"].Provenance)
	assert.Equal(t, types.ProvenanceAffiliation, byBAI["C.Three.1"].Provenance)
	assert.Equal(t, types.ProvenanceNameMatch, byBAI["D.Four.1"].Provenance)

	// The affiliation record's field values win for common profiles.
	assert.Equal(t, 11, byBAI["A.One.1"].PublicationCount)
}

func TestMergeIsIdempotent(t *testing.T) {
	resolved := []types.ResearcherProfile{profile("A.One.1", 1), profile("A.One.1", 1)}
	expanded := []types.ResearcherProfile{profile("A.One.1", 2)}

	merged := Merge(resolved, expanded)
	require.Len(t, merged, 1)
	assert.Equal(t, types.ProvenanceBoth, merged[0].Provenance)
}

func TestMergeSkipsEmptyIdentifiers(t *testing.T) {
	merged := Merge(
		[]types.ResearcherProfile{{DisplayName: "No Identifier"}},
		[]types.ResearcherProfile{profile("A.One.1", 1)},
	)
	require.Len(t, merged, 1)
	assert.Equal(t, "A.One.1", merged[0].BAI)
}

func TestMergeEmptyInputs(t *testing.T) {
	assert.Empty(t, Merge(nil, nil))
	assert.Len(t, Merge([]types.ResearcherProfile{profile("A.One.1", 1)}, nil), 1)
	assert.Len(t, Merge(nil, []types.ResearcherProfile{profile("A.One.1", 1)}), 1)
}

func TestSortProfiles(t *testing.T) {
	profiles := []types.ResearcherProfile{
		profile("C.Three.1", 10),
		profile("A.One.1", 30),
		profile("B.Two.1", 10),
	}
	SortProfiles(profiles)

	got := []string{profiles[0].BAI, profiles[1].BAI, profiles[2].BAI}
	// Descending publication count, ties by ascending BAI.
	assert.Equal(t, []string{"A.One.1", "B.Two.1", "C.Three.1"}, got)
}
