// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ranking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshintel/collabrank/internal/budget"
	"github.com/meshintel/collabrank/pkg/types"
)

func sampleResult() budget.Result {
	return budget.Result{
		UserBlock: types.ContextBlock{
			Label:     "user",
			Text:      "My papers concern torsion cosmology.",
			TokenCost: 9,
		},
		Candidates: []budget.Allocation{
			{
				Profile: types.ResearcherProfile{BAI: "J.Smith.1", DisplayName: "Jane Smith"},
				Digests: []types.PaperDigest{{
					Title:    "Torsion in the early universe",
					Authors:  "J. Smith",
					Venue:    "arXiv:2501.01234",
					Abstract: "We study torsion.",
				}},
			},
			{
				Profile: types.ResearcherProfile{BAI: "E.Empty.1", DisplayName: "Edna Empty"},
			},
		},
		TotalCost: 100,
		Ceiling:   1000,
	}
}

func TestBuildPayload(t *testing.T) {
	payload, err := BuildPayload(sampleResult(), "Portsmouth U.", 10)
	require.NoError(t, err)

	assert.Contains(t, payload, "potential collaborators at Portsmouth U.")
	assert.Contains(t, payload, "top 10 researchers")
	assert.Contains(t, payload, "My papers concern torsion cosmology.")

	// Every candidate appears with its identifier, digests or not.
	assert.Contains(t, payload, "### Jane Smith - J.Smith.1")
	assert.Contains(t, payload, "Torsion in the early universe")
	assert.Contains(t, payload, "### Edna Empty - E.Empty.1")
	assert.Contains(t, payload, "No recent papers included.")

	// Instructions precede context.
	assert.Less(t,
		strings.Index(payload, "OUTPUT FORMAT"),
		strings.Index(payload, "## My Research Context"))
}

func TestBuildPayloadDefaultTopN(t *testing.T) {
	payload, err := BuildPayload(sampleResult(), "Portsmouth U.", 0)
	require.NoError(t, err)
	assert.Contains(t, payload, "top 10 researchers")
}

func TestBuildPayloadBothCriteriaStated(t *testing.T) {
	payload, err := BuildPayload(sampleResult(), "Portsmouth U.", 5)
	require.NoError(t, err)
	assert.Contains(t, payload, "**EXISTING OVERLAP**")
	assert.Contains(t, payload, "**FUTURE DIRECTION**")
	assert.Contains(t, payload, "EQUALLY important")
}
