// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ranking assembles the budgeted context payload, submits it to a
// ranking backend, and parses the response into structured entries.
package ranking

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/meshintel/collabrank/internal/budget"
	"github.com/meshintel/collabrank/internal/digest"
)

// instructionTmpl frames the ranking task. Both criteria carry equal weight:
// overlap with published work and alignment with stated future directions.
var instructionTmpl = template.Must(template.New("instruction").Parse(
	`You are analyzing potential collaborators at {{.Institution}} for academic collaboration.

CONTEXT PROVIDED:
1. My own research context (papers, publication list, research statements)
2. Recent papers (titles, abstracts, citations) for each potential collaborator at {{.Institution}}, identified by a stable profile identifier

TASK:
Rank the potential collaborators by likelihood of:
- Positive response to a cold email about collaboration
- Research compatibility with my work
- Mutual benefit from collaboration

IMPORTANT: There are TWO equally important reasons to rank a researcher highly:

1. **EXISTING OVERLAP**: The researcher has published work that overlaps with my past publications. We share research topics, methods, or theoretical frameworks based on what I have already done.

2. **FUTURE DIRECTION**: The researcher works in areas I am planning to move into, as stated in my research statements or plans. They may hold expertise I have identified as a future goal. This is EQUALLY important to existing overlap.

Pay special attention to my research statements to identify what new skills, methods, or research areas I am trying to acquire.

OUTPUT FORMAT:
Return ONLY a ranked list of the top {{.TopN}} researchers in this exact format, using the profile identifier shown for each candidate:

1. [Researcher Name] - [Profile Identifier]
   **Research overlap:** [1-2 sentence summary of past overlap OR future direction alignment]
   **Collaboration potential:** [1-2 sentence assessment]
   **Recommendation:** [Brief reasoning, noting existing overlap, future direction, or both]

2. [Next researcher...]
...

Be concise. Focus on actionable insights about research compatibility.
`))

// DefaultTopN is the ranked-list length requested from the model.
const DefaultTopN = 10

// BuildPayload renders a budgeted allocation into the single prompt sent to
// the ranking backend. Every candidate appears with its identifier, digests
// or not, so the model can only cite identifiers the pipeline knows.
func BuildPayload(r budget.Result, institution string, topN int) (string, error) {
	if topN <= 0 {
		topN = DefaultTopN
	}

	var b strings.Builder
	err := instructionTmpl.Execute(&b, struct {
		Institution string
		TopN        int
	}{institution, topN})
	if err != nil {
		return "", fmt.Errorf("rendering ranking instructions: %w", err)
	}

	b.WriteString("\n---\n\n## My Research Context\n\n")
	b.WriteString(r.UserBlock.Text)
	b.WriteString("\n\n---\n\n## Potential Collaborators\n\n")

	for _, a := range r.Candidates {
		fmt.Fprintf(&b, "### %s - %s\n\n", a.Profile.DisplayName, a.Profile.BAI)
		if len(a.Digests) == 0 {
			b.WriteString("No recent papers included.\n\n")
			continue
		}
		for _, d := range a.Digests {
			b.WriteString(digest.Render(d))
			b.WriteString("\n")
		}
	}

	return b.String(), nil
}
