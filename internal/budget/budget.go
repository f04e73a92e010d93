// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package budget

import (
	"fmt"
	"sort"

	"github.com/meshintel/collabrank/pkg/types"
)

// BudgetError reports that the user context block alone exceeds the token
// ceiling. It is fatal and raised before any ranking call is made: a
// payload that can fit no candidates is useless, and the ranking call is
// the expensive part of a run.
type BudgetError struct {
	UserCost int
	Ceiling  int
}

func (e *BudgetError) Error() string {
	return fmt.Sprintf("user context block (%d tokens) exceeds the token ceiling (%d): shrink the context or raise the ceiling", e.UserCost, e.Ceiling)
}

// Candidate pairs a profile with its fetched digests, most recent first.
type Candidate struct {
	Profile types.ResearcherProfile
	Digests []types.PaperDigest
}

// citations returns the candidate's total digest citation count, the
// default priority key.
func (c Candidate) citations() int {
	total := 0
	for _, d := range c.Digests {
		total += d.Citations
	}
	return total
}

// Allocation is one candidate's share of the payload. Candidates that
// receive zero digests are still listed so coverage is always reportable;
// nobody is silently dropped.
type Allocation struct {
	Profile types.ResearcherProfile

	// Digests is the included subset, most recent first.
	Digests []types.PaperDigest

	// Cost is the summed token cost of the included digests.
	Cost int

	// Omitted counts digests excluded by the ceiling.
	Omitted int
}

// Result is a complete allocation under the ceiling.
type Result struct {
	UserBlock types.ContextBlock

	// Candidates is every input candidate in priority order, including
	// those allocated zero digests.
	Candidates []Allocation

	// TotalCost is the user block plus all included digests. Always
	// <= Ceiling.
	TotalCost int

	Ceiling int
}

// CoveredProfiles counts candidates with at least one included digest.
func (r Result) CoveredProfiles() int {
	n := 0
	for _, a := range r.Candidates {
		if len(a.Digests) > 0 {
			n++
		}
	}
	return n
}

// Priority orders candidates for allocation; it reports whether a should
// be visited before b.
type Priority func(a, b Candidate) bool

// ByCitationCount is the default priority: descending total citations,
// ties broken by ascending BAI.
func ByCitationCount(a, b Candidate) bool {
	ca, cb := a.citations(), b.citations()
	if ca != cb {
		return ca > cb
	}
	return a.Profile.BAI < b.Profile.BAI
}

// ByIdentifier orders candidates by ascending BAI. Useful when the caller
// wants alphabetical coverage regardless of impact.
func ByIdentifier(a, b Candidate) bool {
	return a.Profile.BAI < b.Profile.BAI
}

// Allocate distributes the token ceiling across the user block and the
// candidate pool.
//
// The user block is always included whole; if it alone exceeds the ceiling
// the allocation fails with *BudgetError. Candidates are then visited in
// priority order (nil means ByCitationCount) and each candidate's digests
// are included most-recent-first until one no longer fits, at which point
// allocation stops adding digests entirely. Remaining candidates stay in
// the result with empty digest sets.
//
// The greedy cutoff is deliberate: a knapsack-style packing could fit more
// digests, but would reorder inclusion under tie-breaking ambiguity and
// make repeated runs harder to compare. Identical inputs always produce
// identical allocations.
func Allocate(userBlock types.ContextBlock, candidates []Candidate, ceiling int, priority Priority) (Result, error) {
	if ceiling <= 0 {
		return Result{}, fmt.Errorf("token ceiling must be positive, got %d", ceiling)
	}
	if userBlock.TokenCost > ceiling {
		return Result{}, &BudgetError{UserCost: userBlock.TokenCost, Ceiling: ceiling}
	}
	if priority == nil {
		priority = ByCitationCount
	}

	ordered := make([]Candidate, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		return priority(ordered[i], ordered[j])
	})

	remaining := ceiling - userBlock.TokenCost
	exhausted := false

	result := Result{
		UserBlock:  userBlock,
		Candidates: make([]Allocation, 0, len(ordered)),
		TotalCost:  userBlock.TokenCost,
		Ceiling:    ceiling,
	}

	for _, c := range ordered {
		alloc := Allocation{Profile: c.Profile}
		for _, d := range c.Digests {
			if exhausted || d.TokenCost > remaining {
				exhausted = true
				alloc.Omitted++
				continue
			}
			alloc.Digests = append(alloc.Digests, d)
			alloc.Cost += d.TokenCost
			remaining -= d.TokenCost
		}
		result.TotalCost += alloc.Cost
		result.Candidates = append(result.Candidates, alloc)
	}

	return result, nil
}
