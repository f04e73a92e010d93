// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the collabrank pipeline:
// researcher profiles, paper digests, context blocks, ranking entries, and
// the run-level warning report.
package types

import "time"

// Provenance records which discovery path produced a candidate profile.
type Provenance string

const (
	// ProvenanceNameMatch marks profiles resolved from web-searched names.
	ProvenanceNameMatch Provenance = "name-match"

	// ProvenanceAffiliation marks profiles found through institution
	// affiliation records.
	ProvenanceAffiliation Provenance = "affiliation-expansion"

	// ProvenanceBoth marks profiles found by both paths.
	ProvenanceBoth Provenance = "both"
)

// ResearcherProfile is a candidate researcher keyed by a stable INSPIRE BAI
// (e.g. "J.Smith.1"). The BAI is the only identity key in the pipeline;
// free-text names are inputs to resolution, never identity.
type ResearcherProfile struct {
	// BAI is the canonical bibliographic profile identifier.
	BAI string `json:"bai" yaml:"bai"`

	// RecordID is the INSPIRE author record control number.
	RecordID string `json:"record_id" yaml:"record_id"`

	// DisplayName is the preferred name from the author record.
	DisplayName string `json:"display_name" yaml:"display_name"`

	// PublicationCount is the number of papers attributed to the profile.
	PublicationCount int `json:"publication_count" yaml:"publication_count"`

	// Provenance records the discovery path(s) that produced this profile.
	Provenance Provenance `json:"provenance" yaml:"provenance"`
}

// ProfileURL returns the INSPIRE author page for the profile, or "" when
// the record ID is unknown.
func (p ResearcherProfile) ProfileURL() string {
	if p.RecordID == "" {
		return ""
	}
	return "https://inspirehep.net/authors/" + p.RecordID
}

// PaperDigest is a compact, token-bounded summary of one publication.
// Digests are immutable once created and owned by exactly one profile's
// digest list.
type PaperDigest struct {
	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors is the collapsed author list ("A, B, C" or
	// "A, B, C, et al. (12 total)").
	Authors string `json:"authors" yaml:"authors"`

	// Venue is the publication venue: "arXiv:NNNN.NNNNN", a journal
	// title, or "Unpublished".
	Venue string `json:"venue" yaml:"venue"`

	// Citations is the citation count at fetch time.
	Citations int `json:"citations" yaml:"citations"`

	// Abstract is the abstract excerpt, truncated at fetch time.
	Abstract string `json:"abstract" yaml:"abstract"`

	// TokenCost is the estimated token footprint of the rendered digest.
	// Derived once at fetch time and stable across runs.
	TokenCost int `json:"token_cost" yaml:"token_cost"`
}

// ContextBlock is a sized unit of ranking payload: the user's own context
// or one candidate's digest list.
type ContextBlock struct {
	// Label identifies the block in the assembled payload.
	Label string `json:"label" yaml:"label"`

	// Text is the block content, treated as opaque.
	Text string `json:"text" yaml:"text"`

	// TokenCost is the estimated token footprint of Text.
	TokenCost int `json:"token_cost" yaml:"token_cost"`
}

// RankingEntry is one parsed line of the final ranking. Entries are
// produced only by ranking-response parsing and never mutated afterward.
type RankingEntry struct {
	// Rank is the 1-based position assigned by the ranking model.
	Rank int `json:"rank" yaml:"rank"`

	// BAI is the matched profile identifier.
	BAI string `json:"bai" yaml:"bai"`

	// DisplayName is the matched profile's display name.
	DisplayName string `json:"display_name" yaml:"display_name"`

	// Overlap summarizes existing topical overlap with the user's work.
	Overlap string `json:"overlap" yaml:"overlap"`

	// Potential is the model's collaboration-potential assessment.
	Potential string `json:"potential" yaml:"potential"`

	// Recommendation is the model-authored rationale for the position.
	Recommendation string `json:"recommendation" yaml:"recommendation"`
}

// WarningStage identifies which pipeline stage produced a warning.
type WarningStage string

const (
	StageResolution   WarningStage = "resolution"
	StageExpansion    WarningStage = "expansion"
	StageFetch        WarningStage = "fetch"
	StageRankingParse WarningStage = "ranking-parse"
)

// Warning is a non-fatal failure recorded during a run. Warnings accumulate
// in the RunReport instead of aborting the run, so one noisy profile never
// sinks an entire institution's analysis.
type Warning struct {
	// Stage is the pipeline stage that produced the warning.
	Stage WarningStage `json:"stage" yaml:"stage"`

	// Subject identifies what failed: a candidate name, a BAI, or an
	// institution ID.
	Subject string `json:"subject" yaml:"subject"`

	// Reason is a human-readable failure description.
	Reason string `json:"reason" yaml:"reason"`
}

// RunReport accumulates coverage statistics and non-fatal warnings across
// one ranking run.
type RunReport struct {
	// Institution is the institution as given on the command line.
	Institution string `json:"institution" yaml:"institution"`

	// NamesSearched is the number of candidate names from web search.
	NamesSearched int `json:"names_searched" yaml:"names_searched"`

	// NamesResolved is the number of names matched to a profile.
	NamesResolved int `json:"names_resolved" yaml:"names_resolved"`

	// Expanded is the number of profiles from affiliation expansion.
	Expanded int `json:"expanded" yaml:"expanded"`

	// Merged is the size of the deduplicated candidate set.
	Merged int `json:"merged" yaml:"merged"`

	// Warnings lists every non-fatal failure in occurrence order.
	Warnings []Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	// StartedAt is the run start time.
	StartedAt time.Time `json:"started_at" yaml:"started_at"`
}

// Warn appends a warning to the report.
func (r *RunReport) Warn(stage WarningStage, subject, reason string) {
	r.Warnings = append(r.Warnings, Warning{Stage: stage, Subject: subject, Reason: reason})
}

// HasWarnings reports whether any non-fatal failures occurred.
func (r *RunReport) HasWarnings() bool {
	return len(r.Warnings) > 0
}
