// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "collabrank/0.1 (mailto:you@example.org)").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "gemini-2.5-pro").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// DiscoveryConfig holds settings for name discovery, profile resolution,
// and affiliation expansion.
type DiscoveryConfig struct {
	HTTPConfig `yaml:",inline"`

	// Workers bounds concurrent profile lookups (default 4).
	Workers int `json:"workers" yaml:"workers"`

	// MaxAffiliationAuthors caps the authors returned per institution
	// query (default 250).
	MaxAffiliationAuthors int `json:"max_affiliation_authors" yaml:"max_affiliation_authors"`

	// MinSimilarity is the name-match score below which resolution
	// returns not-found instead of guessing (default 0.75).
	MinSimilarity float64 `json:"min_similarity" yaml:"min_similarity"`
}

// DigestConfig holds settings for paper digest fetching and caching.
type DigestConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxPapers is the number of most-recent papers digested per
	// profile (default 30).
	MaxPapers int `json:"max_papers" yaml:"max_papers"`

	// AbstractLimit is the maximum abstract excerpt length in runes
	// (default 1200).
	AbstractLimit int `json:"abstract_limit" yaml:"abstract_limit"`

	// Workers bounds concurrent per-profile fetches (default 4).
	Workers int `json:"workers" yaml:"workers"`

	// CacheDir is the directory holding the digest cache database.
	// Empty disables caching.
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`

	// CacheFreshness is how long a cached entry is served instead of
	// re-fetching (default 168h).
	CacheFreshness time.Duration `json:"cache_freshness" yaml:"cache_freshness"`
}

// BudgetConfig holds settings for context budget allocation.
type BudgetConfig struct {
	// TokenCeiling is the hard upper bound on total payload token cost
	// (default 900000, sized for a 1M-token context window with
	// headroom for the instruction block and response).
	TokenCeiling int `json:"token_ceiling" yaml:"token_ceiling"`
}

// RankingConfig holds settings for the ranking call and its artifacts.
type RankingConfig struct {
	AIConfig `yaml:",inline"`

	// OutputDir is the directory for ranking artifacts.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Timeout bounds the single blocking ranking call (default 10m).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// PipelineConfig groups all stage configurations for a ranking run.
type PipelineConfig struct {
	Discovery DiscoveryConfig `json:"discovery" yaml:"discovery"`
	Digest    DigestConfig    `json:"digest" yaml:"digest"`
	Budget    BudgetConfig    `json:"budget" yaml:"budget"`
	Ranking   RankingConfig   `json:"ranking" yaml:"ranking"`
}
