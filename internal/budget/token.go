// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package budget estimates token costs and allocates a hard token ceiling
// across the user's context block and the candidate digest pool.
package budget

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Estimator converts text into an estimated token cost. Estimates must be
// deterministic and stable across runs: allocation decisions depend on them
// being reproducible.
type Estimator interface {
	Estimate(text string) int
}

// CharEstimator approximates one token per four bytes of text, rounded up.
// This is the documented default: crude, but deterministic, dependency-free
// at runtime, and within ~15% of real tokenizers on English prose.
type CharEstimator struct{}

// Estimate returns ceil(len(text)/4).
func (CharEstimator) Estimate(text string) int {
	return (len(text) + 3) / 4
}

// TiktokenCounter counts tokens with the cl100k_base encoding. Exact for
// OpenAI-family tokenizers and still deterministic, at the price of a
// one-time encoding load. Used for reporting assembled payload sizes;
// allocation keeps the char estimate so cached digest costs stay valid.
type TiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenCounter loads the cl100k_base encoding.
func NewTiktokenCounter() (*TiktokenCounter, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("loading cl100k_base encoding: %w", err)
	}
	return &TiktokenCounter{enc: enc}, nil
}

// Estimate returns the exact cl100k_base token count.
func (c *TiktokenCounter) Estimate(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}
