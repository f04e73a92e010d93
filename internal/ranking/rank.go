// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ranking

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModel is the ranking model used when none is configured.
const DefaultModel = "gemini-2.5-pro"

// Response carries the raw model output plus usage accounting.
type Response struct {
	// Text is the verbatim model output.
	Text string

	// PromptTokens and OutputTokens come from the provider's usage
	// metadata, zero when the provider reports none.
	PromptTokens int
	OutputTokens int
}

// Backend submits an assembled payload for ranking. Implementations make
// exactly one blocking call per Rank invocation; retries and budgeting are
// the caller's concern.
type Backend interface {
	Rank(ctx context.Context, payload string) (Response, error)
}

// GeminiBackend ranks via the Google Gemini API.
type GeminiBackend struct {
	client *genai.Client
	model  string
}

// NewGeminiBackend builds a Gemini backend. An empty model selects
// DefaultModel.
func NewGeminiBackend(ctx context.Context, apiKey, model string) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google API key is required for ranking")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	return &GeminiBackend{client: client, model: model}, nil
}

// Rank submits the payload in a single generation call. A failed call is
// fatal to the run: there is no partial ranking to salvage.
func (g *GeminiBackend) Rank(ctx context.Context, payload string) (Response, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(payload), nil)
	if err != nil {
		return Response{}, fmt.Errorf("ranking call to %s failed: %w", g.model, err)
	}

	resp := Response{Text: result.Text()}
	if resp.Text == "" {
		return Response{}, fmt.Errorf("ranking call to %s returned an empty response", g.model)
	}
	if usage := result.UsageMetadata; usage != nil {
		resp.PromptTokens = int(usage.PromptTokenCount)
		resp.OutputTokens = int(usage.CandidatesTokenCount)
	}
	return resp, nil
}
