// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discover finds candidate researchers at an institution: web-search
// name discovery, INSPIRE profile resolution, affiliation expansion, and
// candidate merging.
package discover

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	openai "github.com/sashabaranov/go-openai"
)

// NameSource produces candidate researcher names for an institution. The
// production implementation is a web-search model; tests supply fixed lists.
// Output is untrusted: possibly noisy, possibly incomplete, possibly empty.
type NameSource interface {
	DiscoverNames(ctx context.Context, institution string) ([]string, error)
}

// namePromptTmpl asks the search model for a bare list of researcher names.
var namePromptTmpl = template.Must(template.New("names").Parse(`Find the faculty, researchers, and postdocs affiliated with {{.Institution}}.

Search the institution's official website and extract ONLY the names of researchers.
Return a clean list with one name per line in the format: FirstName LastName
Do not include titles (Dr., Prof., etc.), positions, or any other text.
Focus on researchers who might work in physics, cosmology, astrophysics, or related theoretical fields.`))

// defaultSearchModel is an OpenAI chat model with built-in web search.
const defaultSearchModel = "gpt-4o-search-preview"

// OpenAISearchSource discovers names through an OpenAI web-search model.
type OpenAISearchSource struct {
	Client *openai.Client
	Model  string
}

// NewOpenAISearchSource returns a source using the given API key. An empty
// model selects the default web-search model.
func NewOpenAISearchSource(apiKey, model string) *OpenAISearchSource {
	if model == "" {
		model = defaultSearchModel
	}
	return &OpenAISearchSource{
		Client: openai.NewClient(apiKey),
		Model:  model,
	}
}

// DiscoverNames runs the web search and returns cleaned candidate names.
func (s *OpenAISearchSource) DiscoverNames(ctx context.Context, institution string) ([]string, error) {
	var prompt strings.Builder
	if err := namePromptTmpl.Execute(&prompt, struct{ Institution string }{institution}); err != nil {
		return nil, fmt.Errorf("rendering name prompt: %w", err)
	}

	resp, err := s.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt.String()},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("web search request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("web search returned no choices")
	}

	return CleanNames(resp.Choices[0].Message.Content), nil
}

// junkPrefixes mark lines of model commentary rather than names.
var junkPrefixes = []string{"based on", "please note", "here is", "the following"}

// CleanNames extracts plausible researcher names from raw model output,
// one candidate per line. Bullets and numbering are stripped; headers,
// commentary, over-long lines, and single-word lines are dropped.
func CleanNames(raw string) []string {
	var names []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-•*0123456789. ")
		if line == "" || strings.Contains(line, "**") || strings.HasSuffix(line, ":") {
			continue
		}

		lower := strings.ToLower(line)
		junk := false
		for _, p := range junkPrefixes {
			if strings.HasPrefix(lower, p) {
				junk = true
				break
			}
		}
		if junk {
			continue
		}

		if len(line) > 60 || strings.Count(line, ",") > 1 {
			continue
		}
		if len(strings.Fields(line)) < 2 {
			continue
		}

		names = append(names, line)
	}
	return names
}
