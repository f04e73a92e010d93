// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package digest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshintel/collabrank/internal/inspire"
	"github.com/meshintel/collabrank/pkg/types"
)

// literatureResponse renders an INSPIRE literature envelope for the given
// papers.
func literatureResponse(t *testing.T, papers ...map[string]any) string {
	t.Helper()
	hits := make([]map[string]any, len(papers))
	for i, p := range papers {
		hits[i] = map[string]any{"metadata": p}
	}
	body, err := json.Marshal(map[string]any{"hits": map[string]any{"hits": hits}})
	require.NoError(t, err)
	return string(body)
}

func paperMeta(title string, citations int, authors ...string) map[string]any {
	authorList := make([]map[string]any, len(authors))
	for i, a := range authors {
		authorList[i] = map[string]any{"full_name": a}
	}
	return map[string]any{
		"titles":         []map[string]any{{"title": title}},
		"authors":        authorList,
		"citation_count": citations,
		"arxiv_eprints":  []map[string]any{{"value": "2501.01234"}},
		"abstracts":      []map[string]any{{"value": "We study something."}},
	}
}

func profile(bai string) types.ResearcherProfile {
	return types.ResearcherProfile{BAI: bai, DisplayName: bai}
}

func TestFetchDigests(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "a J.Smith.1", r.URL.Query().Get("q"))
		assert.Equal(t, "mostrecent", r.URL.Query().Get("sort"))
		fmt.Fprint(w, literatureResponse(t,
			paperMeta("Newest paper", 12, "J. Smith", "A. Jones"),
			paperMeta("Older paper", 40, "J. Smith"),
		))
	}))
	defer ts.Close()

	f := &Fetcher{Client: &inspire.Client{HTTP: ts.Client(), BaseURL: ts.URL}}
	ds, err := f.FetchDigests(context.Background(), profile("J.Smith.1"))
	require.NoError(t, err)
	require.Len(t, ds, 2)

	// Most recent first, as returned by the API.
	assert.Equal(t, "Newest paper", ds[0].Title)
	assert.Equal(t, "J. Smith, A. Jones", ds[0].Authors)
	assert.Equal(t, "arXiv:2501.01234", ds[0].Venue)
	assert.Equal(t, 12, ds[0].Citations)
	assert.Greater(t, ds[0].TokenCost, 0)
}

func TestFetchDigestsHonorsMaxPapers(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("size"))
		fmt.Fprint(w, literatureResponse(t,
			paperMeta("One", 1, "A"),
			paperMeta("Two", 2, "B"),
			paperMeta("Three", 3, "C"),
		))
	}))
	defer ts.Close()

	f := &Fetcher{
		Client:    &inspire.Client{HTTP: ts.Client(), BaseURL: ts.URL},
		MaxPapers: 2,
	}
	ds, err := f.FetchDigests(context.Background(), profile("J.Smith.1"))
	require.NoError(t, err)
	// The limit holds even when the server over-returns.
	assert.Len(t, ds, 2)
}

func TestFetchDigestsUsesFreshCache(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, literatureResponse(t, paperMeta("Cached paper", 5, "A. Author")))
	}))
	defer ts.Close()

	cache, err := OpenCache(t.TempDir(), 0)
	require.NoError(t, err)
	defer cache.Close()

	f := &Fetcher{
		Client: &inspire.Client{HTTP: ts.Client(), BaseURL: ts.URL},
		Cache:  cache,
	}

	first, err := f.FetchDigests(context.Background(), profile("J.Smith.1"))
	require.NoError(t, err)
	second, err := f.FetchDigests(context.Background(), profile("J.Smith.1"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load(), "second call should be served from cache")
}

func TestFetchAllIsolatesFailures(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Query().Get("q"), "B.Broken.1") {
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, literatureResponse(t, paperMeta("Fine paper", 1, "A. Author")))
	}))
	defer ts.Close()

	f := &Fetcher{
		Client:  &inspire.Client{HTTP: ts.Client(), BaseURL: ts.URL},
		Workers: 2,
	}

	report := &types.RunReport{}
	out := f.FetchAll(context.Background(),
		[]types.ResearcherProfile{profile("A.Fine.1"), profile("B.Broken.1"), profile("C.Fine.1")},
		report, io.Discard)

	require.Len(t, out, 3)
	assert.Len(t, out["A.Fine.1"], 1)
	assert.Len(t, out["C.Fine.1"], 1)
	assert.Empty(t, out["B.Broken.1"])

	require.Len(t, report.Warnings, 1)
	assert.Equal(t, types.StageFetch, report.Warnings[0].Stage)
	assert.Equal(t, "B.Broken.1", report.Warnings[0].Subject)
}

func TestCollapseAuthors(t *testing.T) {
	tests := []struct {
		name    string
		authors []string
		want    string
	}{
		{"empty", nil, ""},
		{"single", []string{"A. One"}, "A. One"},
		{"exactly three", []string{"A. One", "B. Two", "C. Three"}, "A. One, B. Two, C. Three"},
		{"four collapses", []string{"A. One", "B. Two", "C. Three", "D. Four"},
			"A. One, B. Two, C. Three, et al. (4 total)"},
		{"large collaboration", append([]string{"A. One", "B. Two", "C. Three"}, make([]string, 897)...),
			"A. One, B. Two, C. Three, et al. (900 total)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, collapseAuthors(tt.authors))
		})
	}
}

func TestVenue(t *testing.T) {
	assert.Equal(t, "arXiv:2501.01234", venue(inspire.Paper{ArxivID: "2501.01234", Journal: "PRD"}))
	assert.Equal(t, "PRD", venue(inspire.Paper{Journal: "PRD"}))
	assert.Equal(t, "Unpublished", venue(inspire.Paper{}))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "short", truncateRunes("short", 10))
	assert.Equal(t, "abc...", truncateRunes("abcdef", 3))
	// Multi-byte runes are not split.
	assert.Equal(t, "日本...", truncateRunes("日本語のテキスト", 2))
}

func TestRenderIncludesEveryField(t *testing.T) {
	out := Render(types.PaperDigest{
		Title:     "Torsion cosmology",
		Authors:   "A. One, B. Two",
		Venue:     "arXiv:2501.01234",
		Citations: 7,
		Abstract:  "We study torsion.",
	})
	assert.Contains(t, out, "### Torsion cosmology")
	assert.Contains(t, out, "**Authors:** A. One, B. Two")
	assert.Contains(t, out, "**Publication:** arXiv:2501.01234")
	assert.Contains(t, out, "**Citations:** 7")
	assert.Contains(t, out, "**Abstract:** We study torsion.")
}
