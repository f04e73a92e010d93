// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package inspire is a read-only client for the INSPIRE-HEP REST API: author
// search, institution-indexed author listing, and recent-literature queries.
package inspire

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/meshintel/collabrank/internal/httputil"
)

// apiBase is the INSPIRE-HEP API root. Declared as a var so tests can
// substitute an httptest server.
var apiBase = "https://inspirehep.net/api"

// literatureFields limits literature responses to the fields the digest
// stage needs, keeping payloads small under rate limits.
const literatureFields = "titles,authors,arxiv_eprints,citation_count,abstracts,publication_info"

// Client issues read-only queries against the INSPIRE-HEP API. All requests
// go through httputil.DoWithRetry, so rate-limit responses back off before
// surfacing as errors.
type Client struct {
	HTTP       *http.Client
	UserAgent  string
	MaxRetries int

	// BaseURL overrides the production API root when non-empty. Tests
	// in other packages point it at httptest servers.
	BaseURL string
}

func (c *Client) base() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return apiBase
}

// NewClient returns a Client with the given timeout and User-Agent.
func NewClient(timeout time.Duration, userAgent string) *Client {
	return &Client{
		HTTP:      &http.Client{Timeout: timeout},
		UserAgent: userAgent,
	}
}

// Position is one entry of an author's affiliation history.
type Position struct {
	// Current reports whether INSPIRE marks the position as held now.
	Current bool

	// InstitutionID is the institution record number referenced by the
	// position, or "" when the position carries no record link.
	InstitutionID string

	// EndDate is the raw end date ("2023", "2023-08", "2023-08-31"),
	// empty for open-ended positions.
	EndDate string
}

// Author is a parsed INSPIRE author record.
type Author struct {
	// RecordID is the author record control number.
	RecordID string

	// BAI is the INSPIRE BAI identifier (e.g. "J.Smith.1"), empty when
	// the record carries none.
	BAI string

	// PreferredName is the display name, falling back to the name value.
	PreferredName string

	// PublicationCount is the number of papers attributed to the author.
	PublicationCount int

	// Positions is the affiliation history.
	Positions []Position
}

// CurrentInstitutionIDs returns the institution record numbers of all
// positions marked current.
func (a Author) CurrentInstitutionIDs() []string {
	var ids []string
	for _, p := range a.Positions {
		if p.Current && p.InstitutionID != "" {
			ids = append(ids, p.InstitutionID)
		}
	}
	return ids
}

// CurrentlyAt reports whether the author holds a current position at the
// given institution whose end date, if any, has not passed.
func (a Author) CurrentlyAt(instID string, now time.Time) bool {
	for _, p := range a.Positions {
		if !p.Current || p.InstitutionID != instID {
			continue
		}
		if p.EndDate == "" || !endDateBefore(p.EndDate, now) {
			return true
		}
	}
	return false
}

// endDateBefore reports whether a raw INSPIRE end date precedes now.
// Unparseable dates are treated as not-ended so noisy records are kept
// rather than silently excluded.
func endDateBefore(raw string, now time.Time) bool {
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Before(now)
		}
	}
	return false
}

// Paper is a parsed INSPIRE literature record.
type Paper struct {
	Title    string
	Authors  []string
	ArxivID  string
	Journal  string
	Citations int
	Abstract string
}

// INSPIRE API JSON structures.

type hitsEnvelope struct {
	Hits struct {
		Hits []json.RawMessage `json:"hits"`
	} `json:"hits"`
}

type authorHit struct {
	Metadata authorMetadata `json:"metadata"`
}

type authorMetadata struct {
	ControlNumber  int           `json:"control_number"`
	Name           authorName    `json:"name"`
	IDs            []schemaValue `json:"ids"`
	Positions      []authorPosition `json:"positions"`
	NumberOfPapers int           `json:"number_of_papers"`
}

type authorName struct {
	Value         string `json:"value"`
	PreferredName string `json:"preferred_name"`
}

type schemaValue struct {
	Schema string `json:"schema"`
	Value  string `json:"value"`
}

type authorPosition struct {
	Current bool      `json:"current"`
	Record  recordRef `json:"record"`
	EndDate string    `json:"end_date"`
}

type recordRef struct {
	Ref string `json:"$ref"`
}

type literatureHit struct {
	Metadata literatureMetadata `json:"metadata"`
}

type literatureMetadata struct {
	Titles          []struct{ Title string `json:"title"` } `json:"titles"`
	Authors         []struct{ FullName string `json:"full_name"` } `json:"authors"`
	ArxivEprints    []struct{ Value string `json:"value"` } `json:"arxiv_eprints"`
	CitationCount   int `json:"citation_count"`
	Abstracts       []struct{ Value string `json:"value"` } `json:"abstracts"`
	PublicationInfo []struct{ JournalTitle string `json:"journal_title"` } `json:"publication_info"`
}

type institutionRecord struct {
	Metadata struct {
		LegacyICN string `json:"legacy_ICN"`
	} `json:"metadata"`
}

// SearchAuthors queries the author index with a free-text query and returns
// up to size parsed author records.
func (c *Client) SearchAuthors(ctx context.Context, query string, size int) ([]Author, error) {
	params := url.Values{
		"q":    {query},
		"size": {strconv.Itoa(size)},
	}
	return c.fetchAuthors(ctx, c.base()+"/authors?"+params.Encode())
}

// AuthorsAtInstitution returns authors whose affiliation history references
// the institution record number, most recent first. Callers filter to
// current positions via Author.CurrentlyAt.
func (c *Client) AuthorsAtInstitution(ctx context.Context, instID string, size int) ([]Author, error) {
	params := url.Values{
		"q":    {"positions.record.$ref:" + instID},
		"size": {strconv.Itoa(size)},
		"sort": {"mostrecent"},
	}
	return c.fetchAuthors(ctx, c.base()+"/authors?"+params.Encode())
}

// GetAuthor fetches a single author record by control number.
func (c *Client) GetAuthor(ctx context.Context, recordID string) (Author, error) {
	body, err := c.get(ctx, c.base()+"/authors/"+url.PathEscape(recordID))
	if err != nil {
		return Author{}, err
	}

	var hit authorHit
	if err := json.Unmarshal(body, &hit); err != nil {
		return Author{}, fmt.Errorf("parsing author %s: %w", recordID, err)
	}
	return parseAuthor(hit.Metadata), nil
}

// InstitutionName resolves an institution record number to its legacy ICN
// name (e.g. "Portsmouth U., ICG").
func (c *Client) InstitutionName(ctx context.Context, instID string) (string, error) {
	body, err := c.get(ctx, c.base()+"/institutions/"+url.PathEscape(instID))
	if err != nil {
		return "", err
	}

	var rec institutionRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return "", fmt.Errorf("parsing institution %s: %w", instID, err)
	}
	return rec.Metadata.LegacyICN, nil
}

// RecentLiterature returns up to size of the author's most recent papers,
// newest first, restricted to digest-relevant fields.
func (c *Client) RecentLiterature(ctx context.Context, bai string, size int) ([]Paper, error) {
	params := url.Values{
		"q":      {"a " + bai},
		"size":   {strconv.Itoa(size)},
		"sort":   {"mostrecent"},
		"fields": {literatureFields},
	}

	body, err := c.get(ctx, c.base()+"/literature?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var env hitsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("parsing literature response: %w", err)
	}

	papers := make([]Paper, 0, len(env.Hits.Hits))
	for _, raw := range env.Hits.Hits {
		var hit literatureHit
		if err := json.Unmarshal(raw, &hit); err != nil {
			continue
		}
		papers = append(papers, parsePaper(hit.Metadata))
	}
	return papers, nil
}

func (c *Client) fetchAuthors(ctx context.Context, reqURL string) ([]Author, error) {
	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var env hitsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("parsing authors response: %w", err)
	}

	authors := make([]Author, 0, len(env.Hits.Hits))
	for _, raw := range env.Hits.Hits {
		var hit authorHit
		if err := json.Unmarshal(raw, &hit); err != nil {
			continue
		}
		authors = append(authors, parseAuthor(hit.Metadata))
	}
	return authors, nil
}

func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, c.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("INSPIRE API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("INSPIRE API returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading INSPIRE response: %w", err)
	}
	return body, nil
}

func parseAuthor(m authorMetadata) Author {
	a := Author{
		PreferredName:    m.Name.PreferredName,
		PublicationCount: m.NumberOfPapers,
	}
	if a.PreferredName == "" {
		a.PreferredName = m.Name.Value
	}
	if m.ControlNumber > 0 {
		a.RecordID = strconv.Itoa(m.ControlNumber)
	}
	for _, id := range m.IDs {
		if id.Schema == "INSPIRE BAI" {
			a.BAI = id.Value
			break
		}
	}
	for _, p := range m.Positions {
		a.Positions = append(a.Positions, Position{
			Current:       p.Current,
			InstitutionID: institutionIDFromRef(p.Record.Ref),
			EndDate:       p.EndDate,
		})
	}
	return a
}

// institutionIDFromRef extracts the record number from a position's
// institution $ref URL.
func institutionIDFromRef(ref string) string {
	const marker = "/institutions/"
	idx := strings.Index(ref, marker)
	if idx < 0 {
		return ""
	}
	return strings.TrimSuffix(ref[idx+len(marker):], "/")
}

func parsePaper(m literatureMetadata) Paper {
	p := Paper{Citations: m.CitationCount}
	if len(m.Titles) > 0 {
		p.Title = m.Titles[0].Title
	}
	for _, a := range m.Authors {
		if a.FullName != "" {
			p.Authors = append(p.Authors, a.FullName)
		}
	}
	if len(m.ArxivEprints) > 0 {
		p.ArxivID = m.ArxivEprints[0].Value
	}
	if len(m.PublicationInfo) > 0 {
		p.Journal = m.PublicationInfo[0].JournalTitle
	}
	if len(m.Abstracts) > 0 {
		p.Abstract = m.Abstracts[0].Value
	}
	return p
}
