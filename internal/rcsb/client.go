// Package rcsb fetches entry metadata and structure files from the RCSB
// Protein Data Bank REST APIs.
package rcsb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DataBaseURL is the RCSB data API base URL.
	DataBaseURL = "https://data.rcsb.org/rest/v1"

	// FilesBaseURL is the host serving structure file downloads.
	FilesBaseURL = "https://files.rcsb.org"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit is a polite requests-per-second cap for the public API.
	RateLimit = 10.0
)

// idPattern matches a PDB ID: one digit followed by three alphanumerics.
var idPattern = regexp.MustCompile(`^[0-9][A-Za-z0-9]{3}$`)

// ParseID validates a PDB ID and normalizes it to upper case.
func ParseID(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !idPattern.MatchString(s) {
		return "", fmt.Errorf("%w %q: expected one digit followed by three letters or digits", ErrInvalidID, s)
	}
	return strings.ToUpper(s), nil
}

// Client is a rate-limited HTTP client for the RCSB REST APIs.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	dataURL    string
	filesURL   string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithDataBaseURL sets a custom data API base URL (for testing).
func WithDataBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.dataURL = url
	}
}

// WithFilesBaseURL sets a custom file download base URL (for testing).
func WithFilesBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.filesURL = url
	}
}

// NewClient creates a new RCSB API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		dataURL:    DataBaseURL,
		filesURL:   FilesBaseURL,
	}

	// Apply options
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// get rate-limits and executes a GET request against the given URL.
func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	slog.Debug("rcsb request",
		"url", url,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode == 404 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: status 404", ErrNotFound)
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
	}
	return resp, nil
}

// getJSON performs a GET request and decodes the JSON body into v.
func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	resp, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

// Entry fetches the metadata for a PDB entry. The source organism comes
// from a secondary polymer-entity lookup and stays empty when that
// lookup fails.
func (c *Client) Entry(ctx context.Context, id string) (*Entry, error) {
	id, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	var raw entryResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s/core/entry/%s", c.dataURL, id), &raw); err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("%w: no entry %s", ErrNotFound, id)
		}
		return nil, err
	}

	entry, err := mapEntry(id, raw)
	if err != nil {
		return nil, err
	}

	if organism, err := c.organism(ctx, id); err != nil {
		slog.Debug("organism lookup failed", "id", id, "error", err)
	} else {
		entry.Organism = organism
	}

	return entry, nil
}

// organism reads the scientific name of the source organism from the
// entry's first polymer entity.
func (c *Client) organism(ctx context.Context, id string) (string, error) {
	var raw polymerEntityResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s/core/polymer_entity/%s/1", c.dataURL, id), &raw); err != nil {
		return "", err
	}
	if len(raw.SourceOrganisms) == 0 {
		return "", nil
	}
	return raw.SourceOrganisms[0].NCBIScientificName, nil
}

// StructureFile downloads the PDB-format structure file for an entry.
func (c *Client) StructureFile(ctx context.Context, id string) ([]byte, error) {
	id, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	resp, err := c.get(ctx, fmt.Sprintf("%s/download/%s.pdb", c.filesURL, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("%w: no structure file for %s", ErrNotFound, id)
		}
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading structure file: %v", ErrNetworkError, err)
	}
	return data, nil
}

// mapEntry assembles an Entry from the raw API response. A response
// without a structure title is rejected as malformed.
func mapEntry(id string, raw entryResponse) (*Entry, error) {
	if raw.Struct.Title == "" {
		return nil, fmt.Errorf("%w: entry %s has no title", ErrInvalidResponse, id)
	}

	entry := &Entry{
		ID:       id,
		Title:    raw.Struct.Title,
		Authors:  mapAuthors(raw),
		Keywords: raw.StructKeywords.PdbxKeywords,
	}

	// The primary citation carries journal, year, and DOI. Entries
	// deposited without a publication have no citation at all.
	if cit := primaryCitation(raw); cit != nil {
		entry.CitationTitle = cit.Title
		entry.Journal = cit.JournalAbbrev
		entry.Year = cit.Year
		entry.DOI = cit.DOI
	}

	if len(raw.Exptl) > 0 {
		entry.Method = raw.Exptl[0].Method
	}
	if len(raw.EntryInfo.ResolutionCombined) > 0 {
		entry.Resolution = raw.EntryInfo.ResolutionCombined[0]
	}

	// Release dates arrive as full timestamps; keep the date part.
	if released := raw.AccessionInfo.InitialReleaseDate; len(released) >= 10 {
		entry.Released = released[:10]
	}

	return entry, nil
}

// primaryCitation picks the citation marked primary, falling back to the
// first listed.
func primaryCitation(raw entryResponse) *entryCitation {
	for i := range raw.Citation {
		if raw.Citation[i].ID == "primary" {
			return &raw.Citation[i]
		}
	}
	if len(raw.Citation) > 0 {
		return &raw.Citation[0]
	}
	return nil
}

// mapAuthors converts deposition author names. Names arrive in
// "Family, G.I." form; a missing author list becomes a single Unknown
// entry so downstream items always have a creator.
func mapAuthors(raw entryResponse) []Author {
	if len(raw.AuditAuthor) == 0 {
		return []Author{{Family: "Unknown"}}
	}

	authors := make([]Author, 0, len(raw.AuditAuthor))
	for _, a := range raw.AuditAuthor {
		given, family := splitAuthorName(a.Name)
		if family == "" {
			continue
		}
		authors = append(authors, Author{Given: given, Family: family})
	}
	if len(authors) == 0 {
		return []Author{{Family: "Unknown"}}
	}
	return authors
}

// splitAuthorName splits a "Family, Given" deposition name. Names
// without a comma are treated as bare family names.
func splitAuthorName(name string) (given, family string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}

	before, after, found := strings.Cut(name, ",")
	if !found {
		return "", name
	}
	return strings.TrimSpace(after), strings.TrimSpace(before)
}
