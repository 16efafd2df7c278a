// Package zotero is a client for the Zotero Web API v3: item and
// collection reads, versioned writes, and the file upload protocol.
package zotero

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	// BaseURL is the Zotero Web API base URL.
	BaseURL = "https://api.zotero.org"

	// APIVersion is the Zotero API version sent with every request.
	APIVersion = "3"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 60 * time.Second

	// RateLimit is a conservative requests-per-second cap for api.zotero.org.
	RateLimit = 5.0

	// DefaultSearchLimit is the default result count for item searches.
	DefaultSearchLimit = 25

	// Library types selecting the URL root for all requests.
	LibraryTypeUser  = "user"
	LibraryTypeGroup = "group"
)

// Client is a rate-limited HTTP client for a single Zotero library.
type Client struct {
	httpClient  *http.Client
	limiter     *rate.Limiter
	apiKey      string
	baseURL     string
	libraryID   string
	libraryType string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the API key for authenticated requests.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithLibraryType selects a user or group library.
func WithLibraryType(libraryType string) ClientOption {
	return func(c *Client) {
		if libraryType != "" {
			c.libraryType = libraryType
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// NewClient creates a client for the given library ID.
func NewClient(libraryID string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		limiter:     rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:     BaseURL,
		libraryID:   libraryID,
		libraryType: LibraryTypeUser,
	}

	// Check for API key in environment
	if key := os.Getenv("ZOTERO_API_KEY"); key != "" {
		c.apiKey = key
	}

	// Apply options
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// libraryPath returns the URL prefix for the configured library.
func (c *Client) libraryPath() string {
	if c.libraryType == LibraryTypeGroup {
		return fmt.Sprintf("%s/groups/%s", c.baseURL, c.libraryID)
	}
	return fmt.Sprintf("%s/users/%s", c.baseURL, c.libraryID)
}

// newRequest builds an HTTP request carrying the standard Zotero headers.
func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Zotero-API-Version", APIVersion)
	if c.apiKey != "" {
		req.Header.Set("Zotero-API-Key", c.apiKey)
	}
	return req, nil
}

// do rate-limits and executes a request, mapping common failure statuses
// onto the package error taxonomy.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	slog.Debug("zotero request",
		"method", req.Method,
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if err := checkHTTPErrors(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

// checkHTTPErrors returns an error if the HTTP response indicates a problem.
func checkHTTPErrors(resp *http.Response) error {
	switch {
	case resp.StatusCode == 401 || resp.StatusCode == 403:
		return fmt.Errorf("%w: status %d", ErrAuthError, resp.StatusCode)
	case resp.StatusCode == 404:
		return fmt.Errorf("%w: status 404", ErrNotFound)
	case resp.StatusCode == 412:
		return fmt.Errorf("%w: status 412", ErrVersionConflict)
	case resp.StatusCode == 429:
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	case resp.StatusCode >= 400:
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       "api_error",
			Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
	}
	return nil
}

// getJSON performs a GET request and decodes the JSON body into v.
func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	req, err := c.newRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

// LibraryVersion reads the current library version. Writes send it back
// as their precondition, so the server can reject stale submissions.
func (c *Client) LibraryVersion(ctx context.Context) (int, error) {
	url := c.libraryPath() + "/items?limit=1&format=versions"
	req, err := c.newRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()

	header := resp.Header.Get("Last-Modified-Version")
	if header == "" {
		return 0, fmt.Errorf("%w: missing Last-Modified-Version header", ErrInvalidResponse)
	}
	version, err := strconv.Atoi(header)
	if err != nil {
		return 0, fmt.Errorf("%w: bad Last-Modified-Version %q", ErrInvalidResponse, header)
	}
	return version, nil
}

// writeToken returns a fresh 32-character idempotency token, letting the
// server drop an accidental replay of the same write.
func writeToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
