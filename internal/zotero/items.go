package zotero

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// Item fetches a single item by key.
func (c *Client) Item(ctx context.Context, key string) (*Item, error) {
	var item Item
	if err := c.getJSON(ctx, fmt.Sprintf("%s/items/%s", c.libraryPath(), key), &item); err != nil {
		return nil, err
	}
	if item.Key == "" {
		return nil, fmt.Errorf("%w: empty item envelope", ErrInvalidResponse)
	}
	return &item, nil
}

// Children fetches the child items (notes and attachments) of an item.
func (c *Client) Children(ctx context.Context, key string) ([]Item, error) {
	var items []Item
	if err := c.getJSON(ctx, fmt.Sprintf("%s/items/%s/children", c.libraryPath(), key), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SearchItems searches the library by title, creator, and year.
func (c *Client) SearchItems(ctx context.Context, query string, limit int) ([]Item, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("qmode", "titleCreatorYear")
	params.Set("limit", strconv.Itoa(limit))

	var items []Item
	if err := c.getJSON(ctx, fmt.Sprintf("%s/items?%s", c.libraryPath(), params.Encode()), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// DownloadFile downloads an attachment's file content, following the
// storage redirect the API responds with.
func (c *Client) DownloadFile(ctx context.Context, key string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("%s/items/%s/file", c.libraryPath(), key), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading file content: %v", ErrNetworkError, err)
	}
	return data, nil
}

// CreateItem creates a single item and returns its assigned key.
func (c *Client) CreateItem(ctx context.Context, data ItemData) (string, error) {
	keys, err := c.writeItems(ctx, []any{data})
	if err != nil {
		return "", err
	}
	return keys[0], nil
}

// CreateNote creates a child note under the given parent item. The note
// body is an HTML fragment.
func (c *Client) CreateNote(ctx context.Context, parentKey, noteHTML string) (string, error) {
	note := ItemData{
		ItemType:   "note",
		ParentItem: parentKey,
		Note:       noteHTML,
	}
	keys, err := c.writeItems(ctx, []any{note})
	if err != nil {
		return "", err
	}
	return keys[0], nil
}

// writeItems submits a batch of item payloads through the versioned write
// protocol and returns the assigned keys in input order. Every call reads
// the current library version first and sends it as the precondition; a
// 412 from the server surfaces as ErrVersionConflict for the caller to
// handle.
func (c *Client) writeItems(ctx context.Context, items []any) ([]string, error) {
	version, err := c.LibraryVersion(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshaling items: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.libraryPath()+"/items", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("If-Unmodified-Since-Version", strconv.Itoa(version))
	req.Header.Set("Zotero-Write-Token", writeToken())

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var wr writeResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return collectKeys(wr, len(items))
}

// collectKeys extracts per-item keys from a write response, failing on
// the first rejected item.
func collectKeys(wr writeResponse, n int) ([]string, error) {
	keys := make([]string, n)
	for i := 0; i < n; i++ {
		idx := strconv.Itoa(i)
		if failure, ok := wr.Failed[idx]; ok {
			return nil, &APIError{
				StatusCode: failure.Code,
				Code:       "write_failed",
				Message:    failure.Message,
			}
		}
		if key, ok := wr.Success[idx]; ok {
			keys[i] = key
			continue
		}
		if key, ok := wr.Unchanged[idx]; ok {
			keys[i] = key
			continue
		}
		return nil, fmt.Errorf("%w: no key for submitted item %d", ErrInvalidResponse, i)
	}
	return keys, nil
}
