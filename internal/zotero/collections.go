package zotero

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// collectionEnvelope tolerates both shapes the API produces for a
// collection: key and name at the top level, or nested under data.
// Everything past this decoder sees the normalized Collection form.
type collectionEnvelope struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Version int    `json:"version"`
	Data    struct {
		Key     string `json:"key"`
		Name    string `json:"name"`
		Version int    `json:"version"`
	} `json:"data"`
}

func (e collectionEnvelope) normalize() Collection {
	col := Collection{Key: e.Key, Name: e.Name, Version: e.Version}
	if col.Key == "" {
		col.Key = e.Data.Key
	}
	if col.Name == "" {
		col.Name = e.Data.Name
	}
	if col.Version == 0 {
		col.Version = e.Data.Version
	}
	return col
}

// Collections lists the collections in the library.
func (c *Client) Collections(ctx context.Context) ([]Collection, error) {
	var envelopes []collectionEnvelope
	if err := c.getJSON(ctx, c.libraryPath()+"/collections?limit=100", &envelopes); err != nil {
		return nil, err
	}

	cols := make([]Collection, len(envelopes))
	for i, e := range envelopes {
		cols[i] = e.normalize()
	}
	return cols, nil
}

// CreateCollection creates a top-level collection and returns its key.
func (c *Client) CreateCollection(ctx context.Context, name string) (string, error) {
	version, err := c.LibraryVersion(ctx)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal([]map[string]string{{"name": name}})
	if err != nil {
		return "", fmt.Errorf("marshaling collection: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.libraryPath()+"/collections", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("If-Unmodified-Since-Version", strconv.Itoa(version))
	req.Header.Set("Zotero-Write-Token", writeToken())

	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var wr writeResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	keys, err := collectKeys(wr, 1)
	if err != nil {
		return "", err
	}
	return keys[0], nil
}
