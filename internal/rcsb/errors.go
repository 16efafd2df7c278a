package rcsb

import (
	"errors"
	"fmt"
)

// Common errors returned by the RCSB client.
var (
	// ErrInvalidID indicates a malformed PDB ID.
	ErrInvalidID = errors.New("invalid PDB ID")

	// ErrNotFound indicates the entry does not exist.
	ErrNotFound = errors.New("entry not found in PDB")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with RCSB")

	// ErrInvalidResponse indicates a response that parsed but is missing
	// required content.
	ErrInvalidResponse = errors.New("invalid response from RCSB")
)

// APIError represents an error from the RCSB REST API.
type APIError struct {
	StatusCode int
	Message    string
	EntryID    string // For context in entry-related errors
}

func (e *APIError) Error() string {
	if e.EntryID != "" {
		return fmt.Sprintf("RCSB API error (status %d): %s (entry: %s)", e.StatusCode, e.Message, e.EntryID)
	}
	return fmt.Sprintf("RCSB API error (status %d): %s", e.StatusCode, e.Message)
}

// IsNotFound returns true if the error indicates a missing entry.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}
