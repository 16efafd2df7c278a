package zotero

import (
	"errors"
	"fmt"
)

// Common errors returned by the Zotero client.
var (
	// ErrNotFound indicates the item or collection was not found.
	ErrNotFound = errors.New("not found in Zotero library")

	// ErrAuthError indicates an authentication error (missing/invalid API key).
	ErrAuthError = errors.New("Zotero authentication error")

	// ErrRateLimited indicates the rate limit has been exceeded.
	ErrRateLimited = errors.New("Zotero rate limit exceeded")

	// ErrVersionConflict indicates the library changed since the version
	// sent with the write precondition.
	ErrVersionConflict = errors.New("Zotero library version conflict")

	// ErrUploadFailed indicates the file transfer to storage failed.
	ErrUploadFailed = errors.New("file upload failed")

	// ErrRegistrationFailed indicates the uploaded file was not accepted
	// at registration.
	ErrRegistrationFailed = errors.New("upload registration failed")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with Zotero")

	// ErrInvalidResponse indicates an unexpected API response.
	ErrInvalidResponse = errors.New("invalid response from Zotero")
)

// APIError represents an error reported by the Zotero API.
type APIError struct {
	StatusCode int
	Code       string // Error code (e.g., "not_found", "write_failed")
	Message    string
	ItemKey    string // For context in item-related errors
}

func (e *APIError) Error() string {
	if e.ItemKey != "" {
		return fmt.Sprintf("Zotero API error (status %d, code %s): %s (item: %s)", e.StatusCode, e.Code, e.Message, e.ItemKey)
	}
	return fmt.Sprintf("Zotero API error (status %d, code %s): %s", e.StatusCode, e.Code, e.Message)
}

// IsNotFound returns true if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404 || apiErr.Code == "not_found"
	}
	return false
}

// IsAuthError returns true if the error indicates an authentication problem.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrAuthError) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403 || apiErr.Code == "auth_error"
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.Code == "rate_limited"
	}
	return false
}

// IsVersionConflict returns true if the error indicates a stale write
// precondition.
func IsVersionConflict(err error) bool {
	if errors.Is(err, ErrVersionConflict) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 412
	}
	return false
}
