package zotero

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newTestClient wires a user-library client for "123" against a test
// server.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient("123", WithBaseURL(server.URL), WithAPIKey("test-key"))
}

// versionAware serves the library-version read that precedes every
// write, delegating everything else to next.
func versionAware(version string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") == "versions" {
			w.Header().Set("Last-Modified-Version", version)
			w.Write([]byte("{}"))
			return
		}
		next(w, r)
	}
}

func TestLibraryPath(t *testing.T) {
	user := NewClient("123")
	if got, want := user.libraryPath(), BaseURL+"/users/123"; got != want {
		t.Errorf("user libraryPath() = %q, want %q", got, want)
	}

	group := NewClient("456", WithLibraryType(LibraryTypeGroup))
	if got, want := group.libraryPath(), BaseURL+"/groups/456"; got != want {
		t.Errorf("group libraryPath() = %q, want %q", got, want)
	}
}

func TestRequestHeaders(t *testing.T) {
	var gotVersion, gotKey string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotVersion = r.Header.Get("Zotero-API-Version")
		gotKey = r.Header.Get("Zotero-API-Key")
		w.Header().Set("Last-Modified-Version", "10")
		w.Write([]byte("{}"))
	}))

	if _, err := client.LibraryVersion(context.Background()); err != nil {
		t.Fatalf("LibraryVersion() error = %v", err)
	}
	if gotVersion != APIVersion {
		t.Errorf("Zotero-API-Version = %q, want %q", gotVersion, APIVersion)
	}
	if gotKey != "test-key" {
		t.Errorf("Zotero-API-Key = %q, want test-key", gotKey)
	}
}

func TestLibraryVersion(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Last-Modified-Version", "1234")
		w.Write([]byte("{}"))
	}))

	version, err := client.LibraryVersion(context.Background())
	if err != nil {
		t.Fatalf("LibraryVersion() error = %v", err)
	}
	if version != 1234 {
		t.Errorf("LibraryVersion() = %d, want 1234", version)
	}
}

func TestLibraryVersion_MissingHeader(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{}"))
	}))

	if _, err := client.LibraryVersion(context.Background()); !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("error = %v, want ErrInvalidResponse", err)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", 401, ErrAuthError},
		{"forbidden", 403, ErrAuthError},
		{"not found", 404, ErrNotFound},
		{"precondition failed", 412, ErrVersionConflict},
		{"too many requests", 429, ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			_, err := client.Item(context.Background(), "KEY1")
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestErrorMapping_GenericServerError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))

	_, err := client.Item(context.Background(), "KEY1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != 500 {
		t.Errorf("StatusCode = %d, want 500", apiErr.StatusCode)
	}
}

func TestWriteToken(t *testing.T) {
	a, b := writeToken(), writeToken()
	if len(a) != 32 {
		t.Errorf("writeToken() length = %d, want 32", len(a))
	}
	if a == b {
		t.Error("writeToken() returned the same token twice")
	}
}
