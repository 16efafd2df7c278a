package zotero

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// uploadFixture drives the upload protocol against two test servers:
// the API server and a separate storage host for the transfer step.
type uploadFixture struct {
	client *Client

	// Calls observed, in order: "create", "authorize", "transfer",
	// "register".
	calls []string

	// Authorization response the API returns.
	authResponse string

	// Form values seen at authorization.
	authForm map[string]string

	// Body received by the storage host.
	transferBody []byte

	// Status the registration step answers with.
	registerStatus int
}

func newUploadFixture(t *testing.T) *uploadFixture {
	t.Helper()
	f := &uploadFixture{registerStatus: http.StatusNoContent}

	storage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.calls = append(f.calls, "transfer")
		f.transferBody, _ = io.ReadAll(r.Body)
	}))
	t.Cleanup(storage.Close)

	api := httptest.NewServer(versionAware("5", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/users/123/items":
			f.calls = append(f.calls, "create")
			fmt.Fprint(w, `{"successful": {}, "success": {"0": "ATTKEY01"}, "unchanged": {}, "failed": {}}`)
		case strings.HasSuffix(r.URL.Path, "/file"):
			r.ParseForm()
			if r.PostForm.Get("upload") != "" {
				f.calls = append(f.calls, "register")
				w.WriteHeader(f.registerStatus)
				return
			}
			f.calls = append(f.calls, "authorize")
			f.authForm = map[string]string{}
			for k := range r.PostForm {
				f.authForm[k] = r.PostForm.Get(k)
			}
			// The authorization names the storage host as transfer target.
			fmt.Fprint(w, strings.ReplaceAll(f.authResponse, "STORAGE_URL", storage.URL))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(api.Close)

	f.client = NewClient("123", WithBaseURL(api.URL), WithAPIKey("test-key"))
	return f
}

func TestUploadAttachment(t *testing.T) {
	f := newUploadFixture(t)
	f.authResponse = `{"url": "STORAGE_URL", "contentType": "multipart/form-data", "prefix": "PRE-", "suffix": "-SUF", "uploadKey": "UK1"}`

	data := []byte("structure file content")
	res, err := f.client.UploadAttachment(context.Background(), "PARENT01", AttachmentUpload{
		Filename:    "4hhb.pdb",
		ContentType: "chemical/x-pdb",
		Data:        data,
	})
	if err != nil {
		t.Fatalf("UploadAttachment() error = %v", err)
	}

	wantCalls := []string{"create", "authorize", "transfer", "register"}
	if fmt.Sprint(f.calls) != fmt.Sprint(wantCalls) {
		t.Errorf("calls = %v, want %v", f.calls, wantCalls)
	}

	sum := md5.Sum(data)
	wantMD5 := hex.EncodeToString(sum[:])
	if res.Key != "ATTKEY01" || res.MD5 != wantMD5 || res.Size != int64(len(data)) || res.Existed {
		t.Errorf("result = %+v", res)
	}
	if f.authForm["md5"] != wantMD5 || f.authForm["filename"] != "4hhb.pdb" || f.authForm["filesize"] != fmt.Sprint(len(data)) {
		t.Errorf("authorization form = %v", f.authForm)
	}
	if f.authForm["mtime"] == "" {
		t.Error("authorization form missing mtime")
	}
	if got := string(f.transferBody); got != "PRE-structure file content-SUF" {
		t.Errorf("transfer body = %q", got)
	}
}

func TestUploadAttachment_AlreadyExists(t *testing.T) {
	f := newUploadFixture(t)
	f.authResponse = `{"exists": 1}`

	res, err := f.client.UploadAttachment(context.Background(), "PARENT01", AttachmentUpload{
		Filename:    "4hhb.pdb",
		ContentType: "chemical/x-pdb",
		Data:        []byte("same bytes as before"),
	})
	if err != nil {
		t.Fatalf("UploadAttachment() error = %v", err)
	}

	// Terminal after authorization: no transfer, no registration.
	wantCalls := []string{"create", "authorize"}
	if fmt.Sprint(f.calls) != fmt.Sprint(wantCalls) {
		t.Errorf("calls = %v, want %v", f.calls, wantCalls)
	}
	if !res.Existed {
		t.Error("Existed = false, want true")
	}
	if res.Key != "ATTKEY01" {
		t.Errorf("Key = %q, want ATTKEY01", res.Key)
	}
}

func TestUploadAttachment_RegistrationFailed(t *testing.T) {
	f := newUploadFixture(t)
	f.authResponse = `{"url": "STORAGE_URL", "contentType": "text/plain", "uploadKey": "UK1"}`
	f.registerStatus = http.StatusOK // anything but 204 is a failure

	_, err := f.client.UploadAttachment(context.Background(), "PARENT01", AttachmentUpload{
		Filename: "x.pdb",
		Data:     []byte("content"),
	})
	if !errors.Is(err, ErrRegistrationFailed) {
		t.Errorf("error = %v, want ErrRegistrationFailed", err)
	}
}

func TestUploadAttachment_TransferFailed(t *testing.T) {
	badStorage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer badStorage.Close()

	api := httptest.NewServer(versionAware("5", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/users/123/items":
			fmt.Fprint(w, `{"successful": {}, "success": {"0": "ATTKEY01"}, "unchanged": {}, "failed": {}}`)
		case strings.HasSuffix(r.URL.Path, "/file"):
			json.NewEncoder(w).Encode(map[string]any{"url": badStorage.URL, "contentType": "text/plain", "uploadKey": "UK1"})
		}
	}))
	defer api.Close()

	client := NewClient("123", WithBaseURL(api.URL))
	_, err := client.UploadAttachment(context.Background(), "PARENT01", AttachmentUpload{
		Filename: "x.pdb",
		Data:     []byte("content"),
	})
	if !errors.Is(err, ErrUploadFailed) {
		t.Errorf("error = %v, want ErrUploadFailed", err)
	}
}

func TestUploadAttachment_MissingFilename(t *testing.T) {
	client := NewClient("123")
	if _, err := client.UploadAttachment(context.Background(), "P1", AttachmentUpload{}); err == nil {
		t.Error("expected error for missing filename")
	}
}

func TestUploadAttachment_PlaceholderNulls(t *testing.T) {
	// The placeholder attachment must serialize explicit null md5/mtime.
	var placeholder map[string]json.RawMessage
	api := httptest.NewServer(versionAware("5", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/users/123/items" {
			var items []map[string]json.RawMessage
			json.NewDecoder(r.Body).Decode(&items)
			placeholder = items[0]
			fmt.Fprint(w, `{"successful": {}, "success": {"0": "ATTKEY01"}, "unchanged": {}, "failed": {}}`)
			return
		}
		fmt.Fprint(w, `{"exists": 1}`)
	}))
	defer api.Close()

	client := NewClient("123", WithBaseURL(api.URL))
	if _, err := client.UploadAttachment(context.Background(), "P1", AttachmentUpload{Filename: "x.pdb", Data: []byte("d")}); err != nil {
		t.Fatalf("UploadAttachment() error = %v", err)
	}

	if string(placeholder["md5"]) != "null" {
		t.Errorf("placeholder md5 = %s, want null", placeholder["md5"])
	}
	if string(placeholder["mtime"]) != "null" {
		t.Errorf("placeholder mtime = %s, want null", placeholder["mtime"])
	}
	if string(placeholder["linkMode"]) != `"imported_file"` {
		t.Errorf("placeholder linkMode = %s", placeholder["linkMode"])
	}
}
