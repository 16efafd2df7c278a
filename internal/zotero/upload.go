package zotero

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// AttachmentUpload describes a file to store as a child attachment.
type AttachmentUpload struct {
	Filename    string
	ContentType string
	Data        []byte
	MTime       time.Time // file modification time; zero means now
}

// UploadResult reports the outcome of an attachment upload. Existed is
// true when the server already held identical content and the transfer
// was skipped.
type UploadResult struct {
	Key     string `json:"key"`
	MD5     string `json:"md5"`
	Size    int64  `json:"size"`
	Existed bool   `json:"existed,omitempty"`
}

// attachmentPayload is the placeholder item created before any file
// content moves. MD5 and MTime are pointers so the write serializes
// explicit nulls, which the API requires on an attachment that has never
// had a file registered.
type attachmentPayload struct {
	ItemType    string  `json:"itemType"`
	ParentItem  string  `json:"parentItem"`
	LinkMode    string  `json:"linkMode"`
	Title       string  `json:"title"`
	ContentType string  `json:"contentType"`
	Filename    string  `json:"filename"`
	MD5         *string `json:"md5"`
	MTime       *int64  `json:"mtime"`
}

// uploadAuthorization is the server's answer to an authorization request.
// Exists set to 1 means identical content is already stored and the
// upload is complete; otherwise the remaining fields direct a single-use
// transfer.
type uploadAuthorization struct {
	Exists      int    `json:"exists"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Prefix      string `json:"prefix"`
	Suffix      string `json:"suffix"`
	UploadKey   string `json:"uploadKey"`
}

// UploadAttachment stores a file under parentKey using the three-step
// upload protocol: authorize, transfer, register. The placeholder
// attachment item is created first; if any later step fails the
// placeholder remains without file content and the parent item is
// untouched.
func (c *Client) UploadAttachment(ctx context.Context, parentKey string, up AttachmentUpload) (*UploadResult, error) {
	if up.Filename == "" {
		return nil, fmt.Errorf("attachment filename required")
	}

	sum := md5.Sum(up.Data)
	fileMD5 := hex.EncodeToString(sum[:])
	size := int64(len(up.Data))

	mtime := up.MTime
	if mtime.IsZero() {
		mtime = time.Now()
	}

	placeholder := attachmentPayload{
		ItemType:    "attachment",
		ParentItem:  parentKey,
		LinkMode:    "imported_file",
		Title:       up.Filename,
		ContentType: up.ContentType,
		Filename:    up.Filename,
	}
	keys, err := c.writeItems(ctx, []any{placeholder})
	if err != nil {
		return nil, err
	}
	key := keys[0]

	auth, err := c.authorizeUpload(ctx, key, fileMD5, up.Filename, size, mtime.UnixMilli())
	if err != nil {
		return nil, err
	}
	if auth.Exists == 1 {
		return &UploadResult{Key: key, MD5: fileMD5, Size: size, Existed: true}, nil
	}

	if err := c.transferFile(ctx, auth, up.Data); err != nil {
		return nil, err
	}

	if err := c.registerUpload(ctx, key, auth.UploadKey); err != nil {
		return nil, err
	}

	return &UploadResult{Key: key, MD5: fileMD5, Size: size}, nil
}

// authorizeUpload asks the API for permission to upload file content for
// an attachment. The If-None-Match precondition asserts the attachment
// has no stored file yet.
func (c *Client) authorizeUpload(ctx context.Context, key, fileMD5, filename string, size, mtimeMS int64) (*uploadAuthorization, error) {
	form := url.Values{}
	form.Set("md5", fileMD5)
	form.Set("filename", filename)
	form.Set("filesize", strconv.FormatInt(size, 10))
	form.Set("mtime", strconv.FormatInt(mtimeMS, 10))

	req, err := c.newRequest(ctx, http.MethodPost, fmt.Sprintf("%s/items/%s/file", c.libraryPath(), key), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("If-None-Match", "*")

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var auth uploadAuthorization
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return nil, fmt.Errorf("%w: parsing upload authorization: %v", ErrInvalidResponse, err)
	}
	if auth.Exists != 1 && auth.UploadKey == "" {
		return nil, fmt.Errorf("%w: upload authorization missing uploadKey", ErrInvalidResponse)
	}
	return &auth, nil
}

// transferFile posts the concatenated prefix, content, and suffix to the
// storage URL named in the authorization, with the content type the
// authorization dictates. Authorizations are single-use.
func (c *Client) transferFile(ctx context.Context, auth *uploadAuthorization, data []byte) error {
	body := make([]byte, 0, len(auth.Prefix)+len(data)+len(auth.Suffix))
	body = append(body, auth.Prefix...)
	body = append(body, data...)
	body = append(body, auth.Suffix...)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, auth.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating upload request: %w", err)
	}
	req.Header.Set("Content-Type", auth.ContentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: storage returned status %d", ErrUploadFailed, resp.StatusCode)
	}
	return nil
}

// registerUpload finalizes a transfer with the key issued at
// authorization. The API acknowledges with 204 and nothing else; any
// other status means the file is not registered.
func (c *Client) registerUpload(ctx context.Context, key, uploadKey string) error {
	form := url.Values{}
	form.Set("upload", uploadKey)

	req, err := c.newRequest(ctx, http.MethodPost, fmt.Sprintf("%s/items/%s/file", c.libraryPath(), key), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("If-None-Match", "*")

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("%w: status %d", ErrRegistrationFailed, resp.StatusCode)
	}
	return nil
}
