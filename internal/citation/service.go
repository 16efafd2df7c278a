package citation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pverm/zotpdb/internal/rcsb"
	"github.com/pverm/zotpdb/internal/zotero"
)

const (
	// DefaultStructureCollection is the collection structure citations
	// join when none is named.
	DefaultStructureCollection = "PDB Structures"

	// pdfFetchTimeout bounds remote PDF downloads for attachments.
	pdfFetchTimeout = 60 * time.Second
)

// LibraryAPI is the library surface the orchestrator writes to and reads
// back from.
type LibraryAPI interface {
	CreateItem(ctx context.Context, data zotero.ItemData) (string, error)
	CreateNote(ctx context.Context, parentKey, noteHTML string) (string, error)
	UploadAttachment(ctx context.Context, parentKey string, up zotero.AttachmentUpload) (*zotero.UploadResult, error)
	Item(ctx context.Context, key string) (*zotero.Item, error)
	Children(ctx context.Context, key string) ([]zotero.Item, error)
}

// StructureAPI is the metadata-source surface the orchestrator fetches
// from.
type StructureAPI interface {
	Entry(ctx context.Context, id string) (*rcsb.Entry, error)
	StructureFile(ctx context.Context, id string) ([]byte, error)
}

// Service orchestrates citation creation across the metadata source and
// the library. The primary item write is the only fatal step: notes and
// attachments degrade to warnings when they fail, and nothing is rolled
// back.
type Service struct {
	library           LibraryAPI
	structures        StructureAPI
	resolver          *Resolver
	defaultCollection string
	httpClient        *http.Client
}

// NewService wires the orchestrator. defaultCollection may be empty, in
// which case articles join no collection unless one is named per call.
func NewService(library LibraryAPI, structures StructureAPI, resolver *Resolver, defaultCollection string) *Service {
	return &Service{
		library:           library,
		structures:        structures,
		resolver:          resolver,
		defaultCollection: defaultCollection,
		httpClient:        &http.Client{Timeout: pdfFetchTimeout},
	}
}

// Result reports what a citation write produced.
type Result struct {
	Success       bool     `json:"success"`
	ItemKey       string   `json:"itemKey"`
	NoteKey       string   `json:"noteKey,omitempty"`
	AttachmentKey string   `json:"attachmentKey,omitempty"`
	Title         string   `json:"title"`
	Collection    string   `json:"collection,omitempty"`
	URL           string   `json:"url,omitempty"`
	HasFile       bool     `json:"hasFile"`
	FileSize      int64    `json:"fileSize,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
}

func (r *Result) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// StructureInput selects a PDB entry to cite.
type StructureInput struct {
	ID         string
	Collection string
	FetchFile  bool
}

// CreateCitation validates, maps, and writes an article citation with
// its optional research note and PDF attachment.
func (s *Service) CreateCitation(ctx context.Context, in ArticleInput) (*Result, error) {
	item, err := BuildArticleItem(in)
	if err != nil {
		return nil, err
	}

	collection := in.Collection
	if collection == "" {
		collection = s.defaultCollection
	}
	if collection != "" {
		key, err := s.resolver.Resolve(ctx, collection)
		if err != nil {
			return nil, fmt.Errorf("resolving collection %q: %w", collection, err)
		}
		item.Collections = append(item.Collections, key)
	}
	item.Collections = append(item.Collections, NormalizeCollectionRefs(in.Collections)...)

	itemKey, err := s.library.CreateItem(ctx, item)
	if err != nil {
		return nil, err
	}
	slog.Info("citation created", "item", itemKey, "title", item.Title)

	res := &Result{
		Success:    true,
		ItemKey:    itemKey,
		Title:      item.Title,
		Collection: collection,
		URL:        item.URL,
	}

	if note := BuildArticleNote(in.Context, in.Summary, in.URL); note != "" {
		if noteKey, err := s.library.CreateNote(ctx, itemKey, note); err != nil {
			res.warn("creating note: %v", err)
			slog.Warn("note creation failed", "item", itemKey, "error", err)
		} else {
			res.NoteKey = noteKey
		}
	}

	if data, filename, mtime, ok := s.articlePDF(ctx, in, res); ok {
		s.attach(ctx, res, zotero.AttachmentUpload{
			Filename:    filename,
			ContentType: "application/pdf",
			Data:        data,
			MTime:       mtime,
		})
	}

	return res, nil
}

// CreateStructureCitation fetches PDB metadata and, when requested, the
// structure file in parallel, then writes the citation item with its
// experimental-details note and the file attached. A metadata failure
// aborts before anything is written; a file failure only costs the
// attachment.
func (s *Service) CreateStructureCitation(ctx context.Context, in StructureInput) (*Result, error) {
	id, err := rcsb.ParseID(in.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var (
		wg       sync.WaitGroup
		entry    *rcsb.Entry
		entryErr error
		file     []byte
		fileErr  error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		entry, entryErr = s.structures.Entry(ctx, id)
	}()

	if in.FetchFile {
		wg.Add(1)
		go func() {
			defer wg.Done()
			file, fileErr = s.structures.StructureFile(ctx, id)
		}()
	}
	wg.Wait()

	if entryErr != nil {
		return nil, entryErr
	}

	item := BuildStructureItem(entry)

	collection := in.Collection
	if collection == "" {
		collection = DefaultStructureCollection
	}
	colKey, err := s.resolver.Resolve(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("resolving collection %q: %w", collection, err)
	}
	item.Collections = []string{colKey}

	itemKey, err := s.library.CreateItem(ctx, item)
	if err != nil {
		return nil, err
	}
	slog.Info("structure citation created", "item", itemKey, "id", id)

	res := &Result{
		Success:    true,
		ItemKey:    itemKey,
		Title:      item.Title,
		Collection: collection,
		URL:        item.URL,
	}

	if noteKey, err := s.library.CreateNote(ctx, itemKey, BuildStructureNote(entry)); err != nil {
		res.warn("creating note: %v", err)
		slog.Warn("note creation failed", "item", itemKey, "error", err)
	} else {
		res.NoteKey = noteKey
	}

	if fileErr != nil {
		res.warn("downloading structure file: %v", fileErr)
		slog.Warn("structure file download failed", "id", id, "error", fileErr)
	}
	if len(file) > 0 {
		s.attach(ctx, res, zotero.AttachmentUpload{
			Filename:    id + ".pdb",
			ContentType: "chemical/x-pdb",
			Data:        file,
		})
	}

	return res, nil
}

// Verification is the read-back view of a stored citation.
type Verification struct {
	Key             string              `json:"key"`
	Found           bool                `json:"found"`
	Title           string              `json:"title,omitempty"`
	ItemType        string              `json:"itemType,omitempty"`
	NoteCount       int                 `json:"noteCount"`
	AttachmentCount int                 `json:"attachmentCount"`
	Attachments     []AttachmentSummary `json:"attachments,omitempty"`
}

// AttachmentSummary describes one stored attachment.
type AttachmentSummary struct {
	Key         string `json:"key"`
	Filename    string `json:"filename,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	MD5         string `json:"md5,omitempty"`
}

// Verify reads an item and its children back from the library. A missing
// item reports Found false rather than an error.
func (s *Service) Verify(ctx context.Context, key string) (*Verification, error) {
	item, err := s.library.Item(ctx, key)
	if err != nil {
		if zotero.IsNotFound(err) {
			return &Verification{Key: key}, nil
		}
		return nil, err
	}

	v := &Verification{
		Key:      item.Key,
		Found:    true,
		Title:    item.Data.Title,
		ItemType: item.Data.ItemType,
	}

	children, err := s.library.Children(ctx, key)
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		switch child.Data.ItemType {
		case "note":
			v.NoteCount++
		case "attachment":
			v.AttachmentCount++
			v.Attachments = append(v.Attachments, AttachmentSummary{
				Key:         child.Key,
				Filename:    child.Data.Filename,
				ContentType: child.Data.ContentType,
				MD5:         child.Data.MD5,
			})
		}
	}
	return v, nil
}

// attach uploads attachment bytes, degrading failure to a warning.
func (s *Service) attach(ctx context.Context, res *Result, up zotero.AttachmentUpload) {
	uploaded, err := s.library.UploadAttachment(ctx, res.ItemKey, up)
	if err != nil {
		res.warn("attaching %s: %v", up.Filename, err)
		slog.Warn("attachment failed", "item", res.ItemKey, "filename", up.Filename, "error", err)
		return
	}
	res.AttachmentKey = uploaded.Key
	res.HasFile = true
	res.FileSize = uploaded.Size
}

// articlePDF loads attachment bytes from a local path or a remote URL.
// Failures are recorded as warnings on res and reported via ok.
func (s *Service) articlePDF(ctx context.Context, in ArticleInput, res *Result) ([]byte, string, time.Time, bool) {
	switch {
	case in.PDFPath != "":
		data, err := os.ReadFile(in.PDFPath)
		if err != nil {
			res.warn("reading PDF %s: %v", in.PDFPath, err)
			return nil, "", time.Time{}, false
		}
		mtime := time.Now()
		if info, err := os.Stat(in.PDFPath); err == nil {
			mtime = info.ModTime()
		}
		return data, filepath.Base(in.PDFPath), mtime, true

	case in.PDFURL != "":
		data, err := s.fetchPDF(ctx, in.PDFURL)
		if err != nil {
			res.warn("fetching PDF %s: %v", in.PDFURL, err)
			return nil, "", time.Time{}, false
		}
		return data, pdfFilename(in.PDFURL), time.Now(), true
	}
	return nil, "", time.Time{}, false
}

// fetchPDF downloads PDF bytes from a remote URL.
func (s *Service) fetchPDF(ctx context.Context, pdfURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// pdfFilename derives an attachment filename from a PDF URL.
func pdfFilename(pdfURL string) string {
	if u, err := url.Parse(pdfURL); err == nil {
		if name := path.Base(u.Path); strings.HasSuffix(strings.ToLower(name), ".pdf") {
			return name
		}
	}
	return "article.pdf"
}
