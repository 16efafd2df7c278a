package tools

import (
	"context"
	"fmt"
	"os"

	"github.com/pverm/zotpdb/internal/citation"
	"github.com/pverm/zotpdb/internal/rcsb"
	"github.com/pverm/zotpdb/internal/zotero"
)

// LibraryAPI is the library read surface behind the tool set.
type LibraryAPI interface {
	SearchItems(ctx context.Context, query string, limit int) ([]zotero.Item, error)
	Item(ctx context.Context, key string) (*zotero.Item, error)
	Children(ctx context.Context, key string) ([]zotero.Item, error)
	DownloadFile(ctx context.Context, key string) ([]byte, error)
	Collections(ctx context.Context) ([]zotero.Collection, error)
}

// CitationAPI is the orchestrator surface behind the tool set.
type CitationAPI interface {
	CreateCitation(ctx context.Context, in citation.ArticleInput) (*citation.Result, error)
	CreateStructureCitation(ctx context.Context, in citation.StructureInput) (*citation.Result, error)
	Verify(ctx context.Context, key string) (*citation.Verification, error)
}

// StructureAPI is the metadata-source surface for fetch-only tools.
type StructureAPI interface {
	Entry(ctx context.Context, id string) (*rcsb.Entry, error)
	StructureFile(ctx context.Context, id string) ([]byte, error)
}

// Deps are the backends behind the default tool set.
type Deps struct {
	Library    LibraryAPI
	Citations  CitationAPI
	Structures StructureAPI
}

// DefaultRegistry registers the full tool set against the given
// backends.
func DefaultRegistry(d Deps) *Registry {
	r := NewRegistry()
	r.Register(fetchStructureTool(d.Structures))
	r.Register(saveStructureTool(d.Citations))
	r.Register(saveArticleTool(d.Citations))
	r.Register(searchTool(d.Library))
	r.Register(getTool(d.Library))
	r.Register(verifyTool(d.Citations))
	r.Register(collectionsTool(d.Library))
	r.Register(downloadTool(d.Library))
	return r
}

func fetchStructureTool(structures StructureAPI) *Tool {
	return &Tool{
		Name:        "fetch_structure",
		Description: "Fetch metadata for a PDB entry from RCSB without saving anything.",
		InputSchema: objectSchema(map[string]any{
			"id":           stringProp("PDB ID, e.g. 4HHB"),
			"include_file": boolProp("Also download the structure file and report its size"),
		}, []string{"id"}),
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			id, err := requireString(args, "id")
			if err != nil {
				return nil, err
			}
			entry, err := structures.Entry(ctx, id)
			if err != nil {
				return nil, err
			}
			out := map[string]any{"entry": entry}
			if boolArg(args, "include_file", false) {
				data, err := structures.StructureFile(ctx, id)
				if err != nil {
					return nil, err
				}
				out["fileSize"] = len(data)
			}
			return out, nil
		},
	}
}

func saveStructureTool(cites CitationAPI) *Tool {
	return &Tool{
		Name:        "save_structure_citation",
		Description: "Fetch a PDB entry and save it to Zotero with an experimental-details note and the structure file attached.",
		InputSchema: objectSchema(map[string]any{
			"id":         stringProp("PDB ID, e.g. 4HHB"),
			"collection": stringProp("Collection name, created if missing (default: PDB Structures)"),
			"fetch_file": boolProp("Download and attach the structure file (default true)"),
		}, []string{"id"}),
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			id, err := requireString(args, "id")
			if err != nil {
				return nil, err
			}
			return cites.CreateStructureCitation(ctx, citation.StructureInput{
				ID:         id,
				Collection: stringArg(args, "collection", ""),
				FetchFile:  boolArg(args, "fetch_file", true),
			})
		},
	}
}

func saveArticleTool(cites CitationAPI) *Tool {
	return &Tool{
		Name:        "save_article_citation",
		Description: "Save an article citation to Zotero with an optional research note and PDF attachment.",
		InputSchema: objectSchema(map[string]any{
			"title":       stringProp("Article title"),
			"url":         stringProp("Source URL"),
			"authors":     arrayProp("Author names"),
			"abstract":    stringProp("Abstract text"),
			"publication": stringProp("Journal or publication title"),
			"date":        stringProp("Publication date"),
			"doi":         stringProp("DOI"),
			"volume":      stringProp("Volume"),
			"issue":       stringProp("Issue"),
			"pages":       stringProp("Pages"),
			"language":    stringProp("Language"),
			"extra":       stringProp("Extra field text"),
			"tags":        arrayProp("Tags to apply"),
			"keywords":    arrayProp("Source keywords, merged with tags"),
			"collection":  stringProp("Collection name, created if missing"),
			"collections": arrayProp("Existing collection keys to also file under"),
			"pdf_url":     stringProp("Remote PDF to fetch and attach"),
			"pdf_path":    stringProp("Local PDF file to attach"),
			"context":     stringProp("Research context for the note"),
			"summary":     stringProp("Summary for the note"),
		}, []string{"title", "url"}),
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			title, err := requireString(args, "title")
			if err != nil {
				return nil, err
			}
			sourceURL, err := requireString(args, "url")
			if err != nil {
				return nil, err
			}
			return cites.CreateCitation(ctx, citation.ArticleInput{
				Title:       title,
				URL:         sourceURL,
				Authors:     stringSliceArg(args, "authors"),
				Abstract:    stringArg(args, "abstract", ""),
				Publication: stringArg(args, "publication", ""),
				Date:        stringArg(args, "date", ""),
				DOI:         stringArg(args, "doi", ""),
				Volume:      stringArg(args, "volume", ""),
				Issue:       stringArg(args, "issue", ""),
				Pages:       stringArg(args, "pages", ""),
				Language:    stringArg(args, "language", ""),
				Extra:       stringArg(args, "extra", ""),
				Tags:        stringSliceArg(args, "tags"),
				Keywords:    stringSliceArg(args, "keywords"),
				Collection:  stringArg(args, "collection", ""),
				Collections: sliceArg(args, "collections"),
				PDFURL:      stringArg(args, "pdf_url", ""),
				PDFPath:     stringArg(args, "pdf_path", ""),
				Context:     stringArg(args, "context", ""),
				Summary:     stringArg(args, "summary", ""),
			})
		},
	}
}

func searchTool(lib LibraryAPI) *Tool {
	return &Tool{
		Name:        "search_citations",
		Description: "Search the Zotero library by title, creator, and year.",
		InputSchema: objectSchema(map[string]any{
			"query": stringProp("Free-text search term"),
			"limit": intProp("Maximum number of results (default 25)"),
		}, []string{"query"}),
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			query, err := requireString(args, "query")
			if err != nil {
				return nil, err
			}
			items, err := lib.SearchItems(ctx, query, intArg(args, "limit", zotero.DefaultSearchLimit))
			if err != nil {
				return nil, err
			}
			results := make([]map[string]any, 0, len(items))
			for _, it := range items {
				results = append(results, map[string]any{
					"key":      it.Key,
					"title":    it.Data.Title,
					"itemType": it.Data.ItemType,
					"date":     it.Data.Date,
				})
			}
			return map[string]any{"count": len(results), "results": results}, nil
		},
	}
}

func getTool(lib LibraryAPI) *Tool {
	return &Tool{
		Name:        "get_citation",
		Description: "Get one library item with its notes and attachments.",
		InputSchema: objectSchema(map[string]any{
			"key": stringProp("Item key"),
		}, []string{"key"}),
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			key, err := requireString(args, "key")
			if err != nil {
				return nil, err
			}
			item, err := lib.Item(ctx, key)
			if err != nil {
				return nil, err
			}
			children, err := lib.Children(ctx, key)
			if err != nil {
				return nil, err
			}
			return map[string]any{"item": item, "children": children}, nil
		},
	}
}

func verifyTool(cites CitationAPI) *Tool {
	return &Tool{
		Name:        "verify_citation",
		Description: "Read a citation back and report its notes and attachments.",
		InputSchema: objectSchema(map[string]any{
			"key": stringProp("Item key"),
		}, []string{"key"}),
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			key, err := requireString(args, "key")
			if err != nil {
				return nil, err
			}
			return cites.Verify(ctx, key)
		},
	}
}

func collectionsTool(lib LibraryAPI) *Tool {
	return &Tool{
		Name:        "list_collections",
		Description: "List the library's collections.",
		InputSchema: objectSchema(map[string]any{}, nil),
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			cols, err := lib.Collections(ctx)
			if err != nil {
				return nil, err
			}
			return map[string]any{"count": len(cols), "collections": cols}, nil
		},
	}
}

func downloadTool(lib LibraryAPI) *Tool {
	return &Tool{
		Name:        "download_attachment",
		Description: "Download an attachment's file content to a local path.",
		InputSchema: objectSchema(map[string]any{
			"key":  stringProp("Attachment item key"),
			"path": stringProp("Destination file path"),
		}, []string{"key", "path"}),
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			key, err := requireString(args, "key")
			if err != nil {
				return nil, err
			}
			dest, err := requireString(args, "path")
			if err != nil {
				return nil, err
			}
			data, err := lib.DownloadFile(ctx, key)
			if err != nil {
				return nil, err
			}
			if err := os.WriteFile(dest, data, 0o644); err != nil {
				return nil, fmt.Errorf("writing %s: %w", dest, err)
			}
			return map[string]any{"key": key, "path": dest, "size": len(data)}, nil
		},
	}
}
