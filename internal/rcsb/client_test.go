package rcsb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"valid upper", "4HHB", "4HHB", false},
		{"valid lower", "4hhb", "4HHB", false},
		{"valid mixed", "1bNa", "1BNA", false},
		{"surrounding space", " 4hhb ", "4HHB", false},
		{"too short", "4HH", "", true},
		{"too long", "4HHBX", "", true},
		{"leading letter", "AHHB", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseID(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !errors.Is(err, ErrInvalidID) {
					t.Errorf("error = %v, want ErrInvalidID", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseID(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// entryJSON is a trimmed RCSB core entry response for 4HHB.
const entryJSON = `{
	"struct": {"title": "The crystal structure of human deoxyhaemoglobin"},
	"struct_keywords": {"pdbx_keywords": "OXYGEN TRANSPORT"},
	"audit_author": [{"name": "Fermi, G."}, {"name": "Perutz, M.F."}],
	"citation": [
		{"id": "2", "title": "Other paper", "journal_abbrev": "Nature", "year": 1980},
		{"id": "primary", "title": "The crystal structure of human deoxyhaemoglobin at 1.74 A resolution",
		 "journal_abbrev": "J.Mol.Biol.", "year": 1984, "pdbx_database_id_doi": "10.1016/0022-2836(84)90472-8"}
	],
	"exptl": [{"method": "X-RAY DIFFRACTION"}],
	"rcsb_entry_info": {"resolution_combined": [1.74]},
	"rcsb_accession_info": {"initial_release_date": "1984-07-17T00:00:00+0000"}
}`

const polymerJSON = `{"rcsb_entity_source_organism": [{"ncbi_scientific_name": "Homo sapiens"}]}`

// newTestClient wires a Client against a test server serving both the
// data and files APIs.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(WithDataBaseURL(server.URL), WithFilesBaseURL(server.URL))
}

func TestEntry(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/core/entry/4HHB":
			w.Write([]byte(entryJSON))
		case "/core/polymer_entity/4HHB/1":
			w.Write([]byte(polymerJSON))
		default:
			http.NotFound(w, r)
		}
	}))

	entry, err := client.Entry(context.Background(), "4hhb")
	if err != nil {
		t.Fatalf("Entry() error = %v", err)
	}

	if entry.ID != "4HHB" {
		t.Errorf("ID = %q, want 4HHB", entry.ID)
	}
	if entry.Title != "The crystal structure of human deoxyhaemoglobin" {
		t.Errorf("Title = %q", entry.Title)
	}
	if len(entry.Authors) != 2 {
		t.Fatalf("Authors = %d, want 2", len(entry.Authors))
	}
	if entry.Authors[0].Family != "Fermi" || entry.Authors[0].Given != "G." {
		t.Errorf("Authors[0] = %+v, want Fermi, G.", entry.Authors[0])
	}
	if entry.Journal != "J.Mol.Biol." {
		t.Errorf("Journal = %q, want primary citation journal", entry.Journal)
	}
	if entry.Year != 1984 {
		t.Errorf("Year = %d, want 1984", entry.Year)
	}
	if entry.DOI != "10.1016/0022-2836(84)90472-8" {
		t.Errorf("DOI = %q", entry.DOI)
	}
	if entry.Method != "X-RAY DIFFRACTION" {
		t.Errorf("Method = %q", entry.Method)
	}
	if entry.Resolution != 1.74 {
		t.Errorf("Resolution = %v, want 1.74", entry.Resolution)
	}
	if entry.Organism != "Homo sapiens" {
		t.Errorf("Organism = %q, want Homo sapiens", entry.Organism)
	}
	if entry.Released != "1984-07-17" {
		t.Errorf("Released = %q, want 1984-07-17", entry.Released)
	}
}

func TestEntry_MinimalResponse(t *testing.T) {
	// An entry with only a title: every optional field falls back.
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/core/entry/1ABC" {
			w.Write([]byte(`{"struct": {"title": "Bare entry"}}`))
			return
		}
		http.NotFound(w, r)
	}))

	entry, err := client.Entry(context.Background(), "1ABC")
	if err != nil {
		t.Fatalf("Entry() error = %v", err)
	}

	if len(entry.Authors) != 1 || entry.Authors[0].Family != "Unknown" {
		t.Errorf("Authors = %+v, want single Unknown fallback", entry.Authors)
	}
	if entry.Journal != "" || entry.DOI != "" || entry.Method != "" {
		t.Errorf("expected zero values for absent citation fields, got %+v", entry)
	}
	// The organism lookup 404s; that must not fail the fetch.
	if entry.Organism != "" {
		t.Errorf("Organism = %q, want empty", entry.Organism)
	}
}

func TestEntry_NotFound(t *testing.T) {
	client := newTestClient(t, http.NotFoundHandler())

	_, err := client.Entry(context.Background(), "9ZZZ")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestEntry_MissingTitle(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"exptl": [{"method": "X-RAY DIFFRACTION"}]}`))
	}))

	_, err := client.Entry(context.Background(), "1ABC")
	if !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("error = %v, want ErrInvalidResponse", err)
	}
}

func TestEntry_InvalidID(t *testing.T) {
	client := NewClient()
	if _, err := client.Entry(context.Background(), "nope"); !errors.Is(err, ErrInvalidID) {
		t.Errorf("error = %v, want ErrInvalidID", err)
	}
}

func TestStructureFile(t *testing.T) {
	content := "HEADER    OXYGEN TRANSPORT\nATOM      1  N   VAL A   1\nEND\n"
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/download/4HHB.pdb" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(content))
	}))

	data, err := client.StructureFile(context.Background(), "4hhb")
	if err != nil {
		t.Fatalf("StructureFile() error = %v", err)
	}
	if string(data) != content {
		t.Errorf("StructureFile() = %q, want %q", data, content)
	}
}

func TestStructureFile_NotFound(t *testing.T) {
	client := newTestClient(t, http.NotFoundHandler())

	_, err := client.StructureFile(context.Background(), "9ZZZ")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestSplitAuthorName(t *testing.T) {
	tests := []struct {
		input  string
		given  string
		family string
	}{
		{"Fermi, G.", "G.", "Fermi"},
		{"Perutz, M.F.", "M.F.", "Perutz"},
		{"Madonna", "", "Madonna"},
		{"  Smith ,  J. ", "J.", "Smith"},
		{"", "", ""},
	}

	for _, tt := range tests {
		given, family := splitAuthorName(tt.input)
		if given != tt.given || family != tt.family {
			t.Errorf("splitAuthorName(%q) = (%q, %q), want (%q, %q)", tt.input, given, family, tt.given, tt.family)
		}
	}
}
