package rcsb

// Author is a structure author with the name split for citation use.
type Author struct {
	Given  string `json:"given,omitempty"`
	Family string `json:"family"`
}

// Entry is the assembled metadata for one PDB entry. It is built fresh
// on every fetch; nothing is cached between calls. The Authors list is
// never empty.
type Entry struct {
	ID            string   `json:"pdbId"`
	Title         string   `json:"title"`
	Authors       []Author `json:"authors"`
	CitationTitle string   `json:"citationTitle,omitempty"`
	Journal       string   `json:"journal,omitempty"`
	Year          int      `json:"year,omitempty"`
	DOI           string   `json:"doi,omitempty"`
	Method        string   `json:"method,omitempty"`
	Resolution    float64  `json:"resolution,omitempty"`
	Organism      string   `json:"organism,omitempty"`
	Released      string   `json:"releaseDate,omitempty"`
	Keywords      string   `json:"keywords,omitempty"`
}

// entryResponse mirrors the subset of the RCSB core entry schema this
// client reads.
type entryResponse struct {
	Struct struct {
		Title string `json:"title"`
	} `json:"struct"`
	StructKeywords struct {
		PdbxKeywords string `json:"pdbx_keywords"`
	} `json:"struct_keywords"`
	AuditAuthor []struct {
		Name string `json:"name"`
	} `json:"audit_author"`
	Citation []entryCitation `json:"citation"`
	Exptl []struct {
		Method string `json:"method"`
	} `json:"exptl"`
	EntryInfo struct {
		ResolutionCombined []float64 `json:"resolution_combined"`
	} `json:"rcsb_entry_info"`
	AccessionInfo struct {
		InitialReleaseDate string `json:"initial_release_date"`
	} `json:"rcsb_accession_info"`
}

// entryCitation is one citation record of an entry. The record with
// id "primary" describes the publication the structure belongs to.
type entryCitation struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	JournalAbbrev string `json:"journal_abbrev"`
	Year          int    `json:"year"`
	DOI           string `json:"pdbx_database_id_doi"`
}

// polymerEntityResponse holds the single field read from the first
// polymer entity of an entry.
type polymerEntityResponse struct {
	SourceOrganisms []struct {
		NCBIScientificName string `json:"ncbi_scientific_name"`
	} `json:"rcsb_entity_source_organism"`
}
