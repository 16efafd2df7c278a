package zotero

import "encoding/json"

// Creator is an item creator in the Zotero schema. Personal names use
// FirstName/LastName; institutional names use the single Name field.
type Creator struct {
	CreatorType string `json:"creatorType"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Name        string `json:"name,omitempty"`
}

// Tag is an item tag.
type Tag struct {
	Tag  string `json:"tag"`
	Type int    `json:"type,omitempty"`
}

// ItemData is the writable field set of a Zotero item. Field names match
// the Zotero schema exactly; empty fields are omitted on the wire, so an
// ItemData built by the mappers never transmits blank values.
type ItemData struct {
	Key              string    `json:"key,omitempty"`
	Version          int       `json:"version,omitempty"`
	ItemType         string    `json:"itemType"`
	Title            string    `json:"title,omitempty"`
	AbstractNote     string    `json:"abstractNote,omitempty"`
	PublicationTitle string    `json:"publicationTitle,omitempty"`
	Volume           string    `json:"volume,omitempty"`
	Issue            string    `json:"issue,omitempty"`
	Pages            string    `json:"pages,omitempty"`
	Date             string    `json:"date,omitempty"`
	DOI              string    `json:"DOI,omitempty"`
	URL              string    `json:"url,omitempty"`
	Language         string    `json:"language,omitempty"`
	Extra            string    `json:"extra,omitempty"`
	Creators         []Creator `json:"creators,omitempty"`
	Tags             []Tag     `json:"tags,omitempty"`
	Collections      []string  `json:"collections,omitempty"`

	// Child item fields (notes and attachments).
	ParentItem  string `json:"parentItem,omitempty"`
	Note        string `json:"note,omitempty"`
	LinkMode    string `json:"linkMode,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Filename    string `json:"filename,omitempty"`
	MD5         string `json:"md5,omitempty"`
	MTime       int64  `json:"mtime,omitempty"`
}

// Item is a library item as returned by the API, with the data payload
// unwrapped from its envelope.
type Item struct {
	Key     string   `json:"key"`
	Version int      `json:"version"`
	Data    ItemData `json:"data"`
}

// Collection is a library collection.
type Collection struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Version int    `json:"version,omitempty"`
}

// writeResponse is the envelope the write API returns for a batch POST.
// All four maps are indexed by the position of the object in the
// submitted array, as a decimal string.
type writeResponse struct {
	Successful map[string]json.RawMessage `json:"successful"`
	Success    map[string]string          `json:"success"`
	Unchanged  map[string]string          `json:"unchanged"`
	Failed     map[string]writeFailure    `json:"failed"`
}

// writeFailure describes a single rejected object in a batch write.
type writeFailure struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
