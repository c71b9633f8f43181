package readwise

import "encoding/json"

// Category values used by the sync pipeline. Anything other than
// CategoryPDF is treated as an article.
const (
	CategoryPDF = "pdf"

	// AuthorUnknown is the sentinel the API uses for a missing author.
	AuthorUnknown = "Unknown"
)

// Document is a single item in the Reader list. It is owned entirely by
// the remote service; this tool only reads it.
type Document struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Category    string `json:"category"`
	SourceURL   string `json:"source_url"`
	HTMLContent string `json:"html_content"`
	Tags        TagSet `json:"tags"`
}

// HasAuthor reports whether the document carries a real author name.
func (d Document) HasAuthor() bool {
	return d.Author != "" && d.Author != AuthorUnknown
}

// TagSet is the normalized form of the document tag field. The API serves
// tags either as an object keyed by tag name or as an array of names;
// both decode into a set of names. Any other shape decodes to an empty
// set rather than an error.
type TagSet map[string]struct{}

// Has reports whether the set contains the given tag name.
func (t TagSet) Has(name string) bool {
	_, ok := t[name]
	return ok
}

// UnmarshalJSON accepts both wire shapes for tags.
func (t *TagSet) UnmarshalJSON(data []byte) error {
	set := TagSet{}

	var asMap map[string]json.RawMessage
	if err := json.Unmarshal(data, &asMap); err == nil {
		for name := range asMap {
			set[name] = struct{}{}
		}
		*t = set
		return nil
	}

	var asList []string
	if err := json.Unmarshal(data, &asList); err == nil {
		for _, name := range asList {
			set[name] = struct{}{}
		}
	}

	*t = set
	return nil
}
