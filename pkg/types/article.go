// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data structures for scholar-search: the
// normalized Article record and the configuration of each source.
package types

// Placeholder values written by normalization when the source omits a field.
// They are distinct from an empty string so sinks can tell "absent" from
// "present but empty".
const (
	// AbstractUnavailable replaces a null or missing abstract.
	AbstractUnavailable = "Abstract not available"

	// NoCitations replaces a citation count of zero or a missing count.
	NoCitations = "No citations"

	// UnknownAuthor replaces an author entry that carries no name.
	UnknownAuthor = "Unknown author"
)

// Source names recorded on each Article.
const (
	SourceGoogleScholar   = "google_scholar"
	SourceSemanticScholar = "semantic_scholar"
)

// Article is the normalized bibliographic record produced by every source.
// An Article always has a non-empty Title.
type Article struct {
	// Title is the article title with inline classification tags removed.
	Title string `json:"title" yaml:"title"`

	// Link is the URL of the article page. Empty when the source has none.
	Link string `json:"link,omitempty" yaml:"link,omitempty"`

	// AuthorsInfo is a free-text author/venue/year summary.
	AuthorsInfo string `json:"authors_info" yaml:"authors_info"`

	// Abstract is the snippet or abstract, or AbstractUnavailable.
	Abstract string `json:"abstract" yaml:"abstract"`

	// CitationSummary is human-readable, e.g. "Cited by 45,231".
	CitationSummary string `json:"citation_summary" yaml:"citation_summary"`

	// VersionsInfo is "All N versions" for Google Scholar and an opaque
	// source identifier for Semantic Scholar.
	VersionsInfo string `json:"versions_info" yaml:"versions_info"`

	// Source is the name of the adapter that produced the record.
	Source string `json:"source" yaml:"source"`

	// The fields below are only populated by the Semantic Scholar source.
	// CitationCount is nil when the API reported no count.

	Authors          []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Year             int      `json:"year,omitempty" yaml:"year,omitempty"`
	Venue            string   `json:"venue,omitempty" yaml:"venue,omitempty"`
	FieldsOfStudy    []string `json:"fields_of_study,omitempty" yaml:"fields_of_study,omitempty"`
	PaperID          string   `json:"paper_id,omitempty" yaml:"paper_id,omitempty"`
	CitationCount    *int     `json:"citation_count,omitempty" yaml:"citation_count,omitempty"`
	PublicationDate  string   `json:"publication_date,omitempty" yaml:"publication_date,omitempty"`
	PublicationTypes []string `json:"publication_types,omitempty" yaml:"publication_types,omitempty"`
}
