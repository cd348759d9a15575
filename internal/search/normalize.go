// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"encoding/json"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pdiddy/scholar-search/pkg/types"
)

// maxListedAuthors is how many author names AuthorsInfo spells out.
const maxListedAuthors = 3

// semanticPaperURL is the canonical page for a paper ID.
const semanticPaperURL = "https://www.semanticscholar.org/paper/"

var citationPrinter = message.NewPrinter(language.English)

type semanticPaper struct {
	PaperID          string           `json:"paperId"`
	Title            string           `json:"title"`
	Abstract         *string          `json:"abstract"`
	Authors          []semanticAuthor `json:"authors"`
	Year             int              `json:"year"`
	Venue            string           `json:"venue"`
	URL              string           `json:"url"`
	CitationCount    *int             `json:"citationCount"`
	PublicationDate  string           `json:"publicationDate"`
	PublicationTypes []string         `json:"publicationTypes"`
	FieldsOfStudy    []string         `json:"fieldsOfStudy"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

// NormalizePaper converts one Semantic Scholar paper object. It returns
// false when the object does not decode or has no title.
func NormalizePaper(raw json.RawMessage) (types.Article, bool) {
	var p semanticPaper
	if err := json.Unmarshal(raw, &p); err != nil {
		return types.Article{}, false
	}
	title := collapseSpace(p.Title)
	if title == "" {
		return types.Article{}, false
	}

	a := types.Article{
		Title:            title,
		Link:             p.URL,
		AuthorsInfo:      authorsInfo(p.Authors, p.Venue, p.Year),
		CitationSummary:  citationSummary(p.CitationCount),
		Source:           types.SourceSemanticScholar,
		Authors:          authorNames(p.Authors),
		Year:             p.Year,
		Venue:            strings.TrimSpace(p.Venue),
		FieldsOfStudy:    orderedSet(p.FieldsOfStudy),
		PaperID:          p.PaperID,
		CitationCount:    p.CitationCount,
		PublicationDate:  p.PublicationDate,
		PublicationTypes: orderedSet(p.PublicationTypes),
	}

	if p.Abstract == nil {
		a.Abstract = types.AbstractUnavailable
	} else {
		a.Abstract = *p.Abstract
	}

	if a.Link == "" && p.PaperID != "" {
		a.Link = semanticPaperURL + p.PaperID
	}

	id := p.PaperID
	if id == "" {
		id = "N/A"
	}
	a.VersionsInfo = "Semantic Scholar ID: " + id

	return a, true
}

// joinAuthors lists the first three names and appends "et al." when there
// are more.
func joinAuthors(authors []semanticAuthor) string {
	n := len(authors)
	if n > maxListedAuthors {
		n = maxListedAuthors
	}
	names := make([]string, 0, n)
	for _, au := range authors[:n] {
		name := strings.TrimSpace(au.Name)
		if name == "" {
			name = types.UnknownAuthor
		}
		names = append(names, name)
	}
	s := strings.Join(names, ", ")
	if len(authors) > maxListedAuthors {
		s += " et al."
	}
	return s
}

// authorNames returns every non-blank author name in order.
func authorNames(authors []semanticAuthor) []string {
	var names []string
	for _, au := range authors {
		if name := strings.TrimSpace(au.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// authorsInfo joins authors, venue and year with " - ", leaving out absent
// parts.
func authorsInfo(authors []semanticAuthor, venue string, year int) string {
	parts := make([]string, 0, 3)
	if s := joinAuthors(authors); s != "" {
		parts = append(parts, s)
	}
	if v := strings.TrimSpace(venue); v != "" {
		parts = append(parts, v)
	}
	if year > 0 {
		parts = append(parts, strconv.Itoa(year))
	}
	return strings.Join(parts, " - ")
}

// citationSummary renders a count as "Cited by 45,231", or NoCitations when
// the count is absent or zero.
func citationSummary(count *int) string {
	if count == nil || *count <= 0 {
		return types.NoCitations
	}
	return citationPrinter.Sprintf("Cited by %d", *count)
}

// orderedSet drops blanks and repeats, keeping first occurrences in order.
func orderedSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
