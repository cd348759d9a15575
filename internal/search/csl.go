package search

import (
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/scholar-search/pkg/types"
)

// CSLItem is a bibliographic entry in CSL (Citation Style Language) form so
// output can be fed to Pandoc and reference managers.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title"`
	Author         []CSLName `yaml:"author,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	Abstract       string    `yaml:"abstract,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
	URL            string    `yaml:"URL,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// FormatCSL writes articles as a CSL-YAML list to w.
func FormatCSL(w io.Writer, articles []types.Article) error {
	items := make([]CSLItem, len(articles))
	for i, a := range articles {
		items[i] = toCSLItem(a, i+1)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// toCSLItem converts an Article. Google Scholar records carry no structured
// author list, so their author line becomes a single literal name.
func toCSLItem(a types.Article, n int) CSLItem {
	item := CSLItem{
		ID:             a.PaperID,
		Type:           cslType(a.PublicationTypes),
		Title:          a.Title,
		ContainerTitle: a.Venue,
		URL:            a.Link,
	}
	if item.ID == "" {
		item.ID = cslFallbackID(a, n)
	}
	if a.Abstract != types.AbstractUnavailable {
		item.Abstract = a.Abstract
	}

	if len(a.Authors) > 0 {
		for _, name := range a.Authors {
			item.Author = append(item.Author, parseAuthorName(name))
		}
	} else if a.AuthorsInfo != "" {
		item.Author = []CSLName{{Literal: a.AuthorsInfo}}
	}

	if a.Year > 0 {
		item.Issued = &CSLDate{DateParts: [][]int{{a.Year}}}
	}
	return item
}

// cslType maps Semantic Scholar publication types to CSL types.
func cslType(pubTypes []string) string {
	for _, t := range pubTypes {
		switch t {
		case "Conference":
			return "paper-conference"
		case "Book":
			return "book"
		case "Review", "JournalArticle":
			return "article-journal"
		}
	}
	return "article"
}

func cslFallbackID(a types.Article, n int) string {
	prefix := strings.TrimSuffix(a.Source, "_scholar")
	if prefix == "" {
		prefix = "article"
	}
	return fmt.Sprintf("%s-%d", prefix, n)
}

// parseAuthorName splits a full name string into CSL family/given parts.
// It splits on the last space: everything before is given, the last token
// is family. Single-token names use the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Given:  name[:idx],
		Family: name[idx+1:],
	}
}
