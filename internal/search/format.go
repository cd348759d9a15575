// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"

	"github.com/pdiddy/scholar-search/pkg/types"
)

// Output formats accepted by Format.
const (
	FormatNameText  = "text"
	FormatNameTable = "table"
	FormatNameJSON  = "json"
	FormatNameCSL   = "csl"
)

// FormatNames lists the accepted output formats.
var FormatNames = []string{FormatNameText, FormatNameTable, FormatNameJSON, FormatNameCSL}

const (
	abstractPreviewLen = 300
	tableTitleWidth    = 60
	tableAuthorsWidth  = 40
)

// Format writes articles to w in the named format. label is the effective
// query and appears in the text and table headers.
func Format(w io.Writer, format string, articles []types.Article, label string) error {
	switch format {
	case FormatNameText, "":
		FormatText(w, articles, label)
		return nil
	case FormatNameTable:
		FormatTable(w, articles, label)
		return nil
	case FormatNameJSON:
		return FormatJSON(w, articles)
	case FormatNameCSL:
		return FormatCSL(w, articles)
	default:
		return fmt.Errorf("unknown output format %q (want one of %s)", format, strings.Join(FormatNames, ", "))
	}
}

// FormatText writes a numbered, one-field-per-line listing.
func FormatText(w io.Writer, articles []types.Article, label string) {
	if len(articles) == 0 {
		fmt.Fprintf(w, "No articles found for %q.\n", label)
		return
	}

	rule := strings.Repeat("=", 80)
	for i, a := range articles {
		fmt.Fprintf(w, "\n%s\nArticle %d\n%s\n", rule, i+1, rule)
		fmt.Fprintf(w, "Title: %s\n", a.Title)
		if a.Link != "" {
			fmt.Fprintf(w, "Link: %s\n", a.Link)
		}
		fmt.Fprintf(w, "Authors: %s\n", a.AuthorsInfo)
		if a.Year > 0 {
			fmt.Fprintf(w, "Year: %d\n", a.Year)
		}
		if a.Venue != "" {
			fmt.Fprintf(w, "Venue: %s\n", a.Venue)
		}
		if a.Abstract != "" && a.Abstract != types.AbstractUnavailable {
			fmt.Fprintf(w, "Abstract: %s\n", preview(a.Abstract, abstractPreviewLen))
		}
		if a.CitationSummary != "" {
			fmt.Fprintln(w, a.CitationSummary)
		}
		if len(a.FieldsOfStudy) > 0 {
			fmt.Fprintf(w, "Fields: %s\n", strings.Join(a.FieldsOfStudy, ", "))
		}
		if a.Source == types.SourceGoogleScholar && a.VersionsInfo != "" {
			fmt.Fprintln(w, a.VersionsInfo)
		}
		if a.PaperID != "" {
			fmt.Fprintf(w, "Semantic Scholar ID: %s\n", a.PaperID)
		}
	}
	fmt.Fprintf(w, "\n%d articles for %q\n", len(articles), label)
}

// FormatTable writes a compact table, one row per article.
func FormatTable(w io.Writer, articles []types.Article, label string) {
	if len(articles) == 0 {
		fmt.Fprintf(w, "No articles found for %q.\n", label)
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "Title", "Authors", "Year", "Citations"})
	for i, a := range articles {
		year := ""
		if a.Year > 0 {
			year = strconv.Itoa(a.Year)
		}
		t.AppendRow(table.Row{
			i + 1,
			runewidth.Truncate(a.Title, tableTitleWidth, "..."),
			runewidth.Truncate(a.AuthorsInfo, tableAuthorsWidth, "..."),
			year,
			a.CitationSummary,
		})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d articles", len(articles)), "Query: " + label, "", ""})
	t.Render()
}

// FormatJSON writes articles as indented JSON.
func FormatJSON(w io.Writer, articles []types.Article) error {
	if articles == nil {
		articles = []types.Article{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(articles)
}

// preview shortens s to at most n runes, marking the cut with "...".
func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
