// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes search results to pipe-delimited files. The column
// names are a persisted contract shared with files written by earlier
// releases and must not change.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/pdiddy/scholar-search/pkg/types"
)

// TimestampLayout formats the fecha_extraccion column.
const TimestampLayout = "2006-01-02 15:04:05"

// fileStampLayout is the timestamp embedded in generated file names.
const fileStampLayout = "20060102_150405"

// maxQueryInName caps the query part of a generated file name.
const maxQueryInName = 30

// ErrNoArticles is returned by Save when there is nothing to write.
var ErrNoArticles = errors.New("no articles to save")

// Layout is the column set of one source's delimited file.
type Layout struct {
	// Prefix starts generated file names.
	Prefix string
	Header []string
	row    func(a types.Article) []string
}

// SemanticLayout is the layout for Semantic Scholar results.
var SemanticLayout = Layout{
	Prefix: "semantic_scholar",
	Header: []string{
		"numero", "titulo", "autores_info", "enlace", "resumen", "citado_por",
		"year", "venue", "campos_estudio", "paper_id", "citation_count",
		"publication_date", "publication_types", "fecha_extraccion",
	},
	row: func(a types.Article) []string {
		year := ""
		if a.Year > 0 {
			year = strconv.Itoa(a.Year)
		}
		return []string{
			a.Title, a.AuthorsInfo, a.Link, a.Abstract, a.CitationSummary,
			year, a.Venue, strings.Join(a.FieldsOfStudy, ", "), a.PaperID,
			countCell(a.CitationCount), a.PublicationDate,
			strings.Join(a.PublicationTypes, ", "),
		}
	},
}

// countCell leaves the cell empty when the count is unknown.
func countCell(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

// GoogleLayout is the layout for Google Scholar results.
var GoogleLayout = Layout{
	Prefix: "google_scholar",
	Header: []string{
		"numero", "titulo", "autores_info", "enlace", "resumen", "citado_por",
		"versiones", "fecha_extraccion",
	},
	row: func(a types.Article) []string {
		return []string{
			a.Title, a.AuthorsInfo, a.Link, a.Abstract, a.CitationSummary,
			a.VersionsInfo,
		}
	},
}

// LayoutFor returns the layout for a source name.
func LayoutFor(source string) (Layout, error) {
	switch source {
	case types.SourceSemanticScholar:
		return SemanticLayout, nil
	case types.SourceGoogleScholar:
		return GoogleLayout, nil
	default:
		return Layout{}, fmt.Errorf("no file layout for source %q", source)
	}
}

// WriteDelimited writes a header row and one row per article. Rows are
// numbered from 1 and stamped with extractedAt. Records end in CRLF while
// line breaks inside quoted fields are written unchanged.
func WriteDelimited(w io.Writer, layout Layout, articles []types.Article, extractedAt time.Time) error {
	rw := newRowWriter(w)
	if err := rw.write(layout.Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	stamp := extractedAt.Format(TimestampLayout)
	for i, a := range articles {
		record := make([]string, 0, len(layout.Header))
		record = append(record, strconv.Itoa(i+1))
		for _, v := range layout.row(a) {
			record = append(record, strings.TrimSpace(v))
		}
		record = append(record, stamp)
		if err := rw.write(record); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	return nil
}

// rowWriter quotes one record at a time with encoding/csv and swaps only the
// record terminator for CRLF. UseCRLF is not set because it rewrites newlines
// inside fields and drops bare carriage returns.
type rowWriter struct {
	w    io.Writer
	line bytes.Buffer
	cw   *csv.Writer
}

func newRowWriter(w io.Writer) *rowWriter {
	rw := &rowWriter{w: w}
	rw.cw = csv.NewWriter(&rw.line)
	rw.cw.Comma = '|'
	return rw
}

func (rw *rowWriter) write(record []string) error {
	rw.line.Reset()
	if err := rw.cw.Write(record); err != nil {
		return err
	}
	rw.cw.Flush()
	if err := rw.cw.Error(); err != nil {
		return err
	}
	rw.line.Truncate(rw.line.Len() - 1)
	rw.line.WriteString("\r\n")
	_, err := rw.w.Write(rw.line.Bytes())
	return err
}

// FileName builds "<prefix>_<query>_<YYYYMMDD_HHMMSS>.csv". The query keeps
// letters, digits, spaces, hyphens and underscores, with spaces turned into
// underscores and the result cut to 30 characters. An empty result leaves
// the query part out.
func FileName(prefix, query string, now time.Time) string {
	stamp := now.Format(fileStampLayout)
	if q := safeQuery(query); q != "" {
		return fmt.Sprintf("%s_%s_%s.csv", prefix, q, stamp)
	}
	return fmt.Sprintf("%s_%s.csv", prefix, stamp)
}

func safeQuery(query string) string {
	var b strings.Builder
	for _, r := range query {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	s := strings.TrimRight(b.String(), " ")
	s = strings.ReplaceAll(s, " ", "_")
	if r := []rune(s); len(r) > maxQueryInName {
		s = string(r[:maxQueryInName])
	}
	return s
}

// SaveOptions control where Save writes.
type SaveOptions struct {
	// Dir is the output directory, created if missing.
	Dir string
	// Name is the file name. When empty, FileName generates one from Query.
	Name  string
	Query string
	// Now stamps the file name and rows. Defaults to time.Now.
	Now time.Time
}

// Save writes articles to a file in opts.Dir and returns its absolute path.
// It returns ErrNoArticles without touching the filesystem when articles is
// empty. The file is written to a temp file first and renamed into place.
func Save(layout Layout, articles []types.Article, opts SaveOptions) (string, error) {
	if len(articles) == 0 {
		return "", ErrNoArticles
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	name := opts.Name
	if name == "" {
		name = FileName(layout.Prefix, opts.Query, opts.Now)
	}
	if !strings.HasSuffix(name, ".csv") {
		name += ".csv"
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	destPath, err := filepath.Abs(filepath.Join(opts.Dir, name))
	if err != nil {
		return "", fmt.Errorf("resolving output path: %w", err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".export-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	writeErr := WriteDelimited(tmpFile, layout, articles, opts.Now)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing %s: %w", name, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("renaming temp file: %w", err)
	}
	return destPath, nil
}
