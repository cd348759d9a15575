// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-search/internal/export"
	"github.com/pdiddy/scholar-search/internal/httputil"
	"github.com/pdiddy/scholar-search/internal/logger"
	"github.com/pdiddy/scholar-search/internal/search"
	"github.com/pdiddy/scholar-search/pkg/types"
)

const (
	sourceScholar  = "scholar"
	sourceSemantic = "semantic"

	defaultMaxResults = 10
	maxMaxResults     = 100
)

// searchKind selects which searcher method a command calls.
type searchKind int

const (
	byQuery searchKind = iota
	byAuthor
	byTitle
)

// searcher is the surface shared by both sources.
type searcher interface {
	Name() string
	Search(ctx context.Context, query string, target int, years search.YearRange) (search.Result, error)
	SearchByAuthor(ctx context.Context, name string, target int, years search.YearRange) (search.Result, error)
	SearchByTitle(ctx context.Context, title string, target int, years search.YearRange) (search.Result, error)
}

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Search articles by free text",
	Long: `Search collects up to --max-results articles matching the query from the
selected source. Google Scholar operators such as author: and intitle: may be
used directly in the query.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch(byQuery),
}

var authorCmd = &cobra.Command{
	Use:   "author <name...>",
	Short: "Search articles by author",
	Long: `Author searches for articles by the named author. On Google Scholar the
name becomes an author: query. On Semantic Scholar the name is resolved to the
first matching author and that author's papers are listed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch(byAuthor),
}

var titleCmd = &cobra.Command{
	Use:   "title <words...>",
	Short: "Search articles by title phrase",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch(byTitle),
}

func init() {
	for _, cmd := range []*cobra.Command{searchCmd, authorCmd, titleCmd} {
		addSearchFlags(cmd)
		rootCmd.AddCommand(cmd)
	}
}

func addSearchFlags(cmd *cobra.Command) {
	cmd.Flags().String("source", sourceScholar, "source to query: scholar or semantic")
	cmd.Flags().Int("max-results", defaultMaxResults, "number of articles to collect (1-100)")
	cmd.Flags().Int("from", 0, "earliest publication year")
	cmd.Flags().Int("to", 0, "latest publication year")
	cmd.Flags().Duration("delay", 0, "wait between page requests (default from config: 2s for scholar)")
	addOutputFlags(cmd)
}

// addOutputFlags registers the flags shared by every command that prints
// articles.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", search.FormatNameText, "output format: "+strings.Join(search.FormatNames, ", "))
	cmd.Flags().Bool("save", false, "save results as a pipe-delimited file under the data directory")
	cmd.Flags().String("output", "", "file name for saved results (implies --save)")
}

// searchRequest is the validated input of one search command.
type searchRequest struct {
	kind   searchKind
	input  string
	source string
	target int
	years  search.YearRange
	delay  time.Duration
}

func parseSearchRequest(cmd *cobra.Command, kind searchKind, args []string, stderr io.Writer) (searchRequest, error) {
	req := searchRequest{kind: kind, input: strings.TrimSpace(strings.Join(args, " "))}
	if req.input == "" {
		return req, fmt.Errorf("empty search input")
	}

	req.source, _ = cmd.Flags().GetString("source")
	if req.source != sourceScholar && req.source != sourceSemantic {
		return req, fmt.Errorf("unknown source %q (want %s or %s)", req.source, sourceScholar, sourceSemantic)
	}

	req.target, _ = cmd.Flags().GetInt("max-results")
	if req.target < 1 || req.target > maxMaxResults {
		return req, fmt.Errorf("--max-results must be between 1 and %d, got %d", maxMaxResults, req.target)
	}

	from, _ := cmd.Flags().GetInt("from")
	to, _ := cmd.Flags().GetInt("to")
	years, warnings := search.YearRange{From: from, To: to}.Normalized(search.CurrentYear())
	for _, w := range warnings {
		fmt.Fprintln(stderr, "warning:", w)
	}
	req.years = years

	req.delay, _ = cmd.Flags().GetDuration("delay")
	if req.delay < 0 {
		return req, fmt.Errorf("--delay must not be negative")
	}
	return req, nil
}

// fileLabel is the query text embedded in generated file names.
func (r searchRequest) fileLabel() string {
	switch r.kind {
	case byAuthor:
		return "author_" + r.input
	case byTitle:
		return "title_" + r.input
	default:
		return r.input
	}
}

// pageDelay is the wait between pages for source. A non-zero delay
// overrides the configured one.
func pageDelay(source string, cfg types.Config, delay time.Duration) time.Duration {
	if delay > 0 {
		return delay
	}
	if source == sourceSemantic {
		return cfg.Semantic.PageDelay
	}
	return cfg.Scholar.PageDelay
}

// newSearcher builds the requested source from cfg.
func newSearcher(source string, cfg types.Config, delay time.Duration, log logger.Logger) searcher {
	if source == sourceSemantic {
		c := cfg.Semantic
		c.PageDelay = pageDelay(source, cfg, delay)
		return search.NewSemanticScholarSource(c, log)
	}
	c := cfg.Scholar
	c.PageDelay = pageDelay(source, cfg, delay)
	return search.NewScholarSource(c, log)
}

func runSearch(kind searchKind) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		req, err := parseSearchRequest(cmd, kind, args, os.Stderr)
		if err != nil {
			return err
		}

		log := appLog.With(
			logger.String("search_id", uuid.NewString()),
			logger.String("source", req.source),
		)
		src := newSearcher(req.source, appConfig, req.delay, log)
		log.Info("search started",
			logger.String("input", req.input),
			logger.Int("target", req.target),
			logger.String("years", req.years.Token()),
			logger.Duration("delay", pageDelay(req.source, appConfig, req.delay)))

		ctx := cmd.Context()
		var res search.Result
		switch kind {
		case byAuthor:
			res, err = src.SearchByAuthor(ctx, req.input, req.target, req.years)
		case byTitle:
			res, err = src.SearchByTitle(ctx, req.input, req.target, req.years)
		default:
			res, err = src.Search(ctx, req.input, req.target, req.years)
		}
		log.Info("search finished",
			logger.String("outcome", res.Outcome.String()),
			logger.Int("articles", len(res.Articles)),
			logger.Int("pages", res.Pages),
			logger.Int("dropped", res.Dropped))

		if outErr := emit(cmd, src.Name(), res.Articles, req.input, req.fileLabel()); outErr != nil {
			return outErr
		}
		if err != nil {
			if errors.Is(err, httputil.ErrRateLimited) {
				fmt.Fprintf(os.Stderr, "Rate limited by %s after %d articles. Wait before searching again.\n", src.Name(), len(res.Articles))
			}
			return err
		}
		if res.Outcome == search.Exhausted && len(res.Articles) < req.target {
			fmt.Fprintf(os.Stderr, "Only %d of %d requested articles were available.\n", len(res.Articles), req.target)
		}
		return nil
	}
}

// emit prints articles in the selected format and saves them when asked.
func emit(cmd *cobra.Command, source string, articles []types.Article, label, fileLabel string) error {
	format, _ := cmd.Flags().GetString("format")
	if err := search.Format(cmd.OutOrStdout(), format, articles, label); err != nil {
		return err
	}

	save, _ := cmd.Flags().GetBool("save")
	output, _ := cmd.Flags().GetString("output")
	if !save && output == "" {
		return nil
	}

	layout, err := export.LayoutFor(source)
	if err != nil {
		return err
	}
	path, err := export.Save(layout, articles, export.SaveOptions{
		Dir:   appConfig.Output.DataDir,
		Name:  output,
		Query: fileLabel,
	})
	if errors.Is(err, export.ErrNoArticles) {
		fmt.Fprintln(os.Stderr, "No articles to save.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Saved %d articles to %s\n", len(articles), path)
	return nil
}
