// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/scholar-search/internal/httputil"
	"github.com/pdiddy/scholar-search/internal/logger"
	"github.com/pdiddy/scholar-search/pkg/types"
)

// scholarSearchURL is the Google Scholar results page. Declared as a var so
// tests can substitute an httptest server.
var scholarSearchURL = "https://scholar.google.com/scholar"

// scholarStride is the number of results Google Scholar serves per page.
const scholarStride = 10

// Structural markers of a Google Scholar results page.
const (
	scholarResultSel   = "div.gs_ri"
	scholarTitleSel    = "h3.gs_rt"
	scholarTagSel      = "span.gs_ctg"
	scholarAuthorsSel  = "div.gs_a"
	scholarSnippetSel  = "div.gs_rs"
	scholarFooterLinks = "div.gs_fl a"
)

// Default link-text markers. They match the English interface only; pages
// served in another language yield empty citation and version fields.
const (
	DefaultCitedByMarker  = "Cited by"
	DefaultVersionsMarker = "versions"
)

// ScholarSource scrapes Google Scholar result pages. A rate-limit response
// ends the search; the caller must back off before trying again.
type ScholarSource struct {
	Client *http.Client
	Config types.ScholarConfig
	Logger logger.Logger

	// CitedByMarker and VersionsMarker select the footer links whose text
	// becomes CitationSummary and VersionsInfo.
	CitedByMarker  string
	VersionsMarker string
}

// NewScholarSource returns a ScholarSource with a client bounded by
// cfg.Timeout and the English link markers.
func NewScholarSource(cfg types.ScholarConfig, log logger.Logger) *ScholarSource {
	if log == nil {
		log = logger.NewNop()
	}
	return &ScholarSource{
		Client:         &http.Client{Timeout: cfg.Timeout},
		Config:         cfg,
		Logger:         log,
		CitedByMarker:  DefaultCitedByMarker,
		VersionsMarker: DefaultVersionsMarker,
	}
}

// Name returns the source identifier.
func (s *ScholarSource) Name() string { return types.SourceGoogleScholar }

// Search collects up to target articles matching query.
func (s *ScholarSource) Search(ctx context.Context, query string, target int, years YearRange) (Result, error) {
	return Accumulate[*goquery.Selection](ctx, &scholarPager{src: s, years: years}, strings.TrimSpace(query), target, s.loopOptions())
}

// SearchByAuthor collects articles whose author field matches name.
func (s *ScholarSource) SearchByAuthor(ctx context.Context, name string, target int, years YearRange) (Result, error) {
	if strings.TrimSpace(name) == "" {
		return Result{Outcome: Failed}, fmt.Errorf("%w: empty author name", ErrInvalidRequest)
	}
	return s.Search(ctx, "author:"+quoted(name), target, years)
}

// SearchByTitle collects articles whose title contains the phrase.
func (s *ScholarSource) SearchByTitle(ctx context.Context, title string, target int, years YearRange) (Result, error) {
	if strings.TrimSpace(title) == "" {
		return Result{Outcome: Failed}, fmt.Errorf("%w: empty title", ErrInvalidRequest)
	}
	return s.Search(ctx, "intitle:"+quoted(title), target, years)
}

func (s *ScholarSource) loopOptions() LoopOptions {
	return LoopOptions{Delay: s.Config.PageDelay, Logger: s.Logger}
}

// scholarPager binds a ScholarSource to the year bounds of one search.
type scholarPager struct {
	src   *ScholarSource
	years YearRange
}

func (p *scholarPager) Name() string { return p.src.Name() }
func (p *scholarPager) Stride() int  { return scholarStride }

func (p *scholarPager) FetchPage(ctx context.Context, query string, offset int) ([]*goquery.Selection, bool, error) {
	return p.src.FetchPage(ctx, query, offset, p.years)
}

func (p *scholarPager) Normalize(item *goquery.Selection) (types.Article, bool) {
	return p.src.Extract(item)
}

// FetchPage requests one results page and returns its result containers.
// hasMore is true whenever the page had results, since the page does not
// state a total.
func (s *ScholarSource) FetchPage(ctx context.Context, query string, offset int, years YearRange) ([]*goquery.Selection, bool, error) {
	if query == "" {
		return nil, false, fmt.Errorf("%w: empty query", ErrInvalidRequest)
	}
	if offset < 0 {
		return nil, false, fmt.Errorf("%w: negative offset %d", ErrInvalidRequest, offset)
	}

	params := url.Values{
		"q":     {query},
		"start": {strconv.Itoa(offset)},
	}
	if years.From != 0 {
		params.Set("as_ylo", strconv.Itoa(years.From))
	}
	if years.To != 0 {
		params.Set("as_yhi", strconv.Itoa(years.To))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, scholarSearchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.Config.UserAgent)

	resp, err := httputil.Do(ctx, s.Client, req)
	if err != nil {
		return nil, false, fmt.Errorf("Google Scholar request: %w", err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("parsing Google Scholar page: %w", err)
	}

	var items []*goquery.Selection
	doc.Find(scholarResultSel).Each(func(_ int, r *goquery.Selection) {
		items = append(items, r)
	})
	return items, len(items) > 0, nil
}

// Extract builds an Article from one result container. It returns false
// when the container has no title block or the title is blank.
func (s *ScholarSource) Extract(result *goquery.Selection) (types.Article, bool) {
	titleBlock := result.Find(scholarTitleSel).First()
	if titleBlock.Length() == 0 {
		return types.Article{}, false
	}
	// Work on a copy so removing the [PDF]/[HTML] tags leaves the page intact.
	titleBlock = titleBlock.Clone()
	titleBlock.Find(scholarTagSel).Remove()

	title := collapseSpace(titleBlock.Text())
	if title == "" {
		return types.Article{}, false
	}

	a := types.Article{
		Title:       title,
		AuthorsInfo: collapseSpace(result.Find(scholarAuthorsSel).First().Text()),
		Abstract:    collapseSpace(result.Find(scholarSnippetSel).First().Text()),
		Source:      types.SourceGoogleScholar,
	}
	if href, ok := titleBlock.Find("a").First().Attr("href"); ok {
		a.Link = resolveLink(href)
	}
	a.CitationSummary = footerLinkText(result, s.citedByMarker())
	a.VersionsInfo = footerLinkText(result, s.versionsMarker())
	return a, true
}

func (s *ScholarSource) citedByMarker() string {
	if s.CitedByMarker == "" {
		return DefaultCitedByMarker
	}
	return s.CitedByMarker
}

func (s *ScholarSource) versionsMarker() string {
	if s.VersionsMarker == "" {
		return DefaultVersionsMarker
	}
	return s.VersionsMarker
}

// footerLinkText returns the text of the first footer link containing
// marker, or "".
func footerLinkText(result *goquery.Selection, marker string) string {
	var found string
	result.Find(scholarFooterLinks).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		text := collapseSpace(a.Text())
		if strings.Contains(text, marker) {
			found = text
			return false
		}
		return true
	})
	return found
}

// resolveLink makes site-relative links absolute against the search page.
func resolveLink(href string) string {
	ref, err := url.Parse(href)
	if err != nil || ref.IsAbs() {
		return href
	}
	base, err := url.Parse(scholarSearchURL)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
