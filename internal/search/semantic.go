// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/scholar-search/internal/httputil"
	"github.com/pdiddy/scholar-search/internal/logger"
	"github.com/pdiddy/scholar-search/pkg/types"
)

// semanticAPIBase is the Semantic Scholar Graph API root. Declared as a var
// so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1"

// semanticMaxLimit is the largest page the API serves.
const semanticMaxLimit = 100

var semanticFields = strings.Join([]string{
	"paperId", "title", "abstract", "authors", "year",
	"citationCount", "url", "venue", "publicationDate",
	"publicationTypes", "fieldsOfStudy",
}, ",")

// SemanticScholarSource queries the Semantic Scholar Graph API. Every HTTP
// call, including author lookups, waits on Pacer first.
type SemanticScholarSource struct {
	Client *http.Client
	Config types.SemanticScholarConfig
	Logger logger.Logger
	Pacer  *httputil.Pacer
}

// NewSemanticScholarSource returns a source whose pacer spacing follows
// cfg.MinCallInterval.
func NewSemanticScholarSource(cfg types.SemanticScholarConfig, log logger.Logger) *SemanticScholarSource {
	if log == nil {
		log = logger.NewNop()
	}
	return &SemanticScholarSource{
		Client: &http.Client{Timeout: cfg.Timeout},
		Config: cfg,
		Logger: log,
		Pacer:  httputil.NewPacer(cfg.MinCallInterval()),
	}
}

// Name returns the source identifier.
func (s *SemanticScholarSource) Name() string { return types.SourceSemanticScholar }

// Search collects up to target papers matching query. Year bounds are
// appended to the query text as a "year:" token; filtering is left to the
// server.
func (s *SemanticScholarSource) Search(ctx context.Context, query string, target int, years YearRange) (Result, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return Result{Outcome: Failed}, fmt.Errorf("%w: empty query", ErrInvalidRequest)
	}
	if tok := years.Token(); tok != "" {
		q += " year:" + tok
	}
	pager := &semanticPager{
		src:       s,
		path:      "/paper/search",
		sendQuery: true,
		limit:     pageLimit(target),
	}
	return Accumulate[json.RawMessage](ctx, pager, q, target, s.loopOptions())
}

// SearchByTitle searches for the title as a quoted phrase.
func (s *SemanticScholarSource) SearchByTitle(ctx context.Context, title string, target int, years YearRange) (Result, error) {
	if strings.TrimSpace(title) == "" {
		return Result{Outcome: Failed}, fmt.Errorf("%w: empty title", ErrInvalidRequest)
	}
	return s.Search(ctx, quoted(title), target, years)
}

// SearchByAuthor resolves name to the first matching author and collects
// that author's papers. An unknown author yields an empty result after a
// single request.
func (s *SemanticScholarSource) SearchByAuthor(ctx context.Context, name string, target int, years YearRange) (Result, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Result{Outcome: Failed}, fmt.Errorf("%w: empty author name", ErrInvalidRequest)
	}
	if target <= 0 {
		return Result{Outcome: Failed}, fmt.Errorf("%w: target must be positive, got %d", ErrInvalidRequest, target)
	}

	authorID, err := s.ResolveAuthor(ctx, name)
	if err != nil {
		return Result{Outcome: Failed, Pages: 1}, fmt.Errorf("%s: resolving author %q: %w", s.Name(), name, err)
	}
	if authorID == "" {
		s.Logger.Info("author not found", logger.String("author", name))
		return Result{Outcome: Exhausted, Pages: 1}, nil
	}

	pager := &semanticPager{
		src:   s,
		path:  "/author/" + url.PathEscape(authorID) + "/papers",
		limit: pageLimit(target),
	}
	if tok := years.Token(); tok != "" {
		pager.extra = url.Values{"year": {tok}}
	}
	res, err := Accumulate[json.RawMessage](ctx, pager, name, target, s.loopOptions())
	res.Pages++
	return res, err
}

// ResolveAuthor returns the ID of the first author matching name, or "" if
// there is none.
func (s *SemanticScholarSource) ResolveAuthor(ctx context.Context, name string) (string, error) {
	params := url.Values{
		"query": {name},
		"limit": {"1"},
	}
	var ar semanticAuthorSearch
	if err := s.getJSON(ctx, "/author/search", params, &ar); err != nil {
		return "", err
	}
	if len(ar.Data) == 0 {
		return "", nil
	}
	return ar.Data[0].AuthorID, nil
}

// GetPaper fetches one paper by its Semantic Scholar ID. A missing paper, or
// one without a title, returns nil and no error.
func (s *SemanticScholarSource) GetPaper(ctx context.Context, paperID string) (*types.Article, error) {
	paperID = strings.TrimSpace(paperID)
	if paperID == "" {
		return nil, fmt.Errorf("%w: empty paper ID", ErrInvalidRequest)
	}

	var raw json.RawMessage
	err := s.getJSON(ctx, paperPath(paperID), url.Values{"fields": {semanticFields}}, &raw)
	if httputil.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: fetching paper %s: %w", s.Name(), paperID, err)
	}

	a, ok := NormalizePaper(raw)
	if !ok {
		s.Logger.Debug("paper record without title", logger.String("paper_id", paperID))
		return nil, nil
	}
	return &a, nil
}

// paperPath escapes each segment of a paper ID. External IDs such as
// DOI:10.18653/v1/N18-3011 keep their slashes.
func paperPath(paperID string) string {
	segments := strings.Split(paperID, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return "/paper/" + strings.Join(segments, "/")
}

func (s *SemanticScholarSource) loopOptions() LoopOptions {
	return LoopOptions{Delay: s.Config.PageDelay, Logger: s.Logger}
}

// getJSON performs one paced GET against path and decodes the body into v.
func (s *SemanticScholarSource) getJSON(ctx context.Context, path string, params url.Values, v any) error {
	if s.Pacer != nil {
		if err := s.Pacer.Wait(ctx); err != nil {
			return fmt.Errorf("waiting for rate limit: %w", err)
		}
	}

	reqURL := semanticAPIBase + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.Config.UserAgent)
	if s.Config.APIKey != "" {
		req.Header.Set("x-api-key", s.Config.APIKey)
	}

	resp, err := httputil.Do(ctx, s.Client, req)
	if err != nil {
		return fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}
	return nil
}

// pageLimit is the per-page limit for a search of target results.
func pageLimit(target int) int {
	if target > semanticMaxLimit {
		return semanticMaxLimit
	}
	if target < 1 {
		return 1
	}
	return target
}

// semanticPager adapts one paginated endpoint to Source. Papers stay as raw
// JSON until Normalize so one malformed record cannot spoil its page.
type semanticPager struct {
	src       *SemanticScholarSource
	path      string
	sendQuery bool
	limit     int
	extra     url.Values
}

func (p *semanticPager) Name() string { return p.src.Name() }
func (p *semanticPager) Stride() int  { return p.limit }

func (p *semanticPager) Normalize(raw json.RawMessage) (types.Article, bool) {
	return NormalizePaper(raw)
}

func (p *semanticPager) FetchPage(ctx context.Context, query string, offset int) ([]json.RawMessage, bool, error) {
	if query == "" {
		return nil, false, fmt.Errorf("%w: empty query", ErrInvalidRequest)
	}
	if offset < 0 {
		return nil, false, fmt.Errorf("%w: negative offset %d", ErrInvalidRequest, offset)
	}

	params := url.Values{}
	for k, v := range p.extra {
		params[k] = v
	}
	if p.sendQuery {
		params.Set("query", query)
	}
	params.Set("offset", strconv.Itoa(offset))
	params.Set("limit", strconv.Itoa(p.limit))
	params.Set("fields", semanticFields)

	var lr semanticListResponse
	if err := p.src.getJSON(ctx, p.path, params, &lr); err != nil {
		return nil, false, err
	}
	return lr.Data, lr.Next != nil, nil
}

// Semantic Scholar API JSON structures.
type semanticListResponse struct {
	Total  int               `json:"total"`
	Offset int               `json:"offset"`
	Next   *int              `json:"next"`
	Data   []json.RawMessage `json:"data"`
}

type semanticAuthorSearch struct {
	Total int              `json:"total"`
	Data  []semanticAuthor `json:"data"`
}
