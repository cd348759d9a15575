// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scholar-search/internal/httputil"
	"github.com/pdiddy/scholar-search/internal/logger"
	"github.com/pdiddy/scholar-search/pkg/types"
)

const scholarFixture = `<html><body><div id="gs_res_ccl_mid">
<div class="gs_r gs_or gs_scl">
  <div class="gs_ri">
    <h3 class="gs_rt"><span class="gs_ctg">[PDF]</span> <a href="https://example.org/attention.pdf">Attention  is all
      you need</a></h3>
    <div class="gs_a">A Vaswani, N Shazeer, N Parmar - Advances in neural information processing systems, 2017 - proceedings.neurips.cc</div>
    <div class="gs_rs">The dominant sequence transduction models are based on complex recurrent networks.</div>
    <div class="gs_fl"><a href="#">Save</a> <a href="/scholar?cites=1">Cited by 45231</a> <a href="/scholar?q=related:1">Related articles</a> <a href="/scholar?cluster=1">All 34 versions</a></div>
  </div>
</div>
<div class="gs_r gs_or gs_scl">
  <div class="gs_ri">
    <div class="gs_a">Nobody - no title here</div>
  </div>
</div>
<div class="gs_r gs_or gs_scl">
  <div class="gs_ri">
    <h3 class="gs_rt"><span class="gs_ctg">[CITATION]</span> Deep residual learning</h3>
    <div class="gs_a">K He, X Zhang - 2016</div>
  </div>
</div>
</div></body></html>`

// firstResults parses html and returns its result containers.
func firstResults(t *testing.T, html string) []*goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	var out []*goquery.Selection
	doc.Find(scholarResultSel).Each(func(_ int, s *goquery.Selection) {
		out = append(out, s)
	})
	return out
}

func newTestScholar(t *testing.T, ts *httptest.Server) *ScholarSource {
	t.Helper()
	orig := scholarSearchURL
	scholarSearchURL = ts.URL + "/scholar"
	t.Cleanup(func() { scholarSearchURL = orig })

	cfg := types.DefaultConfig().Scholar
	cfg.PageDelay = 0
	return &ScholarSource{
		Client: ts.Client(),
		Config: cfg,
		Logger: logger.NewNop(),
	}
}

func TestScholarExtract(t *testing.T) {
	src := &ScholarSource{}
	results := firstResults(t, scholarFixture)
	require.Len(t, results, 3)

	a, ok := src.Extract(results[0])
	require.True(t, ok)
	assert.Equal(t, "Attention is all you need", a.Title)
	assert.Equal(t, "https://example.org/attention.pdf", a.Link)
	assert.Equal(t, "A Vaswani, N Shazeer, N Parmar - Advances in neural information processing systems, 2017 - proceedings.neurips.cc", a.AuthorsInfo)
	assert.Equal(t, "The dominant sequence transduction models are based on complex recurrent networks.", a.Abstract)
	assert.Equal(t, "Cited by 45231", a.CitationSummary)
	assert.Equal(t, "All 34 versions", a.VersionsInfo)
	assert.Equal(t, types.SourceGoogleScholar, a.Source)

	_, ok = src.Extract(results[1])
	assert.False(t, ok, "container without a title is dropped")

	c, ok := src.Extract(results[2])
	require.True(t, ok)
	assert.Equal(t, "Deep residual learning", c.Title, "classification tag stripped")
	assert.Empty(t, c.Link)
	assert.Empty(t, c.Abstract)
	assert.Empty(t, c.CitationSummary)
	assert.Empty(t, c.VersionsInfo)
}

func TestScholarExtractLeavesPageIntact(t *testing.T) {
	results := firstResults(t, scholarFixture)
	src := &ScholarSource{}
	_, _ = src.Extract(results[0])
	assert.Equal(t, 1, results[0].Find(scholarTagSel).Length())
}

func TestScholarExtractBlankTitle(t *testing.T) {
	html := `<div class="gs_ri"><h3 class="gs_rt"><span class="gs_ctg">[PDF]</span>   </h3></div>`
	results := firstResults(t, html)
	require.Len(t, results, 1)
	_, ok := (&ScholarSource{}).Extract(results[0])
	assert.False(t, ok)
}

func TestScholarExtractCustomMarkers(t *testing.T) {
	html := `<div class="gs_ri"><h3 class="gs_rt">Titre</h3>
<div class="gs_fl"><a href="#">Cité 12 fois</a> <a href="#">Toutes les 3 versions</a></div></div>`
	src := &ScholarSource{CitedByMarker: "Cité", VersionsMarker: "versions"}
	a, ok := src.Extract(firstResults(t, html)[0])
	require.True(t, ok)
	assert.Equal(t, "Cité 12 fois", a.CitationSummary)
	assert.Equal(t, "Toutes les 3 versions", a.VersionsInfo)
}

func TestScholarRelativeLinkResolved(t *testing.T) {
	html := `<div class="gs_ri"><h3 class="gs_rt"><a href="/citations?user=abc">Profile paper</a></h3></div>`
	a, ok := (&ScholarSource{}).Extract(firstResults(t, html)[0])
	require.True(t, ok)
	assert.Equal(t, "https://scholar.google.com/citations?user=abc", a.Link)
}

func TestScholarFetchPageRequest(t *testing.T) {
	var got *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		fmt.Fprint(w, scholarFixture)
	}))
	defer ts.Close()
	src := newTestScholar(t, ts)

	items, hasMore, err := src.FetchPage(context.Background(), "machine learning", 20, YearRange{From: 2020, To: 2023})
	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.True(t, hasMore)

	require.NotNil(t, got)
	assert.Equal(t, "/scholar", got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, "machine learning", q.Get("q"))
	assert.Equal(t, "20", q.Get("start"))
	assert.Equal(t, "2020", q.Get("as_ylo"))
	assert.Equal(t, "2023", q.Get("as_yhi"))
	assert.Equal(t, types.DefaultBrowserUserAgent, got.Header.Get("User-Agent"))
}

func TestScholarFetchPageOpenYears(t *testing.T) {
	var raw string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw = r.URL.RawQuery
		fmt.Fprint(w, `<html></html>`)
	}))
	defer ts.Close()
	src := newTestScholar(t, ts)

	items, hasMore, err := src.FetchPage(context.Background(), "q", 0, YearRange{From: 2021})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.False(t, hasMore)
	assert.Contains(t, raw, "as_ylo=2021")
	assert.NotContains(t, raw, "as_yhi")
}

func TestScholarSearchStopsAtTarget(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, scholarFixture)
	}))
	defer ts.Close()
	src := newTestScholar(t, ts)

	res, err := src.Search(context.Background(), "test", 2, YearRange{})
	require.NoError(t, err)
	require.Len(t, res.Articles, 2)
	assert.Equal(t, "Attention is all you need", res.Articles[0].Title)
	assert.Equal(t, "Deep residual learning", res.Articles[1].Title)
	assert.Equal(t, Done, res.Outcome)
	assert.Equal(t, int32(1), calls.Load())
}

func TestScholarSearchPagesByTen(t *testing.T) {
	var starts []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		starts = append(starts, r.URL.Query().Get("start"))
		if len(starts) > 2 {
			fmt.Fprint(w, `<html><body></body></html>`)
			return
		}
		fmt.Fprint(w, scholarFixture)
	}))
	defer ts.Close()
	src := newTestScholar(t, ts)

	res, err := src.Search(context.Background(), "test", 10, YearRange{})
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "10", "20"}, starts)
	assert.Len(t, res.Articles, 4)
	assert.Equal(t, Exhausted, res.Outcome)
}

func TestScholarRateLimitEndsSearch(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) > 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, scholarFixture)
	}))
	defer ts.Close()
	src := newTestScholar(t, ts)

	res, err := src.Search(context.Background(), "test", 10, YearRange{})
	require.Error(t, err)
	assert.ErrorIs(t, err, httputil.ErrRateLimited)
	assert.Equal(t, Failed, res.Outcome)
	assert.Len(t, res.Articles, 2, "partial results kept")
	assert.Equal(t, int32(2), calls.Load(), "no retry after 429")
}

func TestScholarServerErrorEndsSearch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()
	src := newTestScholar(t, ts)

	res, err := src.Search(context.Background(), "test", 10, YearRange{})
	require.Error(t, err)
	var se *httputil.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
	assert.Empty(t, res.Articles)
}

func TestScholarQueryOperators(t *testing.T) {
	var queries []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query().Get("q"))
		fmt.Fprint(w, `<html></html>`)
	}))
	defer ts.Close()
	src := newTestScholar(t, ts)
	ctx := context.Background()

	_, err := src.SearchByAuthor(ctx, " Geoffrey Hinton ", 5, YearRange{})
	require.NoError(t, err)
	_, err = src.SearchByTitle(ctx, "attention is all you need", 5, YearRange{})
	require.NoError(t, err)

	assert.Equal(t, []string{`author:"Geoffrey Hinton"`, `intitle:"attention is all you need"`}, queries)
}

func TestScholarRejectsBlankInput(t *testing.T) {
	src := &ScholarSource{Logger: logger.NewNop()}
	ctx := context.Background()

	_, err := src.Search(ctx, "   ", 5, YearRange{})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = src.SearchByAuthor(ctx, "", 5, YearRange{})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = src.SearchByTitle(ctx, " ", 5, YearRange{})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestScholarDelayBetweenPages(t *testing.T) {
	var stamps []time.Time
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stamps = append(stamps, time.Now())
		fmt.Fprint(w, scholarFixture)
	}))
	defer ts.Close()
	src := newTestScholar(t, ts)
	src.Config.PageDelay = 50 * time.Millisecond

	_, err := src.Search(context.Background(), "test", 4, YearRange{})
	require.NoError(t, err)
	require.Len(t, stamps, 2)
	assert.GreaterOrEqual(t, stamps[1].Sub(stamps[0]), 50*time.Millisecond)
}
