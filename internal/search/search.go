// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search retrieves article metadata from Google Scholar and Semantic
// Scholar and normalizes it into types.Article records.
//
// Each source implements Source. The shared Accumulate loop pages through a
// source until it has the requested number of articles, the source runs dry,
// or a fetch fails.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/scholar-search/pkg/types"
)

// Source is one paginated search backend. T is the raw record type the
// backend produces before normalization.
type Source[T any] interface {
	// Name identifies the source in logs and errors.
	Name() string

	// FetchPage performs exactly one request for the page starting at
	// offset. It returns the raw items on the page and whether the backend
	// reports more pages. Zero items with a nil error means no results.
	FetchPage(ctx context.Context, query string, offset int) (items []T, hasMore bool, err error)

	// Normalize converts one raw item. It returns false when the item has
	// no usable title; such items are skipped.
	Normalize(item T) (types.Article, bool)

	// Stride is the fixed offset advance between pages.
	Stride() int
}

// YearRange bounds publication years. A zero bound is open.
type YearRange struct {
	From int
	To   int
}

// IsZero reports whether neither bound is set.
func (y YearRange) IsZero() bool { return y.From == 0 && y.To == 0 }

// Normalized swaps inverted bounds and drops bounds outside
// 1900..maxYear. It returns the adjusted range and any problems found so the
// caller can report them.
func (y YearRange) Normalized(maxYear int) (YearRange, []string) {
	var warnings []string
	valid := func(v int, name string) int {
		if v == 0 {
			return 0
		}
		if v < 1900 || v > maxYear {
			warnings = append(warnings, fmt.Sprintf("%s year %d outside 1900-%d, ignoring it", name, v, maxYear))
			return 0
		}
		return v
	}
	out := YearRange{From: valid(y.From, "from"), To: valid(y.To, "to")}
	if out.From != 0 && out.To != 0 && out.From > out.To {
		warnings = append(warnings, fmt.Sprintf("from year %d is after to year %d, swapping them", out.From, out.To))
		out.From, out.To = out.To, out.From
	}
	return out, warnings
}

// Token renders the range as "2020-2024", "2020-" or "-2024". It returns ""
// for an open range.
func (y YearRange) Token() string {
	switch {
	case y.From != 0 && y.To != 0:
		return fmt.Sprintf("%d-%d", y.From, y.To)
	case y.From != 0:
		return fmt.Sprintf("%d-", y.From)
	case y.To != 0:
		return fmt.Sprintf("-%d", y.To)
	default:
		return ""
	}
}

// CurrentYear is the upper bound used when validating year input.
func CurrentYear() int { return time.Now().Year() }

// collapseSpace trims s and replaces every run of whitespace with one space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// quoted wraps s in double quotes for phrase matching.
func quoted(s string) string {
	return `"` + strings.TrimSpace(s) + `"`
}
