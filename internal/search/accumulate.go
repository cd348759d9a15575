// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pdiddy/scholar-search/internal/logger"
	"github.com/pdiddy/scholar-search/pkg/types"
)

// Outcome is the terminal state of an accumulation run.
type Outcome int

const (
	// Done means the target count was reached.
	Done Outcome = iota
	// Exhausted means the source ran out of results before the target.
	// It is not an error.
	Exhausted
	// Failed means a fetch failed. The articles gathered before the
	// failure are still returned.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Done:
		return "done"
	case Exhausted:
		return "exhausted"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Result is what Accumulate returns.
type Result struct {
	Articles []types.Article
	Outcome  Outcome
	// Pages is the number of fetches issued.
	Pages int
	// Dropped counts raw items that failed normalization.
	Dropped int
}

// WaitFunc blocks for d or until ctx is done.
type WaitFunc func(ctx context.Context, d time.Duration) error

// LoopOptions configure Accumulate.
type LoopOptions struct {
	// Delay is the politeness wait before every fetch after the first.
	Delay time.Duration
	// Wait performs the delay. Defaults to a context-aware timer.
	Wait WaitFunc
	// Logger receives per-page diagnostics. Defaults to a no-op logger.
	Logger logger.Logger
}

// SleepContext waits for d, returning early with ctx.Err() if ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ErrInvalidRequest is returned before any fetch when the query is empty or
// the target is not positive.
var ErrInvalidRequest = errors.New("invalid search request")

// Accumulate pages through src until target articles have been collected,
// the source is exhausted, or a fetch fails. Requests are strictly
// sequential. On failure the articles collected so far are returned together
// with the error.
func Accumulate[T any](ctx context.Context, src Source[T], query string, target int, opts LoopOptions) (Result, error) {
	if query == "" {
		return Result{Outcome: Failed}, fmt.Errorf("%w: empty query", ErrInvalidRequest)
	}
	if target <= 0 {
		return Result{Outcome: Failed}, fmt.Errorf("%w: target must be positive, got %d", ErrInvalidRequest, target)
	}
	if opts.Wait == nil {
		opts.Wait = SleepContext
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	log = log.With(logger.String("source", src.Name()))

	res := Result{Articles: make([]types.Article, 0, target)}
	offset := 0

	for {
		if res.Pages > 0 {
			if err := opts.Wait(ctx, opts.Delay); err != nil {
				res.Outcome = Failed
				return res, fmt.Errorf("%s: waiting before offset %d: %w", src.Name(), offset, err)
			}
		}

		items, hasMore, err := src.FetchPage(ctx, query, offset)
		res.Pages++
		if err != nil {
			res.Outcome = Failed
			log.Warn("page fetch failed", logger.Int("offset", offset), logger.Error(err))
			return res, fmt.Errorf("%s: fetching offset %d: %w", src.Name(), offset, err)
		}
		if len(items) == 0 {
			res.Outcome = Exhausted
			log.Debug("no more results", logger.Int("offset", offset), logger.Int("collected", len(res.Articles)))
			return res, nil
		}

		for _, item := range items {
			a, ok := src.Normalize(item)
			if !ok {
				res.Dropped++
				continue
			}
			res.Articles = append(res.Articles, a)
			if len(res.Articles) >= target {
				res.Outcome = Done
				log.Debug("target reached", logger.Int("pages", res.Pages), logger.Int("dropped", res.Dropped))
				return res, nil
			}
		}

		log.Debug("page accumulated",
			logger.Int("offset", offset),
			logger.Int("items", len(items)),
			logger.Int("collected", len(res.Articles)))

		if !hasMore {
			res.Outcome = Exhausted
			return res, nil
		}
		offset += src.Stride()
	}
}
