// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP helpers shared by every source: a
// single-shot request executor that classifies failures, and a pacer that
// enforces a minimum spacing between calls.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrRateLimited reports that the remote service throttled the caller
// (HTTP 429). Callers back off themselves; nothing in this package retries.
var ErrRateLimited = errors.New("rate limited by remote service")

// StatusError is returned for any non-2xx response other than 429.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned HTTP %d", e.URL, e.StatusCode)
}

// IsNotFound reports whether err is a StatusError carrying HTTP 404.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// maxDrain bounds how much of an error body is read before closing it so the
// connection can be reused.
const maxDrain = 64 << 10

// Do executes req exactly once. A 2xx response is returned to the caller,
// who must close its body. A 429 yields ErrRateLimited and any other status a
// *StatusError; in both cases the body is drained and closed here.
func Do(ctx context.Context, client *http.Client, req *http.Request) (*http.Response, error) {
	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))
	resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%s: %w", req.URL.Host, ErrRateLimited)
	}
	return nil, &StatusError{StatusCode: resp.StatusCode, URL: req.URL.Redacted()}
}
