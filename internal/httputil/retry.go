// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across pipeline stages.
package httputil

import (
	"context"
	"io"
	"math"
	"net/http"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// retryable responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

const defaultMaxRetries = 4

// retryable reports whether a status code warrants a retry. INSPIRE
// answers bursts with 429 and occasionally 502/503 under load.
func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// DoWithRetry executes an HTTP request and retries on rate-limit and
// transient upstream errors with exponential backoff. The delay starts at
// RetryBaseDelay and doubles each attempt: 2 s, 4 s, 8 s, 16 s.
//
// When maxRetries is 0 the default (4) is used. Before each retry the
// response body is drained and closed. If the context is cancelled during
// a backoff wait the function returns ctx.Err(). After exhausting retries
// the last response is returned so the caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		if !retryable(resp.StatusCode) {
			return resp, nil
		}

		// Exhausted retries; return the response as-is.
		if attempt >= maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}
