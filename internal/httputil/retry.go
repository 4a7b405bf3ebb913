// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// HTTP 429 responses and on retryable transport errors. Tests override
// this to avoid real sleeps.
var RetryBaseDelay = 10 * time.Second

const defaultMaxRetries = 5

// ErrTransportExhausted wraps the last transport error seen once retries
// are exhausted, so callers can distinguish "gave up after retrying" from
// a first-attempt failure while still unwrapping to the underlying cause.
var ErrTransportExhausted = errors.New("transport error: retries exhausted")

// DoWithRetry executes an HTTP request and retries on HTTP 429 (Too Many
// Requests) and on retryable transport failures (timeouts, connection
// resets — anything net.Error reports, or a temporary DNS failure) with
// exponential backoff. The delay starts at RetryBaseDelay (10s) and
// doubles each attempt: 10s, 20s, 40s, 80s, 160s.
//
// When maxRetries is 0 the default (5) is used. On each 429 the response
// body is drained and closed before sleeping. If the context is cancelled
// during a backoff wait the function returns ctx.Err(). After exhausting
// retries on 429 the last response is returned so the caller can inspect
// it; after exhausting retries on a transport error, the last error is
// returned wrapped in ErrTransportExhausted.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			if !isRetryableTransportErr(err) || attempt >= maxRetries {
				if isRetryableTransportErr(err) {
					return nil, fmt.Errorf("%w: %v", ErrTransportExhausted, err)
				}
				return nil, err
			}
			if waitErr := backoff(ctx, attempt); waitErr != nil {
				return nil, waitErr
			}
			continue
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		// Exhausted retries — return the 429 response as-is.
		if attempt >= maxRetries {
			return resp, nil
		}

		// Drain and close the body before retrying.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		fmt.Fprintf(io.Discard, "rate limited, retrying (attempt %d/%d)\n", attempt+1, maxRetries)

		if waitErr := backoff(ctx, attempt); waitErr != nil {
			return nil, waitErr
		}
	}
}

// isRetryableTransportErr reports whether err looks like a transient
// network failure worth retrying: a timeout, a temporary error, or a
// connection-level net.OpError. Context cancellation is never retryable.
func isRetryableTransportErr(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

func backoff(ctx context.Context, attempt int) error {
	delay := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}
