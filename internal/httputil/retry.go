// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by outbound clients.
package httputil

import (
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"
)

// RetryPolicy bounds DoWithRetry. MaxRetries of 0 disables retries.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration

	// BeforeAttempt, when set, runs before every attempt including retries,
	// e.g. to take a rate limiter token. An error ends the call.
	BeforeAttempt func(ctx context.Context) error
}

const defaultMaxDelay = 5 * time.Second

// Retryable reports whether a response status is worth retrying: 429 and
// every 5xx except 501 Not Implemented.
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests ||
		(status >= 500 && status != http.StatusNotImplemented)
}

// DoWithRetry executes req and retries on transport errors and retryable
// statuses with jittered exponential backoff. The nominal delay starts at
// BaseDelay and doubles each attempt, capped at MaxDelay; the actual sleep
// is drawn uniformly from [delay/2, delay]. A Retry-After header in seconds
// raises the delay up to MaxDelay.
//
// Each retried response body is drained and closed. If ctx ends during a
// wait the function returns ctx.Err(). After exhausting retries the last
// response (or transport error) is returned unchanged so the caller can
// inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, policy RetryPolicy) (*http.Response, error) {
	maxDelay := policy.MaxDelay
	if maxDelay <= 0 {
		maxDelay = defaultMaxDelay
	}

	for attempt := 0; ; attempt++ {
		if policy.BeforeAttempt != nil {
			if err := policy.BeforeAttempt(ctx); err != nil {
				return nil, err
			}
		}
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) || attempt >= policy.MaxRetries {
				return nil, err
			}
		} else if !Retryable(resp.StatusCode) || attempt >= policy.MaxRetries {
			return resp, nil
		}

		delay := backoff(policy.BaseDelay, attempt, maxDelay)
		if resp != nil {
			if ra := retryAfter(resp); ra > delay {
				delay = min(ra, maxDelay)
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// backoff returns the jittered delay for attempt (0-based).
func backoff(base time.Duration, attempt int, maxDelay time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	d := base << attempt
	if d <= 0 || d > maxDelay {
		d = maxDelay
	}
	half := d / 2
	return half + rand.N(half+1)
}

// retryAfter parses a Retry-After header given in whole seconds.
func retryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
