// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"math"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pdiddy/profile-engine/pkg/types"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// HTTP 429 responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 10 * time.Second

const (
	defaultMaxRetries = 5
	defaultTimeout    = 60 * time.Second
)

// NewClient returns a resty client configured from cfg. Requests answered
// with HTTP 429 (Too Many Requests) are retried with exponential backoff:
// the delay starts at RetryBaseDelay and doubles each attempt (10 s, 20 s,
// 40 s, ...). When cfg.RateLimitRetries is 0 the default (5) is used. After
// exhausting retries the last 429 response is returned so the caller can
// inspect it. Context cancellation during a backoff wait aborts the request.
func NewClient(cfg types.HTTPConfig) *resty.Client {
	maxRetries := cfg.RateLimitRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	base := RetryBaseDelay
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(maxRetries).
		SetRetryWaitTime(base).
		SetRetryMaxWaitTime(backoff(base, maxRetries)).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err == nil && r != nil && r.StatusCode() == http.StatusTooManyRequests
		}).
		SetRetryAfter(func(_ *resty.Client, r *resty.Response) (time.Duration, error) {
			attempt := 1
			if r != nil && r.Request != nil && r.Request.Attempt > 0 {
				attempt = r.Request.Attempt
			}
			return backoff(base, attempt-1), nil
		})

	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}
	return client
}

// backoff returns base * 2^attempt.
func backoff(base time.Duration, attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt))) * base
}
