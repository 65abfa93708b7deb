// Package httputil provides retry support for outbound HTTP requests.
//
// # Overview
//
// The logo fetcher downloads remote images before a render. Transient
// failures there should not fail the whole render, so requests are wrapped
// with automatic retry:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// # Retry
//
// Wrap transient failures in [RetryableError] and execute through [Retry]:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    ...
//	})
//
// Non-retryable errors (4xx other than 429, validation failures) are
// returned immediately. The delay doubles after each failed attempt, and
// cancellation of ctx aborts the backoff wait.
package httputil
