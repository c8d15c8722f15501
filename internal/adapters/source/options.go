// Package source defines the upstream data source interface and errors.
package source

import (
	"net/http"
	"time"
)

// ClientOption applies a configuration option to the HTTP client source.
type ClientOption func(*Client)

// WithTimeout sets the per-request timeout for upstream calls.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client. The caller owns the
// client's timeout when this option is used.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

// FixtureOption applies a configuration option to the fixture source.
type FixtureOption func(*Fixture)

// WithRosterSize bounds the generated roster size range.
func WithRosterSize(minSize, maxSize int) FixtureOption {
	return func(f *Fixture) {
		if minSize > 0 && maxSize >= minSize {
			f.minRoster = minSize
			f.maxRoster = maxSize
		}
	}
}

// WithSummaryCoverage sets the fraction of the roster that has a pick
// summary, in (0, 1]. The remainder exercises the zero-fill path.
func WithSummaryCoverage(coverage float64) FixtureOption {
	return func(f *Fixture) {
		if coverage > 0 && coverage <= 1 {
			f.coverage = coverage
		}
	}
}

// WithFixtureLatency sets the simulated upstream latency range.
func WithFixtureLatency(minLatency, maxLatency time.Duration) FixtureOption {
	return func(f *Fixture) {
		if minLatency > 0 && maxLatency > minLatency {
			f.minLatency = minLatency
			f.maxLatency = maxLatency
		}
	}
}
