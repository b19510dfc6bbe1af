// SPDX-License-Identifier: MIT

// Package githubclient is the remote-source client: all
// network I/O to the code-hosting service, behind a single object carrying
// an optional authorization credential and a concurrency limiter.
package githubclient

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/esacteksab/httpcache"
	"github.com/esacteksab/httpcache/diskcache"

	"github.com/actionlock/actionlock/limiter"
)

// tokenEnvVar is the environment variable carrying the hosting service's
// credential, following GitHub's own convention.
const tokenEnvVar = "GITHUB_TOKEN" //nolint:gosec

// cacheDirName is the subdirectory of the user cache directory this client
// stores its on-disk HTTP response cache under.
const cacheDirName = "actionlock"

// CachingTransport wraps an http.RoundTripper so request handling can be
// observed or extended uniformly, whether or not a credential is configured.
type CachingTransport struct {
	Transport http.RoundTripper
}

// RoundTrip satisfies http.RoundTripper by delegating to the wrapped
// transport.
func (t *CachingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.Transport.RoundTrip(req)
}

// Client mediates all remote I/O: reference resolution, descriptor
// fetching, and archive digesting. Every outbound request is gated by its
// limiter, so it is safe to call concurrently from many resolution tasks.
type Client struct {
	gh      *github.Client
	http    *http.Client
	limiter *limiter.Limiter
}

// Option configures a Client constructed by NewClient.
type Option func(*clientConfig)

type clientConfig struct {
	token         string
	maxConcurrent int
	cacheDir      string
}

// WithToken overrides the GITHUB_TOKEN environment variable. An empty token
// leaves the environment value in place.
func WithToken(token string) Option {
	return func(c *clientConfig) {
		if token != "" {
			c.token = token
		}
	}
}

// WithMaxConcurrent overrides the default concurrency cap.
func WithMaxConcurrent(n int) Option {
	return func(c *clientConfig) { c.maxConcurrent = n }
}

// WithCacheDir overrides the on-disk cache location. Mainly useful in
// tests, where the default user cache directory would be undesirable.
func WithCacheDir(dir string) Option {
	return func(c *clientConfig) { c.cacheDir = dir }
}

// NewClient builds a Client authenticated with a token (from opts or
// GITHUB_TOKEN), backed by an on-disk HTTP response cache under the user's
// cache directory, and gated by a concurrency limiter. An empty token is
// permitted and yields unauthenticated access at a lower rate limit.
func NewClient(opts ...Option) (*Client, error) {
	cfg := clientConfig{
		token:         os.Getenv(tokenEnvVar),
		maxConcurrent: limiter.DefaultMaxConcurrent,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	cachePath := cfg.cacheDir
	if cachePath == "" {
		userCacheDir, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user cache directory: %w", err)
		}
		cachePath = filepath.Join(userCacheDir, cacheDirName)
	}
	if err := os.MkdirAll(cachePath, 0o750); err != nil { //nolint:mnd
		return nil, fmt.Errorf("could not create cache directory %q: %w", cachePath, err)
	}

	cacheTransport := httpcache.NewTransport(diskcache.New(cachePath))

	var httpClient *http.Client
	if cfg.token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.token})
		authTransport := &oauth2.Transport{
			Base:   cacheTransport,
			Source: oauth2.ReuseTokenSource(nil, ts),
		}
		httpClient = &http.Client{Transport: &CachingTransport{Transport: authTransport}}
	} else {
		httpClient = &http.Client{Transport: &CachingTransport{Transport: cacheTransport}}
	}

	return &Client{
		gh:      github.NewClient(httpClient),
		http:    httpClient,
		limiter: limiter.New(cfg.maxConcurrent),
	}, nil
}

// Transport returns the Client's configured HTTP transport, so callers can
// inspect whether it is authenticated.
func (c *Client) Transport() http.RoundTripper {
	return c.http.Transport
}

// CacheDir returns the on-disk cache directory path a default-configured
// Client would use, so a "clear cache" command can find it without
// constructing a Client.
func CacheDir() (string, error) {
	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user cache directory: %w", err)
	}
	return filepath.Join(userCacheDir, cacheDirName), nil
}

// CheckRateLimit retrieves the current API rate-limit status and reports it
// through logf. Advisory only; it never gates generate or verify.
func CheckRateLimit(ctx context.Context, c *Client, logf func(format string, args ...any)) {
	limits, resp, err := c.gh.RateLimit.Get(ctx)
	if err != nil {
		logf("could not retrieve rate limits: %v", err)
		PrintRateLimit(resp, logf)
		return
	}
	if limits != nil && limits.Core != nil {
		printRate(limits.Core, logf)
	} else {
		logf("rate limit data not available in response")
	}
}

// PrintRateLimit reports rate-limit information extracted directly from an
// API response, used as a fallback when retrieving the full RateLimit
// struct fails.
func PrintRateLimit(resp *github.Response, logf func(format string, args ...any)) {
	if resp == nil {
		printRate(nil, logf)
		return
	}
	printRate(&resp.Rate, logf)
}

func printRate(rate *github.Rate, logf func(format string, args ...any)) {
	if rate == nil {
		logf("rate limit info unavailable")
		return
	}
	resetTime := rate.Reset.Time.Local().Format("15:04:05 MST")
	logf("rate limit: %d/%d remaining, resets @ %s", rate.Remaining, rate.Limit, resetTime)

	const authenticatedLimit = 5000
	const unauthenticatedLimit = 60
	switch {
	case rate.Limit >= authenticatedLimit:
		logf("using authenticated rate limits")
	case rate.Limit <= unauthenticatedLimit:
		logf("using unauthenticated rate limits")
	}
}
