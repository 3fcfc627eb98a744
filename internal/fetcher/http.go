package fetcher

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/paddock/internal/resilience"
)

// Options configures the HTTP fetcher.
type Options struct {
	UserAgent string
	// Timeout bounds each attempt, including reading the body.
	Timeout time.Duration
	Retry   resilience.RetryPolicy
	Breaker resilience.BreakerConfig
	// Limits holds per-host token buckets; hosts not listed use DefaultLimit.
	Limits       map[string]Limit
	DefaultLimit Limit
	// Client overrides the underlying HTTP client (tests).
	Client *http.Client
}

// HTTPFetcher implements Getter with per-host rate limiting, a per-host
// circuit breaker and bounded retries of transient failures.
type HTTPFetcher struct {
	client   *http.Client
	opts     Options
	breakers *resilience.Breakers

	mu       sync.Mutex
	limiters map[string]*AdaptiveLimiter
}

var _ Getter = (*HTTPFetcher)(nil)

// New creates an HTTPFetcher.
func New(opts Options) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "paddock/1.0"
	}
	if opts.DefaultLimit.PerSecond <= 0 {
		opts.DefaultLimit = Limit{PerSecond: 2, Burst: 1}
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	limiters := make(map[string]*AdaptiveLimiter, len(opts.Limits))
	for host, l := range opts.Limits {
		limiters[host] = NewAdaptiveLimiter(host, l)
	}

	return &HTTPFetcher{
		client:   client,
		opts:     opts,
		breakers: resilience.NewBreakers(opts.Breaker),
		limiters: limiters,
	}
}

// LimiterFor returns the limiter for host, creating one with the default
// limit on first use.
func (f *HTTPFetcher) LimiterFor(host string) *AdaptiveLimiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	lim, ok := f.limiters[host]
	if !ok {
		lim = NewAdaptiveLimiter(host, f.opts.DefaultLimit)
		f.limiters[host] = lim
	}
	return lim
}

// Breakers exposes the per-host circuit breakers.
func (f *HTTPFetcher) Breakers() *resilience.Breakers {
	return f.breakers
}

// Get issues a GET for rawURL. Every attempt first takes a rate limiter
// permit. On success the caller owns the returned body.
func (f *HTTPFetcher) Get(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: eris.Wrap(err, "parse url")}
	}

	lim := f.LimiterFor(u.Host)
	breaker := f.breakers.For(u.Host)

	policy := f.opts.Retry
	if policy.OnRetry == nil {
		policy.OnRetry = resilience.RetryLogger(u.Host, u.Path)
	}

	body, err := resilience.Retry(ctx, policy, func(ctx context.Context) (io.ReadCloser, error) {
		if err := lim.Wait(ctx); err != nil {
			return nil, &NetworkError{URL: rawURL, Err: eris.Wrap(err, "rate limiter wait")}
		}
		return resilience.Call(ctx, breaker, func(ctx context.Context) (io.ReadCloser, error) {
			return f.do(ctx, rawURL, lim)
		})
	})
	if err != nil {
		var ne *NetworkError
		if errors.As(err, &ne) {
			return nil, err
		}
		return nil, &NetworkError{URL: rawURL, Err: err}
	}
	return body, nil
}

func (f *HTTPFetcher) do(ctx context.Context, rawURL string, lim *AdaptiveLimiter) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: eris.Wrap(err, "create request")}
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}

	zap.L().Debug("upstream response",
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		lim.OnSuccess()
		return resp.Body, nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	_ = resp.Body.Close()

	statusErr := eris.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	if resp.StatusCode == http.StatusTooManyRequests {
		lim.OnRateLimit()
	}
	if resilience.IsTransientStatus(resp.StatusCode) {
		statusErr = resilience.NewTransientError(statusErr, resp.StatusCode)
	}
	return nil, &NetworkError{
		URL:         rawURL,
		StatusCode:  resp.StatusCode,
		RateLimited: resp.StatusCode == http.StatusTooManyRequests,
		Err:         statusErr,
	}
}
