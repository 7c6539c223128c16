package infra

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// maxBodyBytes caps how much of a response body is buffered.
const maxBodyBytes = 32 << 20

// HTTPStatusError reports a response with a status code of 400 or above.
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("GET %s: HTTP %d: %s", e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.StatusCode)
}

// Retryable reports whether the status is worth retrying.
func (e *HTTPStatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// FetchObserver receives one callback per completed GET.
type FetchObserver interface {
	ObserveFetch(host string, status int, elapsed time.Duration, err error)
}

// BreakerOptions configures the per-host circuit breaker.
type BreakerOptions struct {
	ConsecutiveFailures uint32
	MinRequests         uint32
	FailureRatio        float64
	Interval            time.Duration
	Timeout             time.Duration
}

// ClientOptions holds options for creating a new Client.
type ClientOptions struct {
	Timeout         time.Duration
	RequestsPerSec  float64
	Burst           int
	MaxRetries      uint64
	RetryInterval   time.Duration
	MaxRetryElapsed time.Duration
	UserAgent       string
	Breaker         BreakerOptions
}

// DefaultClientOptions returns conservative defaults for public data APIs.
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		Timeout:         15 * time.Second,
		RequestsPerSec:  5,
		Burst:           5,
		MaxRetries:      3,
		RetryInterval:   250 * time.Millisecond,
		MaxRetryElapsed: 30 * time.Second,
		UserAgent:       "Mozilla/5.0 (compatible; marketpulse/1.0)",
		Breaker: BreakerOptions{
			ConsecutiveFailures: 3,
			MinRequests:         20,
			FailureRatio:        0.05,
			Interval:            60 * time.Second,
			Timeout:             60 * time.Second,
		},
	}
}

// Client is an HTTP GET client with rate limiting, exponential-backoff
// retries and a circuit breaker per host.
type Client struct {
	http     *http.Client
	limiter  *rate.Limiter
	opts     ClientOptions
	log      zerolog.Logger
	observer FetchObserver

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

// NewClient creates a new Client. Zero options fall back to
// DefaultClientOptions.
func NewClient(opts ClientOptions, log zerolog.Logger) *Client {
	def := DefaultClientOptions()
	if opts.Timeout == 0 {
		opts.Timeout = def.Timeout
	}
	if opts.RequestsPerSec == 0 {
		opts.RequestsPerSec = def.RequestsPerSec
	}
	if opts.Burst == 0 {
		opts.Burst = def.Burst
	}
	if opts.RetryInterval == 0 {
		opts.RetryInterval = def.RetryInterval
	}
	if opts.MaxRetryElapsed == 0 {
		opts.MaxRetryElapsed = def.MaxRetryElapsed
	}
	if opts.UserAgent == "" {
		opts.UserAgent = def.UserAgent
	}
	if opts.Breaker.ConsecutiveFailures == 0 {
		opts.Breaker = def.Breaker
	}

	return &Client{
		http:     &http.Client{Timeout: opts.Timeout},
		limiter:  rate.NewLimiter(rate.Limit(opts.RequestsPerSec), opts.Burst),
		opts:     opts,
		log:      log.With().Str("component", "http").Logger(),
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

// SetObserver installs a fetch observer, typically the metrics recorder.
func (c *Client) SetObserver(o FetchObserver) { c.observer = o }

func (c *Client) breaker(host string) *gobreaker.CircuitBreaker {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.breakers[host]; ok {
		return b
	}
	bo := c.opts.Breaker
	st := gobreaker.Settings{
		Name:     host,
		Interval: bo.Interval,
		Timeout:  bo.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= bo.ConsecutiveFailures {
				return true
			}
			if counts.Requests < bo.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) > bo.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn().Str("host", name).Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state change")
		},
		// Only transport failures, 429 and 5xx count against the host.
		IsSuccessful: func(err error) bool {
			var se *HTTPStatusError
			if errors.As(err, &se) {
				return !se.Retryable()
			}
			return err == nil
		},
	}
	b := gobreaker.NewCircuitBreaker(st)
	c.breakers[host] = b
	return b
}

// Get fetches rawURL and returns the buffered body. Transport errors, 429
// and 5xx responses are retried with exponential backoff; other 4xx
// responses fail immediately with *HTTPStatusError.
func (c *Client) Get(ctx context.Context, rawURL string, headers map[string]string) ([]byte, int, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, 0, fmt.Errorf("parse url: %w", err)
	}
	host := u.Host
	start := time.Now()

	var (
		body   []byte
		status int
	)
	attempt := 0
	operation := func() error {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		_, err := c.breaker(host).Execute(func() (interface{}, error) {
			b, s, err := c.once(ctx, rawURL, headers)
			body, status = b, s
			return nil, err
		})
		if err == nil {
			return nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		var se *HTTPStatusError
		if errors.As(err, &se) && !se.Retryable() {
			return backoff.Permanent(err)
		}
		c.log.Debug().Err(err).Str("host", host).Int("attempt", attempt).Msg("retrying request")
		return err
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.opts.RetryInterval
	eb.MaxElapsedTime = c.opts.MaxRetryElapsed
	var policy backoff.BackOff = eb
	if c.opts.MaxRetries > 0 {
		policy = backoff.WithMaxRetries(eb, c.opts.MaxRetries)
	}

	err = backoff.Retry(operation, backoff.WithContext(policy, ctx))
	if c.observer != nil {
		c.observer.ObserveFetch(host, status, time.Since(start), err)
	}
	if err != nil {
		return nil, status, err
	}
	return body, status, nil
}

func (c *Client) once(ctx context.Context, rawURL string, headers map[string]string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) {
			ue.URL = redact(ue.URL)
		}
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode >= 400 {
		snippet := string(data)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, resp.StatusCode, &HTTPStatusError{URL: redact(rawURL), StatusCode: resp.StatusCode, Body: snippet}
	}
	return data, resp.StatusCode, nil
}

// DoGet is Get with the body wrapped as a ReadCloser.
func (c *Client) DoGet(ctx context.Context, rawURL string, headers map[string]string) (io.ReadCloser, int, error) {
	data, status, err := c.Get(ctx, rawURL, headers)
	if err != nil {
		return nil, status, err
	}
	return io.NopCloser(bytes.NewReader(data)), status, nil
}

// redact masks credential query parameters in a URL before it is logged
// or embedded in an error.
func redact(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := parsed.Query()
	for _, k := range []string{"api_key", "apikey", "token"} {
		if q.Has(k) {
			q.Set(k, "REDACTED")
		}
	}
	parsed.RawQuery = q.Encode()
	return parsed.String()
}

var defaultClient atomic.Pointer[Client]

// SetDefaultClient replaces the client used by the package-level DoGet.
func SetDefaultClient(c *Client) { defaultClient.Store(c) }

// DefaultClient returns the package-level client, creating one with default
// options and a disabled logger on first use.
func DefaultClient() *Client {
	if c := defaultClient.Load(); c != nil {
		return c
	}
	c := NewClient(DefaultClientOptions(), zerolog.Nop())
	if defaultClient.CompareAndSwap(nil, c) {
		return c
	}
	return defaultClient.Load()
}

// DoGet performs a GET with the default client.
func DoGet(ctx context.Context, rawURL string, headers map[string]string) (io.ReadCloser, int, error) {
	return DefaultClient().DoGet(ctx, rawURL, headers)
}
