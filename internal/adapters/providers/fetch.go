package providers

import (
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/semaphore"

	"sibyl/internal/adapters/providers/ratelimit"
	"sibyl/internal/metrics"
	"sibyl/pkg/errors"
	"sibyl/pkg/logger"
)

// Provider identifiers used for rate limiting and metrics labels
const (
	ProviderAlphaVantage = "alphavantage"
	ProviderFMP          = "fmp"
	ProviderNewsAPI      = "newsapi"
)

// Limits configures the per-provider request ceilings
type Limits struct {
	Concurrency       int64
	RequestsPerMinute int
}

// Client is a rate-limited HTTP fetch client shared by all provider
// adapters. Each provider gets its own concurrency ceiling and
// request-rate limiter. Transient failures (HTTP 429, transport errors,
// malformed response bodies) are retried with exponential backoff and
// jitter; any other non-2xx status fails the call immediately.
type Client struct {
	httpClient    *http.Client
	limiters      *ratelimit.MultiLimiter
	sems          map[string]*semaphore.Weighted
	maxRetries    int
	backoffBase   time.Duration
	backoffJitter time.Duration
	log           *logger.Logger
}

// NewClient creates a fetch client. Providers must be registered with
// Register before use.
func NewClient(timeout time.Duration, maxRetries int, backoffBase, backoffJitter time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiters:      ratelimit.NewMultiLimiter(),
		sems:          make(map[string]*semaphore.Weighted),
		maxRetries:    maxRetries,
		backoffBase:   backoffBase,
		backoffJitter: backoffJitter,
		log:           logger.Get().With("component", "fetch_client"),
	}
}

// Register installs the request ceilings for a provider
func (c *Client) Register(provider string, limits Limits) {
	concurrency := limits.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	c.sems[provider] = semaphore.NewWeighted(concurrency)
	c.limiters.Add(provider, ratelimit.NewLimiter(provider, limits.RequestsPerMinute))
}

// GetJSON performs a GET against the provider and decodes the JSON
// response body into dest. The call blocks until a concurrency slot and
// a rate-limit token are available, respecting ctx cancellation.
func (c *Client) GetJSON(ctx context.Context, provider, baseURL string, params url.Values, dest interface{}) error {
	sem, ok := c.sems[provider]
	if !ok {
		return errors.Wrapf(errors.ErrInternal, "provider %s is not registered", provider)
	}

	if err := sem.Acquire(ctx, 1); err != nil {
		return errors.Wrapf(err, "acquire slot for %s", provider)
	}
	defer sem.Release(1)

	requestURL := baseURL
	if len(params) > 0 {
		requestURL = baseURL + "?" + params.Encode()
	}

	start := time.Now()
	defer func() {
		metrics.FetchDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	}()

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiters.Wait(ctx, provider); err != nil {
			return err
		}

		retryable, err := c.doOnce(ctx, provider, requestURL, dest)
		if err == nil {
			metrics.FetchRequests.WithLabelValues(provider, "success").Inc()
			return nil
		}
		if !retryable {
			metrics.FetchRequests.WithLabelValues(provider, "error").Inc()
			return err
		}

		lastErr = err
		if attempt == c.maxRetries {
			break
		}

		metrics.FetchRequests.WithLabelValues(provider, "retry").Inc()
		delay := c.backoffDelay(attempt)
		c.log.Warnw("Retrying provider request",
			"provider", provider,
			"attempt", attempt+1,
			"delay", delay,
			"error", err)

		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "fetch %s", provider)
		case <-time.After(delay):
		}
	}

	metrics.FetchRequests.WithLabelValues(provider, "error").Inc()
	return errors.Wrapf(errors.ErrFetchFailed, "%s: retries exhausted: %v", provider, lastErr)
}

// doOnce performs a single request attempt. The bool reports whether the
// failure is retryable.
func (c *Client) doOnce(ctx context.Context, provider, requestURL string, dest interface{}) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return false, errors.Wrapf(err, "build request for %s", provider)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport-level failure, worth retrying
		return true, errors.Wrapf(errors.ErrFetchFailed, "%s: %v", provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return true, errors.Wrapf(errors.ErrRateLimitExceeded, "%s responded 429", provider)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Other 4xx/5xx statuses indicate a request-level problem
		// that a retry will not fix
		return false, errors.Wrapf(errors.ErrFetchFailed, "%s responded %d", provider, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return true, errors.Wrapf(errors.ErrFetchFailed, "%s: read body: %v", provider, err)
	}
	if err := json.Unmarshal(body, dest); err != nil {
		// Providers intermittently serve truncated or non-JSON bodies
		return true, errors.Wrapf(errors.ErrFetchFailed, "%s: decode response: %v", provider, err)
	}
	return false, nil
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	delay := c.backoffBase * (1 << uint(attempt))
	if c.backoffJitter > 0 {
		delay += time.Duration(rand.Int63n(int64(c.backoffJitter)))
	}
	return delay
}
