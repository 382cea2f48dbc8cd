package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/AbdulWasayUl/go-athan-clock/internal/logger"
	"github.com/AbdulWasayUl/go-athan-clock/models"
	"github.com/avast/retry-go/v4"
	"golang.org/x/time/rate"
)

const maxRetries = 3

// ErrNonOK is returned for client-side HTTP statuses that are not worth retrying.
var ErrNonOK = errors.New("API returned non-OK status")

var errTooManyRequests = errors.New("API returned 429 Too Many Requests")

type Client struct {
	httpClient    *http.Client
	limiter       *rate.Limiter
	retryDelay    time.Duration
	throttleDelay time.Duration
}

type Option func(*Client)

// WithRetryDelays overrides the wait between attempts after a failure and after a 429.
func WithRetryDelays(failure, throttled time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = failure
		c.throttleDelay = throttled
	}
}

// WithBurst lets n requests through back to back before the rate applies.
func WithBurst(n int) Option {
	return func(c *Client) {
		c.limiter.SetBurst(n)
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(rl models.RateLimitSettings, opts ...Option) *Client {
	interval := rl.PerDuration / time.Duration(rl.MaxRequests)

	c := &Client{
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		limiter:       rate.NewLimiter(rate.Every(interval), 1),
		retryDelay:    2 * time.Second,
		throttleDelay: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Do(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	var body []byte
	attempt := 0

	err := retry.Do(
		func() error {
			attempt++
			if err := c.limiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(err)
			}

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
			}
			for key, value := range headers {
				req.Header.Set(key, value)
			}

			logger.Debug("Making request to %s (attempt %d)", url, attempt)
			resp, err := c.httpClient.Do(req)
			if err != nil {
				logger.Error("HTTP request failed (attempt %d): %v", attempt, err)
				return err
			}
			defer resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusOK:
				body, err = io.ReadAll(resp.Body)
				return err
			case resp.StatusCode == http.StatusTooManyRequests:
				logger.Error("API returned 429 Too Many Requests (attempt %d)", attempt)
				return errTooManyRequests
			case resp.StatusCode >= 500:
				logger.Error("API returned status code %d (attempt %d)", resp.StatusCode, attempt)
				return fmt.Errorf("API returned status: %s", resp.Status)
			default:
				raw, _ := io.ReadAll(resp.Body)
				logger.Error("API returned status code %d (attempt %d). Body: %s", resp.StatusCode, attempt, string(raw))
				return retry.Unrecoverable(fmt.Errorf("%w: %s", ErrNonOK, resp.Status))
			}
		},
		retry.Context(ctx),
		retry.Attempts(maxRetries),
		retry.LastErrorOnly(true),
		retry.DelayType(func(_ uint, err error, _ *retry.Config) time.Duration {
			if errors.Is(err, errTooManyRequests) {
				return c.throttleDelay
			}
			return c.retryDelay
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s after %d attempt(s): %w", url, attempt, err)
	}
	return body, nil
}
