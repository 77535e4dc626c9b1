package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/RaynaArora/neo-hackathon/internal/metrics"
)

// HTTPClientConfig holds configuration for HTTP clients
type HTTPClientConfig struct {
	Timeout           time.Duration
	MaxAttempts       int           // total attempts including the first one
	RetryWaitMin      time.Duration // first backoff; doubles per attempt
	RetryWaitMax      time.Duration
	RateLimit         float64 // requests per second
	CircuitBreakerMax int     // max consecutive failures before circuit break
	// CircuitBreakerCooldown is how long the breaker stays open before one
	// trial request is let through.
	CircuitBreakerCooldown time.Duration
}

const defaultCircuitBreakerCooldown = 30 * time.Second

var errCircuitOpen = errors.New("circuit breaker open")

// DefaultHTTPClientConfig returns recommended defaults: three attempts
// with 1s, 2s, 4s exponential backoff.
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:           10 * time.Second,
		MaxAttempts:       3,
		RetryWaitMin:      1 * time.Second,
		RetryWaitMax:      4 * time.Second,
		RateLimit:         5.0,
		CircuitBreakerMax: 5,

		CircuitBreakerCooldown: defaultCircuitBreakerCooldown,
	}
}

// orDiscard substitutes a silent logger for nil.
func orDiscard(logger *logrus.Logger) *logrus.Logger {
	if logger != nil {
		return logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// RateLimitedHTTPClient wraps retryablehttp.Client with rate limiting and
// a circuit breaker. An open breaker half-opens after the cooldown and lets
// a single trial request decide whether it closes again.
type RateLimitedHTTPClient struct {
	client            *retryablehttp.Client
	limiter           *rate.Limiter
	circuitBreakerMax int
	cooldown          time.Duration
	mu                sync.Mutex
	consecutiveErrors int
	isOpen            bool
	openedAt          time.Time
	trialInFlight     bool
	lastError         error
	logger            *logrus.Logger
}

// NewRateLimitedHTTPClient creates a new rate-limited HTTP client
func NewRateLimitedHTTPClient(cfg HTTPClientConfig, logger *logrus.Logger) *RateLimitedHTTPClient {
	logger = orDiscard(logger)
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = float64(rate.Inf)
	}
	if cfg.CircuitBreakerCooldown <= 0 {
		cfg.CircuitBreakerCooldown = defaultCircuitBreakerCooldown
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryMax = cfg.MaxAttempts - 1
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.Backoff = retryablehttp.DefaultBackoff
	retryClient.CheckRetry = customRetryPolicy()
	// Hand the last response back so callers can tell 429 from 5xx.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	// Don't log verbose retry info
	retryClient.Logger = nil
	retryClient.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			logger.WithFields(logrus.Fields{
				"host":    req.URL.Host,
				"path":    req.URL.Path,
				"attempt": attempt + 1,
			}).Debug("Retrying upstream request")
		}
	}

	return &RateLimitedHTTPClient{
		client:            retryClient,
		limiter:           rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		circuitBreakerMax: cfg.CircuitBreakerMax,
		cooldown:          cfg.CircuitBreakerCooldown,
		logger:            logger,
	}
}

// Do executes an HTTP request with rate limiting and circuit breaker
func (c *RateLimitedHTTPClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	trial, err := c.admit()
	if err != nil {
		return nil, err
	}

	// Wait for rate limiter
	if err := c.limiter.Wait(ctx); err != nil {
		c.abandonTrial(trial)
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	retryReq, err := retryablehttp.FromRequest(req)
	if err != nil {
		c.abandonTrial(trial)
		return nil, err
	}
	resp, err := c.client.Do(retryReq.WithContext(ctx))

	c.mu.Lock()
	defer c.mu.Unlock()
	if trial {
		c.trialInFlight = false
	}

	if err == nil && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
		if c.isOpen {
			c.logger.Info("Circuit breaker closed after successful trial request")
		}
		c.isOpen = false
		c.consecutiveErrors = 0
		c.lastError = nil
		return resp, nil
	}

	c.consecutiveErrors++
	if err != nil {
		c.lastError = err
	} else {
		c.lastError = fmt.Errorf("status %d", resp.StatusCode)
	}
	switch {
	case trial:
		c.openedAt = time.Now()
		c.logger.WithField("last_error", c.lastError.Error()).Warn("Circuit breaker trial request failed, reopening")
	case c.circuitBreakerMax > 0 && c.consecutiveErrors >= c.circuitBreakerMax && !c.isOpen:
		c.isOpen = true
		c.openedAt = time.Now()
		metrics.RecordCircuitBreakerTrip()
		c.logger.WithFields(logrus.Fields{
			"consecutive_errors": c.consecutiveErrors,
			"last_error":         c.lastError.Error(),
		}).Warn("Circuit breaker opened")
	}
	return resp, err
}

// admit decides whether a request may go upstream. While the breaker is open
// it rejects until the cooldown has passed, then admits one trial at a time.
func (c *RateLimitedHTTPClient) admit() (trial bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isOpen {
		return false, nil
	}
	if c.trialInFlight || time.Since(c.openedAt) < c.cooldown {
		return false, fmt.Errorf("%w: %v", errCircuitOpen, c.lastError)
	}
	c.trialInFlight = true
	c.logger.Info("Circuit breaker half-open, sending trial request")
	return true, nil
}

func (c *RateLimitedHTTPClient) abandonTrial(trial bool) {
	if !trial {
		return
	}
	c.mu.Lock()
	c.trialInFlight = false
	c.mu.Unlock()
}

// IsOpen reports whether the circuit breaker is open.
func (c *RateLimitedHTTPClient) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isOpen
}

// Reset closes the circuit breaker.
func (c *RateLimitedHTTPClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isOpen = false
	c.trialInFlight = false
	c.consecutiveErrors = 0
	c.lastError = nil
}

// GetJSON performs a GET and decodes a JSON body into out, mapping failures
// onto DataSourceError codes for source.
func (c *RateLimitedHTTPClient) GetJSON(ctx context.Context, source, url string, headers map[string]string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return NewDataSourceError(source, ErrCodeNetworkError, "failed to create request", err)
	}
	return c.doJSON(ctx, source, req, headers, out)
}

// PostJSON marshals body, POSTs it and decodes a JSON response into out.
func (c *RateLimitedHTTPClient) PostJSON(ctx context.Context, source, url string, headers map[string]string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return NewDataSourceError(source, ErrCodeUnknown, "failed to marshal request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return NewDataSourceError(source, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(ctx, source, req, headers, out)
}

func (c *RateLimitedHTTPClient) doJSON(ctx context.Context, source string, req *http.Request, headers map[string]string, out interface{}) error {
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		code := ErrCodeNetworkError
		if errors.Is(err, errCircuitOpen) {
			code = ErrCodeCircuitOpen
			metrics.RecordUpstreamRequest(source, "circuit_open")
		} else {
			metrics.RecordUpstreamRequest(source, "network_error")
		}
		return NewDataSourceError(source, code, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		metrics.RecordUpstreamRequest(source, "not_found")
		return NotFound(source, "no matching record")
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		metrics.RecordUpstreamRequest(source, "auth_error")
		return NewDataSourceError(source, ErrCodeAuthenticationFailed, "invalid credentials", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		metrics.RecordUpstreamRequest(source, "rate_limited")
		return NewDataSourceError(source, ErrCodeRateLimitExceeded, "rate limit exceeded after retries", nil)
	case resp.StatusCode >= 500:
		metrics.RecordUpstreamRequest(source, "server_error")
		return NewDataSourceError(source, ErrCodeServerError, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		metrics.RecordUpstreamRequest(source, "client_error")
		return NewDataSourceError(source, ErrCodeUnknown, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.RecordUpstreamRequest(source, "invalid_data")
		return NewDataSourceError(source, ErrCodeInvalidData, "failed to parse response", err)
	}
	metrics.RecordUpstreamRequest(source, "ok")
	return nil
}

// Close closes any resources held by the client
func (c *RateLimitedHTTPClient) Close() error {
	c.client.HTTPClient.CloseIdleConnections()
	return nil
}

// customRetryPolicy defines which HTTP responses should trigger a retry
func customRetryPolicy() retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			// Retry on network errors
			return true, nil
		}

		// Retry on rate limit (429), server errors (500, 502, 503, 504), and gateway errors
		switch resp.StatusCode {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true, nil
		}

		return false, nil
	}
}
