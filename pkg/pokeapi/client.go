package pokeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/latoulicious/pokedex/pkg/logging"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Client talks to PokeAPI. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	retry      RetryConfig
	limiter    *rate.Limiter
	group      singleflight.Group
	logger     logging.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a new PokeAPI client
func NewClient(cfg Config, logger logging.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = logging.GetGlobalLoggerFactory().CreateLogger("pokeapi")
	}

	if cfg.Retry.MaxRetries < 0 {
		cfg.Retry.MaxRetries = 0
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		retry:      cfg.Retry,
		limiter:    limiter,
		logger:     logger,
		sleep:      sleepContext,
	}
}

// BaseURL returns the configured API root
func (c *Client) BaseURL() string {
	return c.baseURL
}

type response struct {
	body   json.RawMessage
	status int
}

// Request performs an HTTP call against endpoint, which is either a path
// relative to the base URL or an absolute URL. A 2xx answer returns the JSON
// body and status; anything else returns an *APIError or a transport error.
// Identical concurrent GETs share one upstream call.
func (c *Client) Request(ctx context.Context, method, endpoint string, payload interface{}, params url.Values, headers map[string]string) (json.RawMessage, int, error) {
	method = strings.ToUpper(method)
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return nil, 0, fmt.Errorf("invalid HTTP method: %s", method)
	}

	target, err := c.resolveURL(endpoint, params)
	if err != nil {
		return nil, 0, err
	}

	var body []byte
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to encode payload: %w", err)
		}
	}

	if method != http.MethodGet || body != nil {
		resp, err := c.doWithRetry(ctx, method, target, body, headers)
		return resp.body, resp.status, err
	}

	// The shared call outlives any one caller; each attempt is still bounded
	// by the http client timeout. Callers stop waiting when their own ctx ends.
	ch := c.group.DoChan(flightKey(target, headers), func() (interface{}, error) {
		resp, err := c.doWithRetry(context.WithoutCancel(ctx), method, target, nil, headers)
		return resp, err
	})

	select {
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	case res := <-ch:
		if res.Shared {
			c.logger.Debug("Shared in-flight request", map[string]interface{}{"url": target})
		}
		resp := res.Val.(response)
		return resp.body, resp.status, res.Err
	}
}

func (c *Client) doWithRetry(ctx context.Context, method, target string, body []byte, headers map[string]string) (response, error) {
	var lastErr error
	var last response

	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retry.backoff(attempt)
			c.logger.Warn("Retrying upstream request", map[string]interface{}{
				"method":  method,
				"url":     target,
				"attempt": attempt,
				"delay":   delay.String(),
				"error":   lastErr.Error(),
			})
			if err := c.sleep(ctx, delay); err != nil {
				return last, err
			}
		}

		last, lastErr = c.do(ctx, method, target, body, headers)
		if lastErr == nil {
			return last, nil
		}
		if ctx.Err() != nil || !c.shouldRetry(lastErr) {
			return last, lastErr
		}
	}

	c.logger.Error("Upstream request failed after retries", lastErr, map[string]interface{}{
		"method":   method,
		"url":      target,
		"attempts": c.retry.MaxRetries + 1,
	})
	return last, lastErr
}

func (c *Client) shouldRetry(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return isRetryableStatus(apiErr.StatusCode)
	}
	if errors.Is(err, ErrInvalidResponse) {
		return false
	}
	return isNetworkError(err)
}

func (c *Client) do(ctx context.Context, method, target string, body []byte, headers map[string]string) (response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return response{}, err
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return response{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	c.logger.Debug("Sending upstream request", map[string]interface{}{
		"method": method,
		"url":    target,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{status: resp.StatusCode}, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
		if json.Valid(data) {
			apiErr.Raw = json.RawMessage(data)
		}
		return response{status: resp.StatusCode}, apiErr
	}

	if !json.Valid(data) {
		return response{status: resp.StatusCode}, fmt.Errorf("%s %s: %w", method, target, ErrInvalidResponse)
	}

	return response{body: json.RawMessage(data), status: resp.StatusCode}, nil
}

func (c *Client) resolveURL(endpoint string, params url.Values) (string, error) {
	target := endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		target = c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	}

	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}

	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}

func flightKey(target string, headers map[string]string) string {
	if len(headers) == 0 {
		return target
	}
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(target)
	for _, k := range keys {
		b.WriteString("|" + k + "=" + headers[k])
	}
	return b.String()
}
