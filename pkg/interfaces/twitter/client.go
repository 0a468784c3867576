// Package twitter is a thin read client for the Twitter v2 API: user lookup
// and timeline pagination, rate limited and with typed API errors.
package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// APIError carries the HTTP status of a failed API call so the error core
// can classify it without string matching.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
	Reset      time.Time // rate limit reset, zero unless status 429
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("twitter api error: status=%d code=%d message=%s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("twitter api error: status=%d message=%s", e.StatusCode, e.Message)
}

// HTTPStatus implements errorkit.HTTPStatusCarrier.
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// RateLimitReset reports when the rate limit window resets.
func (e *APIError) RateLimitReset() time.Time {
	return e.Reset
}

type TwitterClient struct {
	config  *TwitterConfig
	auth    *Authenticator
	limiter *rate.Limiter
	logger  *logrus.Logger
}

// NewTwitterClient creates a rate-limited Twitter API client.
func NewTwitterClient(config *TwitterConfig) (*TwitterClient, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	auth, err := NewAuthenticator(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticator: %w", err)
	}

	window := time.Duration(config.RateWindow) * time.Minute
	limit := rate.Every(window / time.Duration(config.RateLimit))

	return &TwitterClient{
		config:  config,
		auth:    auth,
		limiter: rate.NewLimiter(limit, 1),
		logger:  config.Logger,
	}, nil
}

func (c *TwitterClient) makeRequest(ctx context.Context, endpoint string, query map[string]string) (*http.Response, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	c.auth.SetAuthHeader(req)

	q := req.URL.Query()
	for k, v := range query {
		if v != "" {
			q.Set(k, v)
		}
	}
	req.URL.RawQuery = q.Encode()

	c.logger.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"query":    req.URL.RawQuery,
	}).Debug("Twitter API request")

	resp, err := c.auth.GetClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}

	if err := c.handleResponse(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}

	return resp, nil
}

// handleResponse turns non-2xx responses into *APIError.
func (c *TwitterClient) handleResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}

	if resp.StatusCode == http.StatusTooManyRequests {
		if reset := resp.Header.Get("x-rate-limit-reset"); reset != "" {
			if epoch, err := strconv.ParseInt(reset, 10, 64); err == nil {
				apiErr.Reset = time.Unix(epoch, 0)
			}
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		apiErr.Message = "failed to read error response"
		return apiErr
	}

	var errResp struct {
		Errors []struct {
			Message string `json:"message"`
			Code    int    `json:"code"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && len(errResp.Errors) > 0 {
		apiErr.Code = errResp.Errors[0].Code
		apiErr.Message = errResp.Errors[0].Message
	} else {
		apiErr.Message = string(body)
	}

	c.logger.WithFields(logrus.Fields{
		"status_code": apiErr.StatusCode,
		"error_code":  apiErr.Code,
		"message":     apiErr.Message,
	}).Error("Twitter API error")

	return apiErr
}
