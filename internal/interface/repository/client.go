package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"fieldos-dispatch/internal/infrastructure/session"
	"fieldos-dispatch/pkg/logger"
	"fieldos-dispatch/pkg/metrics"
)

// APIError is a rejection returned by the FieldOS backend
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("fieldos: %s (code: %s, status: %d)", e.Message, e.Code, e.StatusCode)
	}
	return fmt.Sprintf("fieldos: request failed with status %d", e.StatusCode)
}

// Client is the shared HTTP transport for all FieldOS repositories. The
// session is injected so every request carries the current bearer token.
type Client struct {
	baseURL    string
	session    *session.Session
	httpClient *http.Client
	logger     logger.Logger
	metrics    *metrics.Metrics
}

// NewClient creates a FieldOS API client
func NewClient(baseURL string, sess *session.Session, timeout time.Duration, log logger.Logger, m *metrics.Metrics) *Client {
	return &Client{
		baseURL:    baseURL,
		session:    sess,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
		metrics:    m,
	}
}

// envelope is the response wrapper used by every FieldOS endpoint
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

// do sends one request and decodes the enveloped response into out. Extra
// headers are applied after the defaults, so callers can attach idempotency
// keys to mutations.
func (c *Client) do(ctx context.Context, operation, method, path string, query url.Values, body interface{}, out interface{}, extraHeaders map[string]string) error {
	reqBody := bytes.NewBuffer(nil)
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	token, err := c.session.BearerToken()
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range extraHeaders {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if c.metrics != nil {
		c.metrics.BackendDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if c.metrics != nil {
			c.metrics.ErrorsCount.WithLabelValues(operation).Inc()
		}
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if decodeErr := json.NewDecoder(resp.Body).Decode(&env); decodeErr != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if c.metrics != nil {
				c.metrics.ErrorsCount.WithLabelValues(operation).Inc()
			}
			return &APIError{StatusCode: resp.StatusCode}
		}
		return fmt.Errorf("failed to decode response: %w", decodeErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		if c.metrics != nil {
			c.metrics.ErrorsCount.WithLabelValues(operation).Inc()
		}
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       env.Error.Code,
			Message:    env.Error.Message,
		}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}

	return nil
}
