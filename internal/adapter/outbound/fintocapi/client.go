package fintocapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/uniedit/fintoc-gateway/internal/domain/fintoc"
	"github.com/uniedit/fintoc-gateway/internal/port/outbound"
	"github.com/uniedit/fintoc-gateway/internal/utils/metrics"
	"github.com/uniedit/fintoc-gateway/internal/utils/requestctx"
	"go.uber.org/zap"
)

const breakerName = "fintoc_api"

// response is a completed HTTP exchange. Status codes >= 400 are still responses.
type response struct {
	status int
	body   map[string]any
}

// Client implements outbound.FintocAPIPort over the Fintoc REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
	breaker    *gobreaker.CircuitBreaker[*response]
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewClient creates a Fintoc API client. m may be nil.
func NewClient(httpClient *http.Client, baseURL, secretKey string, m *metrics.Metrics, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = fintoc.DefaultAPIBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: fintoc.DefaultTimeout}
	}

	c := &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		secretKey:  secretKey,
		metrics:    m,
		logger:     logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker[*response](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("fintoc api circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if c.metrics != nil {
				c.metrics.SetCircuitState(name, int(to))
			}
		},
	})
	return c
}

// Send executes a request and returns the status and parsed JSON body.
// A non JSON or empty body parses to an empty map.
func (c *Client) Send(ctx context.Context, method, endpoint string, payload any, idempotencyKey string) (int, map[string]any, error) {
	if c.secretKey == "" {
		return 0, nil, fmt.Errorf("%w: missing secret key", fintoc.ErrConfiguration)
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", c.secretKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	start := time.Now()
	resp, err := c.breaker.Execute(func() (*response, error) {
		return c.do(req)
	})
	c.record(method, endpoint, resp, time.Since(start))
	if err != nil {
		requestctx.Logger(ctx, c.logger).Warn("fintoc api request failed",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return 0, nil, fmt.Errorf("%w: circuit open", fintoc.ErrProviderUnreachable)
		}
		return 0, nil, err
	}

	requestctx.Logger(ctx, c.logger).Debug("fintoc api request",
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.status),
	)
	return resp.status, resp.body, nil
}

// SendOrFail executes a request and converts any status >= 400 into a *fintoc.ProviderRequestError.
func (c *Client) SendOrFail(ctx context.Context, method, endpoint string, payload any, idempotencyKey string) (map[string]any, error) {
	status, body, err := c.Send(ctx, method, endpoint, payload, idempotencyKey)
	if err != nil {
		return nil, err
	}
	if status >= http.StatusBadRequest {
		return nil, fintoc.NewProviderRequestError(status, body)
	}
	return body, nil
}

func (c *Client) do(req *http.Request) (*response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", fintoc.ErrProviderUnreachable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", fintoc.ErrProviderUnreachable, err)
	}

	return &response{status: resp.StatusCode, body: decodeBody(raw)}, nil
}

func (c *Client) record(method, endpoint string, resp *response, duration time.Duration) {
	if c.metrics == nil {
		return
	}
	status := 0
	if resp != nil {
		status = resp.status
	}
	c.metrics.RecordProviderRequest(method, endpointLabel(endpoint), status, duration)
}

func decodeBody(raw []byte) map[string]any {
	body := map[string]any{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return body
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil || decoded == nil {
		return body
	}
	return decoded
}

// endpointLabel replaces resource ids with ":id" to bound metric cardinality.
// "/v1/refunds/re_123/cancel" becomes "/v1/refunds/:id/cancel".
func endpointLabel(endpoint string) string {
	path, _, _ := strings.Cut(endpoint, "?")
	parts := strings.Split(path, "/")
	if len(parts) > 3 && parts[3] != "" {
		parts[3] = ":id"
	}
	return strings.Join(parts, "/")
}

// Compile-time check
var _ outbound.FintocAPIPort = (*Client)(nil)
