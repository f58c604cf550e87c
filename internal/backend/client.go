// Package backend talks to the remote interview service over its four
// HTTP endpoints. It performs no retries.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"interviewprep/internal/config"
	"interviewprep/internal/errors"
	"interviewprep/internal/observability"
	"interviewprep/internal/types"

	"github.com/google/uuid"
)

// Endpoint paths relative to the backend base URL
const (
	EndpointAnalyze     = "/analyze"
	EndpointGenerate    = "/generate"
	EndpointUpload      = "/upload"
	EndpointAnalyzeCode = "/analyze-code"
)

// maxResponseBytes is the largest response body accepted. Anything longer is
// rejected rather than cut short.
const maxResponseBytes = 8 << 20

// Client is the HTTP client for the interview backend
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	breakers   map[string]*CircuitBreaker
	limiter    *outboundLimiter
	maxBody    int64
	metrics    *observability.Metrics
	logger     *errors.Logger
}

// NewClient creates a client from backend configuration. om may be nil.
func NewClient(cfg config.BackendConfig, logger *errors.Logger, om *observability.ObservabilityManager) *Client {
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	metrics := om.GetMetrics()

	breakers := make(map[string]*CircuitBreaker)
	for _, ep := range []string{EndpointAnalyze, EndpointGenerate, EndpointUpload, EndpointAnalyzeCode} {
		breakers[ep] = NewCircuitBreaker(ep, cfg.CircuitBreaker, logger, metrics)
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: om.Transport(http.DefaultTransport),
		},
		breakers: breakers,
		limiter:  newOutboundLimiter(cfg.RateLimit),
		maxBody:  maxResponseBytes,
		metrics:  metrics,
		logger:   logger,
	}
}

// Analyze uploads the résumé and returns the detected skills in backend order
func (c *Client) Analyze(ctx context.Context, req types.AnalyzeRequest) ([]string, error) {
	body, contentType, err := encodeForm(req.File, nil)
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeInvalidRequest, "failed to encode analyze request", err)
	}

	raw, err := c.call(ctx, EndpointAnalyze, contentType, body.Bytes())
	if err != nil {
		return nil, err
	}

	skills, err := decodeSkills(raw)
	if err != nil {
		return nil, err
	}
	c.metrics.RecordSkills(ctx, len(skills))
	return skills, nil
}

// Generate requests interview questions for the configured wizard state
func (c *Client) Generate(ctx context.Context, req types.GenerateRequest) (string, error) {
	body, contentType, err := encodeForm(req.File, generateFields(req))
	if err != nil {
		return "", errors.NewInternalError(errors.ErrCodeInvalidRequest, "failed to encode generate request", err)
	}

	raw, err := c.call(ctx, EndpointGenerate, contentType, body.Bytes())
	if err != nil {
		return "", err
	}
	c.metrics.RecordQuestions(ctx, "generate")
	return string(raw), nil
}

// Upload runs the legacy single-step flow: résumé plus experience in, questions out
func (c *Client) Upload(ctx context.Context, req types.UploadRequest) (string, error) {
	body, contentType, err := encodeForm(req.File, uploadFields(req))
	if err != nil {
		return "", errors.NewInternalError(errors.ErrCodeInvalidRequest, "failed to encode upload request", err)
	}

	raw, err := c.call(ctx, EndpointUpload, contentType, body.Bytes())
	if err != nil {
		return "", err
	}
	c.metrics.RecordQuestions(ctx, "upload")
	return string(raw), nil
}

// AnalyzeCode posts the code verbatim as text/plain. An empty body is sent as is.
func (c *Client) AnalyzeCode(ctx context.Context, req types.CodeAnalysisRequest) (string, error) {
	raw, err := c.call(ctx, EndpointAnalyzeCode, "text/plain; charset=utf-8", []byte(req.Code))
	if err != nil {
		return "", err
	}
	c.metrics.RecordCodeAnalysis(ctx)
	return string(raw), nil
}

// Stats reports breaker state per endpoint
func (c *Client) Stats() map[string]any {
	stats := make(map[string]any, len(c.breakers))
	for ep, b := range c.breakers {
		stats[ep] = b.GetStats()
	}
	return stats
}

// Healthy reports whether every breaker is closed
func (c *Client) Healthy() bool {
	for _, b := range c.breakers {
		if !b.IsHealthy() {
			return false
		}
	}
	return true
}

// call sends one POST through the limiter, breaker and metrics, and returns the raw 2xx body
func (c *Client) call(ctx context.Context, endpoint, contentType string, payload []byte) ([]byte, error) {
	if err := c.limiter.reserve(endpoint); err != nil {
		c.metrics.RecordRateLimitHit(ctx, "client")
		c.logger.Warn("Outbound rate limit exceeded", "endpoint", endpoint)
		return nil, err
	}

	var result []byte
	err := c.metrics.TrackRemoteCall(ctx, endpoint, func(ctx context.Context) error {
		var callErr error
		result, callErr = c.breakers[endpoint].Execute(func() ([]byte, error) {
			return c.do(ctx, endpoint, contentType, payload)
		})
		return callErr
	})
	if errors.IsRateLimit(err) {
		c.metrics.RecordRateLimitHit(ctx, "backend")
	}
	return result, err
}

func (c *Client) do(ctx context.Context, endpoint, contentType string, payload []byte) ([]byte, error) {
	requestID := uuid.NewString()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeInvalidRequest, "failed to build request", err).
			WithContext("endpoint", endpoint)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Request-ID", requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.logger.Debug("Calling backend",
		"endpoint", endpoint,
		"request_id", requestID,
		"body_bytes", len(payload))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		appErr := errors.NewTransportError(errors.ErrCodeBackendUnavailable, "backend unreachable", err).
			WithContext("endpoint", endpoint).
			WithContext("request_id", requestID)
		c.logger.LogError(appErr, "Backend call failed", "duration_ms", time.Since(start).Milliseconds())
		return nil, appErr
	}
	defer func() { _ = resp.Body.Close() }()

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	duration := time.Since(start)

	if err := statusError(resp.StatusCode, raw); err != nil {
		appErr := err.WithContext("endpoint", endpoint).WithContext("request_id", requestID)
		c.logger.Warn("Backend returned an error",
			"endpoint", endpoint,
			"request_id", requestID,
			"status", resp.StatusCode,
			"duration_ms", duration.Milliseconds())
		return nil, appErr
	}
	if readErr != nil {
		return nil, errors.NewTransportError(errors.ErrCodeBackendUnavailable, "failed to read backend response", readErr).
			WithContext("endpoint", endpoint).
			WithContext("request_id", requestID)
	}
	if int64(len(raw)) > c.maxBody {
		appErr := errors.NewTransportError(errors.ErrCodeInvalidResponse, "backend response too large", nil).
			WithContext("endpoint", endpoint).
			WithContext("request_id", requestID).
			WithContext("limit_bytes", c.maxBody)
		c.logger.LogError(appErr, "Backend call failed", "duration_ms", duration.Milliseconds())
		return nil, appErr
	}

	c.logger.Info("Backend call succeeded",
		"endpoint", endpoint,
		"request_id", requestID,
		"status", resp.StatusCode,
		"response_bytes", len(raw),
		"duration_ms", duration.Milliseconds())
	return raw, nil
}

// statusError maps non-2xx responses onto the error taxonomy
func statusError(status int, body []byte) *errors.AppError {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusTooManyRequests:
		return errors.NewRateLimitError(errors.ErrCodeRateLimited, "backend is busy", nil).
			WithContext("status", status)
	default:
		return errors.NewTransportError(errors.ErrCodeBackendStatus,
			fmt.Sprintf("backend responded with status %d", status), nil).
			WithContext("status", status).
			WithContext("body", snippet(body))
	}
}

// decodeSkills parses the /analyze response, a JSON array of strings.
// Blank and repeated names are dropped, first occurrence wins.
func decodeSkills(raw []byte) ([]string, error) {
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil, errors.NewTransportError(errors.ErrCodeInvalidResponse,
			"backend returned an unreadable skill list", err).
			WithContext("body", snippet(raw))
	}

	seen := make(map[string]bool, len(names))
	skills := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		skills = append(skills, name)
	}
	return skills, nil
}

func snippet(body []byte) string {
	const limit = 256
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
