package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"secrm-eiga.dev/web/internal/metrics"
	"secrm-eiga.dev/web/internal/platform/requestctx"
)

const (
	defaultTimeout  = 20 * time.Second
	defaultEndpoint = "/api/pipeline"
	maxResponseBody = 1 << 20
)

// ErrEmptyInput is returned when the submitted text is blank. Callers treat it
// as "nothing to do": no request was issued and nothing should be rendered.
var ErrEmptyInput = errors.New("pipeline: empty input")

var tracer = otel.Tracer("secrm-eiga.dev/web/internal/pipeline")

// Analyzer submits review text for analysis.
type Analyzer interface {
	Submit(ctx context.Context, text string) (AnalysisResult, error)
}

// StatusError reports a non-200 response from the pipeline endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("pipeline: status %d", e.Code)
	}
	return fmt.Sprintf("pipeline: status %d: %s", e.Code, e.Body)
}

// Message extracts the human readable message from a JSON error envelope, if any.
func (e *StatusError) Message() string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal([]byte(e.Body), &envelope); err == nil {
		if msg := strings.TrimSpace(envelope.Message); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(envelope.Error); msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("HTTP %d", e.Code)
}

// Client posts review text to a SECRM-EIGA pipeline endpoint.
type Client struct {
	baseURL  string
	endpoint string
	http     *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client (tests use httptest clients).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each request. The caller's context deadline still applies.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithEndpoint overrides the request path, default /api/pipeline.
func WithEndpoint(path string) Option {
	return func(c *Client) {
		if p := strings.TrimSpace(path); p != "" {
			c.endpoint = p
		}
	}
}

// NewClient constructs a pipeline client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		endpoint: defaultEndpoint,
		http:     &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured pipeline root.
func (c *Client) BaseURL() string { return c.baseURL }

// Submit issues exactly one POST with {"text": ...}. Blank text returns
// ErrEmptyInput without touching the network.
func (c *Client) Submit(ctx context.Context, text string) (AnalysisResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return AnalysisResult{}, ErrEmptyInput
	}

	ctx, span := tracer.Start(ctx, "pipeline.Submit", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.Int("secrm.text_length", len([]rune(text))))

	start := time.Now()
	result, kind, err := c.do(ctx, text)
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeError
		if ctx.Err() != nil {
			outcome = metrics.OutcomeCanceled
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, kind)
		requestctx.Logger(ctx).Warn("pipeline call failed",
			zap.String("kind", kind),
			zap.String("endpoint", c.endpoint),
			zap.Error(err),
		)
	}
	metrics.ObservePipelineCall(time.Since(start), outcome, kind)
	return result, err
}

func (c *Client) do(ctx context.Context, text string) (AnalysisResult, string, error) {
	endpoint, err := url.JoinPath(c.baseURL, c.endpoint)
	if err != nil {
		return AnalysisResult{}, "request", fmt.Errorf("pipeline: endpoint: %w", err)
	}
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return AnalysisResult{}, "request", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return AnalysisResult{}, "request", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return AnalysisResult{}, "transport", fmt.Errorf("pipeline: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return AnalysisResult{}, "status", &StatusError{Code: resp.StatusCode, Body: drainError(resp.Body)}
	}

	var result AnalysisResult
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(&result); err != nil {
		return AnalysisResult{}, "decode", fmt.Errorf("pipeline: decode response: %w", err)
	}
	return result, "", nil
}

func drainError(r io.Reader) string {
	if r == nil {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	return strings.TrimSpace(string(b))
}

// Health is the /api/health response body.
type Health struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	Timestamp string `json:"timestamp"`
}

// Health probes GET /api/health on the same server as the analysis endpoint.
func (c *Client) Health(ctx context.Context) (Health, error) {
	endpoint, err := url.JoinPath(c.baseURL, "/api/health")
	if err != nil {
		return Health{}, fmt.Errorf("pipeline: endpoint: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Health{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Health{}, fmt.Errorf("pipeline: request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Health{}, &StatusError{Code: resp.StatusCode, Body: drainError(resp.Body)}
	}
	var h Health
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(&h); err != nil {
		return Health{}, fmt.Errorf("pipeline: decode health: %w", err)
	}
	return h, nil
}
