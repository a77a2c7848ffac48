package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"secrm-eiga.dev/web/internal/pipeline"
	"secrm-eiga.dev/web/internal/platform/httpx"
	"secrm-eiga.dev/web/internal/platform/requestctx"
)

const defaultMaxBodySize = 16 * 1024

var (
	errBodyTooLarge = errors.New("request body too large")
	errEmptyBody    = errors.New("request body is required")
)

// Engine is the analysis backend served by the JSON endpoints.
type Engine interface {
	SECRM(ctx context.Context, text string) pipeline.SECRMAnalysis
	EIGA(ctx context.Context, secrm pipeline.SECRMAnalysis) pipeline.EIGAAnalysis
	Run(ctx context.Context, text string) pipeline.AnalysisResult
}

// Handlers exposes the /api endpoints.
type Handlers struct {
	engine      Engine
	maxBodySize int64
	startedAt   time.Time
	clock       func() time.Time
}

// Option customises Handlers.
type Option func(*Handlers)

// WithMaxBodySize bounds request bodies.
func WithMaxBodySize(n int64) Option {
	return func(h *Handlers) {
		if n > 0 {
			h.maxBodySize = n
		}
	}
}

// WithClock overrides the time source used by the health endpoint.
func WithClock(now func() time.Time) Option {
	return func(h *Handlers) {
		if now != nil {
			h.clock = now
		}
	}
}

// NewHandlers constructs the API handlers.
func NewHandlers(engine Engine, opts ...Option) *Handlers {
	h := &Handlers{
		engine:      engine,
		maxBodySize: defaultMaxBodySize,
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.startedAt = h.clock()
	return h
}

// Routes registers the endpoints on r, relative to its mount point.
func (h *Handlers) Routes(r chi.Router) {
	r.Get("/health", h.health)
	r.Post("/secrm", h.secrm)
	r.Post("/eiga", h.eiga)
	r.Post("/pipeline", h.pipeline)
}

type textRequest struct {
	Text string `json:"text"`
}

type eigaRequest struct {
	SECRMData pipeline.SECRMAnalysis `json:"secrm_data"`
	Text      string                 `json:"text"`
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	now := h.clock()
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"uptime":    now.Sub(h.startedAt).Round(time.Second).String(),
		"timestamp": now.UTC().Format(time.RFC3339),
	})
}

func (h *Handlers) secrm(w http.ResponseWriter, r *http.Request) {
	text, ok := h.decodeText(w, r)
	if !ok {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, h.engine.SECRM(r.Context(), text))
}

func (h *Handlers) eiga(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := h.readBody(r)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	var req eigaRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, h.engine.EIGA(ctx, req.SECRMData))
}

func (h *Handlers) pipeline(w http.ResponseWriter, r *http.Request) {
	text, ok := h.decodeText(w, r)
	if !ok {
		return
	}
	res := h.engine.Run(r.Context(), text)
	requestctx.Logger(r.Context()).Debug("pipeline analysis complete",
		zap.String("analysis_id", res.AnalysisID),
		zap.Int("component_count", res.ComponentCount),
		zap.String("urgency", res.UrgencyLevel),
	)
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *Handlers) decodeText(w http.ResponseWriter, r *http.Request) (string, bool) {
	ctx := r.Context()
	body, err := h.readBody(r)
	if err != nil {
		writeBodyError(ctx, w, err)
		return "", false
	}
	var req textRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return "", false
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "text is required", http.StatusBadRequest))
		return "", false
	}
	return text, true
}

func (h *Handlers) readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, errEmptyBody
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, h.maxBodySize+1))
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errEmptyBody
	}
	if int64(len(data)) > h.maxBodySize {
		return nil, errBodyTooLarge
	}
	return data, nil
}

func writeBodyError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errEmptyBody):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body is required", http.StatusBadRequest))
	case errors.Is(err, errBodyTooLarge):
		httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	}
}
