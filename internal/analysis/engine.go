package analysis

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"secrm-eiga.dev/web/internal/llm"
	"secrm-eiga.dev/web/internal/metrics"
	"secrm-eiga.dev/web/internal/pipeline"
	"secrm-eiga.dev/web/internal/platform/requestctx"
)

var tracer = otel.Tracer("secrm-eiga.dev/web/internal/analysis")

// Engine runs SECRM followed by EIGA in process.
type Engine struct {
	generator llm.Provider
	now       func() time.Time
}

// Option customises an Engine.
type Option func(*Engine)

// WithGenerator attaches a response generator. Without one, results carry
// no llm_metadata and no suggestions.
func WithGenerator(p llm.Provider) Option {
	return func(e *Engine) { e.generator = p }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine constructs an analysis engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SECRM exposes the recognition stage alone.
func (e *Engine) SECRM(ctx context.Context, text string) pipeline.SECRMAnalysis {
	_, span := tracer.Start(ctx, "analysis.SECRM")
	defer span.End()
	return RunSECRM(text, e.now())
}

// EIGA exposes the generation stage alone.
func (e *Engine) EIGA(ctx context.Context, secrm pipeline.SECRMAnalysis) pipeline.EIGAAnalysis {
	_, span := tracer.Start(ctx, "analysis.EIGA")
	defer span.End()
	return RunEIGA(secrm)
}

// Run analyses text end to end and flattens the EIGA fields into the result.
// A generated reply from a live model replaces the templated customer
// response; the demo generator only contributes metadata and suggestions.
func (e *Engine) Run(ctx context.Context, text string) pipeline.AnalysisResult {
	ctx, span := tracer.Start(ctx, "analysis.Run")
	defer span.End()

	secrm := e.SECRM(ctx, text)
	eiga := e.EIGA(ctx, secrm)

	res := pipeline.AnalysisResult{
		AnalysisID:              ulid.Make().String(),
		Components:              secrm.Components,
		BusinessRecommendations: eiga.BusinessRecommendations,
		SentimentBreakdown:      eiga.SentimentBreakdown,
		CustomerResponse:        eiga.CustomerResponse,
		UrgencyLevel:            eiga.UrgencyLevel,
		ComponentCount:          eiga.ComponentCount,
		FinalAnalysis:           eiga.FinalAnalysis,
		SECRM:                   &secrm,
		EIGA:                    &eiga,
	}
	risk := eiga.RiskAssessment
	res.RiskAssessment = &risk

	if e.generator != nil {
		dominant, _ := DominantSentiment(secrm.Sentiment)
		reply, err := e.generator.Generate(ctx, llm.Request{
			Query:      text,
			Components: secrm.Components,
			Sentiment:  dominant,
			Urgency:    secrm.Urgency,
			Language:   LanguageCode(secrm.Language),
		})
		if err != nil {
			requestctx.Logger(ctx).Warn("response generation failed", zap.Error(err))
		} else {
			res.LLMMetadata = reply.Metadata()
			if e.generator.Name() != "demo" && reply.Model != "demo-mode" {
				res.CustomerResponse = reply.Text
			}
		}
		res.IntelligentSuggestions = llm.Suggestions(secrm.Components, dominant)
	}

	labels := make([]string, 0, len(secrm.Components))
	for _, c := range secrm.Components {
		labels = append(labels, c.Label)
	}
	metrics.ObserveAnalysis(secrm.Urgency, labels)
	span.SetAttributes(
		attribute.String("secrm.urgency", secrm.Urgency),
		attribute.Int("secrm.component_count", len(labels)),
	)
	return res
}

// Submit adapts the engine to pipeline.Analyzer so the website can serve
// results in process when no remote pipeline is configured.
func (e *Engine) Submit(ctx context.Context, text string) (pipeline.AnalysisResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return pipeline.AnalysisResult{}, pipeline.ErrEmptyInput
	}
	if err := ctx.Err(); err != nil {
		return pipeline.AnalysisResult{}, err
	}
	return e.Run(ctx, text), nil
}
