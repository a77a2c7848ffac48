package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels calls that produced a decoded result.
	OutcomeSuccess = "success"
	// OutcomeError labels transport failures, error statuses and undecodable payloads.
	OutcomeError = "error"
	// OutcomeCanceled labels calls abandoned because the caller's context ended.
	OutcomeCanceled = "canceled"
)

var (
	pipelineCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "secrm_eiga",
			Name:      "pipeline_calls_total",
			Help:      "Pipeline client calls, partitioned by outcome and failure kind.",
		},
		[]string{"outcome", "kind"},
	)

	pipelineCallSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "secrm_eiga",
			Name:      "pipeline_call_seconds",
			Help:      "Pipeline client round-trip latency in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
		},
	)

	analysisRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "secrm_eiga",
			Name:      "analysis_runs_total",
			Help:      "In-process SECRM/EIGA analyses, partitioned by urgency level.",
		},
		[]string{"urgency"},
	)

	componentsDetectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "secrm_eiga",
			Name:      "components_detected_total",
			Help:      "Components recognised by SECRM, partitioned by label.",
		},
		[]string{"component"},
	)

	llmRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "secrm_eiga",
			Name:      "llm_requests_total",
			Help:      "Response generation requests, partitioned by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)

	chatMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "secrm_eiga",
			Name:      "chat_messages_total",
			Help:      "Chat messages appended to transcripts, partitioned by sender.",
		},
		[]string{"sender"},
	)
)

// Register attaches collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		pipelineCallsTotal,
		pipelineCallSeconds,
		analysisRunsTotal,
		componentsDetectedTotal,
		llmRequestsTotal,
		chatMessagesTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObservePipelineCall records a pipeline client round trip. kind distinguishes
// failure causes (transport, status, decode) that are never shown to users.
func ObservePipelineCall(duration time.Duration, outcome, kind string) {
	switch outcome {
	case OutcomeSuccess, OutcomeCanceled:
	default:
		outcome = OutcomeError
	}
	if kind == "" {
		kind = "none"
	}
	pipelineCallsTotal.WithLabelValues(outcome, kind).Inc()
	if duration < 0 {
		duration = 0
	}
	pipelineCallSeconds.Observe(duration.Seconds())
}

// ObserveAnalysis records one completed analysis and the components it found.
func ObserveAnalysis(urgency string, components []string) {
	if urgency == "" {
		urgency = "medium"
	}
	analysisRunsTotal.WithLabelValues(urgency).Inc()
	for _, c := range components {
		componentsDetectedTotal.WithLabelValues(c).Inc()
	}
}

// ObserveLLM records a response generation attempt.
func ObserveLLM(provider, outcome string) {
	if outcome != OutcomeError {
		outcome = OutcomeSuccess
	}
	llmRequestsTotal.WithLabelValues(provider, outcome).Inc()
}

// ObserveChatMessage counts one transcript entry.
func ObserveChatMessage(sender string) {
	chatMessagesTotal.WithLabelValues(sender).Inc()
}
