package llm

import (
	"context"
	"time"

	"secrm-eiga.dev/web/internal/pipeline"
)

// Provider generates a customer service reply for an analysed review.
type Provider interface {
	Generate(ctx context.Context, req Request) (Response, error)
	Name() string
}

// Request carries the query and the SECRM context used to ground the reply.
type Request struct {
	Query      string
	Components []pipeline.Component
	Sentiment  string
	Urgency    string
	// Language is an ISO 639-1 code; "en" or empty means English.
	Language string
}

// Response is a generated reply plus generator metadata.
type Response struct {
	Text           string
	Confidence     float64
	Model          string
	TokensUsed     int64
	GenerationTime time.Duration
}

// Metadata converts the response into its wire representation.
func (r Response) Metadata() *pipeline.LLMMetadata {
	return &pipeline.LLMMetadata{
		ModelUsed:      r.Model,
		Confidence:     r.Confidence,
		TokensUsed:     r.TokensUsed,
		GenerationTime: r.GenerationTime.Seconds(),
	}
}

var languageNames = map[string]string{
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"zh": "Chinese",
	"ja": "Japanese",
}

// LanguageName maps a language code to its English name, defaulting to English.
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return "English"
}
