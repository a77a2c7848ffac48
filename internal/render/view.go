package render

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"math"
	"sort"
	"strings"
	"time"

	"secrm-eiga.dev/web/internal/format"
	"secrm-eiga.dev/web/internal/pipeline"
)

// Display fallbacks for fields the pipeline omitted.
const (
	NoComponents      = "No specific components detected"
	NoResponse        = "No response generated"
	DefaultUrgency    = "MEDIUM"
	DefaultChurnRisk  = "Low"
	NoRecommendations = "No specific recommendations generated"
	DefaultFinal      = "Analysis complete"
	DefaultModel      = "SECRM-EIGA"
	DefaultConfidence = 0.85
	FailedToAnalyze   = "Failed to analyze"
	RunningMessage    = "Running SECRM-EIGA analysis..."
	ChatErrorMessage  = "Sorry, I encountered an error. Please try again."
)

// Badge tones map to CSS modifier classes.
const (
	ToneNeutral = ""
	ToneWarning = "warning"
	ToneSuccess = "success"
)

// Badge is a small labelled pill.
type Badge struct {
	Text string
	Tone string
}

// Class returns the CSS class list for the badge.
func (b Badge) Class() string {
	if b.Tone == ToneNeutral {
		return "badge"
	}
	return "badge badge-" + b.Tone
}

// ComponentView is one recognised component row.
type ComponentView struct {
	Label      string
	Severity   Badge
	Confidence string
	Evidence   string
}

// RecommendationView is one business recommendation card.
type RecommendationView struct {
	Title       string
	Type        Badge
	Description string
	Action      string
}

// ResultView is the fully defaulted analysis panel.
type ResultView struct {
	Components       []ComponentView
	ComponentsEmpty  string
	CustomerResponse template.HTML
	Urgency          string
	ComponentCount   int
	ChurnRisk        string
	Sentiment        []Badge
	Recommendations  []RecommendationView
	RecsEmpty        string
	FinalAnalysis    string
}

// ErrorView is the single user-facing failure line.
type ErrorView struct {
	Message string
}

// ChatMeta describes the generator behind an AI reply.
type ChatMeta struct {
	Model      string
	Confidence string
	Components string
}

// ChatMessageView is one rendered chat bubble.
type ChatMessageView struct {
	Sender string
	Avatar string
	Text   template.HTML
	Time   string
	Meta   *ChatMeta
}

// ChatReplyView is the AI half of an exchange plus optional suggestions.
type ChatReplyView struct {
	Message     ChatMessageView
	Suggestions []string
}

// BuildResultView maps a decoded result into display values, substituting the
// documented fallback for every missing field.
func BuildResultView(res pipeline.AnalysisResult) ResultView {
	view := ResultView{
		CustomerResponse: RichText(defaultString(res.CustomerResponse, NoResponse)),
		Urgency:          DefaultUrgency,
		ComponentCount:   res.ComponentCount,
		ChurnRisk:        DefaultChurnRisk,
		Sentiment:        SentimentBadges(res.SentimentBreakdown),
		FinalAnalysis:    defaultString(res.FinalAnalysis, DefaultFinal),
	}
	if u := strings.TrimSpace(res.UrgencyLevel); u != "" {
		view.Urgency = strings.ToUpper(u)
	}
	if res.RiskAssessment != nil && strings.TrimSpace(res.RiskAssessment.ChurnRisk) != "" {
		view.ChurnRisk = strings.TrimSpace(res.RiskAssessment.ChurnRisk)
	}

	for _, c := range res.Components {
		cv := ComponentView{
			Label:      ComponentLabel(c.Label),
			Severity:   Badge{Text: c.Severity},
			Confidence: Percent(c.Confidence),
			Evidence:   strings.Join(c.Evidence, ", "),
		}
		if c.Severity == "critical" {
			cv.Severity.Tone = ToneWarning
		}
		view.Components = append(view.Components, cv)
	}
	if len(view.Components) == 0 {
		view.ComponentsEmpty = NoComponents
	}

	for _, rec := range res.BusinessRecommendations {
		rv := RecommendationView{
			Title:       rec.Title,
			Type:        Badge{Text: rec.Type},
			Description: rec.Description,
			Action:      rec.Action,
		}
		switch rec.Type {
		case "Business Impact":
			rv.Type.Tone = ToneWarning
		case "Retention":
			rv.Type.Tone = ToneSuccess
		}
		view.Recommendations = append(view.Recommendations, rv)
	}
	if len(view.Recommendations) == 0 {
		view.RecsEmpty = NoRecommendations
	}
	return view
}

// BuildErrorView collapses any failure into one "Error: ..." line. Transport and
// decode failures are not distinguished for display.
func BuildErrorView(err error) ErrorView {
	msg := FailedToAnalyze
	var statusErr *pipeline.StatusError
	switch {
	case err == nil:
	case errors.As(err, &statusErr):
		msg = statusErr.Message()
	case errors.Is(err, context.DeadlineExceeded):
		msg = "The analysis service did not respond in time"
	}
	return ErrorView{Message: "Error: " + msg}
}

// BuildChatReply renders the AI side of a chat exchange.
func BuildChatReply(res pipeline.AnalysisResult, now time.Time) ChatReplyView {
	meta := &ChatMeta{
		Model:      DefaultModel,
		Confidence: Percent(DefaultConfidence),
	}
	if res.LLMMetadata != nil {
		meta.Model = defaultString(res.LLMMetadata.ModelUsed, DefaultModel)
		if res.LLMMetadata.Confidence != 0 {
			meta.Confidence = Percent(res.LLMMetadata.Confidence)
		}
	}
	if res.ComponentCount > 0 {
		meta.Components = fmt.Sprintf("%d detected", res.ComponentCount)
	}
	return ChatReplyView{
		Message: ChatMessageView{
			Sender: "ai",
			Avatar: "🤖",
			Text:   RichText(defaultString(res.CustomerResponse, NoResponse)),
			Time:   format.FmtClock(now),
			Meta:   meta,
		},
		Suggestions: res.IntelligentSuggestions,
	}
}

// UserMessage renders the user's own chat bubble.
func UserMessage(text string, now time.Time) ChatMessageView {
	return ChatMessageView{
		Sender: "user",
		Avatar: "👤",
		Text:   PlainText(text),
		Time:   format.FmtClock(now),
	}
}

// AIMessage renders a bare AI bubble without metadata.
func AIMessage(text string, now time.Time) ChatMessageView {
	return ChatMessageView{
		Sender: "ai",
		Avatar: "🤖",
		Text:   PlainText(text),
		Time:   format.FmtClock(now),
	}
}

// SentimentBadges returns one badge per key in key order.
func SentimentBadges(breakdown map[string]float64) []Badge {
	if len(breakdown) == 0 {
		return nil
	}
	keys := make([]string, 0, len(breakdown))
	for k := range breakdown {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Badge, 0, len(keys))
	for _, k := range keys {
		b := Badge{Text: fmt.Sprintf("%s: %s", k, Percent(breakdown[k]))}
		switch k {
		case "negative":
			b.Tone = ToneWarning
		case "positive":
			b.Tone = ToneSuccess
		}
		out = append(out, b)
	}
	return out
}

// ComponentLabel replaces the first underscore with a space and upper-cases
// the result: build_quality becomes BUILD QUALITY.
func ComponentLabel(label string) string {
	return strings.ToUpper(strings.Replace(label, "_", " ", 1))
}

// Percent formats a [0,1] ratio as a whole percentage.
func Percent(v float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(v*100)))
}

func defaultString(val, fallback string) string {
	if strings.TrimSpace(val) == "" {
		return fallback
	}
	return strings.TrimSpace(val)
}
