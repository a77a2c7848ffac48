package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"secrm-eiga.dev/web/internal/pipeline"
)

func TestBuildResultViewDefaults(t *testing.T) {
	t.Parallel()

	view := BuildResultView(pipeline.AnalysisResult{})

	require.Empty(t, view.Components)
	require.Equal(t, NoComponents, view.ComponentsEmpty)
	require.Equal(t, "<p>"+NoResponse+"</p>", string(view.CustomerResponse))
	require.Equal(t, "MEDIUM", view.Urgency)
	require.Equal(t, 0, view.ComponentCount)
	require.Equal(t, "Low", view.ChurnRisk)
	require.Empty(t, view.Recommendations)
	require.Equal(t, NoRecommendations, view.RecsEmpty)
	require.Equal(t, "Analysis complete", view.FinalAnalysis)
	require.Empty(t, view.Sentiment)
}

func TestBuildResultViewEmptyComponentsList(t *testing.T) {
	t.Parallel()

	view := BuildResultView(pipeline.AnalysisResult{Components: []pipeline.Component{}, ComponentCount: 3})
	require.Equal(t, NoComponents, view.ComponentsEmpty)
	// component_count is informational and never reconciled with the list
	require.Equal(t, 3, view.ComponentCount)
}

func TestBuildResultViewMapsFields(t *testing.T) {
	t.Parallel()

	res := pipeline.AnalysisResult{
		Components: []pipeline.Component{
			{Label: "build_quality", Severity: "medium", Confidence: 0.45, Evidence: []string{"box", "torn"}},
			{Label: "battery", Severity: "critical", Confidence: 0.754, Evidence: []string{"battery"}},
		},
		BusinessRecommendations: []pipeline.Recommendation{
			{Type: "Business Impact", Title: "Risk", Description: "d", Action: "a"},
			{Type: "Technical Action", Title: "Fix", Description: "d", Action: "a"},
			{Type: "Retention", Title: "Keep", Description: "d", Action: "a"},
		},
		UrgencyLevel:   "urgent",
		RiskAssessment: &pipeline.RiskAssessment{ChurnRisk: "Very High (80-90%)"},
		FinalAnalysis:  "Detected issues: battery.",
	}

	view := BuildResultView(res)
	require.Len(t, view.Components, 2)
	require.Equal(t, "BUILD QUALITY", view.Components[0].Label)
	require.Equal(t, "45%", view.Components[0].Confidence)
	require.Equal(t, "box, torn", view.Components[0].Evidence)
	require.Equal(t, "badge", view.Components[0].Severity.Class())
	require.Equal(t, "badge badge-warning", view.Components[1].Severity.Class())
	require.Equal(t, "75%", view.Components[1].Confidence)
	require.Equal(t, "URGENT", view.Urgency)
	require.Equal(t, "Very High (80-90%)", view.ChurnRisk)
	require.Equal(t, ToneWarning, view.Recommendations[0].Type.Tone)
	require.Equal(t, ToneNeutral, view.Recommendations[1].Type.Tone)
	require.Equal(t, ToneSuccess, view.Recommendations[2].Type.Tone)
	require.Empty(t, view.RecsEmpty)
}

func TestSentimentBadges(t *testing.T) {
	t.Parallel()

	badges := SentimentBadges(map[string]float64{"positive": 0.1, "negative": 0.8, "neutral": 0.1})
	require.Equal(t, []Badge{
		{Text: "negative: 80%", Tone: ToneWarning},
		{Text: "neutral: 10%", Tone: ToneNeutral},
		{Text: "positive: 10%", Tone: ToneSuccess},
	}, badges)
}

func TestComponentLabel(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"battery":        "BATTERY",
		"build_quality":  "BUILD QUALITY",
		"a_b_c":          "A B_C",
		"":               "",
		"already spaced": "ALREADY SPACED",
	}
	for in, want := range cases {
		require.Equal(t, want, ComponentLabel(in), "label %q", in)
	}
}

func TestBuildErrorView(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "Error: Failed to analyze"},
		{"transport", errors.New("dial tcp: connection refused"), "Error: Failed to analyze"},
		{"status with envelope", &pipeline.StatusError{Code: 400, Body: `{"message":"text is required"}`}, "Error: text is required"},
		{"status without envelope", fmt.Errorf("wrap: %w", &pipeline.StatusError{Code: 502}), "Error: HTTP 502"},
		{"deadline", fmt.Errorf("pipeline: %w", context.DeadlineExceeded), "Error: The analysis service did not respond in time"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, BuildErrorView(tc.err).Message)
		})
	}
}

func TestBuildChatReply(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 4, 9, 7, 0, 0, time.UTC)

	t.Run("defaults", func(t *testing.T) {
		reply := BuildChatReply(pipeline.AnalysisResult{}, now)
		require.Equal(t, "ai", reply.Message.Sender)
		require.Equal(t, "SECRM-EIGA", reply.Message.Meta.Model)
		require.Equal(t, "85%", reply.Message.Meta.Confidence)
		require.Empty(t, reply.Message.Meta.Components)
		require.Equal(t, "09:07", reply.Message.Time)
	})

	t.Run("metadata", func(t *testing.T) {
		reply := BuildChatReply(pipeline.AnalysisResult{
			CustomerResponse:       "**Opening**: hello",
			ComponentCount:         2,
			LLMMetadata:            &pipeline.LLMMetadata{ModelUsed: "gpt-4o-mini", Confidence: 0.95},
			IntelligentSuggestions: []string{"one", "two"},
		}, now)
		require.Equal(t, "gpt-4o-mini", reply.Message.Meta.Model)
		require.Equal(t, "95%", reply.Message.Meta.Confidence)
		require.Equal(t, "2 detected", reply.Message.Meta.Components)
		require.Contains(t, string(reply.Message.Text), "<strong>Opening</strong>")
		require.Equal(t, []string{"one", "two"}, reply.Suggestions)
	})
}

func TestRichTextStripsScripts(t *testing.T) {
	t.Parallel()

	out := string(RichText("hi <script>alert(1)</script> <b onclick=x>there</b>"))
	require.NotContains(t, out, "<script")
	require.NotContains(t, out, "onclick")
	require.True(t, strings.HasPrefix(out, "<p>"))
}

func TestPlainTextEscapes(t *testing.T) {
	t.Parallel()

	require.Equal(t, "a &amp; b<br>&lt;c&gt;", string(PlainText("a & b\n<c>")))
	require.Equal(t, "&lt;b&gt;bold&lt;/b&gt;", string(PlainText("<b>bold</b>")))
	// typed entities stay literal
	require.Equal(t, "&amp;lt;3", string(PlainText("&lt;3")))
}
