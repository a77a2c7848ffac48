package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"secrm-eiga.dev/web/internal/pipeline"
)

func TestNewPicksDemoWithoutKey(t *testing.T) {
	t.Parallel()

	p := New(OpenAIConfig{})
	require.IsType(t, Demo{}, p)
	require.Equal(t, "demo", p.Name())

	p = New(OpenAIConfig{APIKey: "sk-test", Model: "gpt-3.5-turbo"})
	require.IsType(t, Fallback{}, p)
}

func TestDemoGenerate(t *testing.T) {
	t.Parallel()

	resp, err := Demo{}.Generate(context.Background(), Request{
		Components: []pipeline.Component{{Label: "overheating"}, {Label: "battery"}},
		Urgency:    "urgent",
	})
	require.NoError(t, err)
	require.Equal(t, "demo-mode", resp.Model)
	require.Equal(t, 0.85, resp.Confidence)
	require.True(t, strings.HasPrefix(resp.Text, demoOpener))
	require.Contains(t, resp.Text, "critical issue that requires immediate attention")
	require.Contains(t, resp.Text, "let it cool down for at least 15 minutes")

	resp, err = Demo{}.Generate(context.Background(), Request{Urgency: "high"})
	require.NoError(t, err)
	require.Contains(t, resp.Text, "Given the urgency of this issue")
	require.True(t, strings.HasSuffix(resp.Text, genericSteps))
}

func TestSuggestions(t *testing.T) {
	t.Parallel()

	got := Suggestions([]pipeline.Component{
		{Label: "battery", Severity: "critical"},
		{Label: "overheating", Severity: "critical"},
		{Label: "build_quality", Severity: "medium"},
	}, "negative")
	require.Equal(t, []string{
		"🔋 Optimize charging habits and run battery calibration",
		"🌡️ URGENT: Stop using device immediately - thermal protection needed",
		"💬 Prioritize this customer for immediate follow-up",
	}, got)

	many := Suggestions([]pipeline.Component{
		{Label: "battery"}, {Label: "overheating"}, {Label: "performance"},
		{Label: "display"}, {Label: "network"}, {Label: "audio"},
	}, "positive")
	require.Len(t, many, 5)
	require.Empty(t, Suggestions(nil, "neutral"))
}

func TestPromptsIncludeLanguageInstruction(t *testing.T) {
	t.Parallel()

	req := Request{
		Query:      "mi batería",
		Components: []pipeline.Component{{Label: "battery", Severity: "critical"}},
		Sentiment:  "negative",
		Urgency:    "high",
		Language:   "es",
	}
	user := buildUserPrompt(req)
	require.Contains(t, user, "Detected components: battery | Severity levels: critical | Customer sentiment: negative | Urgency level: high")
	require.Contains(t, user, "Please respond in Spanish.")
	require.True(t, strings.HasSuffix(buildSystemPrompt("es"), "Respond in Spanish."))
	require.Equal(t, systemPrompt, buildSystemPrompt("en"))
	require.NotContains(t, buildUserPrompt(Request{Query: "x"}), "Please respond in")
}

func TestOpenAIGenerate(t *testing.T) {
	t.Parallel()

	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id":"cmpl-1","object":"chat.completion","created":1,"model":"gpt-test",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"  Hello there  "}}],
			"usage":{"prompt_tokens":3,"completion_tokens":4,"total_tokens":7}
		}`))
	}))
	t.Cleanup(srv.Close)

	p := NewOpenAI(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL, Model: "gpt-test", Temperature: 0.7, HTTPClient: srv.Client()})
	resp, err := p.Generate(context.Background(), Request{Query: "battery dies", Urgency: "medium"})
	require.NoError(t, err)
	require.Equal(t, "Hello there", resp.Text)
	require.Equal(t, int64(7), resp.TokensUsed)
	require.Equal(t, 0.95, resp.Confidence)
	require.Equal(t, "gpt-test", body["model"])
	require.EqualValues(t, 500, body["max_tokens"])
}

func TestFallbackUsesDemoOnError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	t.Cleanup(srv.Close)

	p := Fallback{
		Primary:   NewOpenAI(OpenAIConfig{APIKey: "sk-bad", BaseURL: srv.URL, Model: "gpt-test", HTTPClient: srv.Client()}),
		Secondary: Demo{},
	}
	resp, err := p.Generate(context.Background(), Request{Components: []pipeline.Component{{Label: "audio"}}})
	require.NoError(t, err)
	require.Equal(t, "demo-mode", resp.Model)
	require.Contains(t, resp.Text, "audio settings")
}

func TestResponseMetadata(t *testing.T) {
	t.Parallel()

	meta := Response{Model: "demo-mode", Confidence: 0.85, TokensUsed: 0}.Metadata()
	require.Equal(t, "demo-mode", meta.ModelUsed)
	require.Equal(t, 0.85, meta.Confidence)
	require.Equal(t, "English", LanguageName("xx"))
}
