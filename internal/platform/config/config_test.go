package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(WithEnvMap(map[string]string{}), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != defaultPort {
		t.Errorf("expected port %q, got %q", defaultPort, cfg.Server.Port)
	}
	if cfg.Server.RequestTimeout != defaultRequestTimeout {
		t.Errorf("expected request timeout %s, got %s", defaultRequestTimeout, cfg.Server.RequestTimeout)
	}
	if cfg.Pipeline.Timeout != defaultPipelineTimeout {
		t.Errorf("expected pipeline timeout %s, got %s", defaultPipelineTimeout, cfg.Pipeline.Timeout)
	}
	if cfg.LLM.Model != defaultOpenAIModel {
		t.Errorf("expected model %q, got %q", defaultOpenAIModel, cfg.LLM.Model)
	}
	if !cfg.LLM.DemoMode() {
		t.Errorf("expected demo mode without an API key")
	}
	if !cfg.Analysis.LLMEnabled {
		t.Errorf("expected llm enrichment enabled by default")
	}
	if got := cfg.Site.Locales; len(got) != 2 || got[0] != "en" || got[1] != "es" {
		t.Errorf("unexpected locales %v", got)
	}
	if cfg.Session.Secure {
		t.Errorf("expected insecure cookies outside prod")
	}
}

func TestLoadOverrides(t *testing.T) {
	env := map[string]string{
		"PORT":                        "9090",
		"SECRM_WEB_DEV":               "true",
		"SECRM_PIPELINE_URL":          "http://localhost:8000/",
		"SECRM_PIPELINE_TIMEOUT":      "5s",
		"OPENAI_API_KEY":              "sk-test",
		"OPENAI_MODEL":                "gpt-4o-mini",
		"OPENAI_TEMPERATURE":          "0.2",
		"SECRM_WEB_LOCALES":           "EN, es ,",
		"SECRM_WEB_ENV":               "prod",
		"SECRM_WEB_MAX_CHAT_SESSIONS": "10",
	}
	cfg, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %q", cfg.Server.Port)
	}
	if !cfg.Server.DevMode {
		t.Errorf("expected dev mode")
	}
	if cfg.Pipeline.BaseURL != "http://localhost:8000" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.Pipeline.BaseURL)
	}
	if cfg.Pipeline.Timeout != 5*time.Second {
		t.Errorf("expected 5s pipeline timeout, got %s", cfg.Pipeline.Timeout)
	}
	if cfg.LLM.DemoMode() {
		t.Errorf("expected live mode with an API key")
	}
	if cfg.LLM.Model != "gpt-4o-mini" || cfg.LLM.Temperature != 0.2 {
		t.Errorf("unexpected llm config %+v", cfg.LLM)
	}
	if got := cfg.Site.Locales; len(got) != 2 || got[0] != "en" || got[1] != "es" {
		t.Errorf("unexpected locales %v", got)
	}
	if !cfg.Session.Secure {
		t.Errorf("expected secure cookies in prod")
	}
	if cfg.Session.MaxSessions != 10 {
		t.Errorf("expected 10 sessions, got %d", cfg.Session.MaxSessions)
	}
}

func TestLoadPrefersNamespacedPort(t *testing.T) {
	cfg, err := Load(WithEnvMap(map[string]string{"PORT": "1", "SECRM_WEB_PORT": "2"}), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != "2" {
		t.Errorf("expected SECRM_WEB_PORT to win, got %q", cfg.Server.Port)
	}
}

func TestLoadReadsDotEnvBelowExplicitValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "OPENAI_MODEL=gpt-4o\nSECRM_WEB_PORT=7000\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(WithEnvFile(path), WithEnvMap(map[string]string{"SECRM_WEB_PORT": "7100"}), WithoutSystemEnv())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LLM.Model != "gpt-4o" {
		t.Errorf("expected model from .env, got %q", cfg.LLM.Model)
	}
	if cfg.Server.Port != "7100" {
		t.Errorf("expected explicit map to override .env, got %q", cfg.Server.Port)
	}
}

func TestLoadMissingDotEnvIsIgnored(t *testing.T) {
	_, err := Load(WithEnvFile(filepath.Join(t.TempDir(), "missing.env")), WithoutSystemEnv())
	if err != nil {
		t.Fatalf("expected missing .env to be ignored, got %v", err)
	}
}

func TestLoadValidationErrors(t *testing.T) {
	env := map[string]string{
		"SECRM_PIPELINE_TIMEOUT": "soon",
		"OPENAI_TEMPERATURE":     "3.5",
		"SECRM_WEB_DEV":          "maybe",
	}
	_, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err == nil {
		t.Fatalf("expected validation error")
	}
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	fields := map[string]bool{}
	for _, f := range vErr.Fields() {
		fields[f] = true
	}
	for _, want := range []string{"SECRM_PIPELINE_TIMEOUT", "OPENAI_TEMPERATURE", "SECRM_WEB_DEV"} {
		if !fields[want] {
			t.Errorf("expected %s in invalid fields %v", want, vErr.Fields())
		}
	}
}
