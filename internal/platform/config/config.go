package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile         = ".env"
	defaultPort            = "8080"
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 45 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultRequestTimeout  = 30 * time.Second
	defaultPipelineTimeout = 20 * time.Second
	defaultOpenAIModel     = "gpt-3.5-turbo"
	defaultOpenAIBaseURL   = "https://api.openai.com/v1"
	defaultTemperature     = 0.7
	defaultMaxTokens       = 500
	defaultMaxSessions     = 1000
	defaultMaxInputBytes   = 16 * 1024
	defaultLocale          = "en"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server   ServerConfig
	Site     SiteConfig
	Pipeline PipelineConfig
	LLM      LLMConfig
	Analysis AnalysisConfig
	Session  SessionConfig
	LogLevel string
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
	DevMode        bool
}

// SiteConfig locates templates and static content on disk.
type SiteConfig struct {
	TemplatesDir string
	PublicDir    string
	ContentDir   string
	LocalesDir   string
	BaseURL      string
	Locales      []string
	Fallback     string
	Analytics    AnalyticsConfig
}

// AnalyticsConfig holds client instrumentation identifiers surfaced to templates.
type AnalyticsConfig struct {
	GA4MeasurementID string
	Debug            bool
}

// PipelineConfig points the website at the analysis pipeline. An empty BaseURL
// means the in-process engine serves the pipeline directly.
type PipelineConfig struct {
	BaseURL       string
	Timeout       time.Duration
	MaxInputBytes int64
}

// LLMConfig mirrors the OpenAI settings of the analysis backend.
type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int64
}

// DemoMode reports whether responses come from the canned generator.
func (c LLMConfig) DemoMode() bool {
	return strings.TrimSpace(c.APIKey) == ""
}

// AnalysisConfig tunes the in-process SECRM/EIGA engines.
type AnalysisConfig struct {
	// LLMEnabled attaches generated replies and suggestions to pipeline results.
	LLMEnabled bool
}

// SessionConfig controls the signed session cookie and chat transcript retention.
type SessionConfig struct {
	SigningKey  string
	Secure      bool
	MaxSessions int
}

// ValidationError is returned when configuration values fail to parse.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map. Values in the map take precedence
// over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles configuration from defaults, the .env file, the process
// environment and explicit overrides, in increasing precedence.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnv, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if v, ok := options.envMap[key]; ok {
			return v, true
		}
		if options.useSystemEnv {
			if v, ok := os.LookupEnv(key); ok {
				return v, true
			}
		}
		if v, ok := dotEnv[key]; ok {
			return v, true
		}
		return "", false
	}

	p := parser{lookup: lookup}
	port := p.str("SECRM_WEB_PORT", "")
	if port == "" {
		port = p.str("PORT", defaultPort)
	}

	cfg := Config{
		Server: ServerConfig{
			Port:           port,
			ReadTimeout:    p.duration("SECRM_WEB_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:   p.duration("SECRM_WEB_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:    p.duration("SECRM_WEB_IDLE_TIMEOUT", defaultIdleTimeout),
			RequestTimeout: p.duration("SECRM_WEB_REQUEST_TIMEOUT", defaultRequestTimeout),
			DevMode:        p.boolean("SECRM_WEB_DEV", false) || p.boolean("DEV", false),
		},
		Site: SiteConfig{
			TemplatesDir: p.str("SECRM_WEB_TEMPLATES_DIR", "templates"),
			PublicDir:    p.str("SECRM_WEB_PUBLIC_DIR", "public"),
			ContentDir:   p.str("SECRM_WEB_CONTENT_DIR", "content"),
			LocalesDir:   p.str("SECRM_WEB_LOCALES_DIR", "locales"),
			BaseURL:      strings.TrimRight(p.str("SECRM_WEB_BASE_URL", ""), "/"),
			Locales:      p.list("SECRM_WEB_LOCALES", []string{"en", "es"}),
			Fallback:     p.str("SECRM_WEB_FALLBACK_LOCALE", defaultLocale),
			Analytics: AnalyticsConfig{
				GA4MeasurementID: p.str("SECRM_WEB_GA_MEASUREMENT_ID", ""),
				Debug:            p.boolean("SECRM_WEB_ANALYTICS_DEBUG", false),
			},
		},
		Pipeline: PipelineConfig{
			BaseURL:       strings.TrimRight(p.str("SECRM_PIPELINE_URL", ""), "/"),
			Timeout:       p.duration("SECRM_PIPELINE_TIMEOUT", defaultPipelineTimeout),
			MaxInputBytes: int64(p.integer("SECRM_PIPELINE_MAX_INPUT_BYTES", defaultMaxInputBytes)),
		},
		LLM: LLMConfig{
			APIKey:      p.str("OPENAI_API_KEY", ""),
			BaseURL:     p.str("OPENAI_BASE_URL", defaultOpenAIBaseURL),
			Model:       p.str("OPENAI_MODEL", defaultOpenAIModel),
			Temperature: p.float("OPENAI_TEMPERATURE", defaultTemperature),
			MaxTokens:   int64(p.integer("OPENAI_MAX_TOKENS", defaultMaxTokens)),
		},
		Analysis: AnalysisConfig{
			LLMEnabled: p.boolean("SECRM_LLM_ENABLED", true),
		},
		Session: SessionConfig{
			SigningKey:  p.str("SECRM_WEB_SESSION_SIGNING_KEY", ""),
			Secure:      strings.EqualFold(p.str("SECRM_WEB_ENV", ""), "prod"),
			MaxSessions: p.integer("SECRM_WEB_MAX_CHAT_SESSIONS", defaultMaxSessions),
		},
		LogLevel: p.str("LOG_LEVEL", "info"),
	}

	if cfg.Pipeline.Timeout <= 0 {
		p.invalid = append(p.invalid, "SECRM_PIPELINE_TIMEOUT")
	}
	if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
		p.invalid = append(p.invalid, "OPENAI_TEMPERATURE")
	}
	if len(p.invalid) > 0 {
		return Config{}, &ValidationError{fields: p.invalid}
	}
	return cfg, nil
}

func loadDotEnv(path string) (map[string]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return values, nil
}

type parser struct {
	lookup  func(string) (string, bool)
	invalid []string
}

func (p *parser) str(key, def string) string {
	if v, ok := p.lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (p *parser) list(key string, def []string) []string {
	raw := p.str(key, "")
	if raw == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	raw := p.str(key, "")
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		p.invalid = append(p.invalid, key)
		return def
	}
	return d
}

func (p *parser) integer(key string, def int) int {
	raw := p.str(key, "")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.invalid = append(p.invalid, key)
		return def
	}
	return n
}

func (p *parser) float(key string, def float64) float64 {
	raw := p.str(key, "")
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.invalid = append(p.invalid, key)
		return def
	}
	return f
}

func (p *parser) boolean(key string, def bool) bool {
	raw := p.str(key, "")
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		p.invalid = append(p.invalid, key)
		return def
	}
	return b
}
