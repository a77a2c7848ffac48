package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"secrm-eiga.dev/web/internal/analysis"
	"secrm-eiga.dev/web/internal/api"
	"secrm-eiga.dev/web/internal/chat"
	"secrm-eiga.dev/web/internal/cms"
	"secrm-eiga.dev/web/internal/format"
	handlersPkg "secrm-eiga.dev/web/internal/handlers"
	"secrm-eiga.dev/web/internal/i18n"
	"secrm-eiga.dev/web/internal/llm"
	"secrm-eiga.dev/web/internal/metrics"
	mw "secrm-eiga.dev/web/internal/middleware"
	"secrm-eiga.dev/web/internal/pipeline"
	"secrm-eiga.dev/web/internal/platform/config"
	"secrm-eiga.dev/web/internal/platform/observability"
	"secrm-eiga.dev/web/internal/platform/requestctx"
	"secrm-eiga.dev/web/internal/seo"
)

var (
	templatesDir = "templates"
	publicDir    = "public"
	// devMode reparses templates on every request
	devMode   bool
	tmplCache *template.Template

	i18nBundle    *i18n.Bundle
	contentClient *cms.Client
	analyzer      pipeline.Analyzer
	transcripts   = chat.NewStore(0)
	siteCfg       config.SiteConfig
	demoMode      bool
	clock         = time.Now
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	var (
		addr     string
		tmplPath string
		pubPath  string
	)
	flag.StringVar(&addr, "addr", ":"+cfg.Server.Port, "HTTP listen address")
	flag.StringVar(&tmplPath, "templates", cfg.Site.TemplatesDir, "templates directory")
	flag.StringVar(&pubPath, "public", cfg.Site.PublicDir, "public assets directory")
	flag.Parse()

	templatesDir = tmplPath
	publicDir = pubPath
	devMode = cfg.Server.DevMode
	siteCfg = cfg.Site

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if !devMode {
		tc, err := parseTemplates()
		if err != nil {
			logger.Fatal("parse templates", zap.Error(err))
		}
		tmplCache = tc
	}

	i18nBundle, err = i18n.Load(cfg.Site.LocalesDir, cfg.Site.Fallback, cfg.Site.Locales)
	if err != nil {
		logger.Fatal("load locales", zap.Error(err))
	}
	contentClient = cms.NewClient(cfg.Site.ContentDir, cms.WithFallbackLang(cfg.Site.Fallback))
	transcripts = chat.NewStore(cfg.Session.MaxSessions)

	if mw.ConfigureSession(cfg.Session.SigningKey, cfg.Session.Secure) {
		logger.Warn("SECRM_WEB_SESSION_SIGNING_KEY not set; sessions will not survive a restart")
	}

	var engineOpts []analysis.Option
	if cfg.Analysis.LLMEnabled {
		engineOpts = append(engineOpts, analysis.WithGenerator(llm.New(llm.OpenAIConfig{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
		})))
	}
	engine := analysis.NewEngine(engineOpts...)
	demoMode = cfg.LLM.DemoMode() || !cfg.Analysis.LLMEnabled

	if cfg.Pipeline.BaseURL != "" {
		analyzer = pipeline.NewClient(cfg.Pipeline.BaseURL, pipeline.WithTimeout(cfg.Pipeline.Timeout))
	} else {
		analyzer = engine
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := metrics.Register(reg); err != nil {
		logger.Fatal("register metrics", zap.Error(err))
	}

	apiHandlers := api.NewHandlers(engine, api.WithMaxBodySize(cfg.Pipeline.MaxInputBytes))
	r := newRouter(logger, apiHandlers, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), cfg.Server.RequestTimeout)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ErrorLog:          log.New(observability.NewStdAdapter(logger), "", 0),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("web listening",
			zap.String("addr", addr),
			zap.Bool("dev_mode", devMode),
			zap.Bool("demo_mode", demoMode),
			zap.String("pipeline", pipelineTarget(cfg.Pipeline.BaseURL)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func pipelineTarget(base string) string {
	if base == "" {
		return "in-process"
	}
	return base
}

// newRouter wires the middleware stack and every route. The JSON API and
// metrics sit outside the session and CSRF group since their clients are not
// browsers.
func newRouter(logger *zap.Logger, apiHandlers *api.Handlers, metricsHandler http.Handler, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	// If deployed behind a trusted reverse proxy/load balancer, RealIP will use
	// X-Forwarded-For to determine the client IP.
	r.Use(middleware.RealIP)
	r.Use(observability.InjectLoggerMiddleware(logger))
	r.Use(observability.RequestLoggerMiddleware())
	r.Use(observability.RecoveryMiddleware(logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	assets := http.StripPrefix("/assets", mw.AssetsWithCache(filepath.Join(publicDir, "assets")))
	r.Handle("/assets/*", assets)

	if apiHandlers != nil {
		r.Route("/api", func(r chi.Router) {
			if requestTimeout > 0 {
				r.Use(middleware.Timeout(requestTimeout))
			}
			apiHandlers.Routes(r)
		})
	}

	r.Group(func(r chi.Router) {
		r.Use(mw.HTMX)
		r.Use(mw.Session)
		r.Use(mw.Locale(i18nBundle))
		r.Use(mw.CSRF)
		r.Use(mw.VaryLocale)
		if requestTimeout > 0 {
			r.Use(middleware.Timeout(requestTimeout))
		}
		mountSite(r)
	})
	return r
}

// mountSite registers the pages and htmx fragments.
func mountSite(r chi.Router) {
	r.Get("/", HomeHandler)
	r.Get("/features", FeaturesHandler)
	r.Get("/pipeline", PipelineHandler)
	r.Get("/analytics", AnalyticsHandler)
	r.Get("/chat", ChatHandler)
	r.Get("/usecases", UseCasesHandler)
	r.Get("/pricing", PricingHandler)
	r.Get("/competitive", CompetitiveHandler)
	r.Get("/demo", DemoHandler)

	r.Post("/pipeline/run", PipelineRunFrag)
	r.Get("/pipeline/sample", PipelineSampleFrag)
	r.Post("/demo/run", DemoRunFrag)
	r.Post("/chat/messages", ChatMessageFrag)
	r.Post("/chat/clear", ChatClearFrag)
	r.Get("/chat/export", ChatExportHandler)

	r.NotFound(NotFoundHandler)
}

func parseTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"now": time.Now,
		"t": func(lang, key string) string {
			return i18nOrDefault(lang, key, key)
		},
		"fmtDate": format.FmtDate,
		"jsonld": func(s string) template.JS {
			return template.JS(s)
		},
		"dict": dict,
	}
	// Recursively discover and parse all .tmpl files. Note: ParseGlob doesn't support **.
	var files []string
	if err := filepath.WalkDir(templatesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found under %s", templatesDir)
	}
	return template.New("_root").Funcs(funcMap).ParseFiles(files...)
}

// dict builds a map from alternating key/value arguments so partials can take
// more than one value.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("dict: odd number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		k, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		m[k] = pairs[i+1]
	}
	return m, nil
}

func templates() (*template.Template, error) {
	if devMode {
		return parseTemplates()
	}
	if tmplCache == nil {
		return nil, errors.New("template not initialized")
	}
	return tmplCache, nil
}

// renderLayout executes the base layout. In dev mode, templates are reparsed on each request.
func renderLayout(w http.ResponseWriter, r *http.Request, status int, data any) {
	t, err := templates()
	if err != nil {
		http.Error(w, fmt.Sprintf("template parse error: %v", err), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		requestctx.Logger(r.Context()).Error("template exec", zap.String("template", "base"), zap.Error(err))
		http.Error(w, fmt.Sprintf("template exec error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderPage renders page_<name> into the layout.
func renderPage(w http.ResponseWriter, r *http.Request, name string, vm handlersPkg.PageData) {
	renderPageStatus(w, r, http.StatusOK, name, vm)
}

func renderPageStatus(w http.ResponseWriter, r *http.Request, status int, name string, vm handlersPkg.PageData) {
	t, err := templates()
	if err != nil {
		http.Error(w, fmt.Sprintf("template parse error: %v", err), http.StatusInternalServerError)
		return
	}
	var body bytes.Buffer
	if err := t.ExecuteTemplate(&body, "page_"+name, vm); err != nil {
		requestctx.Logger(r.Context()).Error("template exec", zap.String("template", "page_"+name), zap.Error(err))
		http.Error(w, fmt.Sprintf("template exec error: %v", err), http.StatusInternalServerError)
		return
	}
	vm.Content = template.HTML(body.String())
	renderLayout(w, r, status, vm)
}

// renderTemplate executes a single fragment template for htmx swaps.
func renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	t, err := templates()
	if err != nil {
		http.Error(w, fmt.Sprintf("template parse error: %v", err), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		requestctx.Logger(r.Context()).Error("template exec", zap.String("template", name), zap.Error(err))
		http.Error(w, fmt.Sprintf("template exec error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func i18nOrDefault(lang, key, def string) string {
	if i18nBundle == nil {
		return def
	}
	if v, ok := i18nBundle.Lookup(lang, key); ok {
		return v
	}
	return def
}

// absoluteURL is the canonical URL of the request without its query string.
func absoluteURL(r *http.Request) string {
	if base := strings.TrimRight(siteCfg.BaseURL, "/"); base != "" {
		return base + r.URL.Path
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p == "http" || p == "https" {
		scheme = p
	}
	return scheme + "://" + r.Host + r.URL.Path
}

// buildAlternates lists one hreflang link per supported locale.
func buildAlternates(r *http.Request) []seo.Alternate {
	if i18nBundle == nil {
		return nil
	}
	canonical := absoluteURL(r)
	langs := i18nBundle.Supported()
	out := make([]seo.Alternate, 0, len(langs)+1)
	for _, l := range langs {
		out = append(out, seo.Alternate{Href: canonical + "?hl=" + l, Hreflang: l})
	}
	out = append(out, seo.Alternate{Href: canonical, Hreflang: "x-default"})
	return out
}
