package main

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"secrm-eiga.dev/web/internal/cms"
	handlersPkg "secrm-eiga.dev/web/internal/handlers"
	mw "secrm-eiga.dev/web/internal/middleware"
	"secrm-eiga.dev/web/internal/nav"
	"secrm-eiga.dev/web/internal/platform/requestctx"
	"secrm-eiga.dev/web/internal/seo"
)

// newPageData fills the layout fields shared by every page. key selects the
// <key>.seo.* dictionary entries.
func newPageData(r *http.Request, key string) handlersPkg.PageData {
	lang := mw.Lang(r)
	vm := handlersPkg.PageData{
		Lang:        lang,
		Path:        r.URL.Path,
		Nav:         nav.Build(r.URL.Path),
		Breadcrumbs: nav.Breadcrumbs(r.URL.Path),
		Analytics:   handlersPkg.AnalyticsFrom(siteCfg.Analytics),
		CSRFToken:   mw.CSRFToken(r),
		DemoMode:    demoMode,
	}
	if i18nBundle != nil {
		vm.Locales = i18nBundle.Supported()
	}

	brand := i18nOrDefault(lang, "brand.name", "SECRM-EIGA")
	title := brand
	if item, ok := nav.Section(r.URL.Path); ok {
		title = i18nOrDefault(lang, item.LabelKey, brand)
	}
	vm.Title = i18nOrDefault(lang, key+".seo.title", title)
	vm.SEO.Title = vm.Title + " | " + brand
	vm.SEO.Description = i18nOrDefault(lang, key+".seo.description", i18nOrDefault(lang, "brand.tagline", ""))
	vm.SEO.Canonical = absoluteURL(r)
	vm.SEO.OG.URL = vm.SEO.Canonical
	vm.SEO.OG.SiteName = brand
	vm.SEO.OG.Type = "website"
	vm.SEO.OG.Title = vm.SEO.Title
	vm.SEO.OG.Description = vm.SEO.Description
	vm.SEO.Twitter.Card = "summary_large_image"
	vm.SEO.Alternates = buildAlternates(r)

	if len(vm.Breadcrumbs) > 1 {
		items := make([]seo.BreadcrumbItem, 0, len(vm.Breadcrumbs))
		origin := strings.TrimSuffix(vm.SEO.Canonical, r.URL.Path)
		for _, c := range vm.Breadcrumbs {
			name := c.Label
			if c.LabelKey != "" {
				name = i18nOrDefault(lang, c.LabelKey, c.Label)
			}
			items = append(items, seo.BreadcrumbItem{Name: name, Item: origin + c.Href})
		}
		vm.SEO.JSONLD = append(vm.SEO.JSONLD, seo.JSON(seo.BreadcrumbList(items)))
	}
	return vm
}

// contentError logs a content load failure and answers 404 or 500.
func contentError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, cms.ErrNotFound) {
		NotFoundHandler(w, r)
		return
	}
	requestctx.Logger(r.Context()).Error("load content", zap.String("path", r.URL.Path), zap.Error(err))
	http.Error(w, "content unavailable", http.StatusInternalServerError)
}

// HomeHandler renders the landing page.
func HomeHandler(w http.ResponseWriter, r *http.Request) {
	vm := newPageData(r, "home")
	home, err := contentClient.Home(vm.Lang)
	if err != nil {
		contentError(w, r, err)
		return
	}
	quotes, err := contentClient.Testimonials(vm.Lang)
	if err != nil {
		contentError(w, r, err)
		return
	}
	vm.Home = homeView{Copy: home, Testimonials: quotes}
	vm.SEO.Title = vm.Title
	vm.SEO.OG.Title = vm.Title
	origin := strings.TrimSuffix(vm.SEO.Canonical, "/")
	vm.SEO.JSONLD = append(vm.SEO.JSONLD, seo.JSON(seo.Organization(vm.SEO.OG.SiteName, origin, origin+"/assets/logo.svg")))
	renderPage(w, r, "home", vm)
}

// FeaturesHandler renders the markdown-backed features page.
func FeaturesHandler(w http.ResponseWriter, r *http.Request) {
	vm := newPageData(r, "features")
	page, err := contentClient.Page(vm.Lang, "features")
	if err != nil {
		contentError(w, r, err)
		return
	}
	if page.SEO.Description != "" {
		vm.SEO.Description = page.SEO.Description
		vm.SEO.OG.Description = page.SEO.Description
	}
	vm.Features = page
	renderPage(w, r, "features", vm)
}

// PipelineHandler renders the review analysis form.
func PipelineHandler(w http.ResponseWriter, r *http.Request) {
	vm := newPageData(r, "pipeline")
	vm.Pipeline = pipelineForm(vm.Lang)
	renderPage(w, r, "pipeline", vm)
}

// AnalyticsHandler renders the dashboard showcase.
func AnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	vm := newPageData(r, "analytics")
	dash, err := contentClient.Analytics(vm.Lang)
	if err != nil {
		contentError(w, r, err)
		return
	}
	vm.Dashboard = dash
	renderPage(w, r, "analytics", vm)
}

// ChatHandler renders the chat page with the session's transcript replayed.
func ChatHandler(w http.ResponseWriter, r *http.Request) {
	vm := newPageData(r, "chat")
	content, err := contentClient.Chat(vm.Lang)
	if err != nil {
		contentError(w, r, err)
		return
	}
	entries := transcripts.Get(mw.GetSession(r).ID).Entries()
	vm.Chat = handlersPkg.BuildChatPage(content, entries, clock())
	renderPage(w, r, "chat", vm)
}

// UseCasesHandler renders the use-case cards.
func UseCasesHandler(w http.ResponseWriter, r *http.Request) {
	vm := newPageData(r, "usecases")
	cases, err := contentClient.UseCases(vm.Lang)
	if err != nil {
		contentError(w, r, err)
		return
	}
	vm.UseCases = cases
	renderPage(w, r, "usecases", vm)
}

// PricingHandler renders the plans with localized prices.
func PricingHandler(w http.ResponseWriter, r *http.Request) {
	vm := newPageData(r, "pricing")
	pricing, err := contentClient.Pricing(vm.Lang)
	if err != nil {
		contentError(w, r, err)
		return
	}
	vm.Pricing = pricingView{Title: pricing.Title, Plans: handlersPkg.BuildPlans(pricing.Plans, vm.Lang)}

	offers := make([]seo.Offer, 0, len(pricing.Plans))
	for _, p := range pricing.Plans {
		o := seo.Offer{Name: p.Name, Currency: p.Currency}
		if p.PriceCents > 0 {
			o.Price = formatDecimal(p.PriceCents)
		}
		offers = append(offers, o)
	}
	vm.SEO.JSONLD = append(vm.SEO.JSONLD, seo.JSON(seo.SoftwareApplication(vm.SEO.OG.SiteName, vm.SEO.Description, vm.SEO.Canonical, offers)))
	renderPage(w, r, "pricing", vm)
}

// CompetitiveHandler renders the comparison table.
func CompetitiveHandler(w http.ResponseWriter, r *http.Request) {
	vm := newPageData(r, "competitive")
	cmp, err := contentClient.Comparison(vm.Lang)
	if err != nil {
		contentError(w, r, err)
		return
	}
	vm.Comparison = cmp
	renderPage(w, r, "competitive", vm)
}

// DemoHandler renders the free-form demo form.
func DemoHandler(w http.ResponseWriter, r *http.Request) {
	vm := newPageData(r, "demo")
	vm.Demo = demoForm(vm.Lang)
	renderPage(w, r, "demo", vm)
}

// NotFoundHandler renders the 404 page for unknown sections.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	vm := newPageData(r, "notfound")
	vm.Title = i18nOrDefault(vm.Lang, "notfound.title", "Page not found")
	vm.SEO.Title = vm.Title + " | " + vm.SEO.OG.SiteName
	vm.SEO.Robots = "noindex"
	vm.SEO.JSONLD = nil
	renderPageStatus(w, r, http.StatusNotFound, "404", vm)
}
