package handlers

import (
	"html/template"

	"secrm-eiga.dev/web/internal/nav"
	"secrm-eiga.dev/web/internal/seo"
)

// PageData is a generic view model for pages using the shared layout.
type PageData struct {
	Title     string
	Lang      string
	SEO       seo.Meta
	Analytics Analytics

	Path        string
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb
	CSRFToken   string
	DemoMode    bool
	Locales     []string

	// Content is the rendered page body placed inside the layout.
	Content template.HTML

	// Optional per-page view model payloads
	Home       any
	Features   any
	Pipeline   any
	Dashboard  any
	Chat       any
	UseCases   any
	Pricing    any
	Comparison any
	Demo       any
	Status     any
}
