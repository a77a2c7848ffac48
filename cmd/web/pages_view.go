package main

import (
	"fmt"

	"secrm-eiga.dev/web/internal/cms"
	handlersPkg "secrm-eiga.dev/web/internal/handlers"
)

// sampleReview is loaded into the pipeline form by "Load Sample".
const sampleReview = "My phone keeps dying after the latest update. It used to last all day but now barely makes it to lunch. Also gets really hot when using maps. I bought this for work emails but the keyboard lags constantly. My old Samsung never had these issues. Thinking about returning but it's already been 2 months..."

type homeView struct {
	Copy         cms.Home
	Testimonials []cms.Testimonial
}

type pricingView struct {
	Title string
	Plans []handlersPkg.PlanView
}

func pipelineForm(lang string) handlersPkg.Analysis {
	return handlersPkg.Analysis{
		Endpoint: "/pipeline/run",
		Target:   "pipeline-result",
		Sample:   "/pipeline/sample",
		Title:    i18nOrDefault(lang, "pipeline.title", "SECRM-EIGA Pipeline"),
	}
}

func demoForm(lang string) handlersPkg.Analysis {
	return handlersPkg.Analysis{
		Endpoint: "/demo/run",
		Target:   "demo-result",
		Title:    i18nOrDefault(lang, "demo.title", "Try SECRM-EIGA"),
	}
}

// formatDecimal renders minor units as a plain decimal for structured data.
func formatDecimal(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}
