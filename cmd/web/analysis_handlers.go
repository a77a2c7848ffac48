package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	handlersPkg "secrm-eiga.dev/web/internal/handlers"
	mw "secrm-eiga.dev/web/internal/middleware"
	"secrm-eiga.dev/web/internal/pipeline"
	"secrm-eiga.dev/web/internal/platform/requestctx"
	"secrm-eiga.dev/web/internal/render"
)

// PipelineRunFrag analyses the submitted review and swaps in the result panel.
func PipelineRunFrag(w http.ResponseWriter, r *http.Request) {
	runAnalysis(w, r, "pipeline", pipelineForm)
}

// DemoRunFrag is the demo page's variant of PipelineRunFrag.
func DemoRunFrag(w http.ResponseWriter, r *http.Request) {
	runAnalysis(w, r, "demo", demoForm)
}

// PipelineSampleFrag returns the input area prefilled with a sample review.
func PipelineSampleFrag(w http.ResponseWriter, r *http.Request) {
	form := pipelineForm(mw.Lang(r))
	form.Input = sampleReview
	renderTemplate(w, r, "frag_sample", struct {
		Lang string
		Form handlersPkg.Analysis
	}{Lang: mw.Lang(r), Form: form})
}

func runAnalysis(w http.ResponseWriter, r *http.Request, page string, form func(lang string) handlersPkg.Analysis) {
	ctx := r.Context()
	lang := mw.Lang(r)
	text := r.PostFormValue("text")

	res, err := analyzer.Submit(ctx, text)
	if errors.Is(err, pipeline.ErrEmptyInput) {
		// nothing to analyse: leave the page as it is
		if mw.IsHTMX(ctx) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		http.Redirect(w, r, "/"+page, http.StatusSeeOther)
		return
	}

	state := form(lang)
	state.Input = text
	if err != nil {
		requestctx.Logger(ctx).Warn("pipeline analysis failed", zap.String("page", page), zap.Error(err))
		ev := render.BuildErrorView(err)
		state.Error = &ev
	} else {
		rv := render.BuildResultView(res)
		state.Result = &rv
		payload := map[string]any{
			"analysis:complete": map[string]any{
				"components": res.ComponentCount,
				"urgency":    rv.Urgency,
			},
		}
		if raw, err := json.Marshal(payload); err == nil {
			w.Header().Set("HX-Trigger", string(raw))
		}
	}

	if mw.IsHTMX(ctx) {
		if state.Error != nil {
			renderTemplate(w, r, "frag_error", state.Error)
			return
		}
		renderTemplate(w, r, "frag_result", resultFrag{Lang: lang, Result: state.Result})
		return
	}

	vm := newPageData(r, page)
	if page == "demo" {
		vm.Demo = state
	} else {
		vm.Pipeline = state
	}
	renderPage(w, r, page, vm)
}

// resultFrag carries the language alongside the result so headings translate.
type resultFrag struct {
	Lang   string
	Result *render.ResultView
}
