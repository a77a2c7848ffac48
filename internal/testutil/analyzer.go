package testutil

import (
	"context"
	"strings"
	"sync"

	"secrm-eiga.dev/web/internal/pipeline"
)

// FakeAnalyzer is a scripted pipeline.Analyzer that records submitted text.
type FakeAnalyzer struct {
	Result pipeline.AnalysisResult
	Err    error

	mu    sync.Mutex
	calls []string
}

// Submit mirrors the real client: blank input is rejected without a call.
func (f *FakeAnalyzer) Submit(ctx context.Context, text string) (pipeline.AnalysisResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return pipeline.AnalysisResult{}, pipeline.ErrEmptyInput
	}
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()
	if f.Err != nil {
		return pipeline.AnalysisResult{}, f.Err
	}
	if err := ctx.Err(); err != nil {
		return pipeline.AnalysisResult{}, err
	}
	return f.Result, nil
}

// Calls returns the texts that reached the analyzer.
func (f *FakeAnalyzer) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}
