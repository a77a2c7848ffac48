package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/fatih/color"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"secrm-eiga.dev/web/internal/analysis"
	"secrm-eiga.dev/web/internal/api"
	"secrm-eiga.dev/web/internal/llm"
	"secrm-eiga.dev/web/internal/pipeline"
)

func init() {
	color.NoColor = true
}

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Route("/api", api.NewHandlers(analysis.NewEngine(analysis.WithGenerator(llm.Demo{}))).Routes)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyzeArgumentJSON(t *testing.T) {
	srv := newAPIServer(t)
	out, err := execute(t, "", "analyze", "--endpoint", srv.URL, "-o", "json", "The screen flickers and the battery drains fast")
	require.NoError(t, err)

	var res pipeline.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.NotEmpty(t, res.Components)
	require.Equal(t, len(res.Components), res.ComponentCount)
	require.NotEmpty(t, res.CustomerResponse)
}

func TestAnalyzeReadsFileAndStdin(t *testing.T) {
	srv := newAPIServer(t)

	path := filepath.Join(t.TempDir(), "review.txt")
	require.NoError(t, os.WriteFile(path, []byte("my battery dies by lunch"), 0o600))
	out, err := execute(t, "", "analyze", "--endpoint", srv.URL, "-f", path)
	require.NoError(t, err)
	require.Contains(t, out, "BATTERY")

	out, err = execute(t, "the phone gets really hot", "analyze", "--endpoint", srv.URL, "-o", "yaml")
	require.NoError(t, err)
	require.Contains(t, out, "urgency_level:")
}

func TestAnalyzeBlankInputSkipsRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	t.Cleanup(srv.Close)

	_, err := execute(t, "   \n", "analyze", "--endpoint", srv.URL)
	require.EqualError(t, err, "nothing to analyze: review text is empty")
	require.Zero(t, hits.Load())
}

func TestAnalyzeReportsServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"message":"pipeline warming up"}`))
	}))
	t.Cleanup(srv.Close)

	_, err := execute(t, "", "analyze", "--endpoint", srv.URL, "battery")
	require.EqualError(t, err, "pipeline warming up")
}

func TestServeCheck(t *testing.T) {
	srv := newAPIServer(t)
	out, err := execute(t, "", "serve-check", "--endpoint", srv.URL)
	require.NoError(t, err)
	require.Contains(t, out, "status ok")

	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()
	_, err = execute(t, "", "serve-check", "--endpoint", closed.URL)
	require.Error(t, err)
	require.Contains(t, err.Error(), "is not healthy")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	require.Equal(t, "secrm version "+version+"\n", out)
}
