package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSubmitPostsTextAndDecodes(t *testing.T) {
	t.Parallel()

	var (
		gotBody   map[string]string
		gotMethod string
		gotPath   string
		gotType   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath, gotType = r.Method, r.URL.Path, r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"components":[{"label":"battery","severity":"critical","confidence":0.6,"evidence":["battery","drain"]}],
			"urgency_level":"high",
			"component_count":1,
			"risk_assessment":{"churn_risk":"High (60-70%)"},
			"sentiment_breakdown":{"negative":1}
		}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL+"/", WithHTTPClient(srv.Client()))
	res, err := c.Submit(context.Background(), "  battery drains  ")
	require.NoError(t, err)
	require.Equal(t, http.MethodPost, gotMethod)
	require.Equal(t, "/api/pipeline", gotPath)
	require.Equal(t, "application/json", gotType)
	require.Equal(t, "battery drains", gotBody["text"])
	require.Len(t, res.Components, 1)
	require.Equal(t, "battery", res.Components[0].Label)
	require.Equal(t, 1, res.ComponentCount)
	require.NotNil(t, res.RiskAssessment)
	require.Equal(t, "High (60-70%)", res.RiskAssessment.ChurnRisk)
	require.Nil(t, res.LLMMetadata)
}

func TestSubmitEmptyInputIssuesNoRequest(t *testing.T) {
	t.Parallel()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, WithHTTPClient(srv.Client()))
	for _, in := range []string{"", "   ", "\n\t "} {
		_, err := c.Submit(context.Background(), in)
		require.ErrorIs(t, err, ErrEmptyInput)
	}
	require.Zero(t, atomic.LoadInt32(&calls))
}

func TestSubmitFailureKinds(t *testing.T) {
	t.Parallel()

	t.Run("status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"error":"bad_gateway","message":"upstream unavailable"}`))
		}))
		t.Cleanup(srv.Close)

		_, err := NewClient(srv.URL, WithHTTPClient(srv.Client())).Submit(context.Background(), "hi")
		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		require.Equal(t, http.StatusBadGateway, statusErr.Code)
		require.Equal(t, "upstream unavailable", statusErr.Message())
	})

	t.Run("decode", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{not json`))
		}))
		t.Cleanup(srv.Close)

		_, err := NewClient(srv.URL, WithHTTPClient(srv.Client())).Submit(context.Background(), "hi")
		require.Error(t, err)
		require.Contains(t, err.Error(), "decode")
	})

	t.Run("transport", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		addr := srv.URL
		srv.Close()

		_, err := NewClient(addr).Submit(context.Background(), "hi")
		require.Error(t, err)
		require.Contains(t, err.Error(), "request failed")
	})
}

func TestSubmitHonoursContextCancellation(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := NewClient(srv.URL, WithHTTPClient(srv.Client())).Submit(ctx, "hi")
	require.Error(t, err)
	require.True(t, errors.Is(err, context.DeadlineExceeded), "expected deadline error, got %v", err)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestStatusErrorMessageFallsBackToCode(t *testing.T) {
	err := &StatusError{Code: 500, Body: "<html>oops</html>"}
	require.Equal(t, "HTTP 500", err.Message())
	require.Contains(t, err.Error(), "status 500")
}

func TestWithEndpoint(t *testing.T) {
	t.Parallel()

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	res, err := NewClient(srv.URL, WithHTTPClient(srv.Client()), WithEndpoint("/v2/analyze")).Submit(context.Background(), "x")
	require.NoError(t, err)
	require.Equal(t, "/v2/analyze", gotPath)
	require.Empty(t, res.Components)
}

func TestHealthProbe(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" || r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok","uptime":"3s","timestamp":"2025-03-04T10:30:00Z"}`))
	}))
	t.Cleanup(srv.Close)

	h, err := NewClient(srv.URL).Health(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ok", h.Status)
	require.Equal(t, "3s", h.Uptime)

	_, err = NewClient(srv.URL + "/nope").Health(context.Background())
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusNotFound, statusErr.Code)
}
