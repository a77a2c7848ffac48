package chat

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"secrm-eiga.dev/web/internal/pipeline"
)

func TestExportContainsEveryExchangeInOrder(t *testing.T) {
	t.Parallel()

	var tr Transcript
	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	const n = 4
	for i := 0; i < n; i++ {
		_, err := tr.Append(SenderUser, fmt.Sprintf("question %d", i), nil, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
	}

	raw, err := tr.Export(base.Add(time.Hour))
	require.NoError(t, err)

	var doc struct {
		Timestamp string `json:"timestamp"`
		History   []struct {
			Message   string          `json:"message"`
			Sender    string          `json:"sender"`
			Timestamp time.Time       `json:"timestamp"`
			Data      json.RawMessage `json:"data"`
		} `json:"history"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Equal(t, "2025-05-01T11:00:00Z", doc.Timestamp)
	require.Len(t, doc.History, n)
	for i, h := range doc.History {
		require.Equal(t, fmt.Sprintf("question %d", i), h.Message)
		require.Equal(t, "user", h.Sender)
		require.Equal(t, "null", string(h.Data))
	}
	require.NotContains(t, string(raw), `"ID"`)
}

func TestExportIncludesAnalysisData(t *testing.T) {
	t.Parallel()

	var tr Transcript
	_, err := tr.Append(SenderAI, "reply", &pipeline.AnalysisResult{ComponentCount: 2, UrgencyLevel: "high"}, time.Time{})
	require.NoError(t, err)

	raw, err := tr.Export(time.Now())
	require.NoError(t, err)
	require.Contains(t, string(raw), `"component_count": 2`)
	require.Contains(t, string(raw), `"urgency_level": "high"`)
}

func TestClearEmptiesTranscript(t *testing.T) {
	t.Parallel()

	var tr Transcript
	_, _ = tr.Append(SenderUser, "a", nil, time.Now())
	_, _ = tr.Append(SenderAI, "b", nil, time.Now())
	require.Equal(t, 2, tr.Len())

	tr.Clear()
	require.Zero(t, tr.Len())
	raw, err := tr.Export(time.Now())
	require.NoError(t, err)
	require.Contains(t, string(raw), `"history": []`)
}

func TestAppendRejectsBlankMessage(t *testing.T) {
	t.Parallel()

	var tr Transcript
	_, err := tr.Append(SenderUser, "   ", nil, time.Now())
	require.ErrorIs(t, err, ErrEmptyMessage)
	require.Zero(t, tr.Len())
}

func TestAppendIsSafeForConcurrentUse(t *testing.T) {
	t.Parallel()

	var tr Transcript
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = tr.Append(SenderUser, fmt.Sprint(i), nil, time.Now())
		}(i)
	}
	wg.Wait()
	require.Equal(t, 50, tr.Len())
}

func TestExportFilename(t *testing.T) {
	t.Parallel()

	require.Equal(t, "secrm-eiga-chat-2025-12-31.json", ExportFilename(time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC)))
}

func TestStoreEvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	s := NewStore(2)
	a := s.Get("a")
	_, _ = a.Append(SenderUser, "keep me", nil, time.Now())
	s.Get("b")
	require.Same(t, a, s.Get("a"))

	s.Get("c")
	require.Equal(t, 2, s.Len())
	require.Same(t, a, s.Get("a"), "recently used session must survive eviction")

	s.Drop("a")
	require.Equal(t, 1, s.Len())
	require.Zero(t, s.Get("a").Len())
}
