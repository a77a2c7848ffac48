package cms

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSiteContentLoads(t *testing.T) {
	t.Parallel()

	c := NewClient("../../content")

	pricing, err := c.Pricing("en")
	require.NoError(t, err)
	require.Len(t, pricing.Plans, 3)
	require.Equal(t, int64(5000), pricing.Plans[0].PriceCents)
	require.True(t, pricing.Plans[1].Featured)
	require.Equal(t, "Custom", pricing.Plans[2].CustomLabel)

	cmp, err := c.Comparison("en")
	require.NoError(t, err)
	for _, row := range cmp.Rows {
		require.Len(t, row.Values, len(cmp.Columns), row.Aspect)
	}

	quotes, err := c.Testimonials("en")
	require.NoError(t, err)
	require.Len(t, quotes, 3)

	home, err := c.Home("en")
	require.NoError(t, err)
	require.Len(t, home.Trust, 4)

	_, err = c.UseCases("en")
	require.NoError(t, err)
	_, err = c.Analytics("en")
	require.NoError(t, err)
	_, err = c.Chat("en")
	require.NoError(t, err)
}

func TestLocalizedFallback(t *testing.T) {
	t.Parallel()

	c := NewClient("../../content")
	es, err := c.Pricing("es-MX")
	require.NoError(t, err)
	require.Equal(t, "Pricing Plans", es.Title)

	page, err := c.Page("es", "features")
	require.NoError(t, err)
	require.Equal(t, "es", page.Lang)
	require.Equal(t, "Funciones avanzadas de IA", page.Title)
}

func TestPageRendersMarkdownWithTOC(t *testing.T) {
	t.Parallel()

	page, err := NewClient("../../content").Page("en", "features")
	require.NoError(t, err)
	require.Equal(t, "Advanced AI Features", page.Title)
	require.Len(t, page.Cards, 4)
	require.Equal(t, 2025, page.UpdatedAt.Year())
	require.Contains(t, string(page.HTML), `<h2 id="component-recognition">`)
	require.Equal(t, []Heading{
		{ID: "component-recognition", Text: "Component recognition", Level: 2},
		{ID: "sentiment-and-urgency", Text: "Sentiment and urgency", Level: 2},
		{ID: "generated-guidance", Text: "Generated guidance", Level: 2},
		{ID: "language-model-replies", Text: "Language model replies", Level: 3},
	}, page.TOC)
}

func TestRenderMarkdownSanitizes(t *testing.T) {
	t.Parallel()

	out, err := RenderMarkdown("# Hi\n\n<script>alert(1)</script>\n\n[x](javascript:alert(1))")
	require.NoError(t, err)
	require.NotContains(t, string(out), "<script")
	require.NotContains(t, string(out), "javascript:")
}

func TestMissingContentAndTraversal(t *testing.T) {
	t.Parallel()

	c := NewClient(t.TempDir())
	_, err := c.Pricing("en")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = c.Page("en", "../secrets")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCacheExpires(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "en"), 0o755))
	file := filepath.Join(dir, "en", "pricing.yaml")
	require.NoError(t, os.WriteFile(file, []byte("title: One\n"), 0o644))

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewClient(dir, WithCacheTTL(time.Minute), WithClock(func() time.Time { return now }))

	p, err := c.Pricing("en")
	require.NoError(t, err)
	require.Equal(t, "One", p.Title)

	require.NoError(t, os.WriteFile(file, []byte("title: Two\n"), 0o644))
	p, _ = c.Pricing("en")
	require.Equal(t, "One", p.Title)

	now = now.Add(2 * time.Minute)
	p, _ = c.Pricing("en")
	require.Equal(t, "Two", p.Title)
}

func TestParseErrorIsReported(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "en"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en", "comparison.yaml"), []byte("rows: [\n"), 0o644))

	_, err := NewClient(dir).Comparison("en")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
	require.True(t, strings.Contains(err.Error(), "comparison.yaml"))
}
