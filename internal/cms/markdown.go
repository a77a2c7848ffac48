package cms

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"
)

// Page is a localized markdown page rendered to sanitized HTML.
type Page struct {
	Slug      string
	Lang      string
	Title     string
	Summary   string
	Cards     []Card
	HTML      template.HTML
	TOC       []Heading
	SEO       PageSEO
	UpdatedAt time.Time
}

// PageSEO holds optional metadata overrides.
type PageSEO struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Heading is one entry of the "On this page" list.
type Heading struct {
	ID    string
	Text  string
	Level int
}

type frontMatter struct {
	Title     string  `yaml:"title"`
	Summary   string  `yaml:"summary"`
	UpdatedAt string  `yaml:"updated_at"`
	Cards     []Card  `yaml:"cards"`
	SEO       PageSEO `yaml:"seo"`
}

var (
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
	pagePolicy = newPagePolicy()
)

func newPagePolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("id").Matching(regexp.MustCompile(`^[a-z0-9-]+$`)).OnElements("h2", "h3")
	return p
}

// Page loads <slug>.md for lang, parses its front matter and renders the body.
func (c *Client) Page(lang, slug string) (Page, error) {
	slug = strings.Trim(strings.ToLower(strings.TrimSpace(slug)), "/")
	key := "page|" + normalizeLang(lang) + "|" + slug
	if v, ok := c.cached(key); ok {
		if p, ok := v.(Page); ok {
			return p, nil
		}
	}
	data, found, err := c.readLocalized(lang, slug+".md")
	if err != nil {
		return Page{}, err
	}
	page, err := parsePage(slug, found, data)
	if err != nil {
		return Page{}, err
	}
	c.store(key, page)
	return page, nil
}

func parsePage(slug, lang string, data []byte) (Page, error) {
	fm, body := splitFrontMatter(string(data))
	var front frontMatter
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return Page{}, fmt.Errorf("cms: parse front matter %s: %w", slug, err)
		}
	}
	rendered, err := RenderMarkdown(body)
	if err != nil {
		return Page{}, fmt.Errorf("cms: render %s: %w", slug, err)
	}
	page := Page{
		Slug:    slug,
		Lang:    lang,
		Title:   strings.TrimSpace(front.Title),
		Summary: strings.TrimSpace(front.Summary),
		Cards:   front.Cards,
		HTML:    rendered,
		TOC:     ExtractTOC(string(rendered)),
		SEO:     front.SEO,
	}
	if t, err := time.Parse("2006-01-02", strings.TrimSpace(front.UpdatedAt)); err == nil {
		page.UpdatedAt = t
	}
	if page.Title == "" {
		page.Title = prettifySlug(slug)
	}
	return page, nil
}

// RenderMarkdown converts markdown to HTML and sanitizes the result.
func RenderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(pagePolicy.SanitizeBytes(buf.Bytes())), nil
}

// ExtractTOC lists h2 and h3 headings that carry an id.
func ExtractTOC(fragment string) []Heading {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return nil
	}
	var out []Heading
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "h2" || n.Data == "h3") {
			id := attr(n, "id")
			if text := strings.TrimSpace(textContent(n)); id != "" && text != "" {
				level := 2
				if n.Data == "h3" {
					level = 3
				}
				out = append(out, Heading{ID: id, Text: text, Level: level})
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		b.WriteString(textContent(child))
	}
	return b.String()
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n\r")
		}
	}
	return "", input
}

func prettifySlug(slug string) string {
	parts := strings.Split(slug, "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}
