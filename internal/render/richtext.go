package render

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	markdown = goldmark.New(goldmark.WithExtensions(extension.Linkify))
	// generated replies may carry light markdown (bold step headings, lists)
	replyPolicy = func() *bluemonday.Policy {
		p := bluemonday.NewPolicy()
		p.AllowElements("p", "br", "strong", "em", "ul", "ol", "li", "code")
		return p
	}()
)

// RichText renders generated text as sanitised HTML. Markdown produced by the
// language model is honoured; anything else is reduced to the safe subset.
func RichText(text string) template.HTML {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return PlainText(text)
	}
	return template.HTML(strings.TrimSpace(replyPolicy.Sanitize(buf.String())))
}

// PlainText escapes text exactly as typed, preserving line breaks.
func PlainText(text string) template.HTML {
	escaped := template.HTMLEscapeString(strings.TrimSpace(text))
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}
