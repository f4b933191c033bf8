// Package preview renders outlines to HTML for reading in a browser.
package preview

import (
	"bytes"
	"fmt"
	"html"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/alucardeht/outliner/internal/outline"
)

// HTML converts the serialized outline to an HTML fragment.
func HTML(o *outline.Outline) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(outline.Serialize(o)), &buf); err != nil {
		return "", fmt.Errorf("failed to render outline: %w", err)
	}
	return buf.String(), nil
}

const pageTemplate = `<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; max-width: 48em; margin: 2em auto; line-height: 1.6; }
h3 { margin-top: 1.6em; border-bottom: 1px solid #ddd; }
h4 { margin: 0.3em 0 0.3em 1.5em; font-weight: normal; }
</style>
</head>
<body>
%s</body>
</html>
`

// WritePage writes a standalone HTML document for o.
func WritePage(w io.Writer, o *outline.Outline) error {
	body, err := HTML(o)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, pageTemplate, html.EscapeString(o.Title), body)
	return err
}

type Heading struct {
	Level int
	Text  string
}

// Headings lists the markdown headings of src in document order, as a
// CommonMark parser sees them.
func Headings(src []byte) []Heading {
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	var headings []Heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		headings = append(headings, Heading{Level: h.Level, Text: inlineText(h, src)})
		return ast.WalkSkipChildren, nil
	})
	return headings
}

func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
			continue
		}
		buf.WriteString(inlineText(c, src))
	}
	return buf.String()
}
