// Package markdown renders guide bodies to sanitized HTML and extracts the
// section headings that drive the table of contents.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// SectionLevel is the heading level that becomes a navigable section.
const SectionLevel = 2

// sectionAttr must match scrollspy.AttrSection; markdown does not import
// scrollspy so the client package stays free of goldmark.
const sectionAttr = "data-section"

// Heading is a rendered heading with its anchor id.
type Heading struct {
	ID    string
	Text  string
	Level int
}

// Document is a rendered guide body.
type Document struct {
	HTML     string
	Headings []Heading
}

// Sections returns the headings at SectionLevel in document order.
func (d Document) Sections() []Heading {
	var out []Heading
	for _, h := range d.Headings {
		if h.Level == SectionLevel {
			out = append(out, h)
		}
	}
	return out
}

var (
	md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
	policy = newPolicy()
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("id").Matching(bluemonday.SpaceSeparatedTokens).OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowDataAttributes()
	p.AllowAttrs("class").OnElements("code", "pre")
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// Render converts md source to sanitized HTML. Section-level headings
// carry a data-section attribute holding their label. Heading ids never
// take one of the reserved ids; a colliding heading gets a numbered suffix.
func Render(source string, reserved ...string) (Document, error) {
	src := []byte(source)
	pc := parser.NewContext()
	for _, id := range reserved {
		pc.IDs().Put([]byte(id))
	}
	root := md.Parser().Parse(text.NewReader(src), parser.WithContext(pc))

	var headings []Heading
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		h, ok := n.(*ast.Heading)
		if !ok || !entering {
			return ast.WalkContinue, nil
		}
		id := ""
		if v, ok := h.AttributeString("id"); ok {
			if b, ok := v.([]byte); ok {
				id = string(b)
			}
		}
		label := nodeText(h, src)
		if h.Level == SectionLevel && id != "" {
			h.SetAttributeString(sectionAttr, []byte(label))
		}
		headings = append(headings, Heading{ID: id, Text: label, Level: h.Level})
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return Document{}, fmt.Errorf("markdown: walk: %w", err)
	}

	var buf bytes.Buffer
	if err := md.Renderer().Render(&buf, src, root); err != nil {
		return Document{}, fmt.Errorf("markdown: render: %w", err)
	}
	return Document{
		HTML:     policy.Sanitize(buf.String()),
		Headings: headings,
	}, nil
}

// Markdown returns a templ.Component that renders content as HTML. Render
// errors are written through to the caller.
func Markdown(content string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		doc, err := Render(content)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, doc.HTML)
		return err
	})
}

// nodeText concatenates the text segments under n.
func nodeText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}
