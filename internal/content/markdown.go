// Package content resolves stage instruction references to display-ready
// text. Instruction files are Markdown; a "## Tips" section is split out so
// the UI can render it separately.
package content

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/bakelab/levain/internal/domain"
	"github.com/bakelab/levain/internal/logger"
)

// Compile-time interface check.
var _ domain.ContentSource = (*Source)(nil)

// Page is one parsed instruction file.
type Page struct {
	Title string
	Body  []string // paragraphs outside the tips section
	Tips  []string // bullet items under "## Tips"
}

// Source reads instruction Markdown from a filesystem.
type Source struct {
	fsys fs.FS
	log  *logger.Logger
	md   goldmark.Markdown
}

// NewSource creates a content source over fsys. References are resolved as
// paths relative to the filesystem root.
func NewSource(fsys fs.FS, log *logger.Logger) *Source {
	return &Source{
		fsys: fsys,
		log:  log,
		md:   goldmark.New(),
	}
}

// Page loads and parses one instruction file. A missing or unreadable file
// yields domain.ErrContentUnavailable.
func (s *Source) Page(ctx context.Context, ref string) (*Page, error) {
	if ref == "" {
		return nil, domain.ErrContentUnavailable
	}
	data, err := fs.ReadFile(s.fsys, ref)
	if err != nil {
		s.log.Warn("instructions %s unreadable: %v", ref, err)
		return nil, fmt.Errorf("%w: %s", domain.ErrContentUnavailable, ref)
	}
	return s.parse(data), nil
}

// Instructions renders the page as plain text. Implements the content port.
func (s *Source) Instructions(ctx context.Context, ref string) (string, error) {
	page, err := s.Page(ctx, ref)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if page.Title != "" {
		b.WriteString(page.Title)
		b.WriteString("\n\n")
	}
	for i, p := range page.Body {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(p)
	}
	if len(page.Tips) > 0 {
		b.WriteString("\n\nTips:\n")
		for _, tip := range page.Tips {
			b.WriteString("  • ")
			b.WriteString(tip)
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

// parse walks the document's top-level blocks. The first level-1 heading is
// the title; everything after a level-2 "Tips" heading is collected as tips.
func (s *Source) parse(data []byte) *Page {
	doc := s.md.Parser().Parse(text.NewReader(data))
	page := &Page{}

	inTips := false
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.Heading:
			txt := nodeText(n, data)
			if n.Level == 1 && page.Title == "" {
				page.Title = txt
				continue
			}
			inTips = n.Level == 2 && strings.EqualFold(txt, "Tips")
		case *ast.List:
			if inTips {
				for item := n.FirstChild(); item != nil; item = item.NextSibling() {
					if tip := nodeText(item, data); tip != "" {
						page.Tips = append(page.Tips, tip)
					}
				}
				continue
			}
			for item := n.FirstChild(); item != nil; item = item.NextSibling() {
				if line := nodeText(item, data); line != "" {
					page.Body = append(page.Body, "- "+line)
				}
			}
		default:
			if txt := nodeText(node, data); txt != "" {
				if inTips {
					page.Tips = append(page.Tips, txt)
				} else {
					page.Body = append(page.Body, txt)
				}
			}
		}
	}
	return page
}

// nodeText flattens a node's inline text, joining soft line breaks with
// spaces.
func nodeText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := child.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}
