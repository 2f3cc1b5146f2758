// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown imports Markdown source as a document tree using
// goldmark. Only constructs the document model can express survive:
// paragraphs, headings, lists, bold, italic, hard breaks and {{ key }}
// variables. Everything else is flattened to its text or dropped.
package markdown

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"papermill/internal/models"
)

// md is the configured goldmark instance, reused across calls. Plain
// CommonMark; the typographer would rewrite quotes inside variable names.
var md = goldmark.New()

var variablePattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.\-]+)\s*\}\}`)

// ToDocument parses Markdown source into a document root. It fails only
// when block nesting exceeds models.MaxDepth.
func ToDocument(source []byte) (*models.Root, error) {
	doc := md.Parser().Parse(text.NewReader(source))
	c := converter{src: source}
	children, err := c.blocks(doc, 1)
	if err != nil {
		return nil, err
	}
	return &models.Root{Children: children}, nil
}

type converter struct {
	src []byte
}

func (c *converter) blocks(parent ast.Node, depth int) ([]models.Node, error) {
	if depth > models.MaxDepth {
		return nil, fmt.Errorf("markdown: %w", models.ErrTooDeep)
	}
	var out []models.Node
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch v := n.(type) {
		case *ast.Paragraph, *ast.TextBlock:
			out = append(out, &models.Paragraph{Children: c.inlines(v)})
		case *ast.Heading:
			out = append(out, &models.Heading{Level: v.Level, Children: c.inlines(v)})
		case *ast.List:
			items, err := c.blocks(v, depth+1)
			if err != nil {
				return nil, err
			}
			if v.IsOrdered() {
				out = append(out, &models.OrderedList{Children: items})
			} else {
				out = append(out, &models.BulletList{Children: items})
			}
		case *ast.ListItem:
			body, err := c.blocks(v, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, &models.ListItem{Children: body})
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			out = append(out, c.codeBlock(v))
		case *ast.ThematicBreak, *ast.HTMLBlock:
			// no equivalent
		default:
			// Blockquotes and extension blocks contribute their content.
			inner, err := c.blocks(v, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, inner...)
		}
	}
	return out, nil
}

// codeBlock keeps the literal lines of a code block, one hard break apart.
func (c *converter) codeBlock(n ast.Node) models.Node {
	p := &models.Paragraph{}
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		line := seg.Value(c.src)
		if len(line) > 0 && line[len(line)-1] == '\n' {
			line = line[:len(line)-1]
		}
		if i > 0 {
			p.Children = append(p.Children, &models.HardBreak{})
		}
		if len(line) > 0 {
			p.Children = append(p.Children, &models.Text{Text: string(line)})
		}
	}
	return p
}

// run is a stretch of inline text with its marks, or a hard break.
type run struct {
	text  string
	marks []models.Mark
	brk   bool
}

func (c *converter) inlines(block ast.Node) []models.Node {
	var runs []run
	c.collect(block, nil, &runs)
	return buildInline(runs)
}

func (c *converter) collect(parent ast.Node, marks []models.Mark, runs *[]run) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch v := n.(type) {
		case *ast.Text:
			*runs = append(*runs, run{text: c.literal(v.Segment.Value(c.src)), marks: marks})
			switch {
			case v.HardLineBreak():
				*runs = append(*runs, run{brk: true})
			case v.SoftLineBreak():
				*runs = append(*runs, run{text: " ", marks: marks})
			}
		case *ast.String:
			*runs = append(*runs, run{text: string(v.Value), marks: marks})
		case *ast.Emphasis:
			m := models.MarkItalic
			if v.Level >= 2 {
				m = models.MarkBold
			}
			c.collect(v, withMark(marks, m), runs)
		case *ast.AutoLink:
			*runs = append(*runs, run{text: string(v.Label(c.src)), marks: marks})
		case *ast.RawHTML:
			// dropped
		default:
			// Code spans, links and images keep their text.
			c.collect(v, marks, runs)
		}
	}
}

func (c *converter) literal(b []byte) string {
	b = util.UnescapePunctuations(b)
	b = util.ResolveNumericReferences(b)
	b = util.ResolveEntityNames(b)
	return string(b)
}

func withMark(marks []models.Mark, m models.Mark) []models.Mark {
	if slices.Contains(marks, m) {
		return marks
	}
	return append(slices.Clone(marks), m)
}

// buildInline merges neighbouring runs with equal marks, then splits the
// merged text around {{ key }} placeholders.
func buildInline(runs []run) []models.Node {
	var merged []run
	for _, r := range runs {
		if !r.brk && r.text == "" {
			continue
		}
		if k := len(merged) - 1; k >= 0 && !r.brk && !merged[k].brk && slices.Equal(merged[k].marks, r.marks) {
			merged[k].text += r.text
			continue
		}
		merged = append(merged, r)
	}

	var out []models.Node
	for _, r := range merged {
		if r.brk {
			out = append(out, &models.HardBreak{})
			continue
		}
		rest := r.text
		for {
			loc := variablePattern.FindStringSubmatchIndex(rest)
			if loc == nil {
				break
			}
			if loc[0] > 0 {
				out = append(out, textNode(rest[:loc[0]], r.marks))
			}
			out = append(out, &models.Variable{Label: rest[loc[2]:loc[3]]})
			rest = rest[loc[1]:]
		}
		if rest != "" {
			out = append(out, textNode(rest, r.marks))
		}
	}
	return out
}

func textNode(s string, marks []models.Mark) *models.Text {
	if len(marks) == 0 {
		return &models.Text{Text: s}
	}
	return &models.Text{Text: s, Marks: slices.Clone(marks)}
}
