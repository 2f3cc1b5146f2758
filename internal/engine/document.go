// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package engine

import (
	"html"
	"strconv"
	"strings"

	"papermill/internal/models"
)

var markTags = map[models.Mark]string{
	models.MarkBold:   "b",
	models.MarkItalic: "i",
}

// CompileDocument turns a document tree into an HTML fragment. It is pure
// and deterministic: the same tree always yields the same bytes. Unknown
// node kinds compile to nothing. The only failure is MalformedContent for
// trees nested deeper than models.MaxDepth, trees containing a cycle, or a
// nil node inside a children list.
func CompileDocument(n models.Node) (string, error) {
	if n == nil {
		return "", malformed("document has no root")
	}
	c := docCompiler{onPath: make(map[models.Node]bool)}
	if err := c.node(n, 0); err != nil {
		return "", err
	}
	return c.b.String(), nil
}

type docCompiler struct {
	b strings.Builder
	// nodes on the current root-to-leaf path, for cycle detection
	onPath map[models.Node]bool
}

func (c *docCompiler) node(n models.Node, depth int) error {
	if depth > models.MaxDepth {
		return malformedCause("document nesting too deep", models.ErrTooDeep)
	}
	if c.onPath[n] {
		return malformed("document tree contains a cycle at %q", n.Kind())
	}

	switch v := n.(type) {
	case *models.Root:
		return c.children(n, v.Children, depth)
	case *models.Paragraph:
		if len(v.Children) == 0 {
			c.b.WriteString("<p><br></p>")
			return nil
		}
		return c.wrap("p", n, v.Children, depth)
	case *models.Heading:
		return c.wrap("h"+strconv.Itoa(headingLevel(v.Level)), n, v.Children, depth)
	case *models.BulletList:
		return c.wrap("ul", n, v.Children, depth)
	case *models.OrderedList:
		return c.wrap("ol", n, v.Children, depth)
	case *models.ListItem:
		return c.wrap("li", n, v.Children, depth)
	case *models.Text:
		c.text(v)
	case *models.Variable:
		c.variable(v)
	case *models.HardBreak:
		c.b.WriteString("<br>")
	default:
		// Unknown kinds compile to an empty fragment.
	}
	return nil
}

func (c *docCompiler) wrap(tag string, parent models.Node, children []models.Node, depth int) error {
	c.b.WriteString("<" + tag + ">")
	if err := c.children(parent, children, depth); err != nil {
		return err
	}
	c.b.WriteString("</" + tag + ">")
	return nil
}

func (c *docCompiler) children(parent models.Node, children []models.Node, depth int) error {
	c.onPath[parent] = true
	defer delete(c.onPath, parent)
	for i, child := range children {
		if child == nil {
			return malformed("nil child at index %d of %q", i, parent.Kind())
		}
		if err := c.node(child, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// text escapes first, then wraps marks so the first mark is outermost.
func (c *docCompiler) text(t *models.Text) {
	var tags []string
	for _, m := range t.Marks {
		if tag, ok := markTags[m]; ok {
			tags = append(tags, tag)
		}
	}
	for _, tag := range tags {
		c.b.WriteString("<" + tag + ">")
	}
	c.b.WriteString(html.EscapeString(t.Text))
	for i := len(tags) - 1; i >= 0; i-- {
		c.b.WriteString("</" + tags[i] + ">")
	}
}

func (c *docCompiler) variable(v *models.Variable) {
	label := v.Label
	if label == "" {
		label = "var"
	}
	esc := html.EscapeString(label)
	c.b.WriteString(`<span class="variable" contenteditable="false" data-variable="`)
	c.b.WriteString(esc)
	c.b.WriteString(`">{{ `)
	c.b.WriteString(esc)
	c.b.WriteString(` }}</span>`)
}

func headingLevel(level int) int {
	switch {
	case level < 1:
		return 1
	case level > 6:
		return 6
	default:
		return level
	}
}
