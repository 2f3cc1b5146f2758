// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxDepth bounds the nesting of a document tree. Deeper trees (and cyclic
// ones built in code) are rejected as malformed rather than recursed into.
const MaxDepth = 128

// ErrTooDeep is returned when a document tree nests beyond MaxDepth.
var ErrTooDeep = fmt.Errorf("document nests deeper than %d levels", MaxDepth)

// Shape is the structural family of a content value.
type Shape string

const (
	ShapeUnknown  Shape = "unknown"
	ShapeDocument Shape = "document"
	ShapeLayout   Shape = "layout"
)

// ShapeFor returns the content shape a template type requires.
func ShapeFor(t TemplateType) Shape {
	switch t {
	case TemplateTypeDocument:
		return ShapeDocument
	case TemplateTypeLayout:
		return ShapeLayout
	default:
		return ShapeUnknown
	}
}

// Content is the tagged union stored in TemplateVersion.Content: exactly one
// of Document or Layout is set, according to Shape. The original JSON is
// kept so fields this version does not understand survive storage.
//
// Decoding never fails on structurally valid JSON. Problems that stop the
// tree from being built (wrong field types, excessive depth) are recorded
// and reported by Err.
type Content struct {
	raw      json.RawMessage
	shape    Shape
	document *Root
	layout   *Layout
	err      error
}

// ParseContent decodes raw JSON content. It only returns an error when raw
// is not valid JSON.
func ParseContent(raw []byte) (Content, error) {
	if !json.Valid(raw) {
		return Content{}, errors.New("content is not valid JSON")
	}
	return decodeContent(raw), nil
}

// NewDocumentContent wraps a document tree built in code.
func NewDocumentContent(root *Root) (Content, error) {
	w, err := fromNode(root, 0)
	if err != nil {
		return Content{}, err
	}
	raw, err := json.Marshal(w)
	if err != nil {
		return Content{}, fmt.Errorf("encode document: %w", err)
	}
	return Content{raw: raw, shape: ShapeDocument, document: root}, nil
}

// NewLayoutContent wraps a layout built in code.
func NewLayoutContent(l *Layout) (Content, error) {
	raw, err := json.Marshal(l)
	if err != nil {
		return Content{}, fmt.Errorf("encode layout: %w", err)
	}
	return Content{raw: raw, shape: ShapeLayout, layout: l}, nil
}

func (c Content) Shape() Shape {
	if c.shape == "" {
		return ShapeUnknown
	}
	return c.shape
}

// Document returns the document root, or nil for other shapes.
func (c Content) Document() *Root { return c.document }

// Layout returns the layout, or nil for other shapes.
func (c Content) Layout() *Layout { return c.layout }

// Err reports why a recognised shape could not be decoded.
func (c Content) Err() error { return c.err }

// Raw returns the JSON the content was decoded from.
func (c Content) Raw() json.RawMessage { return c.raw }

// IsZero reports whether no content was supplied at all.
func (c Content) IsZero() bool { return len(c.raw) == 0 }

// MarshalJSON emits the original JSON unchanged.
func (c Content) MarshalJSON() ([]byte, error) {
	if len(c.raw) == 0 {
		return []byte("null"), nil
	}
	return c.raw, nil
}

// UnmarshalJSON decodes content leniently; see Content.
func (c *Content) UnmarshalJSON(b []byte) error {
	*c = decodeContent(b)
	return nil
}

func decodeContent(raw []byte) Content {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Content{shape: ShapeUnknown}
	}
	c := Content{raw: append(json.RawMessage(nil), raw...), shape: detectShape(raw)}
	switch c.shape {
	case ShapeDocument:
		c.document, c.err = decodeDocument(raw)
	case ShapeLayout:
		c.layout, c.err = decodeLayout(raw)
	}
	return c
}

func detectShape(raw []byte) Shape {
	switch raw[0] {
	case '[':
		return ShapeLayout
	case '{':
		var probe struct {
			Type     any             `json:"type"`
			Kind     any             `json:"kind"`
			Pages    json.RawMessage `json:"pages"`
			Elements json.RawMessage `json:"elements"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil {
			return ShapeUnknown
		}
		// "kind" is an alias for "type", as in node decoding.
		kind := probe.Type
		if s, _ := kind.(string); s == "" {
			kind = probe.Kind
		}
		if isRootKind(kind) {
			return ShapeDocument
		}
		if probe.Pages != nil || probe.Elements != nil {
			return ShapeLayout
		}
	}
	return ShapeUnknown
}

// isRootKind reports whether a "type" or "kind" value names a document root.
func isRootKind(v any) bool {
	s, ok := v.(string)
	return ok && (s == "doc" || s == string(NodeRoot))
}

// ---- document wire format ----

type wireNode struct {
	Type    string         `json:"type,omitempty"`
	Kind    string         `json:"kind,omitempty"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []wireNode     `json:"content,omitempty"`
	Text    string         `json:"text,omitempty"`
	Marks   []wireMark     `json:"marks,omitempty"`
	Level   any            `json:"level,omitempty"`
	Label   any            `json:"label,omitempty"`
}

// wireMark accepts both {"type":"bold"} and the bare string "bold".
type wireMark struct {
	Type string `json:"type"`
}

func (m *wireMark) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		m.Type = s
		return nil
	}
	var obj struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("mark: %w", err)
	}
	m.Type = obj.Type
	return nil
}

func decodeDocument(raw []byte) (*Root, error) {
	var w wireNode
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	n, err := toNode(w, 0)
	if err != nil {
		return nil, err
	}
	root, ok := n.(*Root)
	if !ok {
		return nil, fmt.Errorf("document root has kind %q", n.Kind())
	}
	return root, nil
}

func toNode(w wireNode, depth int) (Node, error) {
	if depth > MaxDepth {
		return nil, ErrTooDeep
	}
	kind := w.Type
	if kind == "" {
		kind = w.Kind
	}

	children := func() ([]Node, error) {
		if len(w.Content) == 0 {
			return nil, nil
		}
		out := make([]Node, 0, len(w.Content))
		for _, cw := range w.Content {
			cn, err := toNode(cw, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, cn)
		}
		return out, nil
	}

	switch kind {
	case "doc", string(NodeRoot):
		kids, err := children()
		return &Root{Children: kids}, err
	case string(NodeParagraph):
		kids, err := children()
		return &Paragraph{Children: kids}, err
	case string(NodeHeading):
		kids, err := children()
		return &Heading{Level: intAttr(w.Attrs["level"], w.Level), Children: kids}, err
	case string(NodeBulletList):
		kids, err := children()
		return &BulletList{Children: kids}, err
	case string(NodeOrderedList):
		kids, err := children()
		return &OrderedList{Children: kids}, err
	case string(NodeListItem):
		kids, err := children()
		return &ListItem{Children: kids}, err
	case string(NodeText):
		t := &Text{Text: w.Text}
		for _, m := range w.Marks {
			t.Marks = append(t.Marks, Mark(m.Type))
		}
		return t, nil
	case string(NodeVariable):
		return &Variable{Label: stringAttr(w.Attrs["label"], w.Label)}, nil
	case string(NodeHardBreak):
		return &HardBreak{}, nil
	default:
		return &Unknown{Name: kind}, nil
	}
}

func fromNode(n Node, depth int) (wireNode, error) {
	if depth > MaxDepth {
		return wireNode{}, ErrTooDeep
	}
	if n == nil {
		return wireNode{}, errors.New("nil node in document")
	}
	w := wireNode{Type: string(n.Kind())}
	switch v := n.(type) {
	case *Root:
		w.Type = "doc"
	case *Heading:
		if v.Level > 0 {
			w.Attrs = map[string]any{"level": v.Level}
		}
	case *Text:
		w.Text = v.Text
		for _, m := range v.Marks {
			w.Marks = append(w.Marks, wireMark{Type: string(m)})
		}
	case *Variable:
		w.Attrs = map[string]any{"label": v.Label}
	}
	for _, child := range Children(n) {
		cw, err := fromNode(child, depth+1)
		if err != nil {
			return wireNode{}, err
		}
		w.Content = append(w.Content, cw)
	}
	return w, nil
}

// maxIntAttr bounds integer attributes such as heading levels.
const maxIntAttr = 1 << 30

// intAttr reads the first usable integer among candidates. JSON numbers
// arrive as float64; numeric strings are accepted too.
func intAttr(candidates ...any) int {
	for _, c := range candidates {
		switch v := c.(type) {
		case float64:
			// Clamp before converting; out-of-range float to int is undefined.
			switch {
			case math.IsNaN(v):
				return 0
			case v > maxIntAttr:
				return maxIntAttr
			case v < -maxIntAttr:
				return -maxIntAttr
			}
			return int(v)
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				return n
			}
		}
	}
	return 0
}

func stringAttr(candidates ...any) string {
	for _, c := range candidates {
		if s, ok := c.(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// ---- layout wire format ----

type wireElement struct {
	ID       any            `json:"id"`
	Type     string         `json:"type"`
	Kind     string         `json:"kind"`
	X        float64        `json:"x"`
	Y        float64        `json:"y"`
	Width    float64        `json:"width"`
	Height   float64        `json:"height"`
	Text     string         `json:"text"`
	Src      string         `json:"src"`
	FieldKey string         `json:"fieldKey"`
	Style    map[string]any `json:"style"`
}

type wirePage struct {
	Elements []wireElement `json:"elements"`
}

// decodeLayout accepts the current {"pages":[...]} shape and two legacy
// shapes: {"elements":[...]} and a bare element array. Both legacy shapes
// become a single implicit page here, so nothing downstream sees them.
func decodeLayout(raw []byte) (*Layout, error) {
	if raw[0] == '[' {
		var els []wireElement
		if err := json.Unmarshal(raw, &els); err != nil {
			return nil, fmt.Errorf("decode layout elements: %w", err)
		}
		return &Layout{Pages: []Page{{Elements: toElements(els)}}}, nil
	}

	var w struct {
		Pages    []wirePage    `json:"pages"`
		Elements []wireElement `json:"elements"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	if w.Pages == nil {
		return &Layout{Pages: []Page{{Elements: toElements(w.Elements)}}}, nil
	}
	l := &Layout{Pages: make([]Page, 0, len(w.Pages))}
	for _, p := range w.Pages {
		l.Pages = append(l.Pages, Page{Elements: toElements(p.Elements)})
	}
	return l, nil
}

func toElements(ws []wireElement) []LayoutElement {
	els := make([]LayoutElement, 0, len(ws))
	for _, w := range ws {
		kind := w.Type
		if kind == "" {
			kind = w.Kind
		}
		el := LayoutElement{
			ID:       idString(w.ID),
			Kind:     ElementKind(kind),
			X:        w.X,
			Y:        w.Y,
			Width:    w.Width,
			Height:   w.Height,
			Text:     w.Text,
			Src:      w.Src,
			FieldKey: w.FieldKey,
		}
		if len(w.Style) > 0 {
			el.Style = &ElementStyle{
				FontSize:   fontSize(w.Style["fontSize"]),
				FontFamily: stringAttr(w.Style["fontFamily"]),
				Color:      stringAttr(w.Style["color"]),
			}
		}
		els = append(els, el)
	}
	return els
}

func idString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return ""
	}
}

// fontSize accepts 16, "16" and "16px".
func fontSize(v any) float64 {
	switch s := v.(type) {
	case float64:
		return s
	case string:
		f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "px"), 64)
		if err == nil {
			return f
		}
	}
	return 0
}

// FieldKeys lists the bound-data keys referenced by content in order of
// first appearance: variable labels for documents, field keys for layouts.
func FieldKeys(c Content) []string {
	seen := make(map[string]bool)
	var keys []string
	add := func(k string) {
		if k != "" && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}

	switch c.Shape() {
	case ShapeDocument:
		var walk func(n Node, depth int)
		walk = func(n Node, depth int) {
			if n == nil || depth > MaxDepth {
				return
			}
			if v, ok := n.(*Variable); ok {
				add(v.Label)
				return
			}
			for _, child := range Children(n) {
				walk(child, depth+1)
			}
		}
		if c.document != nil {
			walk(c.document, 0)
		}
	case ShapeLayout:
		if c.layout == nil {
			break
		}
		for _, p := range c.layout.Pages {
			for _, el := range p.Elements {
				if el.Kind == ElementField || el.Kind == ElementQRCode {
					add(el.FieldKey)
				}
			}
		}
	}
	return keys
}
