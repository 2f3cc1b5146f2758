// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// NodeKind names a document tree node variant. The wire format uses the
// rich-text editor's names; "doc" is accepted for the root.
type NodeKind string

const (
	NodeRoot        NodeKind = "root"
	NodeParagraph   NodeKind = "paragraph"
	NodeHeading     NodeKind = "heading"
	NodeBulletList  NodeKind = "bulletList"
	NodeOrderedList NodeKind = "orderedList"
	NodeListItem    NodeKind = "listItem"
	NodeText        NodeKind = "text"
	NodeVariable    NodeKind = "variable"
	NodeHardBreak   NodeKind = "hardBreak"
)

// Mark is an inline formatting mark on a text node.
type Mark string

const (
	MarkBold   Mark = "bold"
	MarkItalic Mark = "italic"
)

// Node is a document tree node. The set of implementations is closed: only
// the pointer types declared in this file satisfy it, and Unknown stands in
// for kinds written by newer editors.
type Node interface {
	Kind() NodeKind
	node()
}

// Root is the top of every document tree.
type Root struct {
	Children []Node
}

// Paragraph is a block of inline content.
type Paragraph struct {
	Children []Node
}

// Heading is a section title. Level 0 means unset and compiles as 1.
type Heading struct {
	Level    int
	Children []Node
}

// BulletList is an unordered list of ListItems.
type BulletList struct {
	Children []Node
}

// OrderedList is a numbered list of ListItems.
type OrderedList struct {
	Children []Node
}

// ListItem holds block content inside a list.
type ListItem struct {
	Children []Node
}

// Text is literal inline text. Marks apply in list order, first outermost.
type Text struct {
	Text  string
	Marks []Mark
}

// Variable is an inline placeholder for a bound-data key.
type Variable struct {
	Label string
}

// HardBreak is a forced line break inside a block.
type HardBreak struct{}

// Unknown is a node whose kind this version does not recognise.
type Unknown struct {
	Name string
}

func (*Root) Kind() NodeKind        { return NodeRoot }
func (*Paragraph) Kind() NodeKind   { return NodeParagraph }
func (*Heading) Kind() NodeKind     { return NodeHeading }
func (*BulletList) Kind() NodeKind  { return NodeBulletList }
func (*OrderedList) Kind() NodeKind { return NodeOrderedList }
func (*ListItem) Kind() NodeKind    { return NodeListItem }
func (*Text) Kind() NodeKind        { return NodeText }
func (*Variable) Kind() NodeKind    { return NodeVariable }
func (*HardBreak) Kind() NodeKind   { return NodeHardBreak }
func (u *Unknown) Kind() NodeKind   { return NodeKind(u.Name) }

func (*Root) node()        {}
func (*Paragraph) node()   {}
func (*Heading) node()     {}
func (*BulletList) node()  {}
func (*OrderedList) node() {}
func (*ListItem) node()    {}
func (*Text) node()        {}
func (*Variable) node()    {}
func (*HardBreak) node()   {}
func (*Unknown) node()     {}

// Children returns the child list of container nodes and nil for leaves.
func Children(n Node) []Node {
	switch v := n.(type) {
	case *Root:
		return v.Children
	case *Paragraph:
		return v.Children
	case *Heading:
		return v.Children
	case *BulletList:
		return v.Children
	case *OrderedList:
		return v.Children
	case *ListItem:
		return v.Children
	default:
		return nil
	}
}
