// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// ElementKind names a layout element variant.
type ElementKind string

const (
	ElementText   ElementKind = "text"
	ElementImage  ElementKind = "image"
	ElementField  ElementKind = "field"
	ElementQRCode ElementKind = "qrcode"
)

// Layout is the content of a layout template: an ordered list of pages.
type Layout struct {
	Pages []Page `json:"pages"`
}

// Page is a fixed-size canvas holding absolutely positioned elements.
type Page struct {
	Elements []LayoutElement `json:"elements"`
}

// LayoutElement is a box at page-local coordinates. Geometry is in CSS
// pixels and must be non-negative.
type LayoutElement struct {
	ID       string        `json:"id,omitempty"`
	Kind     ElementKind   `json:"type"`
	X        float64       `json:"x"`
	Y        float64       `json:"y"`
	Width    float64       `json:"width"`
	Height   float64       `json:"height"`
	Text     string        `json:"text,omitempty"`
	Src      string        `json:"src,omitempty"`
	FieldKey string        `json:"fieldKey,omitempty"`
	Style    *ElementStyle `json:"style,omitempty"`
}

// ElementStyle carries the recognised per-element style overrides. Zero
// values mean "use the kind's default".
type ElementStyle struct {
	FontSize   float64 `json:"fontSize,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty"`
	Color      string  `json:"color,omitempty"`
}
