// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package engine

import (
	"strings"

	"papermill/internal/models"
)

// Print styles. Documents flow across A4 pages with a 2cm margin; layouts
// draw each page as a zero-margin 595pt x 842pt canvas and break after
// every page except the last.
const (
	documentStyles = `@page{size:A4;margin:2cm}` +
		`body{font-family:sans-serif;font-size:12pt;line-height:1.5;color:#333}` +
		`p{margin:0 0 1em}` +
		`h1{font-size:24pt;margin:0 0 .5em}` +
		`h2{font-size:18pt;margin:0 0 .5em}` +
		`h3{font-size:14pt;margin:0 0 .5em}` +
		`h4,h5,h6{font-size:12pt;margin:0 0 .5em}` +
		`ul,ol{margin:0 0 1em;padding-left:2em}` +
		`h1,h2,h3,h4,h5,h6{break-after:avoid;page-break-after:avoid}` +
		`p,li{orphans:3;widows:3}` +
		`.variable{background:#ede9fe;color:#5b21b6;padding:0 2px;border-radius:2px}`

	layoutStyles = `@page{size:A4;margin:0}` +
		`html,body{margin:0;padding:0}` +
		`body{font-family:sans-serif}` +
		`.page{position:relative;width:595pt;height:842pt;overflow:hidden;background:#fff;` +
		`break-after:page;page-break-after:always}` +
		`.page:last-child{break-after:auto;page-break-after:auto}` +
		`.element{position:absolute;box-sizing:border-box;margin:0}`
)

// Preamble returns the style block for a template type. Unknown types get
// an empty string.
func Preamble(t models.TemplateType) string {
	switch t {
	case models.TemplateTypeDocument:
		return "<style>" + documentStyles + "</style>"
	case models.TemplateTypeLayout:
		return "<style>" + layoutStyles + "</style>"
	default:
		return ""
	}
}

// Assemble wraps a compiled fragment into a complete HTML document. The
// result depends only on t and fragment.
func Assemble(t models.TemplateType, fragment string) string {
	var b strings.Builder
	b.Grow(len(fragment) + 1024)
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8">`)
	b.WriteString(Preamble(t))
	b.WriteString(`</head><body>`)
	b.WriteString(fragment)
	b.WriteString(`</body></html>`)
	return b.String()
}
