// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package engine

import (
	"encoding/base64"
	"fmt"
	"html"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"papermill/internal/models"
)

// Per-kind style defaults.
const (
	defaultTextFontSize  = 16
	defaultTextColor     = "black"
	defaultFieldFontSize = 14
	defaultFieldColor    = "blue"

	// qrPixels is the size of the generated QR bitmap. The element box
	// scales it with object-fit, so the bitmap does not depend on geometry.
	qrPixels = 256
)

var (
	safeColor      = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|[a-zA-Z]{1,32}|(rgb|rgba|hsl|hsla)\([0-9.,%\s]{1,64}\))$`)
	safeFontFamily = regexp.MustCompile(`^[a-zA-Z0-9 ,'"-]{1,100}$`)
)

// CompileLayout turns a layout into one fixed-size page div per page, each
// holding absolutely positioned element boxes. Output is deterministic.
// It fails with MalformedContent on negative or non-finite geometry and on
// duplicate element IDs within a page.
func CompileLayout(l *models.Layout) (string, error) {
	if l == nil {
		return "", malformed("layout is empty")
	}
	var b strings.Builder
	for pi, page := range l.Pages {
		ids := make(map[string]bool, len(page.Elements))
		b.WriteString(`<div class="page">`)
		for ei, el := range page.Elements {
			if err := checkGeometry(el); err != nil {
				return "", malformed("page %d element %d: %s", pi+1, ei+1, err)
			}
			if el.ID != "" {
				if ids[el.ID] {
					return "", malformed("page %d: duplicate element id %q", pi+1, el.ID)
				}
				ids[el.ID] = true
			}
			if err := writeElement(&b, el); err != nil {
				return "", malformedCause(fmt.Sprintf("page %d element %d", pi+1, ei+1), err)
			}
		}
		b.WriteString(`</div>`)
	}
	return b.String(), nil
}

func checkGeometry(el models.LayoutElement) error {
	for _, g := range []struct {
		name string
		v    float64
	}{{"x", el.X}, {"y", el.Y}, {"width", el.Width}, {"height", el.Height}} {
		if math.IsNaN(g.v) || math.IsInf(g.v, 0) {
			return fmt.Errorf("%s is not a finite number", g.name)
		}
		if g.v < 0 {
			return fmt.Errorf("%s is negative", g.name)
		}
	}
	return nil
}

func writeElement(b *strings.Builder, el models.LayoutElement) error {
	switch el.Kind {
	case models.ElementText:
		style := boxStyle(el, defaultTextFontSize, defaultTextColor)
		fmt.Fprintf(b, `<div class="element" style="%s">%s</div>`, html.EscapeString(style), html.EscapeString(el.Text))
	case models.ElementField:
		style := boxStyle(el, defaultFieldFontSize, defaultFieldColor)
		fmt.Fprintf(b, `<div class="element" style="%s">%s</div>`, html.EscapeString(style), html.EscapeString(fieldText(el)))
	case models.ElementImage:
		style := boxStyle(el, defaultTextFontSize, defaultTextColor) + ";object-fit:contain"
		b.WriteString(`<img class="element"`)
		if src, ok := safeSrc(el.Src); ok {
			fmt.Fprintf(b, ` src="%s"`, html.EscapeString(src))
		}
		fmt.Fprintf(b, ` style="%s">`, html.EscapeString(style))
	case models.ElementQRCode:
		png, err := qrcode.Encode(fieldText(el), qrcode.Medium, qrPixels)
		if err != nil {
			return fmt.Errorf("encode qr code: %w", err)
		}
		style := boxStyle(el, defaultTextFontSize, defaultTextColor) + ";object-fit:contain"
		fmt.Fprintf(b, `<img class="element" src="data:image/png;base64,%s" style="%s">`,
			base64.StdEncoding.EncodeToString(png), html.EscapeString(style))
	default:
		// Unknown element kinds are skipped.
	}
	return nil
}

// fieldText is the literal text of a bound element, or its placeholder.
func fieldText(el models.LayoutElement) string {
	if el.Text != "" {
		return el.Text
	}
	if el.FieldKey != "" {
		return "{{ " + el.FieldKey + " }}"
	}
	return "{{" + string(el.Kind) + "}}"
}

func boxStyle(el models.LayoutElement, fontSize float64, color string) string {
	family := ""
	if s := el.Style; s != nil {
		if s.FontSize > 0 && !math.IsInf(s.FontSize, 0) {
			fontSize = s.FontSize
		}
		if safeColor.MatchString(s.Color) {
			color = s.Color
		}
		if safeFontFamily.MatchString(s.FontFamily) {
			family = s.FontFamily
		}
	}

	var sb strings.Builder
	sb.WriteString("top:" + px(el.Y))
	sb.WriteString(";left:" + px(el.X))
	sb.WriteString(";width:" + px(el.Width))
	sb.WriteString(";height:" + px(el.Height))
	sb.WriteString(";font-size:" + px(fontSize))
	sb.WriteString(";color:" + color)
	if family != "" {
		sb.WriteString(";font-family:" + family)
	}
	sb.WriteString(";white-space:pre-wrap")
	return sb.String()
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// safeSrc accepts http(s) URLs, inline images and relative references.
func safeSrc(src string) (string, bool) {
	src = strings.TrimSpace(src)
	if src == "" {
		return "", false
	}
	u, err := url.Parse(src)
	if err != nil {
		return "", false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return src, true
	case "data":
		return src, strings.HasPrefix(strings.ToLower(u.Opaque), "image/")
	case "":
		return src, true
	default:
		return "", false
	}
}
