// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug turns template names into safe download filenames.
package slug

import (
	"strconv"
	"strings"
	"unicode"
)

// maxLen bounds the slug part of a filename.
const maxLen = 80

// fallback is used when a name has no usable characters.
const fallback = "template"

// Generate creates a lowercase ASCII slug from the given string. Letters
// and digits are kept, runs of whitespace, hyphens, underscores and dots
// become one hyphen, and everything else is dropped.
// Example: "Invoice (EU) 2026" → "invoice-eu-2026"
func Generate(s string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			pendingHyphen = true
		}
	}
	out := b.String()
	if len(out) > maxLen {
		out = strings.TrimRight(out[:maxLen], "-")
	}
	return out
}

// Filename is the attachment name for a rendered version:
// "<slug>-v<version>.pdf".
func Filename(name string, version int) string {
	s := Generate(name)
	if s == "" {
		s = fallback
	}
	return s + "-v" + strconv.Itoa(version) + ".pdf"
}
