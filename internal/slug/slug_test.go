package slug

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple two words", input: "Hello World", want: "hello-world"},
		{name: "title with year", input: "Invoice 2026", want: "invoice-2026"},
		{name: "punctuation dropped", input: "Invoice (EU), final!", want: "invoice-eu-final"},
		{name: "quote inside word", input: "Customer's Receipt", want: "customers-receipt"},
		{name: "underscores and dots", input: "badge_front.v2", want: "badge-front-v2"},
		{name: "accents stripped", input: "Café Résumé", want: "caf-rsum"},
		{name: "only unicode", input: "日本語", want: ""},
		{name: "leading and trailing separators", input: "  --Report--  ", want: "report"},
		{name: "collapsed separators", input: "a - _ b", want: "a-b"},
		{name: "tabs and newlines", input: "a\tb\nc", want: "a-b-c"},
		{name: "empty", input: "", want: ""},
		{name: "quotes cannot escape header", input: `x"; filename="evil`, want: "x-filenameevil"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Generate(tt.input); got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGenerateTruncates(t *testing.T) {
	got := Generate(strings.Repeat("ab ", 100))
	if len(got) > maxLen {
		t.Errorf("len = %d, want <= %d", len(got), maxLen)
	}
	if strings.HasSuffix(got, "-") {
		t.Errorf("truncated slug ends with a hyphen: %q", got)
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		name    string
		version int
		want    string
	}{
		{"Quarterly Report", 3, "quarterly-report-v3.pdf"},
		{"", 1, "template-v1.pdf"},
		{"!!!", 12, "template-v12.pdf"},
	}
	for _, tt := range tests {
		if got := Filename(tt.name, tt.version); got != tt.want {
			t.Errorf("Filename(%q, %d) = %q, want %q", tt.name, tt.version, got, tt.want)
		}
	}
}
