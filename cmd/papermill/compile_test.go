// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

// run executes the command tree with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCompileJSONLayout(t *testing.T) {
	p := writeFile(t, "badge.json", `[{"id":"a","type":"text","x":1,"y":2,"width":3,"height":4,"text":"Hi"}]`)

	out, err := run(t, "compile", "--type", "layout", p)
	require.NoError(t, err)
	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, `<div class="page">`)
	assert.Contains(t, out, "top:2px;left:1px;width:3px;height:4px")
	assert.Contains(t, out, ">Hi</div>")
}

func TestCompileYAMLDocumentToFile(t *testing.T) {
	p := writeFile(t, "letter.yaml", `
type: doc
content:
  - type: paragraph
    content:
      - type: text
        text: "Dear "
      - type: variable
        attrs:
          label: name
`)
	dst := filepath.Join(t.TempDir(), "letter.html")

	out, err := run(t, "compile", p, "--out", dst)
	require.NoError(t, err)
	assert.Empty(t, out)

	html, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Contains(t, string(html), "@page{size:A4;margin:2cm}", "type inferred as document")
	assert.Contains(t, string(html), `<p>Dear <span class="variable" contenteditable="false" data-variable="name">{{ name }}</span></p>`)
}

func TestCompileErrors(t *testing.T) {
	doc := writeFile(t, "doc.json", `{"type":"doc","content":[]}`)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"type mismatch", []string{"compile", "--type", "layout", doc}, "layout template has document content"},
		{"unknown type", []string{"compile", "--type", "poster", doc}, "unknown template type"},
		{"unknown shape", []string{"compile", writeFile(t, "x.json", `{"hello":1}`)}, "cannot infer"},
		{"invalid json", []string{"compile", writeFile(t, "x.json", `{`)}, "not valid JSON"},
		{"invalid yaml", []string{"compile", writeFile(t, "x.yml", "a: [")}, "parse yaml"},
		{"missing file", []string{"compile", filepath.Join(t.TempDir(), "nope.json")}, "read content"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestYAMLNonStringKeys(t *testing.T) {
	b, err := yamlToJSON([]byte("1: one\nnested:\n  2: two\n"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"1":"one","nested":{"2":"two"}}`, string(b))
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "worker", "migrate", "compile", "apikey", "cache"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}

	_, err := run(t, "apikey", "create")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--org is required")
}

func TestWorkerHelpDocumentsShutdown(t *testing.T) {
	cmd, _, err := newRootCmd().Find([]string{"worker"})
	require.NoError(t, err)
	assert.Contains(t, cmd.Long, "marked failed and not retried")
}
