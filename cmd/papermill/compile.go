// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"papermill/internal/engine"
	"papermill/internal/models"
)

func newCompileCmd() *cobra.Command {
	var (
		typ string
		out string
	)

	cmd := &cobra.Command{
		Use:   "compile FILE",
		Short: "Compile template content to HTML without rendering",
		Long: `Compile a content file (.json, .yaml or .yml) into the HTML document the
render backend would receive. Nothing is stored and no backend is called.

Without --type the template type is inferred from the content's shape.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			markup, err := compileFile(args[0], models.TemplateType(typ))
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				w = f
			}
			if _, err := io.WriteString(w, markup); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", "", "template type: layout or document")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write markup to this file instead of stdout")
	return cmd
}

// compileFile reads and compiles one content file.
func compileFile(path string, typ models.TemplateType) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if raw, err = yamlToJSON(raw); err != nil {
			return "", err
		}
	}

	content, err := models.ParseContent(raw)
	if err != nil {
		return "", err
	}

	if typ == "" {
		switch content.Shape() {
		case models.ShapeDocument:
			typ = models.TemplateTypeDocument
		case models.ShapeLayout:
			typ = models.TemplateTypeLayout
		default:
			return "", fmt.Errorf("cannot infer template type from content, pass --type")
		}
	} else if !typ.Valid() {
		return "", fmt.Errorf("unknown template type %q", typ)
	}

	return engine.Compile(typ, content)
}

func yamlToJSON(raw []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	b, err := json.Marshal(jsonValue(v))
	if err != nil {
		return nil, fmt.Errorf("convert yaml: %w", err)
	}
	return b, nil
}

// jsonValue rewrites maps with non-string keys, which yaml allows and
// encoding/json rejects.
func jsonValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			t[k] = jsonValue(item)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, item := range t {
			m[fmt.Sprint(k)] = jsonValue(item)
		}
		return m
	case []any:
		for i, item := range t {
			t[i] = jsonValue(item)
		}
		return t
	default:
		return v
	}
}
