package models

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestTemplateTypeValid(t *testing.T) {
	tests := []struct {
		tt   TemplateType
		want bool
	}{
		{TemplateTypeLayout, true},
		{TemplateTypeDocument, true},
		{TemplateType(""), false},
		{TemplateType("Layout"), false},
		{TemplateType("page"), false},
	}
	for _, tc := range tests {
		if got := tc.tt.Valid(); got != tc.want {
			t.Errorf("TemplateType(%q).Valid() = %v, want %v", tc.tt, got, tc.want)
		}
	}
}

func TestShapeFor(t *testing.T) {
	if ShapeFor(TemplateTypeDocument) != ShapeDocument {
		t.Error("document templates need document content")
	}
	if ShapeFor(TemplateTypeLayout) != ShapeLayout {
		t.Error("layout templates need layout content")
	}
	if ShapeFor("slides") != ShapeUnknown {
		t.Error("unknown types map to the unknown shape")
	}
}

func TestTemplateIsArchived(t *testing.T) {
	if (&Template{Status: TemplateStatusActive}).IsArchived() {
		t.Error("active template reported archived")
	}
	if !(&Template{Status: TemplateStatusArchived}).IsArchived() {
		t.Error("archived template not reported archived")
	}
}

func TestDeriveSchema(t *testing.T) {
	c, _ := ParseContent([]byte(`[{"type":"field","fieldKey":"total"},{"type":"field","fieldKey":"date"}]`))
	want := map[string]any{"fields": map[string]any{
		"total": map[string]any{"type": "string"},
		"date":  map[string]any{"type": "string"},
	}}
	if got := DeriveSchema(c); !reflect.DeepEqual(got, want) {
		t.Errorf("DeriveSchema() = %v, want %v", got, want)
	}

	empty, _ := ParseContent([]byte(`{"type":"doc"}`))
	if got := DeriveSchema(empty); len(got) != 0 {
		t.Errorf("DeriveSchema(no keys) = %v, want empty", got)
	}
}

func TestSchemaJSON(t *testing.T) {
	b, err := SchemaJSON(nil)
	if err != nil || string(b) != "{}" {
		t.Errorf("SchemaJSON(nil) = %s, %v", b, err)
	}
}

func TestTemplateVersionJSON(t *testing.T) {
	raw := `{"version":3,"status":"draft","content":{"type":"doc","content":[]}}`
	var v TemplateVersion
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if v.Version != 3 || v.Status != VersionStatusDraft {
		t.Errorf("decoded %+v", v)
	}
	if v.Content.Shape() != ShapeDocument {
		t.Errorf("content shape = %q", v.Content.Shape())
	}
}
