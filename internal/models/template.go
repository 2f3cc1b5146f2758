// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TemplateType selects the authoring paradigm of a template and therefore
// the compiler used for every one of its versions. It never changes after
// the template is created.
type TemplateType string

const (
	TemplateTypeLayout   TemplateType = "layout"
	TemplateTypeDocument TemplateType = "document"
)

// Valid reports whether t is one of the known template types.
func (t TemplateType) Valid() bool {
	return t == TemplateTypeLayout || t == TemplateTypeDocument
}

// TemplateStatus is the lifecycle state of a template.
type TemplateStatus string

const (
	TemplateStatusActive   TemplateStatus = "active"
	TemplateStatusArchived TemplateStatus = "archived"
)

// VersionStatus marks whether a version is a work in progress or a
// release. It is fixed when the version is appended.
type VersionStatus string

const (
	VersionStatusDraft     VersionStatus = "draft"
	VersionStatusPublished VersionStatus = "published"
)

// Template is a named, typed design owned by an organisation. It owns an
// append-only history of TemplateVersions.
type Template struct {
	ID        uuid.UUID      `json:"id"`
	OrgID     uuid.UUID      `json:"orgId"`
	Name      string         `json:"name"`
	Type      TemplateType   `json:"type"`
	Status    TemplateStatus `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
}

// IsArchived reports whether the template no longer accepts new versions.
func (t *Template) IsArchived() bool {
	return t.Status == TemplateStatusArchived
}

// TemplateVersion is an immutable snapshot of a template's content.
// Version numbers start at 1 and increase by one per append.
type TemplateVersion struct {
	ID         uuid.UUID      `json:"id"`
	TemplateID uuid.UUID      `json:"templateId"`
	Version    int            `json:"version"`
	Status     VersionStatus  `json:"status"`
	Content    Content        `json:"content"`
	Schema     map[string]any `json:"schema,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// VersionSummary is the list-view projection of a version, without the
// potentially large content tree.
type VersionSummary struct {
	ID         uuid.UUID     `json:"id"`
	TemplateID uuid.UUID     `json:"templateId"`
	Version    int           `json:"version"`
	Status     VersionStatus `json:"status"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// DeriveSchema builds a schema document from the bound-field keys found in
// content. Each key maps to an untyped string field description.
func DeriveSchema(c Content) map[string]any {
	keys := FieldKeys(c)
	if len(keys) == 0 {
		return map[string]any{}
	}
	fields := make(map[string]any, len(keys))
	for _, k := range keys {
		fields[k] = map[string]any{"type": "string"}
	}
	return map[string]any{"fields": fields}
}

// SchemaJSON encodes a schema map for storage, treating nil as empty.
func SchemaJSON(schema map[string]any) ([]byte, error) {
	if schema == nil {
		schema = map[string]any{}
	}
	return json.Marshal(schema)
}
