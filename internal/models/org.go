// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and the template content types compiled by the engine.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Org is a tenant. Every template, asset and job belongs to exactly one.
type Org struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// APIKey authenticates requests on behalf of an org. Only a bcrypt hash of
// the secret part is stored; Prefix is the lookup handle.
type APIKey struct {
	ID         uuid.UUID  `json:"id"`
	OrgID      uuid.UUID  `json:"orgId"`
	Name       string     `json:"name"`
	Prefix     string     `json:"prefix"`
	SecretHash string     `json:"-"` // Never serialize the hash
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	RevokedAt  *time.Time `json:"revokedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// IsRevoked reports whether the key may no longer be used.
func (k *APIKey) IsRevoked() bool {
	return k.RevokedAt != nil
}
