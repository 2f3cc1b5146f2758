// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package apikey generates, parses and verifies API keys of the form
// pm_<prefix>_<secret>. The prefix is stored in clear for lookup; only a
// bcrypt hash of the secret is persisted.
package apikey

import (
	"errors"
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/crypto/bcrypt"
)

const (
	scheme = "pm"

	// Alphanumeric only, so "_" can separate the parts.
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	PrefixLen = 8
	SecretLen = 32
)

// Cost is the bcrypt cost used by Hash. Tests lower it.
var Cost = bcrypt.DefaultCost

// ErrMalformed is returned by Parse for tokens that are not API keys.
var ErrMalformed = errors.New("malformed api key")

// Key is a parsed API key.
type Key struct {
	Prefix string
	Secret string
}

// String returns the token handed to clients.
func (k Key) String() string {
	return scheme + "_" + k.Prefix + "_" + k.Secret
}

// Generate creates a new random key.
func Generate() (Key, error) {
	prefix, err := gonanoid.Generate(alphabet, PrefixLen)
	if err != nil {
		return Key{}, fmt.Errorf("generate key prefix: %w", err)
	}
	secret, err := gonanoid.Generate(alphabet, SecretLen)
	if err != nil {
		return Key{}, fmt.Errorf("generate key secret: %w", err)
	}
	return Key{Prefix: prefix, Secret: secret}, nil
}

// Parse splits a token into its prefix and secret.
func Parse(token string) (Key, error) {
	parts := strings.Split(token, "_")
	if len(parts) != 3 || parts[0] != scheme {
		return Key{}, ErrMalformed
	}
	if len(parts[1]) != PrefixLen || len(parts[2]) != SecretLen {
		return Key{}, ErrMalformed
	}
	if !isAlnum(parts[1]) || !isAlnum(parts[2]) {
		return Key{}, ErrMalformed
	}
	return Key{Prefix: parts[1], Secret: parts[2]}, nil
}

// Hash returns the bcrypt hash of the key's secret.
func (k Key) Hash() (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(k.Secret), Cost)
	if err != nil {
		return "", fmt.Errorf("hash api key: %w", err)
	}
	return string(h), nil
}

// Verify reports whether the key's secret matches a stored hash.
func (k Key) Verify(hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(k.Secret)) == nil
}

func isAlnum(s string) bool {
	for _, r := range s {
		if !strings.ContainsRune(alphabet, r) {
			return false
		}
	}
	return true
}
