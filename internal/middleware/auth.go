// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"crypto/sha256"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"papermill/internal/apikey"
	"papermill/internal/models"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// OrgKey is the context key for the authenticated org's ID.
	OrgKey contextKey = "org"
	// APIKeyKey is the context key for the authenticated key's ID.
	APIKeyKey contextKey = "apikey"
)

// verifiedTTL is how long a successfully verified token skips bcrypt.
// Revocation therefore takes effect within this window.
const verifiedTTL = time.Minute

// KeyStore looks up API keys by their public prefix.
type KeyStore interface {
	FindByPrefix(ctx context.Context, prefix string) (*models.APIKey, error)
	TouchLastUsed(ctx context.Context, id uuid.UUID) error
}

// Authenticator validates bearer API keys and stores the owning org in
// the request context.
type Authenticator struct {
	keys KeyStore
	now  func() time.Time

	mu       sync.Mutex
	verified map[[sha256.Size]byte]verifiedKey
}

type verifiedKey struct {
	keyID   uuid.UUID
	orgID   uuid.UUID
	expires time.Time
}

// NewAuthenticator creates an Authenticator backed by keys.
func NewAuthenticator(keys KeyStore) *Authenticator {
	return &Authenticator{
		keys:     keys,
		now:      time.Now,
		verified: make(map[[sha256.Size]byte]verifiedKey),
	}
}

// RequireAPIKey rejects requests without a valid, unrevoked API key with
// 401. Downstream handlers read the org with OrgFromCtx.
func (a *Authenticator) RequireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer API key")
			return
		}

		v, ok := a.authenticate(r.Context(), token)
		if !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid API key")
			return
		}

		if info, ok := r.Context().Value(infoKey).(*requestInfo); ok {
			info.org = v.orgID
		}
		ctx := context.WithValue(r.Context(), OrgKey, v.orgID)
		ctx = context.WithValue(ctx, APIKeyKey, v.keyID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Authenticator) authenticate(ctx context.Context, token string) (verifiedKey, bool) {
	sum := sha256.Sum256([]byte(token))
	now := a.now()

	a.mu.Lock()
	v, hit := a.verified[sum]
	a.mu.Unlock()
	if hit && now.Before(v.expires) {
		return v, true
	}

	parsed, err := apikey.Parse(token)
	if err != nil {
		return verifiedKey{}, false
	}
	k, err := a.keys.FindByPrefix(ctx, parsed.Prefix)
	if err != nil {
		slog.Error("api key lookup failed", "error", err)
		return verifiedKey{}, false
	}
	if k == nil || k.IsRevoked() || !parsed.Verify(k.SecretHash) {
		return verifiedKey{}, false
	}

	if err := a.keys.TouchLastUsed(ctx, k.ID); err != nil {
		slog.Warn("api key touch failed", "key", k.ID, "error", err)
	}

	v = verifiedKey{keyID: k.ID, orgID: k.OrgID, expires: now.Add(verifiedTTL)}
	a.mu.Lock()
	a.prune(now)
	a.verified[sum] = v
	a.mu.Unlock()
	return v, true
}

// prune drops expired entries. Caller holds a.mu.
func (a *Authenticator) prune(now time.Time) {
	for k, v := range a.verified {
		if !now.Before(v.expires) {
			delete(a.verified, k)
		}
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// OrgFromCtx returns the authenticated org, if any.
func OrgFromCtx(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(OrgKey).(uuid.UUID)
	return id, ok
}

// WithOrg returns a context carrying orgID, as RequireAPIKey would set it.
func WithOrg(ctx context.Context, orgID uuid.UUID) context.Context {
	return context.WithValue(ctx, OrgKey, orgID)
}
