// Package tokens owns the credential lifecycle: lookup-or-none, expiry
// computation on store, eviction after an authorization rejection.
package tokens

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"flex_reviews/internal/domain"
)

// The provider issues long-lived tokens (~24 months). We persist them with
// a safety margin so a token is never presented right at its expiry edge.
const (
	tokenValidity = 24 * 30 * 24 * time.Hour
	safetyMargin  = 5 * time.Minute
)

type Manager struct {
	store domain.CredentialStore
}

func New(store domain.CredentialStore) *Manager {
	return &Manager{store: store}
}

// Valid returns the cached token for clientID, or "" when none is usable.
// Store failures degrade to "no token" (forcing a fresh mint) except a
// misconfigured store, which is surfaced so the caller can abandon the
// live path instead of minting in a loop.
func (m *Manager) Valid(ctx context.Context, clientID string) (string, error) {
	c, err := m.store.Get(ctx, clientID)
	if err != nil {
		if errors.Is(err, domain.ErrStoreNotConfigured) {
			return "", err
		}
		if !errors.Is(err, domain.ErrNoCredential) {
			log.Warn().Err(err).Str("client_id", clientID).Msg("credential lookup failed, treating as no token")
		}
		return "", nil
	}
	return c.Token, nil
}

// Store persists a freshly minted token. On failure the caller keeps using
// the in-memory token for the current request; only caching is lost.
func (m *Manager) Store(ctx context.Context, clientID, token string) error {
	expiresAt := time.Now().Add(tokenValidity - safetyMargin)
	if err := m.store.Upsert(ctx, clientID, token, expiresAt); err != nil {
		log.Error().Err(err).Str("client_id", clientID).Msg("failed to persist token, proceeding uncached")
		return err
	}
	log.Info().Str("client_id", clientID).Time("expires_at", expiresAt).Msg("token stored")
	return nil
}

// Clear evicts the cached credential. Used only as the reaction to an
// upstream 403, never in normal flow. Empty clientID clears everything.
func (m *Manager) Clear(ctx context.Context, clientID string) error {
	if err := m.store.Delete(ctx, clientID); err != nil {
		log.Error().Err(err).Str("client_id", clientID).Msg("failed to clear token")
		return err
	}
	return nil
}
