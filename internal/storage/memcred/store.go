// Package memcred is the in-memory CredentialStore used in mock mode and
// tests; the durable variant lives in storage/mysql.
package memcred

import (
	"context"
	"sync"
	"time"

	"flex_reviews/internal/domain"
)

type Store struct {
	mu   sync.Mutex
	rows map[string]domain.Credential
}

func New() *Store {
	return &Store{rows: make(map[string]domain.Credential)}
}

func (s *Store) Get(ctx context.Context, clientID string) (domain.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.rows[clientID]
	if !ok || !c.ExpiresAt.After(time.Now()) {
		return domain.Credential{}, domain.ErrNoCredential
	}
	return c, nil
}

func (s *Store) Upsert(ctx context.Context, clientID, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[clientID] = domain.Credential{ClientID: clientID, Token: token, ExpiresAt: expiresAt}
	return nil
}

func (s *Store) Delete(ctx context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if clientID == "" {
		s.rows = make(map[string]domain.Credential)
		return nil
	}
	delete(s.rows, clientID)
	return nil
}
