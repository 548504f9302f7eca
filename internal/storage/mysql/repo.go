package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"flex_reviews/internal/domain"
)

// Repo is the durable CredentialStore. It owns physical persistence only;
// validity decisions (expiry windows, eviction policy) live with the caller.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Get(ctx context.Context, clientID string) (domain.Credential, error) {
	row := r.db.QueryRowContext(ctx, getTokenSQL, clientID)

	var c domain.Credential
	var expiresAt time.Time
	if err := row.Scan(&c.ClientID, &c.Token, &expiresAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.Credential{}, domain.ErrNoCredential
		}
		return domain.Credential{}, fmt.Errorf("get token: %w", err)
	}
	c.ExpiresAt = expiresAt
	return c, nil
}

func (r *Repo) Upsert(ctx context.Context, clientID, token string, expiresAt time.Time) error {
	if _, err := r.db.ExecContext(ctx, upsertTokenSQL, clientID, token, expiresAt.UTC()); err != nil {
		return fmt.Errorf("upsert token: %w", err)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, clientID string) error {
	var err error
	if clientID == "" {
		_, err = r.db.ExecContext(ctx, deleteAllTokensSQL)
	} else {
		_, err = r.db.ExecContext(ctx, deleteTokenSQL, clientID)
	}
	if err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}
