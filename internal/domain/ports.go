package domain

import (
	"context"
	"time"
)

// CredentialStore is the persistence contract for minted tokens. Get only
// returns rows whose expiry is strictly in the future; Upsert replaces any
// existing row for the same client identity in a single logical write.
// Concurrent upserts resolve last-write-wins; this layer imposes no ordering.
type CredentialStore interface {
	Get(ctx context.Context, clientID string) (Credential, error)
	Upsert(ctx context.Context, clientID, token string, expiresAt time.Time) error
	// Delete removes the row for clientID, or every row when clientID is "".
	Delete(ctx context.Context, clientID string) error
}

// ReviewSource serves review reads, live or fixture-backed.
type ReviewSource interface {
	FetchReviews(ctx context.Context, q ReviewsQuery) (RawPage, error)
	FetchReviewByID(ctx context.Context, id int64) (RawReview, error)
}

// ReviewRepository is the mutable backing store behind moderation and
// aggregation: the fixture arena in mock mode, a provider mirror otherwise.
type ReviewRepository interface {
	List(ctx context.Context) ([]RawReview, error)
	FindByID(ctx context.Context, id int64) (RawReview, error)
	// UpdateStatus flips the record's moderation status in place and
	// returns the updated record, or ErrNotFound.
	UpdateStatus(ctx context.Context, id int64, status string) (RawReview, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
