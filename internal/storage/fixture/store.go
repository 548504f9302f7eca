// Package fixture is the bundled review dataset behind mock mode: an
// in-memory arena keyed by review id, mutable only through UpdateStatus.
package fixture

import (
	"context"
	_ "embed"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"flex_reviews/internal/domain"
)

//go:embed hostaway_reviews.json
var bundled []byte

type Store struct {
	mu    sync.RWMutex
	byID  map[int64]*domain.RawReview
	order []int64 // preserves dataset order for deterministic listings
}

// New loads the embedded dataset. A malformed bundle yields an empty store
// rather than a crash; the condition is a packaging error and is logged
// loudly so it is not mistaken for "no reviews yet".
func New() *Store {
	return FromBytes(bundled)
}

func FromBytes(b []byte) *Store {
	s := &Store{byID: make(map[int64]*domain.RawReview)}
	var payload struct {
		Result []domain.RawReview `json:"result"`
	}
	if err := json.Unmarshal(b, &payload); err != nil {
		log.Error().Err(err).Msg("fixture dataset is malformed, serving empty review set")
		return s
	}
	if len(payload.Result) == 0 {
		log.Error().Msg("fixture dataset has no reviews, serving empty review set")
		return s
	}
	for i := range payload.Result {
		r := payload.Result[i]
		s.byID[r.ID] = &r
		s.order = append(s.order, r.ID)
	}
	return s
}

func (s *Store) List(ctx context.Context) ([]domain.RawReview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.RawReview, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.byID[id])
	}
	return out, nil
}

func (s *Store) FindByID(ctx context.Context, id int64) (domain.RawReview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byID[id]
	if !ok {
		return domain.RawReview{}, domain.ErrNotFound
	}
	return *r, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id int64, status string) (domain.RawReview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[id]
	if !ok {
		return domain.RawReview{}, domain.ErrNotFound
	}
	r.Status = status
	return *r, nil
}

// Len reports the dataset size; used by startup logging.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
