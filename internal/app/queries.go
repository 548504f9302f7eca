package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"flex_reviews/internal/domain"
)

const (
	summariesKey = "summaries"
	facetsKey    = "facets"
)

func publicKey(listingID *int64) string {
	if listingID == nil {
		return "public:all"
	}
	return fmt.Sprintf("public:%d", *listingID)
}

// QueryService is the boundary surface: filtered listings, single lookups,
// rollups, the public approved-only view, and the one mutating operation
// (approval). Heavy aggregates are cached cache-aside with a TTL.
type QueryService struct {
	source   domain.ReviewSource
	repo     domain.ReviewRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(src domain.ReviewSource, repo domain.ReviewRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{source: src, repo: repo, cache: c, cacheTTL: ttl}
}

// ListReviews fetches (live or fixture), normalizes, and groups by listing
// name. Total carries the filtered-set size, not the page size.
func (s *QueryService) ListReviews(ctx context.Context, q domain.ReviewsQuery) (domain.ReviewsPage, error) {
	raw, err := s.source.FetchReviews(ctx, q)
	if err != nil {
		return domain.ReviewsPage{}, err
	}

	normalized := normalizeAll(raw.Result)
	byListing := make(map[string][]domain.NormalizedReview, 4)
	for _, r := range normalized {
		byListing[r.ListingName] = append(byListing[r.ListingName], r)
	}

	return domain.ReviewsPage{
		Total:     raw.Total,
		Count:     len(normalized),
		Offset:    raw.Offset,
		Limit:     raw.Limit,
		Reviews:   normalized,
		ByListing: byListing,
	}, nil
}

func (s *QueryService) GetReview(ctx context.Context, id int64) (domain.NormalizedReview, error) {
	raw, err := s.source.FetchReviewByID(ctx, id)
	if err != nil {
		return domain.NormalizedReview{}, err
	}
	return NormalizeReview(raw), nil
}

// PropertySummaries serves the per-listing rollups over the full backing
// set, cached until an approval toggle invalidates it.
func (s *QueryService) PropertySummaries(ctx context.Context) ([]domain.PropertySummary, error) {
	var cached []domain.PropertySummary
	if ok, _ := s.cache.Get(ctx, summariesKey, &cached); ok {
		return cached, nil
	}

	raw, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	summaries := SummarizeByProperty(normalizeAll(raw))
	_ = s.cache.Set(ctx, summariesKey, summaries, int(s.cacheTTL.Seconds()))
	return summaries, nil
}

// PublicReviews is the property-page view: approved records only,
// optionally narrowed to one listing, newest first.
func (s *QueryService) PublicReviews(ctx context.Context, listingID *int64) ([]domain.NormalizedReview, error) {
	key := publicKey(listingID)
	var cached []domain.NormalizedReview
	if ok, _ := s.cache.Get(ctx, key, &cached); ok {
		return cached, nil
	}

	raw, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.NormalizedReview, 0, len(raw))
	for _, r := range raw {
		n := NormalizeReview(r)
		if !n.IsApproved {
			continue
		}
		if listingID != nil && (n.ListingID == nil || *n.ListingID != *listingID) {
			continue
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ReviewDate.After(out[j].ReviewDate) })
	_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	return out, nil
}

// SetApproval flips the backing record's moderation status and returns the
// re-normalized record, or ErrNotFound. Last write wins on concurrent
// toggles; moderation is human-paced and effectively single-writer.
func (s *QueryService) SetApproval(ctx context.Context, id int64, approved bool) (domain.NormalizedReview, error) {
	status := domain.StatusAwaiting
	if approved {
		status = domain.StatusPublished
	}
	raw, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return domain.NormalizedReview{}, err
	}
	// Rollups, facets and the public views are now stale.
	_ = s.cache.Del(ctx, summariesKey)
	_ = s.cache.Del(ctx, facetsKey)
	_ = s.cache.Del(ctx, publicKey(nil))
	if raw.ListingMapID != nil {
		_ = s.cache.Del(ctx, publicKey(raw.ListingMapID))
	}
	return NormalizeReview(raw), nil
}

// FilterOptions lists the distinct facets the dashboard filters on.
func (s *QueryService) FilterOptions(ctx context.Context) (domain.FilterOptions, error) {
	var cached domain.FilterOptions
	if ok, _ := s.cache.Get(ctx, facetsKey, &cached); ok {
		return cached, nil
	}

	raw, err := s.repo.List(ctx)
	if err != nil {
		return domain.FilterOptions{}, err
	}

	opts := domain.FilterOptions{Ratings: []int{1, 2, 3, 4, 5}}
	seenProps := map[int64]bool{}
	seenChannels := map[string]bool{}
	seenCats := map[string]bool{}
	for _, r := range raw {
		n := NormalizeReview(r)
		if n.ListingID != nil && !seenProps[*n.ListingID] {
			seenProps[*n.ListingID] = true
			opts.Properties = append(opts.Properties, domain.PropertyRef{ID: *n.ListingID, Name: n.ListingName})
		}
		if !seenChannels[n.Channel] {
			seenChannels[n.Channel] = true
			opts.Channels = append(opts.Channels, n.Channel)
		}
		for _, cat := range n.ReviewCategories {
			if !seenCats[cat.Category] {
				seenCats[cat.Category] = true
				opts.Categories = append(opts.Categories, cat.Category)
			}
		}
	}

	_ = s.cache.Set(ctx, facetsKey, opts, int(s.cacheTTL.Seconds()))
	return opts, nil
}
