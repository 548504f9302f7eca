package app_test

import (
	"context"
	"testing"
	"time"

	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
)

// ---- fakes ----

type fakeSource struct {
	page domain.RawPage
	one  domain.RawReview
	err  error
}

func (f *fakeSource) FetchReviews(ctx context.Context, q domain.ReviewsQuery) (domain.RawPage, error) {
	return f.page, f.err
}
func (f *fakeSource) FetchReviewByID(ctx context.Context, id int64) (domain.RawReview, error) {
	if f.err != nil {
		return domain.RawReview{}, f.err
	}
	return f.one, nil
}

type fakeRepo struct {
	reviews []domain.RawReview
}

func (f *fakeRepo) List(ctx context.Context) ([]domain.RawReview, error) {
	out := make([]domain.RawReview, len(f.reviews))
	copy(out, f.reviews)
	return out, nil
}
func (f *fakeRepo) FindByID(ctx context.Context, id int64) (domain.RawReview, error) {
	for _, r := range f.reviews {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.RawReview{}, domain.ErrNotFound
}
func (f *fakeRepo) UpdateStatus(ctx context.Context, id int64, status string) (domain.RawReview, error) {
	for i := range f.reviews {
		if f.reviews[i].ID == id {
			f.reviews[i].Status = status
			return f.reviews[i], nil
		}
	}
	return domain.RawReview{}, domain.ErrNotFound
}

type fakeCache struct {
	store map[string]any
	sets  int
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *[]domain.PropertySummary:
		*d = v.([]domain.PropertySummary)
	case *[]domain.NormalizedReview:
		*d = v.([]domain.NormalizedReview)
	case *domain.FilterOptions:
		*d = v.(domain.FilterOptions)
	}
	return true, nil
}
func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	c.sets++
	return nil
}
func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

func seedRepo() *fakeRepo {
	return &fakeRepo{reviews: []domain.RawReview{
		{ID: 1, Status: "published", Type: "guest-to-host", Rating: praw(9), GuestName: "Ana",
			ListingMapID: pint64(101), ListingName: "Shoreditch", ChannelID: 2018,
			SubmittedAt: "2024-01-03 10:00:00",
			ReviewCategory: []domain.CategoryRating{
				{Category: "cleanliness", Rating: 10},
			}},
		{ID: 2, Status: "awaiting", Type: "guest-to-host", Rating: praw(6), GuestName: "Bob",
			ListingMapID: pint64(101), ListingName: "Shoreditch", ChannelID: 2005,
			SubmittedAt: "2024-01-02 10:00:00"},
		{ID: 3, Status: "published", Type: "host-to-guest", Rating: praw(8), GuestName: "Cleo",
			ListingMapID: pint64(102), ListingName: "Camden", ChannelID: 2000,
			SubmittedAt: "2024-01-01 10:00:00"},
	}}
}

// ---- tests ----

func TestListReviews_NormalizesAndGroups(t *testing.T) {
	repo := seedRepo()
	src := &fakeSource{page: domain.RawPage{
		Result: repo.reviews, Count: 3, Total: 7, Offset: 0, Limit: 3,
	}}
	q := app.NewQueryService(src, repo, &fakeCache{}, time.Minute)

	page, err := q.ListReviews(context.Background(), domain.ReviewsQuery{Limit: 3})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if page.Total != 7 || page.Count != 3 {
		t.Fatalf("envelope: total=%d count=%d", page.Total, page.Count)
	}
	if len(page.ByListing["Shoreditch"]) != 2 || len(page.ByListing["Camden"]) != 1 {
		t.Fatalf("grouping: %+v", page.ByListing)
	}
	if r := page.Reviews[0]; r.Rating == nil || *r.Rating != 5 || !r.IsApproved {
		t.Fatalf("normalization: %+v", r)
	}
}

func TestSetApproval_RoundTrip(t *testing.T) {
	repo := seedRepo()
	q := app.NewQueryService(&fakeSource{}, repo, &fakeCache{}, time.Minute)
	ctx := context.Background()

	before, err := repo.FindByID(ctx, 1)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	down, err := q.SetApproval(ctx, 1, false)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if down.IsApproved || down.Status != "awaiting" {
		t.Fatalf("expected unapproved, got %+v", down)
	}

	up, err := q.SetApproval(ctx, 1, true)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !up.IsApproved || up.Status != "published" {
		t.Fatalf("expected approved, got %+v", up)
	}

	after, _ := repo.FindByID(ctx, 1)
	if after.Status != before.Status || after.GuestName != before.GuestName ||
		after.SubmittedAt != before.SubmittedAt || *after.Rating != *before.Rating {
		t.Fatalf("round trip changed the record: %+v vs %+v", after, before)
	}
}

func TestSetApproval_NotFound(t *testing.T) {
	q := app.NewQueryService(&fakeSource{}, seedRepo(), &fakeCache{}, time.Minute)
	if _, err := q.SetApproval(context.Background(), 999, true); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPublicReviews_ApprovedOnlyAndCached(t *testing.T) {
	repo := seedRepo()
	cache := &fakeCache{}
	q := app.NewQueryService(&fakeSource{}, repo, cache, time.Minute)
	ctx := context.Background()

	out, err := q.PublicReviews(ctx, nil)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 approved reviews, got %d", len(out))
	}
	for _, r := range out {
		if !r.IsApproved {
			t.Fatalf("unapproved review leaked: %+v", r)
		}
	}
	if !out[0].ReviewDate.After(out[1].ReviewDate) {
		t.Fatalf("expected newest first")
	}

	// Mutate repo; second read must come from cache.
	repo.reviews = nil
	out2, _ := q.PublicReviews(ctx, nil)
	if len(out2) != 2 {
		t.Fatalf("expected cached result, got %d reviews", len(out2))
	}
}

func TestPublicReviews_ListingFilter(t *testing.T) {
	q := app.NewQueryService(&fakeSource{}, seedRepo(), &fakeCache{}, time.Minute)
	id := int64(102)
	out, err := q.PublicReviews(context.Background(), &id)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(out) != 1 || out[0].ID != 3 {
		t.Fatalf("unexpected: %+v", out)
	}
}

func TestPropertySummaries_CacheInvalidatedByApproval(t *testing.T) {
	repo := seedRepo()
	cache := &fakeCache{}
	q := app.NewQueryService(&fakeSource{}, repo, cache, time.Minute)
	ctx := context.Background()

	first, err := q.PropertySummaries(ctx)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	var shoreditch domain.PropertySummary
	for _, s := range first {
		if s.ListingID == 101 {
			shoreditch = s
		}
	}
	if shoreditch.ApprovedReviews != 1 {
		t.Fatalf("expected 1 approved, got %d", shoreditch.ApprovedReviews)
	}

	if _, err := q.SetApproval(ctx, 2, true); err != nil {
		t.Fatalf("approve: %v", err)
	}

	second, _ := q.PropertySummaries(ctx)
	for _, s := range second {
		if s.ListingID == 101 && s.ApprovedReviews != 2 {
			t.Fatalf("summary cache not invalidated: approved=%d", s.ApprovedReviews)
		}
	}
}

func TestFilterOptions_Distinct(t *testing.T) {
	q := app.NewQueryService(&fakeSource{}, seedRepo(), &fakeCache{}, time.Minute)
	opts, err := q.FilterOptions(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(opts.Properties) != 2 {
		t.Fatalf("properties: %+v", opts.Properties)
	}
	if len(opts.Channels) != 3 {
		t.Fatalf("channels: %+v", opts.Channels)
	}
	if len(opts.Ratings) != 5 || opts.Ratings[0] != 1 || opts.Ratings[4] != 5 {
		t.Fatalf("ratings: %+v", opts.Ratings)
	}
	if len(opts.Categories) != 1 || opts.Categories[0] != "cleanliness" {
		t.Fatalf("categories: %+v", opts.Categories)
	}
}
