package app_test

import (
	"testing"

	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
)

func praw(f float64) *float64 { return &f }

func TestNormalizeReview_DirectRatingRescale(t *testing.T) {
	cases := []struct {
		in   float64
		want int
	}{
		{10, 5},
		{9, 5}, // 4.5 rounds away from zero
		{8, 4},
		{7, 4}, // 3.5 rounds up
		{6, 3},
		{5, 3}, // 2.5 rounds up
		{2, 1},
		{1, 1}, // 0.5 rounds up
		{0, 0},
	}
	for _, c := range cases {
		n := app.NormalizeReview(domain.RawReview{ID: 1, Rating: praw(c.in), ChannelID: 2018})
		if n.Rating == nil || *n.Rating != c.want {
			t.Fatalf("rating %v: got %v, want %d", c.in, n.Rating, c.want)
		}
		if *n.Rating < 0 || *n.Rating > 5 {
			t.Fatalf("rating %v: out of range: %d", c.in, *n.Rating)
		}
	}
}

func TestNormalizeReview_DerivedFromCategories(t *testing.T) {
	raw := domain.RawReview{
		ID: 2,
		ReviewCategory: []domain.CategoryRating{
			{Category: "cleanliness", Rating: 7},
			{Category: "communication", Rating: 8},
			{Category: "value", Rating: 5},
		},
	}
	n := app.NormalizeReview(raw)
	// mean 6.667 on the 10-scale rescales to round(3.33) = 3
	if n.Rating == nil || *n.Rating != 3 {
		t.Fatalf("derived rating: got %v, want 3", n.Rating)
	}
	// categories rescale independently: 7->4, 8->4, 5->3
	wantCats := []float64{4, 4, 3}
	for i, c := range n.ReviewCategories {
		if c.Rating != wantCats[i] {
			t.Fatalf("category %s: got %v, want %v", c.Category, c.Rating, wantCats[i])
		}
	}
}

func TestNormalizeReview_NoDerivableRating(t *testing.T) {
	n := app.NormalizeReview(domain.RawReview{ID: 3})
	if n.Rating != nil {
		t.Fatalf("expected nil rating, got %d", *n.Rating)
	}
}

func TestNormalizeReview_Pure(t *testing.T) {
	raw := domain.RawReview{
		ID:     4,
		Rating: praw(8),
		ReviewCategory: []domain.CategoryRating{
			{Category: "cleanliness", Rating: 9},
		},
		Status:    "published",
		ChannelID: 2005,
	}
	a := app.NormalizeReview(raw)
	b := app.NormalizeReview(raw)

	if raw.ReviewCategory[0].Rating != 9 {
		t.Fatalf("input mutated: %v", raw.ReviewCategory[0].Rating)
	}
	if *a.Rating != *b.Rating || a.ReviewCategories[0].Rating != b.ReviewCategories[0].Rating {
		t.Fatalf("not deterministic: %+v vs %+v", a, b)
	}
	// mutating the output must not leak back into the input
	a.ReviewCategories[0].Rating = 99
	if raw.ReviewCategory[0].Rating != 9 {
		t.Fatalf("output aliases input categories")
	}
}

func TestNormalizeReview_ApprovalAndChannel(t *testing.T) {
	n := app.NormalizeReview(domain.RawReview{ID: 5, Status: "published", ChannelID: 2018})
	if !n.IsApproved || n.Channel != "airbnbOfficial" {
		t.Fatalf("unexpected: approved=%v channel=%s", n.IsApproved, n.Channel)
	}
	n = app.NormalizeReview(domain.RawReview{ID: 6, Status: "awaiting", ChannelID: 9999})
	if n.IsApproved {
		t.Fatalf("awaiting must not be approved")
	}
	if n.Channel != "unknown" {
		t.Fatalf("unknown channel id must map to sentinel, got %q", n.Channel)
	}
}

func TestChannelName(t *testing.T) {
	if got := app.ChannelName(2005); got != "bookingcom" {
		t.Fatalf("got %q", got)
	}
	if got := app.ChannelName(-1); got != "unknown" {
		t.Fatalf("got %q", got)
	}
}
