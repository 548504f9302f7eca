package app

import (
	"math"
	"sort"

	"flex_reviews/internal/domain"
)

const recentReviewCount = 5

// SummarizeByProperty rolls normalized reviews up per listing: counts,
// approval count, 1-5 rating distribution, channel mix, average to one
// decimal, and the five most recent reviews. Single pass for the counters,
// first-appearance ordering, input left untouched.
//
// Reviews without a listing id cannot be attributed and are skipped.
// Reviews whose rating is nil (or rescales to 0) count toward TotalReviews
// but not the distribution, and the average is computed over TotalReviews,
// so they dilute it.
func SummarizeByProperty(reviews []domain.NormalizedReview) []domain.PropertySummary {
	byListing := make(map[int64]*domain.PropertySummary)
	var order []int64

	for _, r := range reviews {
		if r.ListingID == nil {
			continue
		}
		id := *r.ListingID
		s, ok := byListing[id]
		if !ok {
			s = &domain.PropertySummary{
				ListingID:          id,
				ListingName:        r.ListingName,
				RatingDistribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
				ChannelBreakdown:   map[string]int{},
			}
			byListing[id] = s
			order = append(order, id)
		}

		s.TotalReviews++
		if r.IsApproved {
			s.ApprovedReviews++
		}
		if r.Rating != nil && *r.Rating >= 1 && *r.Rating <= 5 {
			s.RatingDistribution[*r.Rating]++
		}
		s.ChannelBreakdown[r.Channel]++
		s.RecentReviews = append(s.RecentReviews, r)
	}

	out := make([]domain.PropertySummary, 0, len(order))
	for _, id := range order {
		s := byListing[id]

		var ratingSum int
		for rating, count := range s.RatingDistribution {
			ratingSum += rating * count
		}
		if s.TotalReviews > 0 {
			s.AverageRating = math.Round(float64(ratingSum)/float64(s.TotalReviews)*10) / 10
		}

		sort.SliceStable(s.RecentReviews, func(i, j int) bool {
			return s.RecentReviews[i].ReviewDate.After(s.RecentReviews[j].ReviewDate)
		})
		if len(s.RecentReviews) > recentReviewCount {
			s.RecentReviews = s.RecentReviews[:recentReviewCount]
		}

		out = append(out, *s)
	}
	return out
}
