package domain

import "time"

// RawReview is a review exactly as the provider returns it: ratings on a
// 0-10 scale, timestamps as "2006-01-02 15:04:05" strings, channel as a
// numeric id. It is never exposed past the normalization boundary.
type RawReview struct {
	ID             int64            `json:"id"`
	Type           string           `json:"type"`   // guest-to-host | host-to-guest
	Status         string           `json:"status"` // published | awaiting | ...
	Rating         *float64         `json:"rating"` // nil when only categories carry scores
	PublicReview   string           `json:"publicReview"`
	ReviewCategory []CategoryRating `json:"reviewCategory"`
	SubmittedAt    string           `json:"submittedAt"`
	GuestName      string           `json:"guestName"`
	ListingMapID   *int64           `json:"listingMapId"`
	ListingName    string           `json:"listingName"`
	ChannelID      int64            `json:"channelId"`
}

type CategoryRating struct {
	Category string  `json:"category"`
	Rating   float64 `json:"rating"`
}

// SubmittedTime parses the provider timestamp ("2006-01-02 15:04:05" UTC,
// with RFC 3339 tolerated). Zero time when unparseable.
func (r RawReview) SubmittedTime() time.Time {
	if t, err := time.Parse("2006-01-02 15:04:05", r.SubmittedAt); err == nil {
		return t.UTC()
	}
	if t, err := time.Parse(time.RFC3339, r.SubmittedAt); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

// StatusPublished is the provider sentinel that maps to IsApproved.
const (
	StatusPublished = "published"
	StatusAwaiting  = "awaiting"
)

// NormalizedReview is the canonical shape: 0-5 integer ratings, resolved
// channel name, derived approval flag.
type NormalizedReview struct {
	ID               int64            `json:"id"`
	ListingID        *int64           `json:"listingId"`
	ListingName      string           `json:"listingName"`
	GuestName        string           `json:"guestName"`
	Rating           *int             `json:"rating"` // nil when underivable
	ReviewDate       time.Time        `json:"reviewDate"`
	ChannelID        int64            `json:"channelId"`
	Channel          string           `json:"channel"`
	Type             string           `json:"type"`
	Status           string           `json:"status"`
	IsApproved       bool             `json:"isApproved"`
	Comment          string           `json:"comment"`
	ReviewCategories []CategoryRating `json:"reviewCategories"`
}

// PropertySummary is a per-listing rollup, recomputed on demand.
type PropertySummary struct {
	ListingID          int64              `json:"listingId"`
	ListingName        string             `json:"listingName"`
	TotalReviews       int                `json:"totalReviews"`
	ApprovedReviews    int                `json:"approvedReviews"`
	AverageRating      float64            `json:"averageRating"`
	RatingDistribution map[int]int        `json:"ratingDistribution"` // keys 1..5
	ChannelBreakdown   map[string]int     `json:"channelBreakdown"`
	RecentReviews      []NormalizedReview `json:"recentReviews"`
}

// ReviewsQuery mirrors the provider's listing endpoint parameters plus the
// fixture-mode-only listing-name substring filter.
type ReviewsQuery struct {
	ListingName string // case-insensitive substring
	Type        string
	Status      string
	Channel     *int64
	StartDate   *time.Time // inclusive
	EndDate     *time.Time // inclusive
	SortBy      string     // submittedAt | rating | guestName
	SortOrder   string     // asc | desc
	Limit       int
	Offset      int
}

// RawPage is the provider's list envelope. Total is the filtered-set size,
// Count the page size actually returned.
type RawPage struct {
	Result []RawReview `json:"result"`
	Count  int         `json:"count"`
	Total  int         `json:"total"`
	Offset int         `json:"offset"`
	Limit  int         `json:"limit"`
}

// ReviewsPage is the normalized envelope served at the boundary.
type ReviewsPage struct {
	Total     int                           `json:"total"`
	Count     int                           `json:"count"`
	Offset    int                           `json:"offset"`
	Limit     int                           `json:"limit"`
	Reviews   []NormalizedReview            `json:"reviews"`
	ByListing map[string][]NormalizedReview `json:"reviewsByListing"`
}

// FilterOptions are the distinct facets the dashboard filters on.
type FilterOptions struct {
	Properties []PropertyRef `json:"properties"`
	Channels   []string      `json:"channels"`
	Categories []string      `json:"categories"`
	Ratings    []int         `json:"ratings"`
}

type PropertyRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
