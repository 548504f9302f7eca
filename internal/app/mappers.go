package app

import (
	"math"

	"flex_reviews/internal/domain"
)

// channelNames is the provider's channel-id registry. Unknown ids resolve
// to the "unknown" sentinel, never an error.
var channelNames = map[int64]string{
	2000: "direct",
	2002: "homeaway",
	2005: "bookingcom",
	2007: "expedia",
	2009: "homeawayical",
	2010: "vrboical",
	2013: "bookingengine",
	2015: "customIcal",
	2016: "tripadvisorical",
	2017: "wordpress",
	2018: "airbnbOfficial",
	2019: "marriott",
	2020: "partner",
	2021: "gds",
	2022: "google",
}

const unknownChannel = "unknown"

func ChannelName(id int64) string {
	if name, ok := channelNames[id]; ok {
		return name
	}
	return unknownChannel
}

// rescale maps a 0-10 provider rating onto the canonical 0-5 integer
// scale, rounding half away from zero. Provider ratings are contractually
// bounded to 0-10, so no clamping.
func rescale(r10 float64) int {
	return int(math.Round(r10 / 10 * 5))
}

// NormalizeReview converts a provider record to canonical form. Pure: the
// input is never mutated, and identical inputs yield identical outputs.
//
// When the direct rating is absent, the overall rating derives from the
// mean of the 0-10 category ratings. Categories are rescaled and rounded
// independently of the overall value; the two may disagree by one point.
func NormalizeReview(raw domain.RawReview) domain.NormalizedReview {
	var rating *int
	if raw.Rating != nil {
		v := rescale(*raw.Rating)
		rating = &v
	} else if len(raw.ReviewCategory) > 0 {
		var sum float64
		for _, cat := range raw.ReviewCategory {
			sum += cat.Rating
		}
		v := rescale(sum / float64(len(raw.ReviewCategory)))
		rating = &v
	}

	cats := make([]domain.CategoryRating, len(raw.ReviewCategory))
	for i, cat := range raw.ReviewCategory {
		cats[i] = domain.CategoryRating{
			Category: cat.Category,
			Rating:   float64(rescale(cat.Rating)),
		}
	}

	return domain.NormalizedReview{
		ID:               raw.ID,
		ListingID:        raw.ListingMapID,
		ListingName:      raw.ListingName,
		GuestName:        raw.GuestName,
		Rating:           rating,
		ReviewDate:       raw.SubmittedTime(),
		ChannelID:        raw.ChannelID,
		Channel:          ChannelName(raw.ChannelID),
		Type:             raw.Type,
		Status:           raw.Status,
		IsApproved:       raw.Status == domain.StatusPublished,
		Comment:          raw.PublicReview,
		ReviewCategories: cats,
	}
}

func normalizeAll(raw []domain.RawReview) []domain.NormalizedReview {
	out := make([]domain.NormalizedReview, len(raw))
	for i, r := range raw {
		out[i] = NormalizeReview(r)
	}
	return out
}
