package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
)

type Handlers struct{ Q *app.QueryService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/reviews", h.listReviews)
	s.mux.Get("/v1/reviews/public", h.allPublicReviews)
	s.mux.Get("/v1/reviews/{id}", h.getReview)
	s.mux.Put("/v1/reviews/{id}/approval", h.setApproval)
	s.mux.Get("/v1/properties/summary", h.propertySummaries)
	s.mux.Get("/v1/properties/{id}/reviews", h.publicReviews)
	s.mux.Get("/v1/filters", h.filterOptions)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeWithETag(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func parseReviewsQuery(r *http.Request) (domain.ReviewsQuery, error) {
	qs := r.URL.Query()
	q := domain.ReviewsQuery{
		ListingName: qs.Get("listingName"),
		Type:        qs.Get("type"),
		Status:      qs.Get("status"),
		SortBy:      qs.Get("sortBy"),
		SortOrder:   qs.Get("sortOrder"),
		Limit:       50,
	}
	if v := qs.Get("channel"); v != "" {
		ch, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return q, errors.New("channel must be a number")
		}
		q.Channel = &ch
	}
	if v := qs.Get("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l <= 0 || l > 200 {
			return q, errors.New("limit must be an integer between 1 and 200")
		}
		q.Limit = l
	}
	if v := qs.Get("offset"); v != "" {
		o, err := strconv.Atoi(v)
		if err != nil || o < 0 {
			return q, errors.New("offset must be a non-negative integer")
		}
		q.Offset = o
	}
	if sd, ed := qs.Get("startDate"), qs.Get("endDate"); sd != "" && ed != "" {
		start, err1 := time.Parse("2006-01-02", sd)
		end, err2 := time.Parse("2006-01-02", ed)
		if err1 != nil || err2 != nil {
			return q, errors.New("startDate/endDate must be YYYY-MM-DD")
		}
		// inclusive range: push the end bound to the end of its day
		end = end.Add(24*time.Hour - time.Second)
		q.StartDate, q.EndDate = &start, &end
	}
	return q, nil
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	q, err := parseReviewsQuery(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid query", err.Error())
		return
	}
	page, err := h.Q.ListReviews(r.Context(), q)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "failed to list reviews")
		return
	}
	writeWithETag(w, r, page)
}

func (h *Handlers) getReview(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	review, err := h.Q.GetReview(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "review not found")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "failed to fetch review")
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (h *Handlers) setApproval(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	var body struct {
		IsApproved *bool `json:"isApproved"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.IsApproved == nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "isApproved boolean is required")
		return
	}
	review, err := h.Q.SetApproval(r.Context(), id, *body.IsApproved)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "review not found")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "failed to update approval")
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (h *Handlers) propertySummaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.Q.PropertySummaries(r.Context())
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "failed to build summaries")
		return
	}
	writeWithETag(w, r, summaries)
}

func (h *Handlers) publicReviews(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	reviews, err := h.Q.PublicReviews(r.Context(), &id)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "failed to list public reviews")
		return
	}
	writeWithETag(w, r, struct {
		PropertyID int64                     `json:"propertyId"`
		Reviews    []domain.NormalizedReview `json:"reviews"`
		Total      int                       `json:"total"`
	}{PropertyID: id, Reviews: reviews, Total: len(reviews)})
}

func (h *Handlers) allPublicReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.Q.PublicReviews(r.Context(), nil)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "failed to list public reviews")
		return
	}
	writeWithETag(w, r, struct {
		Reviews []domain.NormalizedReview `json:"reviews"`
		Total   int                       `json:"total"`
	}{Reviews: reviews, Total: len(reviews)})
}

func (h *Handlers) filterOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.Q.FilterOptions(r.Context())
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "failed to list filter options")
		return
	}
	writeJSON(w, http.StatusOK, opts)
}
