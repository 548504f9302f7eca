// Package hostaway is the credentialed provider client. Every read either
// returns live data or degrades to the local fixture repository; transport
// errors never reach the boundary on read paths.
package hostaway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"flex_reviews/internal/adapters/observability"
	"flex_reviews/internal/domain"
	"flex_reviews/internal/tokens"
)

const defaultLimit = 50

type Client struct {
	base      string
	accountID string
	secret    string
	hc        *http.Client
	rl        *rate.Limiter
	tokens    *tokens.Manager
	local     domain.ReviewRepository
	mock      bool
}

// New builds a client. Missing account credentials force mock mode no
// matter what the toggle says; there is no way to mint a token without them.
func New(base, accountID, secret string, tm *tokens.Manager, local domain.ReviewRepository, mock bool) *Client {
	if accountID == "" || secret == "" {
		mock = true
	}
	return &Client{
		base:      strings.TrimRight(base, "/"),
		accountID: accountID,
		secret:    secret,
		hc:        &http.Client{Timeout: 10 * time.Second},
		rl:        rate.NewLimiter(rate.Limit(5), 5),
		tokens:    tm,
		local:     local,
		mock:      mock,
	}
}

// MockMode reports whether reads are served from the fixture dataset.
func (c *Client) MockMode() bool { return c.mock }

func (c *Client) FetchReviews(ctx context.Context, q domain.ReviewsQuery) (domain.RawPage, error) {
	if c.mock {
		observability.ObserveFallback("mock")
		return c.serveLocal(ctx, q)
	}

	params := url.Values{}
	if q.Status != "" {
		params.Set("status", q.Status)
	}
	if q.Type != "" {
		params.Set("type", q.Type)
	}
	if q.SortBy != "" {
		params.Set("sortBy", q.SortBy)
	}
	if q.SortOrder != "" {
		params.Set("sortOrder", q.SortOrder)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		params.Set("offset", strconv.Itoa(q.Offset))
	}

	body, err := c.authedGet(ctx, "/reviews", params)
	if err != nil {
		c.logFallback("/reviews", err)
		return c.serveLocal(ctx, q)
	}

	var page domain.RawPage
	if err := json.Unmarshal(body, &page); err != nil {
		c.logFallback("/reviews", fmt.Errorf("decode: %w", err))
		return c.serveLocal(ctx, q)
	}
	return page, nil
}

func (c *Client) FetchReviewByID(ctx context.Context, id int64) (domain.RawReview, error) {
	if c.mock {
		observability.ObserveFallback("mock")
		return c.local.FindByID(ctx, id)
	}

	body, err := c.authedGet(ctx, fmt.Sprintf("/reviews/%d", id), nil)
	if err != nil {
		// A provider 404 is an answer, not an outage: surface it so the
		// boundary can produce its own not-found response.
		var ae *apiError
		if errors.As(err, &ae) && ae.status == http.StatusNotFound {
			return domain.RawReview{}, domain.ErrNotFound
		}
		c.logFallback("/reviews/{id}", err)
		return c.local.FindByID(ctx, id)
	}

	var out struct {
		Result domain.RawReview `json:"result"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		c.logFallback("/reviews/{id}", fmt.Errorf("decode: %w", err))
		return c.local.FindByID(ctx, id)
	}
	return out.Result, nil
}

// ---- authenticated transport ----

type apiError struct{ status int }

func (e *apiError) Error() string { return fmt.Sprintf("provider status %d", e.status) }

func (c *Client) authedGet(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	token, err := c.tokens.Valid(ctx, c.accountID)
	if err != nil {
		return nil, err
	}
	if token == "" {
		if token, err = c.mint(ctx); err != nil {
			return nil, err
		}
	}

	body, err := c.do(ctx, path, params, token)
	var ae *apiError
	if err != nil && errors.As(err, &ae) && ae.status == http.StatusForbidden {
		// 403 means the cached credential is stale: evict, mint fresh,
		// retry the original request exactly once.
		log.Info().Str("path", path).Msg("provider rejected token, refreshing and retrying once")
		_ = c.tokens.Clear(ctx, c.accountID)
		if token, err = c.mint(ctx); err != nil {
			return nil, err
		}
		return c.do(ctx, path, params, token)
	}
	return body, err
}

func (c *Client) do(ctx context.Context, path string, params url.Values, token string) ([]byte, error) {
	u := c.base + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveUpstream(path, 0, time.Since(start))
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	defer resp.Body.Close()
	observability.ObserveUpstream(path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &apiError{status: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

// mint exchanges the client identity for a fresh bearer token and persists
// it best-effort; a store failure only costs the caching.
func (c *Client) mint(ctx context.Context) (string, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.accountID},
		"client_secret": {c.secret},
		"scope":         {"general"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.base+"/accessTokens", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Cache-Control", "no-cache")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveUpstream("/accessTokens", 0, time.Since(start))
		return "", fmt.Errorf("token exchange: %w", err)
	}
	defer resp.Body.Close()
	observability.ObserveUpstream("/accessTokens", resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("token exchange: %w", &apiError{status: resp.StatusCode})
	}
	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("token exchange decode: %w", err)
	}
	if out.AccessToken == "" {
		return "", errors.New("token exchange: empty access_token")
	}
	_ = c.tokens.Store(ctx, c.accountID, out.AccessToken)
	return out.AccessToken, nil
}

// logFallback records why a read degraded to fixture data, so "intentional
// mock mode" and "live integration silently broken" stay distinguishable.
func (c *Client) logFallback(endpoint string, err error) {
	reason := classify(err)
	observability.ObserveFallback(reason)
	log.Warn().Err(err).Str("endpoint", endpoint).Str("class", reason).
		Msg("provider call failed, serving fixture data")
}

func classify(err error) string {
	var ae *apiError
	switch {
	case errors.As(err, &ae) && ae.status >= 500:
		return "5xx"
	case errors.As(err, &ae):
		return "4xx"
	case errors.Is(err, domain.ErrStoreNotConfigured):
		return "not-configured"
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded):
		return "timeout"
	case strings.Contains(err.Error(), "decode"):
		return "decode"
	default:
		return "network"
	}
}

// ---- fixture-mode query engine ----

// serveLocal applies the full filter/sort/paginate semantics against the
// local repository, mirroring what the provider does server-side.
func (c *Client) serveLocal(ctx context.Context, q domain.ReviewsQuery) (domain.RawPage, error) {
	all, err := c.local.List(ctx)
	if err != nil {
		return domain.RawPage{}, err
	}
	return ApplyQuery(all, q), nil
}

// ApplyQuery filters, sorts and pages a raw review set. Filter and sort run
// before pagination; Total reports the filtered-set size so consumers can
// render "N of M".
func ApplyQuery(reviews []domain.RawReview, q domain.ReviewsQuery) domain.RawPage {
	filtered := make([]domain.RawReview, 0, len(reviews))
	for _, r := range reviews {
		if q.ListingName != "" &&
			!strings.Contains(strings.ToLower(r.ListingName), strings.ToLower(q.ListingName)) {
			continue
		}
		if q.Type != "" && r.Type != q.Type {
			continue
		}
		if q.Status != "" && r.Status != q.Status {
			continue
		}
		if q.Channel != nil && r.ChannelID != *q.Channel {
			continue
		}
		if q.StartDate != nil && q.EndDate != nil {
			t := r.SubmittedTime()
			if t.Before(*q.StartDate) || t.After(*q.EndDate) {
				continue
			}
		}
		filtered = append(filtered, r)
	}

	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = "submittedAt"
	}
	asc := q.SortOrder == "asc"
	sort.SliceStable(filtered, func(i, j int) bool {
		var less bool
		switch sortBy {
		case "rating":
			less = ratingOrZero(filtered[i]) < ratingOrZero(filtered[j])
		case "guestName":
			less = filtered[i].GuestName < filtered[j].GuestName
		default:
			less = filtered[i].SubmittedTime().Before(filtered[j].SubmittedTime())
		}
		if asc {
			return less
		}
		return !less && !equalKey(filtered[i], filtered[j], sortBy)
	})

	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > len(filtered) {
		offset = len(filtered)
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	page := filtered[offset:end]

	return domain.RawPage{
		Result: page,
		Count:  len(page),
		Total:  len(filtered),
		Offset: offset,
		Limit:  limit,
	}
}

func ratingOrZero(r domain.RawReview) float64 {
	if r.Rating == nil {
		return 0
	}
	return *r.Rating
}

func equalKey(a, b domain.RawReview, sortBy string) bool {
	switch sortBy {
	case "rating":
		return ratingOrZero(a) == ratingOrZero(b)
	case "guestName":
		return a.GuestName == b.GuestName
	default:
		return a.SubmittedTime().Equal(b.SubmittedTime())
	}
}
