// The warmer pre-computes the heavy read projections (property summaries,
// facets, per-listing public review lists) and pushes them into Redis so
// the first dashboard load after a deploy does not pay for them.
package main

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"flex_reviews/internal/adapters/hostaway"
	"flex_reviews/internal/adapters/observability"
	redisad "flex_reviews/internal/adapters/redis"
	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
	"flex_reviews/internal/shared"
	"flex_reviews/internal/storage/fixture"
	"flex_reviews/internal/storage/memcred"
	mysqlrepo "flex_reviews/internal/storage/mysql"
	"flex_reviews/internal/tokens"
)

func main() {
	_ = godotenv.Load()
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("base", cfg.ProviderURL).
		Bool("mock_mode", cfg.MockMode).
		Int("workers", cfg.Workers).
		Msg("warmer starting")

	var credStore domain.CredentialStore = memcred.New()
	if cfg.MySQLDSN != "" && !cfg.MockMode {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		if err := db.Ping(); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		log.Info().Msg("db ping ok")
		credStore = mysqlrepo.New(db)
	}

	fixtures := fixture.New()
	tm := tokens.New(credStore)
	client := hostaway.New(cfg.ProviderURL, cfg.AccountID, cfg.APIKey, tm, fixtures, cfg.MockMode)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	q := app.NewQueryService(client, fixtures, cache, cfg.CacheTTL)

	summaries, err := q.PropertySummaries(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("summaries warmup failed")
	}
	if _, err := q.FilterOptions(ctx); err != nil {
		log.Warn().Err(err).Msg("facets warmup failed")
	}
	if _, err := q.PublicReviews(ctx, nil); err != nil {
		log.Warn().Err(err).Msg("public reviews warmup failed")
	}

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for _, s := range summaries {
		id := s.ListingID

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(listingID int64) {
			defer wg.Done()
			defer sem.Release(1)

			if _, err := q.PublicReviews(ctx, &listingID); err != nil {
				log.Warn().Int64("listing_id", listingID).Err(err).Msg("warmup failed")
				return
			}
			log.Info().Int64("listing_id", listingID).Msg("warmup ok")
		}(id)
	}

	wg.Wait()
	log.Info().Int("listings", len(summaries)).Msg("warmup completed")
}
