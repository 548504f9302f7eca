package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"flex_reviews/internal/adapters/hostaway"
	server "flex_reviews/internal/adapters/http_server"
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
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// credential store: durable when a DSN is configured, in-memory otherwise
	var credStore domain.CredentialStore = memcred.New()
	if cfg.MySQLDSN != "" && !cfg.MockMode {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		if err := db.Ping(); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		log.Info().Msg("credential store connection ok")
		credStore = mysqlrepo.New(db)
	}

	fixtures := fixture.New()
	tm := tokens.New(credStore)
	client := hostaway.New(cfg.ProviderURL, cfg.AccountID, cfg.APIKey, tm, fixtures, cfg.MockMode)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	q := app.NewQueryService(client, fixtures, cache, cfg.CacheTTL)

	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q})

	log.Info().
		Str("addr", cfg.HTTPAddr).
		Bool("mock_mode", client.MockMode()).
		Int("fixture_reviews", fixtures.Len()).
		Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
