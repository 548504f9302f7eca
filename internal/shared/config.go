package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	ProviderURL string
	AccountID   string
	APIKey      string
	MockMode    bool
	Workers     int
	CacheTTL    time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", ""),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		ProviderURL: env("HOSTAWAY_API_URL", "https://api.hostaway.com/v1"),
		AccountID:   env("HOSTAWAY_ACCOUNT_ID", ""),
		APIKey:      env("HOSTAWAY_API_KEY", ""),
		MockMode:    env("USE_MOCK_DATA", "") == "true",
		Workers:     atoi("WARM_WORKERS", 8),
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
	}
	// No client identity means no way to mint a token; mock mode is forced
	// regardless of the toggle.
	if c.AccountID == "" || c.APIKey == "" {
		if !c.MockMode {
			log.Warn().Msg("HOSTAWAY_ACCOUNT_ID/HOSTAWAY_API_KEY missing, forcing mock mode")
		}
		c.MockMode = true
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
