//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"flex_reviews/internal/domain"
	mysqlrepo "flex_reviews/internal/storage/mysql"
)

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=flexrev",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/flexrev?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC", hostPort)

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec(mysqlrepo.SchemaSQL); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}

func TestCredentialRepo_Lifecycle(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	// empty store: no credential
	if _, err := repo.Get(ctx, "61000"); !errors.Is(err, domain.ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential, got %v", err)
	}

	// upsert then get
	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	if err := repo.Upsert(ctx, "61000", "token-one", expires); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := repo.Get(ctx, "61000")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Token != "token-one" || got.ClientID != "61000" {
		t.Fatalf("unexpected credential: %+v", got)
	}

	// upsert replaces in place, never appends
	if err := repo.Upsert(ctx, "61000", "token-two", expires.Add(time.Hour)); err != nil {
		t.Fatalf("upsert replace: %v", err)
	}
	got, err = repo.Get(ctx, "61000")
	if err != nil || got.Token != "token-two" {
		t.Fatalf("expected replaced token, got %+v err=%v", got, err)
	}
	var rows int
	if err := db.QueryRow("SELECT COUNT(*) FROM provider_tokens WHERE client_id = ?", "61000").Scan(&rows); err != nil {
		t.Fatalf("count: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected single row after upsert, got %d", rows)
	}

	// expired rows never surface
	if err := repo.Upsert(ctx, "61000", "stale", time.Now().Add(-time.Hour).UTC()); err != nil {
		t.Fatalf("upsert stale: %v", err)
	}
	if _, err := repo.Get(ctx, "61000"); !errors.Is(err, domain.ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential for expired row, got %v", err)
	}

	// per-client delete, then delete-all
	if err := repo.Upsert(ctx, "61000", "a", expires); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.Upsert(ctx, "62000", "b", expires); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.Delete(ctx, "61000"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, "61000"); !errors.Is(err, domain.ErrNoCredential) {
		t.Fatalf("expected eviction, got %v", err)
	}
	if _, err := repo.Get(ctx, "62000"); err != nil {
		t.Fatalf("other client must be untouched: %v", err)
	}
	if err := repo.Delete(ctx, ""); err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if _, err := repo.Get(ctx, "62000"); !errors.Is(err, domain.ErrNoCredential) {
		t.Fatalf("expected empty store, got %v", err)
	}
}
