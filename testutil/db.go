// Package testutil provides shared helpers for integration tests.
// Each helper skips the calling test when the backing service is not
// configured, so unit tests run without Postgres or a Firestore emulator.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"cloud.google.com/go/firestore"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
)

// FirestoreTestProject is the project id used against the emulator.
const FirestoreTestProject = "trip-itinerary-test"

// NewPool opens a *pgxpool.Pool on TEST_DATABASE_URL and closes it when the
// test finishes.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := requireDSN(t)

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("testutil.NewPool: open pool: %v", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("testutil.NewPool: ping: %v", err)
	}

	t.Cleanup(pool.Close)
	return pool
}

// NewSQLDB opens a *sql.DB on TEST_DATABASE_URL through the pgx stdlib
// driver. goose needs database/sql rather than a pool.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := requireDSN(t)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("testutil.NewSQLDB: open: %v", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		t.Fatalf("testutil.NewSQLDB: ping: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// MustOpenSQLDB opens a *sql.DB for dsn and panics on any error.
// It is meant for TestMain, where no *testing.T is available.
func MustOpenSQLDB(dsn string) *sql.DB {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		panic("testutil.MustOpenSQLDB: open: " + err.Error())
	}
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		panic("testutil.MustOpenSQLDB: ping: " + err.Error())
	}
	return db
}

// NewFirestoreClient connects to the emulator at FIRESTORE_EMULATOR_HOST.
// The Firestore SDK picks the emulator up from that variable on its own.
func NewFirestoreClient(t *testing.T) *firestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set; skipping Firestore integration test")
	}

	client, err := firestore.NewClient(context.Background(), FirestoreTestProject)
	if err != nil {
		t.Fatalf("testutil.NewFirestoreClient: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}
	return dsn
}
