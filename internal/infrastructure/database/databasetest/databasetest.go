// Package databasetest opens throwaway migrated databases for tests.
package databasetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/vidyank/vidyank-core/internal/infrastructure/database"
	_ "github.com/vidyank/vidyank-core/migrations" // registers the schema
)

// Open returns a fully migrated database in a temp directory. It is closed
// when the test completes.
func Open(t testing.TB) *database.DB {
	t.Helper()

	ctx := context.Background()
	db, err := database.Open(ctx, database.Config{
		Path:        filepath.Join(t.TempDir(), "vidyank-test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return db
}
