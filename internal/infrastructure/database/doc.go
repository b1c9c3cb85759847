// Package database provides SQLite connectivity and schema migrations for
// Vidyank Core.
//
// Open configures a single-writer connection pool with WAL mode and a busy
// timeout. Migrate applies the embedded, versioned SQL files registered in
// MigrationsFS (see the top-level migrations package) and records each one in
// schema_migrations.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database
