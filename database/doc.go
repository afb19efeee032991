// Package database connects the upload journal to its backends.
//
// # Supported Backends
//
//   - PostgreSQL: pgx connection pool, for shared or long-lived journals
//   - SQLite: modernc.org/sqlite, a single file next to the served directory
//
// # Usage
//
//	cfg := database.Config{
//	    Type:   "sqlite",
//	    DSN:    "shelf.db",
//	    Tables: shelf.Tables{Uploads: "shelf_uploads"},
//	}
//
//	db, err := database.Open(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	journal := db.GetRepo()
//
// Open pings the backend, runs the schema migrations and validates the
// resulting schema before returning. Connect only opens the connection.
package database
