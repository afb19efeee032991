// Package config provides configuration loading and validation for shelf.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (SHELF_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with SHELF_ prefix:
//   - server.port → SHELF_SERVER_PORT
//   - upload.filename_policy → SHELF_UPLOAD_FILENAME_POLICY
//   - journal.type → SHELF_JOURNAL_TYPE
//
// List values such as server.index_files are comma separated in the environment.
//
// # Configuration Structure
//
// The Config struct contains:
//   - Server: listen host and port, served root, index files, plain text
//     extensions, read header timeout and the startup QR code
//   - Upload: filename policy (sanitize/reject) and size limit
//   - Journal: backend type (none/sqlite/postgres), DSN and table names
//   - CORS: cross-origin resource sharing settings
//   - Log: level and format (text/json)
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535
//   - Filename policy must be sanitize or reject
//   - Journal type must be none, sqlite or postgres; the others need a DSN
//   - Log level must be debug, info, warn, or error
//
// Journal table names are checked with shelf.Tables.Validate when the journal
// is enabled.
package config
