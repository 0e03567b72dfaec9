// Package bootstrap assembles the user store stack selected by configuration.
//
// Both the HTTP server and the admin CLI go through OpenUserStore so they
// always talk to the same backend with the same cache settings:
//
//	stores, err := bootstrap.OpenUserStore(ctx, cfg)
//	if err != nil { ... }
//	defer stores.Close()
//
// Migrate applies the schema for the configured backend: goose migrations
// for PostgreSQL and DEFINE statements for SurrealDB.
package bootstrap
