// Package database provides database connectivity for the authuser API.
//
// Two backends are supported:
//
//   - SurrealDB through the Database interface (default user store)
//   - PostgreSQL through a pgx connection pool, with goose migrations
//     embedded in the binary
//
// # Connection Management
//
// Connect to SurrealDB:
//
//	db := database.NewSurrealDB(database.Config{
//	    Host:      "localhost",
//	    Port:      "8000",
//	    Namespace: "ead",
//	    Database:  "authuser",
//	    User:      "root",
//	    Password:  "root",
//	})
//	err := db.Connect(ctx)
//
// Connect to PostgreSQL and bring the schema up to date:
//
//	pool, err := database.ConnectPostgres(ctx, database.PostgresConfig{URL: dsn})
//	err = database.MigratePostgres(ctx, dsn)
//
// # Schema
//
// SurrealDB has no migration tool; DefineSurrealSchema issues idempotent
// DEFINE statements for the user table and its unique indexes.
package database
