// Package testdb provides integration test databases for the authuser API.
//
// # SurrealDB
//
// Each test gets an isolated namespace with the user schema defined:
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t) // skips unless TEST_DB_HOST is set
//	    defer tdb.Close()
//	}
//
// # PostgreSQL
//
//	pool := testdb.NewPostgres(t) // skips unless TEST_DATABASE_URL is set
//
// Goose migrations are applied and tb_users is truncated.
//
// # Redis
//
//	client := testdb.NewRedis(t) // skips unless TEST_REDIS_ADDR is set
//
// # Timeout Context
//
//	ctx := tdb.Ctx() // 10 second timeout, cancelled on test cleanup
package testdb
