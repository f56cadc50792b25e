// Package testdb provides SurrealDB test databases for the Shelf API.
//
// Each call to New connects to the server named by TEST_DB_HOST and
// TEST_DB_PORT, creates a fresh namespace and applies the embedded schema.
// The namespace is removed when the test finishes.
//
//	func TestBookRepository(t *testing.T) {
//	    tdb := testdb.New(t)
//	    repo := repository.NewBookRepository(tdb.DB)
//	}
//
// Without a reachable server the test is skipped. Set TEST_DB_REQUIRED=1
// in CI to turn that into a failure.
//
// To run the SurrealDB repository suite, including the guarded
// UPDATE … WHERE statements behind borrow and return, locally:
//
//	surreal start memory -A --user root --pass root
//	TEST_DB_REQUIRED=1 go test ./internal/repository/
//
// TEST_DB_USER and TEST_DB_PASSWORD override the root credentials.
package testdb
