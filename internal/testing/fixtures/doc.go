// Package fixtures provides test data factories for the Shelf API.
//
// # Factory Pattern
//
// Create a factory over the repositories under test:
//
//	f := fixtures.New(bookRepo, userRepo)
//
// # Creating Test Data
//
//	user := f.CreateUser(t)                          // guest with random username
//	admin := f.CreateUser(t, fixtures.AsAdmin())     // admin account
//	book := f.CreateBook(t, fixtures.WithISBN("111"), fixtures.WithQuantity(1))
//
// Unique usernames and ISBNs are generated automatically.
package fixtures
