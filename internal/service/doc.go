// Package service implements the business logic layer for the Shelf API.
//
// The service package holds the borrow/return workflow, catalog management
// and the session auth gate. Services are the only layer that decides
// whether an operation is allowed; handlers translate and repositories store.
//
// # Service Pattern
//
//   - Constructor function (NewXxxService) accepts a config struct with repository dependencies
//   - Methods implement business operations with proper validation
//   - Errors are returned as sentinel errors or wrapped errors for context
//
// # Repository Interfaces
//
// Services define their own repository interfaces. The SurrealDB, MongoDB
// and SQL repositories all satisfy them.
//
// # Precondition Order
//
// Borrow checks, in order: the book exists, a copy is free, the user exists,
// the user is not already holding it. The first failing check decides the
// error. The write itself is a guarded repository call; if the guard
// rejects because another request got there first, the checks run again
// against fresh state so the caller sees the right error.
//
// # Example Usage
//
//	circulation := NewCirculationService(CirculationServiceConfig{
//	    BookRepo: bookRepository,
//	    UserRepo: userRepository,
//	})
//	book, err := circulation.Borrow(ctx, "111", userID)
//	if errors.Is(err, ErrBookUnavailable) {
//	    // no copies left
//	}
package service
