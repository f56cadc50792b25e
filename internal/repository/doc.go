// Package repository implements the SurrealDB data access layer for Shelf.
//
// Sibling packages mongorepo and sqlrepo provide the same repositories on
// MongoDB and SQL. All three satisfy the interfaces declared in the service
// package.
//
// # Repository Pattern
//
//   - Constructor function (NewXxxRepository) accepts a database connection
//   - A missing record is reported as (nil, nil), never as an error
//   - Unique index violations are wrapped with database.ErrDuplicate
//
// # Guarded Mutations
//
// Borrower changes are single UPDATE statements whose WHERE clause carries
// the precondition, so two concurrent borrows of the last copy cannot both
// succeed:
//
//	UPDATE book SET borrowed_by += $user_id
//	WHERE isbn = $isbn
//	  AND array::len(borrowed_by) < quantity
//	  AND borrowed_by CONTAINSNOT $user_id
//	RETURN AFTER
//
// When the guard rejects, the method returns (nil, nil) and the caller
// re-reads the book to find out why.
package repository
