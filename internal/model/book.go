package model

import (
	"slices"
	"strings"
	"time"
)

// Validation constants
const (
	MaxBookNameLength     = 300
	MaxBookCategoryLength = 100
	MaxISBNLength         = 32
)

// Book represents a catalog title and the users currently holding a copy
type Book struct {
	ID         string    `json:"id"`
	UUID       string    `json:"uuid"`
	Name       string    `json:"name"`
	ISBN       string    `json:"isbn"`
	Category   string    `json:"category"`
	Price      float64   `json:"price"`
	Quantity   int       `json:"quantity"`
	BorrowedBy []string  `json:"borrowedBy"`
	CreatedOn  time.Time `json:"createdOn"`
	UpdatedOn  time.Time `json:"updatedOn"`
}

// AvailableQuantity returns the number of copies that can still be borrowed
func (b *Book) AvailableQuantity() int {
	return b.Quantity - len(b.BorrowedBy)
}

// IsAvailable reports whether at least one copy is on the shelf
func (b *Book) IsAvailable() bool {
	return len(b.BorrowedBy) < b.Quantity
}

// HasBorrower reports whether userID currently holds a copy
func (b *Book) HasBorrower(userID string) bool {
	return slices.Contains(b.BorrowedBy, userID)
}

// CreateBookRequest represents a request to add a title to the catalog
type CreateBookRequest struct {
	Name     string  `json:"name"`
	ISBN     string  `json:"isbn"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Validate checks if the create request is valid
func (r *CreateBookRequest) Validate() []FieldError {
	var errors []FieldError

	if strings.TrimSpace(r.Name) == "" {
		errors = append(errors, FieldError{Field: "name", Message: "name is required"})
	} else if len(r.Name) > MaxBookNameLength {
		errors = append(errors, FieldError{Field: "name", Message: "name must be 300 characters or less"})
	}
	if strings.TrimSpace(r.ISBN) == "" {
		errors = append(errors, FieldError{Field: "isbn", Message: "isbn is required"})
	} else if len(r.ISBN) > MaxISBNLength {
		errors = append(errors, FieldError{Field: "isbn", Message: "isbn must be 32 characters or less"})
	}
	if strings.TrimSpace(r.Category) == "" {
		errors = append(errors, FieldError{Field: "category", Message: "category is required"})
	} else if len(r.Category) > MaxBookCategoryLength {
		errors = append(errors, FieldError{Field: "category", Message: "category must be 100 characters or less"})
	}
	if r.Price < 0 {
		errors = append(errors, FieldError{Field: "price", Message: "price cannot be negative"})
	}
	if r.Quantity < 0 {
		errors = append(errors, FieldError{Field: "quantity", Message: "quantity cannot be negative"})
	}

	return errors
}

// UpdateBookRequest holds the catalog fields an update may change.
// Nil fields are left untouched; isbn and borrowedBy are never writable.
type UpdateBookRequest struct {
	Name     *string  `json:"name,omitempty"`
	Category *string  `json:"category,omitempty"`
	Price    *float64 `json:"price,omitempty"`
	Quantity *int     `json:"quantity,omitempty"`
}

// Validate checks if the update request is valid
func (r *UpdateBookRequest) Validate() []FieldError {
	var errors []FieldError

	if r.Name != nil {
		if strings.TrimSpace(*r.Name) == "" {
			errors = append(errors, FieldError{Field: "name", Message: "name cannot be empty"})
		} else if len(*r.Name) > MaxBookNameLength {
			errors = append(errors, FieldError{Field: "name", Message: "name must be 300 characters or less"})
		}
	}
	if r.Category != nil {
		if strings.TrimSpace(*r.Category) == "" {
			errors = append(errors, FieldError{Field: "category", Message: "category cannot be empty"})
		} else if len(*r.Category) > MaxBookCategoryLength {
			errors = append(errors, FieldError{Field: "category", Message: "category must be 100 characters or less"})
		}
	}
	if r.Price != nil && *r.Price < 0 {
		errors = append(errors, FieldError{Field: "price", Message: "price cannot be negative"})
	}
	if r.Quantity != nil && *r.Quantity < 0 {
		errors = append(errors, FieldError{Field: "quantity", Message: "quantity cannot be negative"})
	}

	return errors
}

// Apply copies the set fields of the request onto book
func (r *UpdateBookRequest) Apply(book *Book) {
	if r.Name != nil {
		book.Name = *r.Name
	}
	if r.Category != nil {
		book.Category = *r.Category
	}
	if r.Price != nil {
		book.Price = *r.Price
	}
	if r.Quantity != nil {
		book.Quantity = *r.Quantity
	}
}
