package handler

import (
	"context"
	"net/http"

	"github.com/forgo/shelf/internal/model"
	"github.com/forgo/shelf/internal/service"
)

// CatalogService is the catalog surface the book handler needs
type CatalogService interface {
	ListBooks(ctx context.Context) ([]*model.Book, error)
	GetBook(ctx context.Context, isbn string) (*model.Book, error)
	CreateBook(ctx context.Context, req *model.CreateBookRequest) (*model.Book, error)
	UpdateBook(ctx context.Context, isbn string, req *model.UpdateBookRequest) (*model.Book, error)
	DeleteBook(ctx context.Context, isbn string) error
}

var _ CatalogService = (*service.CatalogService)(nil)

// BookHandler handles catalog endpoints
type BookHandler struct {
	catalog CatalogService
}

// NewBookHandler creates a new book handler
func NewBookHandler(catalog CatalogService) *BookHandler {
	return &BookHandler{catalog: catalog}
}

// BookResponse is a book as clients see it, with the derived copy count
type BookResponse struct {
	*model.Book
	AvailableQuantity int `json:"availableQuantity"`
}

func toBookResponse(b *model.Book) BookResponse {
	return BookResponse{Book: b, AvailableQuantity: b.AvailableQuantity()}
}

func toBookResponses(books []*model.Book) []BookResponse {
	out := make([]BookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, toBookResponse(b))
	}
	return out
}

type bookEnvelope struct {
	Book BookResponse `json:"book"`
}

type booksEnvelope struct {
	Books []BookResponse `json:"books"`
}

// List handles GET /v1/books
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.catalog.ListBooks(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, booksEnvelope{Books: toBookResponses(books)})
}

// Get handles GET /v1/books/{isbn}
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	book, err := h.catalog.GetBook(r.Context(), r.PathValue("isbn"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, bookEnvelope{Book: toBookResponse(book)})
}

// Create handles POST /v1/books
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateBookRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError(""))
		return
	}

	book, err := h.catalog.CreateBook(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, bookEnvelope{Book: toBookResponse(book)})
}

// Update handles PATCH /v1/books/{isbn}. Identity and borrower fields in
// the body are ignored.
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateBookRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError(""))
		return
	}

	book, err := h.catalog.UpdateBook(r.Context(), r.PathValue("isbn"), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, bookEnvelope{Book: toBookResponse(book)})
}

// Delete handles DELETE /v1/books/{isbn}
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteBook(r.Context(), r.PathValue("isbn")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w)
}
