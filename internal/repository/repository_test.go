package repository_test

import (
	"testing"

	"github.com/forgo/shelf/internal/repository"
	"github.com/forgo/shelf/internal/testing/storetest"
	"github.com/forgo/shelf/internal/testing/testdb"
)

func newStores(t *testing.T) (storetest.BookStore, storetest.UserStore) {
	tdb := testdb.New(t)
	return repository.NewBookRepository(tdb.DB), repository.NewUserRepository(tdb.DB)
}

func TestBookRepository(t *testing.T) {
	storetest.RunBookStore(t, newStores)
}

func TestUserRepository(t *testing.T) {
	storetest.RunUserStore(t, newStores)
}
