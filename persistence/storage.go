package persistence

import (
	"errors"
	"fmt"

	"github.com/mohitkumar/bookflow/model"
)

type StorageLayerError struct {
	Message string
}

func (e StorageLayerError) Error() string {
	return fmt.Sprintf("storage layer error %s", e.Message)
}

var ErrNotFound = errors.New("record not found")

const BORROW_KEY string = "BORROW"
const MASTER_KEY string = "MASTER"
const BOOK_KEY string = "BOOK"

type BorrowStorage interface {
	// SaveBorrows stores all records or none of them.
	SaveBorrows(borrows ...*model.Borrow) error
	GetBorrow(id string) (*model.Borrow, error)
	DeleteBorrows(ids ...string) error
	ListMasters() ([]*model.Borrow, error)
}

type BookStorage interface {
	SaveBook(book *model.Book) error
	GetBook(postId string) (*model.Book, error)
	DeleteBook(postId string) error
	ListBooks() ([]*model.Book, error)
}

type Storage interface {
	BorrowStorage
	BookStorage
	// SaveAll stores a book together with the borrow records it changed.
	SaveAll(book *model.Book, borrows ...*model.Borrow) error
}
