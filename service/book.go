package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/mohitkumar/bookflow/cache"
	"github.com/mohitkumar/bookflow/logger"
	"github.com/mohitkumar/bookflow/model"
	"github.com/mohitkumar/bookflow/persistence"
	"github.com/mohitkumar/bookflow/util"
	"go.uber.org/zap"
)

type BookService struct {
	storage persistence.Storage
	locks   *cache.RecordLocks
}

func NewBookService(storage persistence.Storage, locks *cache.RecordLocks) *BookService {
	return &BookService{storage: storage, locks: locks}
}

type bookAction func(book *model.Book, actUser string) (string, error)

// Handle applies a BooksRequest. Each book in the body is handled on its
// own; the answer holds one message per book keyed by its id, or by its
// position when it has none.
func (s *BookService) Handle(req model.BooksRequest) (map[string]model.BooksMessage, error) {
	var apply bookAction
	switch req.Action {
	case model.BooksActionUpload:
		apply = s.uploadOne
	case model.BooksActionFetchInvKeeper:
		if req.ActUser == "" {
			return nil, errors.New("act_user is required to fetch keeper inventory")
		}
		apply = s.fetchOne
	default:
		return nil, fmt.Errorf("unknown books action %q", req.Action)
	}
	var books []model.Book
	if err := json.Unmarshal([]byte(req.Body), &books); err != nil {
		return nil, fmt.Errorf("invalid books body: %w", err)
	}
	out := make(map[string]model.BooksMessage, len(books))
	for i := range books {
		book := &books[i]
		msg := model.BooksMessage{Status: model.BooksMessageOk}
		text, err := apply(book, req.ActUser)
		if err != nil {
			logger.Error("error in books action", zap.String("action", req.Action), zap.String("book", book.PostId), zap.String("user", req.ActUser), zap.Error(err))
			msg.Status = model.BooksMessageError
			text = err.Error()
		}
		msg.PostId = book.PostId
		msg.Message = text
		key := book.Id
		if key == "" {
			key = strconv.Itoa(i)
		}
		out[key] = msg
	}
	return out, nil
}

// withBookLock runs fn holding the lock the workflow engine takes on the
// same book.
func (s *BookService) withBookLock(postId string, fn func() error) error {
	key := cache.BookKey(postId)
	if !s.locks.TryLock(key) {
		return model.ErrLocked
	}
	defer s.locks.Unlock(key)
	return fn()
}

func (s *BookService) uploadOne(book *model.Book, actUser string) (string, error) {
	if book.Delete {
		if book.PostId == "" {
			return "", errors.New("post_id is required to delete a book")
		}
		return "", s.withBookLock(book.PostId, func() error {
			return s.deleteBook(book.PostId)
		})
	}
	if book.Name == "" {
		return "", errors.New("book name is required")
	}
	if book.Stock < 0 || book.TransmitOut < 0 || book.Lending < 0 || book.TransmitIn < 0 {
		return "", errors.New("inventory counters must not be negative")
	}
	book.Libworkers = util.AppendUnique(nil, book.Libworkers...)
	book.KeeperUsers = util.AppendUnique(nil, book.KeeperUsers...)
	book.Tags = util.AppendUnique(nil, book.Tags...)

	if book.PostId == "" {
		book.PostId = uuid.NewString()
		freshInventory(book)
		return "", s.save(book, actUser)
	}
	return "", s.withBookLock(book.PostId, func() error {
		existing, err := s.storage.GetBook(book.PostId)
		switch {
		case errors.Is(err, persistence.ErrNotFound):
			freshInventory(book)
		case err != nil:
			return err
		default:
			if err := mergeInventory(book, existing); err != nil {
				return err
			}
			// a librarian's manual decision survives re-uploads
			book.ManuallyDisallowed = existing.ManuallyDisallowed
			book.ReasonOfDisallowed = existing.ReasonOfDisallowed
		}
		return s.save(book, actUser)
	})
}

func (s *BookService) save(book *model.Book, actUser string) error {
	book.RefreshAllowed()
	if err := s.storage.SaveBook(book); err != nil {
		return err
	}
	logger.Debug("book saved", zap.String("book", book.PostId), zap.String("user", actUser),
		zap.Int("copies", book.Total()), zap.Bool("allowed", book.IsAllowedToBorrow))
	return nil
}

// freshInventory puts every copy of a new book in stock.
func freshInventory(book *model.Book) {
	book.TransmitOut, book.Lending, book.TransmitIn = 0, 0, 0
	for id := range book.Copies {
		book.Copies[id] = model.CopyInStock
	}
}

// mergeInventory applies an uploaded inventory to a stored book. The
// uploaded stock is the new number of copies owned; copies away on loan keep
// their counters and statuses.
func mergeInventory(book, existing *model.Book) error {
	stock := existing.Stock + book.Stock - existing.Total()
	if stock < 0 {
		return fmt.Errorf("stock can not be negative: %d copies of %s are out", existing.Lent(), existing.PostId)
	}
	var copies map[string]model.CopyStatus
	if len(book.Copies) > 0 {
		copies = make(map[string]model.CopyStatus, len(book.Copies))
	}
	for id := range book.Copies {
		st, ok := existing.Copies[id]
		if !ok {
			st = model.CopyInStock
		}
		copies[id] = st
	}
	for id, st := range existing.Copies {
		if _, ok := copies[id]; !ok && st != model.CopyInStock {
			return fmt.Errorf("copy %s is %s and can not be removed", id, st)
		}
	}
	book.Stock = stock
	book.TransmitOut = existing.TransmitOut
	book.Lending = existing.Lending
	book.TransmitIn = existing.TransmitIn
	book.Copies = copies
	return nil
}

func (s *BookService) deleteBook(postId string) error {
	existing, err := s.Get(postId)
	if err != nil {
		return err
	}
	if n := existing.Lent(); n > 0 {
		return fmt.Errorf("%w: %d copies of %s are not back", model.ErrNotDeletable, n, postId)
	}
	return s.storage.DeleteBook(postId)
}

// fetchOne replaces book with the stored one, keeping only the copies kept
// by keeper. The message is the book as JSON.
func (s *BookService) fetchOne(book *model.Book, keeper string) (string, error) {
	if book.PostId == "" {
		return "", errors.New("post_id is required to fetch a book")
	}
	stored, err := s.Get(book.PostId)
	if err != nil {
		return "", err
	}
	out := model.Book{BookPublic: stored.BookPublic, Upload: model.Upload{PostId: stored.PostId}}
	out.Stock = stored.Stock
	out.TransmitOut = stored.TransmitOut
	out.Lending = stored.Lending
	out.TransmitIn = stored.TransmitIn
	for id, k := range stored.CopyKeeperMap {
		if k != keeper {
			continue
		}
		if out.CopyKeeperMap == nil {
			out.CopyKeeperMap = make(map[string]string)
			out.Copies = make(map[string]model.CopyStatus)
		}
		out.CopyKeeperMap[id] = k
		out.Copies[id] = stored.Copies[id]
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	*book = out
	return string(data), nil
}

// SetAllowed opens or closes borrowing of a book by hand. Closing needs a
// reason.
func (s *BookService) SetAllowed(postId string, allowed bool, reason string) (*model.Book, error) {
	if !allowed && reason == "" {
		return nil, model.ErrReasonRequired
	}
	var book *model.Book
	err := s.withBookLock(postId, func() error {
		var err error
		if book, err = s.Get(postId); err != nil {
			return err
		}
		book.ManuallyDisallowed = !allowed
		if allowed {
			book.ReasonOfDisallowed = ""
		} else {
			book.ReasonOfDisallowed = reason
		}
		book.RefreshAllowed()
		return s.storage.SaveBook(book)
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

func (s *BookService) Get(postId string) (*model.Book, error) {
	book, err := s.storage.GetBook(postId)
	if errors.Is(err, persistence.ErrNotFound) {
		return nil, model.ErrNotFound
	}
	return book, err
}

type ConfigService struct {
	bookConfig model.BookConfig
}

func NewConfigService(bookConfig model.BookConfig) *ConfigService {
	return &ConfigService{bookConfig: bookConfig}
}

func (s *ConfigService) Get() model.BookConfig {
	return s.bookConfig
}
