package memory

import (
	"strings"
	"sync"

	"github.com/mohitkumar/bookflow/model"
	"github.com/mohitkumar/bookflow/persistence"
	"github.com/mohitkumar/bookflow/util"
	c "github.com/patrickmn/go-cache"
	"golang.org/x/exp/slices"
)

var _ persistence.Storage = new(memoryStorage)

// memoryStorage keeps encoded records in a go-cache without expiration.
// Records are stored encoded so callers never share memory with the store.
type memoryStorage struct {
	mu           sync.Mutex
	cache        *c.Cache
	borrowEncDec util.EncoderDecoder[model.Borrow]
	bookEncDec   util.EncoderDecoder[model.Book]
}

func NewMemoryStorage() *memoryStorage {
	return &memoryStorage{
		cache:        c.New(c.NoExpiration, 0),
		borrowEncDec: util.NewJsonEncoderDecoder[model.Borrow](),
		bookEncDec:   util.NewJsonEncoderDecoder[model.Book](),
	}
}

func key(kind, id string) string {
	return kind + ":" + id
}

func (m *memoryStorage) SaveBorrows(borrows ...*model.Borrow) error {
	return m.SaveAll(nil, borrows...)
}

func (m *memoryStorage) GetBorrow(id string) (*model.Borrow, error) {
	v, found := m.cache.Get(key(persistence.BORROW_KEY, id))
	if !found {
		return nil, persistence.ErrNotFound
	}
	return m.borrowEncDec.Decode(v.([]byte))
}

func (m *memoryStorage) DeleteBorrows(ids ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		m.cache.Delete(key(persistence.BORROW_KEY, id))
	}
	return nil
}

func (m *memoryStorage) ListMasters() ([]*model.Borrow, error) {
	var masters []*model.Borrow
	for k, item := range m.cache.Items() {
		if !strings.HasPrefix(k, persistence.BORROW_KEY+":") {
			continue
		}
		b, err := m.borrowEncDec.Decode(item.Object.([]byte))
		if err != nil {
			return nil, err
		}
		if b.IsMaster() {
			masters = append(masters, b)
		}
	}
	slices.SortFunc(masters, func(a, b *model.Borrow) int { return strings.Compare(a.Id, b.Id) })
	return masters, nil
}

func (m *memoryStorage) SaveBook(book *model.Book) error {
	return m.SaveAll(book)
}

func (m *memoryStorage) GetBook(postId string) (*model.Book, error) {
	v, found := m.cache.Get(key(persistence.BOOK_KEY, postId))
	if !found {
		return nil, persistence.ErrNotFound
	}
	return m.bookEncDec.Decode(v.([]byte))
}

func (m *memoryStorage) DeleteBook(postId string) error {
	m.cache.Delete(key(persistence.BOOK_KEY, postId))
	return nil
}

func (m *memoryStorage) ListBooks() ([]*model.Book, error) {
	var books []*model.Book
	for k, item := range m.cache.Items() {
		if !strings.HasPrefix(k, persistence.BOOK_KEY+":") {
			continue
		}
		b, err := m.bookEncDec.Decode(item.Object.([]byte))
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	slices.SortFunc(books, func(a, b *model.Book) int { return strings.Compare(a.PostId, b.PostId) })
	return books, nil
}

func (m *memoryStorage) SaveAll(book *model.Book, borrows ...*model.Borrow) error {
	// encode everything first so a failure stores nothing
	items := make(map[string][]byte, len(borrows)+1)
	if book != nil {
		data, err := m.bookEncDec.Encode(*book)
		if err != nil {
			return persistence.StorageLayerError{Message: err.Error()}
		}
		items[key(persistence.BOOK_KEY, book.PostId)] = data
	}
	for _, b := range borrows {
		data, err := m.borrowEncDec.Encode(*b)
		if err != nil {
			return persistence.StorageLayerError{Message: err.Error()}
		}
		items[key(persistence.BORROW_KEY, b.Id)] = data
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, data := range items {
		m.cache.Set(k, data, c.NoExpiration)
	}
	return nil
}
