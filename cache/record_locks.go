package cache

import (
	"time"

	c "github.com/patrickmn/go-cache"
)

// RecordLocks hands out short lived try-locks keyed by record id. A lock that
// is never released expires after ttl.
type RecordLocks struct {
	cache *c.Cache
	ttl   time.Duration
}

// BorrowKey is the lock key of a master borrow record.
func BorrowKey(id string) string {
	return "borrow:" + id
}

// BookKey is the lock key of a book. Everything that rewrites a book takes
// it.
func BookKey(postId string) string {
	return "book:" + postId
}

func NewRecordLocks(ttl time.Duration) *RecordLocks {
	return &RecordLocks{
		cache: c.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// TryLock locks every key or none. It returns false if any key is already
// held.
func (rl *RecordLocks) TryLock(keys ...string) bool {
	for i, key := range keys {
		if err := rl.cache.Add(key, struct{}{}, rl.ttl); err != nil {
			rl.Unlock(keys[:i]...)
			return false
		}
	}
	return true
}

func (rl *RecordLocks) Unlock(keys ...string) {
	for _, key := range keys {
		rl.cache.Delete(key)
	}
}
