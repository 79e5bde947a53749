package model

import "errors"

// Error strings are stable keys returned to clients in Result.Error.
var (
	ErrBorrowingLimited  = errors.New("borrowing-book-limited")
	ErrLocked            = errors.New("record-locked")
	ErrStale             = errors.New("stale-etag")
	ErrNotFound          = errors.New("not-found")
	ErrNoStock           = errors.New("no-stock")
	ErrRenewLimited      = errors.New("renew-limited")
	ErrChooseInStockCopy = errors.New("choose-in-stock")
	ErrNotAllowed        = errors.New("not-allowed")
	ErrNotDeletable      = errors.New("not-deletable")
	ErrInvalidTransition = errors.New("invalid-transition")
	ErrBorrowingDisabled = errors.New("borrowing-disabled")
	ErrReasonRequired    = errors.New("reason-required")
)

var keyed = []error{
	ErrBorrowingLimited, ErrLocked, ErrStale, ErrNotFound, ErrNoStock, ErrRenewLimited,
	ErrChooseInStockCopy, ErrNotAllowed, ErrNotDeletable, ErrInvalidTransition,
	ErrBorrowingDisabled, ErrReasonRequired,
}

// ErrorByKey returns the error whose message is key, or nil.
func ErrorByKey(key string) error {
	for _, err := range keyed {
		if err.Error() == key {
			return err
		}
	}
	return nil
}
