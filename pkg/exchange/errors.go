package exchange

import "betting-exchange/pkg/book"

// Re-exported so callers depend only on this package, not pkg/book
// directly, for error discrimination.
type Error = book.Error
type ErrorKind = book.ErrorKind

const (
	KindDuplicateID    = book.KindDuplicateID
	KindNotFound       = book.KindNotFound
	KindInvalidAmount  = book.KindInvalidAmount
	KindInvalidState   = book.KindInvalidState
	KindAlreadyRunning = book.KindAlreadyRunning
)

var (
	ErrDuplicateID    = book.ErrDuplicateID
	ErrNotFound       = book.ErrNotFound
	ErrInvalidAmount  = book.ErrInvalidAmount
	ErrInvalidState   = book.ErrInvalidState
	ErrAlreadyRunning = book.ErrAlreadyRunning
)
