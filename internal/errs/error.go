package errs

import (
	"errors"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrNoCopiesAvailable  = errors.New("book not available for borrowing")
	ErrAlreadyBorrowed    = errors.New("book already borrowed by this user")
	ErrNotBorrowed        = errors.New("book is not currently borrowed")
	ErrRenewalLimit       = errors.New("maximum renewal limit reached")
	ErrInvariantViolation = errors.New("available copies exceed total copies")
	ErrBusy               = errors.New("resource busy, retry later")
	ErrInactiveUser       = errors.New("user account is deactivated")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoOverdueBooks     = errors.New("no overdue books found for this user")
)
