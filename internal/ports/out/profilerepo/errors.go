package profilerepo

import "errors"

var (
	// ErrNotFound indicates no profile row exists for the subject.
	ErrNotFound = errors.New("profile not found")

	// ErrWriteRejected indicates the store rejected the write (constraint
	// violation or equivalent).
	ErrWriteRejected = errors.New("profile write rejected")
)
