package resumerepo

import "errors"

// ErrNotFound indicates the subject has no saved resume.
var ErrNotFound = errors.New("resume not found")
