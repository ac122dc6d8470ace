package store

import "github.com/listenupapp/cuescan/internal/errors"

// Sentinel errors. They carry domain codes so callers can match either these
// values or the generic errors.ErrNotFound family.
var (
	ErrNotFound      = errors.NotFound("resource not found")
	ErrAlreadyExists = errors.AlreadyExists("resource already exists")
	ErrInvalidInput  = errors.Validation("invalid input")
)
