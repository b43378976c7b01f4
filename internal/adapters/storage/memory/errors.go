package memory

import "errors"

var (
	ErrIDRequired    = errors.New("id required")
	ErrAlreadyExists = errors.New("already exists")
)
