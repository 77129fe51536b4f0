package metadata

import "errors"

var (
	ErrNilEntry   = errors.New("nil metadata entry")
	ErrUnresolved = errors.New("metadata token not registered")
	ErrWrongType  = errors.New("metadata entry has wrong type")
)
