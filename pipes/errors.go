package pipes

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported value type")
	ErrInvalidNumber   = errors.New("numeric string is expected")
	ErrInvalidBool     = errors.New("boolean string is expected")
	ErrInvalidUUID     = errors.New("uuid is expected")
	ErrInvalidJSON     = errors.New("invalid json payload")
)
