package handler

import "errors"

// ErrArgumentType indicates a typed handler received a payload of another type.
var ErrArgumentType = errors.New("argument type mismatch")
