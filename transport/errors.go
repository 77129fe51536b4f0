package transport

import "errors"

var ErrInvalidJSON = errors.New("invalid json body")
