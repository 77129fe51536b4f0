package guards

import "errors"

var (
	ErrUnknownRole         = errors.New("guards: unknown role")
	ErrCircularInheritance = errors.New("guards: circular role inheritance")
	ErrInheritanceTooDeep  = errors.New("guards: role inheritance too deep")
	ErrInvalidThrottle     = errors.New("guards: invalid throttle configuration")
	ErrStoreUnavailable    = errors.New("guards: throttle store unavailable")
)
