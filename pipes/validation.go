package pipes

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/dmitrymomot/rpckit/core"
)

// Validatable is implemented by payloads that check themselves,
// typically with Apply and the rule constructors of this package.
type Validatable interface {
	Validate() error
}

// Validation rejects values that do not match the declared metatype or
// whose Validate method fails. Other values pass through unchanged.
func Validation() Pipe {
	return PipeFunc(func(value any, meta ArgumentMetadata) (any, error) {
		if meta.Metatype != nil && value != nil && !reflect.TypeOf(value).AssignableTo(meta.Metatype) {
			return nil, core.ValidationFailed(
				fmt.Sprintf("expected %s, got %T", meta.Metatype, value),
				ErrUnsupportedType,
			)
		}
		v, ok := value.(Validatable)
		if !ok {
			return value, nil
		}
		if err := v.Validate(); err != nil {
			return nil, validationError(err)
		}
		return value, nil
	})
}

// ValidateWith runs fn against values of type T. Values of another type
// pass through.
func ValidateWith[T any](fn func(T) error) Pipe {
	return PipeFunc(func(value any, _ ArgumentMetadata) (any, error) {
		v, ok := value.(T)
		if !ok {
			return value, nil
		}
		if err := fn(v); err != nil {
			return nil, validationError(err)
		}
		return value, nil
	})
}

func validationError(err error) error {
	var ce *core.Error
	if errors.As(err, &ce) {
		return err
	}
	return core.ValidationFailed(err.Error(), err)
}
