package pipes

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/rpckit/core"
)

func parseFailed(sentinel error) error {
	return core.ValidationFailed(fmt.Sprintf("Validation failed (%s)", sentinel), sentinel)
}

// ParseInt converts numeric strings and integer kinds to int.
func ParseInt() Pipe {
	return PipeFunc(func(value any, _ ArgumentMetadata) (any, error) {
		switch v := value.(type) {
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return nil, parseFailed(ErrInvalidNumber)
			}
			return n, nil
		case []byte:
			n, err := strconv.Atoi(strings.TrimSpace(string(v)))
			if err != nil {
				return nil, parseFailed(ErrInvalidNumber)
			}
			return n, nil
		}
		rv := reflect.ValueOf(value)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return int(rv.Int()), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return int(rv.Uint()), nil
		}
		return nil, parseFailed(ErrInvalidNumber)
	})
}

// ParseFloat converts numeric strings and number kinds to float64.
func ParseFloat() Pipe {
	return PipeFunc(func(value any, _ ArgumentMetadata) (any, error) {
		if s, ok := value.(string); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, parseFailed(ErrInvalidNumber)
			}
			return f, nil
		}
		rv := reflect.ValueOf(value)
		switch rv.Kind() {
		case reflect.Float32, reflect.Float64:
			return rv.Float(), nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return float64(rv.Int()), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return float64(rv.Uint()), nil
		}
		return nil, parseFailed(ErrInvalidNumber)
	})
}

// ParseBool accepts bools and the strings "true" and "false".
func ParseBool() Pipe {
	return PipeFunc(func(value any, _ ArgumentMetadata) (any, error) {
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			switch v {
			case "true":
				return true, nil
			case "false":
				return false, nil
			}
		}
		return nil, parseFailed(ErrInvalidBool)
	})
}

// ParseUUID converts strings to uuid.UUID. A non-zero version also
// requires the parsed UUID to be of that version.
func ParseUUID(version int) Pipe {
	return PipeFunc(func(value any, _ ArgumentMetadata) (any, error) {
		var id uuid.UUID
		switch v := value.(type) {
		case uuid.UUID:
			id = v
		case string:
			parsed, err := uuid.Parse(v)
			if err != nil {
				return nil, parseFailed(ErrInvalidUUID)
			}
			id = parsed
		default:
			return nil, parseFailed(ErrInvalidUUID)
		}
		if version > 0 && int(id.Version()) != version {
			return nil, core.ValidationFailed(
				fmt.Sprintf("Validation failed (uuid v%d is expected)", version),
				ErrInvalidUUID,
			)
		}
		return id, nil
	})
}

// DefaultValue replaces a nil value with def.
func DefaultValue(def any) Pipe {
	return PipeFunc(func(value any, _ ArgumentMetadata) (any, error) {
		if value == nil {
			return def, nil
		}
		if rv := reflect.ValueOf(value); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return def, nil
		}
		return value, nil
	})
}
