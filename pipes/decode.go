package pipes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/dmitrymomot/rpckit/core"
)

// DecodeJSON decodes raw payloads ([]byte, json.RawMessage or string)
// into a value of the argument's Metatype. Without a Metatype the result
// is the generic decoding (map[string]any, []any, ...). Values that are
// not raw, or already of the Metatype, pass through.
func DecodeJSON() Pipe {
	return decodeJSON(false)
}

// DecodeJSONStrict is DecodeJSON rejecting unknown object fields.
func DecodeJSONStrict() Pipe {
	return decodeJSON(true)
}

func decodeJSON(strict bool) Pipe {
	return PipeFunc(func(value any, meta ArgumentMetadata) (any, error) {
		if meta.Metatype != nil && value != nil && reflect.TypeOf(value).AssignableTo(meta.Metatype) {
			return value, nil
		}
		var raw []byte
		switch v := value.(type) {
		case json.RawMessage:
			raw = v
		case []byte:
			raw = v
		case string:
			raw = []byte(v)
		default:
			return value, nil
		}

		target := reflect.TypeFor[any]()
		if meta.Metatype != nil {
			target = meta.Metatype
		}
		ptr := reflect.New(target)

		dec := json.NewDecoder(bytes.NewReader(raw))
		if strict {
			dec.DisallowUnknownFields()
		}
		if err := dec.Decode(ptr.Interface()); err != nil {
			return nil, core.ValidationFailed(
				fmt.Sprintf("Validation failed (%s)", err),
				fmt.Errorf("%w: %v", ErrInvalidJSON, err),
			)
		}
		return ptr.Elem().Interface(), nil
	})
}
