package pipes

import (
	"reflect"
)

// ParamType tells a pipe where an argument came from.
type ParamType string

const (
	ParamPayload ParamType = "payload"
	ParamBody    ParamType = "body"
	ParamQuery   ParamType = "query"
	ParamPath    ParamType = "param"
	ParamCustom  ParamType = "custom"
)

// ArgumentMetadata describes the argument being transformed.
// A nil Metatype means the handler declared no type for it.
type ArgumentMetadata struct {
	Type     ParamType
	Metatype reflect.Type
	// Data is an optional key, e.g. the query parameter name.
	Data string
}

// Pipe transforms a value or rejects it with an error.
type Pipe interface {
	Transform(value any, meta ArgumentMetadata) (any, error)
}

// PipeFunc adapts a function to Pipe.
type PipeFunc func(value any, meta ArgumentMetadata) (any, error)

func (f PipeFunc) Transform(value any, meta ArgumentMetadata) (any, error) {
	return f(value, meta)
}
