package transport

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/rpckit/core"
)

// Decoder extracts the pipeline payload from a request.
type Decoder func(r *http.Request) (any, error)

// DefaultMaxBodySize bounds JSON bodies read by JSONBody.
const DefaultMaxBodySize int64 = 1 << 20

// JSONBody returns the raw JSON body as json.RawMessage, leaving decoding
// into the handler's payload type to pipes (see pipes.DecodeJSON).
// Requests without a body, or with a non-JSON content type, yield nil.
func JSONBody(r *http.Request) (any, error) {
	if r.Body == nil || r.ContentLength == 0 {
		return nil, nil
	}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != "application/json" {
			return nil, nil
		}
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, DefaultMaxBodySize+1))
	if err != nil {
		return nil, core.ValidationFailed("Unable to read request body", err)
	}
	if int64(len(body)) > DefaultMaxBodySize {
		return nil, core.ErrPayloadTooLarge.WithMessage("Request body too large")
	}
	if len(body) == 0 {
		return nil, nil
	}
	if !json.Valid(body) {
		return nil, core.ValidationFailed("Request body is not valid JSON", ErrInvalidJSON)
	}
	return json.RawMessage(body), nil
}

// Params returns chi URL parameters merged over the first value of each
// query parameter.
func Params(r *http.Request) (any, error) {
	out := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			out[key] = values[0]
		}
	}
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		for i, key := range rctx.URLParams.Keys {
			if key == "*" {
				continue
			}
			out[key] = rctx.URLParams.Values[i]
		}
	}
	return out, nil
}

// URLParam returns a decoder yielding the single chi URL parameter name.
func URLParam(name string) Decoder {
	return func(r *http.Request) (any, error) {
		v := chi.URLParam(r, name)
		if v == "" {
			return nil, core.ValidationFailed(fmt.Sprintf("Missing path parameter %q", name), nil)
		}
		return v, nil
	}
}

// NoPayload passes nil. Use it for multipart routes whose files and
// fields are read by an upload interceptor.
func NoPayload(*http.Request) (any, error) {
	return nil, nil
}
