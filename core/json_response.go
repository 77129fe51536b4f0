package core

import (
	"encoding/json"
	"net/http"
)

// JSONResponse is the standard JSON envelope written by transports.
type JSONResponse struct {
	Status string       `json:"status"`
	Data   any          `json:"data,omitempty"`
	Error  *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Kind    Kind   `json:"kind"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// JSONResult wraps a successful value.
func JSONResult(data any) JSONResponse {
	return JSONResponse{Status: "ok", Data: data}
}

// JSONError builds the error envelope and status code for err.
// Errors that are not *Error are reported as internal errors without
// leaking their message.
func JSONError(err error) (int, JSONResponse) {
	e, ok := As(err)
	if !ok {
		e = ErrInternal
	}

	msg := e.Message
	if msg == "" {
		msg = http.StatusText(StatusCode(e))
	}

	return StatusCode(e), JSONResponse{
		Status: "error",
		Error: &ErrorDetail{
			Kind:    e.Kind,
			Code:    e.Key,
			Message: msg,
		},
	}
}

// WriteJSON renders v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}
