package upload

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a parser failure.
type ErrorCode string

const (
	CodePartCount      ErrorCode = "LIMIT_PART_COUNT"
	CodeFileSize       ErrorCode = "LIMIT_FILE_SIZE"
	CodeFileCount      ErrorCode = "LIMIT_FILE_COUNT"
	CodeFieldKey       ErrorCode = "LIMIT_FIELD_KEY"
	CodeFieldValue     ErrorCode = "LIMIT_FIELD_VALUE"
	CodeFieldCount     ErrorCode = "LIMIT_FIELD_COUNT"
	CodeUnexpectedFile ErrorCode = "LIMIT_UNEXPECTED_FILE"
	CodeMissingField   ErrorCode = "MISSING_FIELD_NAME"
)

var codeMessages = map[ErrorCode]string{
	CodePartCount:      "Too many parts",
	CodeFileSize:       "File too large",
	CodeFileCount:      "Too many files",
	CodeFieldKey:       "Field name too long",
	CodeFieldValue:     "Field value too long",
	CodeFieldCount:     "Too many fields",
	CodeUnexpectedFile: "Unexpected field",
	CodeMissingField:   "Field name missing",
}

// Error is a parser failure with a known code.
type Error struct {
	Code  ErrorCode
	Field string
}

func newError(code ErrorCode, field string) *Error {
	return &Error{Code: code, Field: field}
}

func (e *Error) Error() string {
	msg, ok := codeMessages[e.Code]
	if !ok {
		msg = string(e.Code)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", msg, e.Field)
	}
	return msg
}

// Message is the caller-facing text of the code, without the field.
func (e *Error) Message() string {
	if msg, ok := codeMessages[e.Code]; ok {
		return msg
	}
	return string(e.Code)
}

var (
	ErrDuplicateField   = errors.New("duplicate upload field")
	ErrNoHTTPRequest    = errors.New("upload requires an http request")
	ErrInvalidConfig    = errors.New("invalid upload configuration")
	ErrUnknownStorage   = errors.New("unknown storage engine")
	ErrInvalidPath      = errors.New("invalid path")
	ErrFailedToSave     = errors.New("failed to save file")
	ErrFailedToRemove   = errors.New("failed to remove file")
	ErrFailedToLoadAWS  = errors.New("failed to load AWS config")
	ErrBucketNotFound   = errors.New("bucket not found")
	ErrAccessDenied     = errors.New("access denied")
	ErrServiceBusy      = errors.New("service temporarily unavailable")
	ErrOperationTimeout = errors.New("operation timed out")
)
