package upload

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/rpckit/core"
)

// TransformError translates parser errors into upload errors: an
// oversized file becomes 413 and every other known code 400. The parser
// error is kept as cause. Any other error is returned unchanged.
func TransformError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := core.As(err); ok {
		return err
	}
	var ue *Error
	if !errors.As(err, &ue) {
		return err
	}
	switch ue.Code {
	case CodeFileSize:
		return core.Upload(http.StatusRequestEntityTooLarge, core.ErrPayloadTooLarge.Key, ue.Message(), err)
	case CodePartCount, CodeFileCount, CodeFieldKey, CodeFieldValue,
		CodeFieldCount, CodeUnexpectedFile, CodeMissingField:
		return core.Upload(http.StatusBadRequest, core.ErrUpload.Key, ue.Message(), err)
	}
	return err
}
