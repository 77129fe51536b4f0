// Package upload parses multipart payloads before a handler runs.
//
// FileFieldsInterceptor returns a Binder describing which file fields a
// handler accepts. When the pipeline is built the Binder is constructed
// against the container: the module-wide Options registered under the
// ModuleOptions token are merged with the Binder's local options and an
// Interceptor is produced. On every call the interceptor parses the HTTP
// request, stores files with the configured Storage and attaches the
// result to the request before the handler runs.
//
//	ref := handler.New(svc, "UpdateProfile", svc.UpdateProfile).
//		UseInterceptors(upload.FileFieldsInterceptor([]upload.Field{
//			{Name: "avatar", MaxCount: 1},
//			{Name: "gallery", MaxCount: 8},
//		}, &upload.Options{Limits: &upload.Limits{FileSize: 5 << 20}})).
//		Build()
//
// Inside the handler:
//
//	ectx, _ := execctx.FromContext(ctx)
//	avatar := upload.FilesFromRequest(ectx.SwitchToHTTP().Request(), "avatar")
//
// Parser failures carry multer-compatible codes (LIMIT_FILE_SIZE,
// LIMIT_UNEXPECTED_FILE, ...) and are translated by TransformError.
package upload
