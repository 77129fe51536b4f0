// Package logger builds *slog.Logger instances for the pipeline and
// defines the attribute helpers used across rpckit so log keys stay
// consistent (call_id, handler, module, stage, kind).
//
// New wraps the chosen slog handler with LogHandlerDecorator which runs
// registered ContextExtractor callbacks on every record. The execctx
// package exposes an extractor that adds the per-call identifier.
//
//	log := logger.New(
//		logger.WithDevelopment("orders"),
//		logger.WithContextExtractors(execctx.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "call finished", logger.Handler("Create"), logger.Duration(d))
//
// Error returns an empty attribute for nil errors so it can be passed
// unconditionally.
package logger
