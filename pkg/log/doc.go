// Package log is the structured logger used across the relay client.
//
// Loggers are passed explicitly or carried in a context.Context:
//
//	logger := log.NewZapLogger(log.Config{Format: "logfmt", Level: log.LevelInfo})
//	ctx = log.SetContextLogger(ctx, logger.WithName("relay"))
//	log.FromContext(ctx).Info("bundle submitted", "bundleHash", hash)
//
// When the context carries a valid OpenTelemetry span, SetContextLogger wraps
// the logger so every entry is also recorded as a span event, and Error or
// Fatal entries mark the span as failed.
//
// Environment variables read by Config:
//
//   - LOG_FORMAT: console, logfmt or json
//   - LOG_LEVEL: debug, info, warn, error or fatal
//   - LOG_OUTPUT: stderr, stdout or a file path
package log
