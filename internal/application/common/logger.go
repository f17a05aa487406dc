package common

import "context"

// Logger is the minimal logging surface command handlers and adapters use
type Logger interface {
	Log(level, message string, fields map[string]interface{})
}

type contextKey int

const loggerKey contextKey = iota

// WithLogger attaches a logger to the context
func WithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext extracts the logger from the context, falling back to a
// no-op logger so call sites never nil-check
func LoggerFromContext(ctx context.Context) Logger {
	if logger, ok := ctx.Value(loggerKey).(Logger); ok {
		return logger
	}
	return noOpLogger{}
}

type noOpLogger struct{}

func (noOpLogger) Log(level, message string, fields map[string]interface{}) {}

// LoggingMiddleware logs every dispatched request with its outcome
func LoggingMiddleware(ctx context.Context, request Request, next HandlerFunc) (Response, error) {
	logger := LoggerFromContext(ctx)

	resp, err := next(ctx, request)
	if err != nil {
		logger.Log("error", "request failed", map[string]interface{}{
			"request": typeName(request),
			"error":   err.Error(),
		})
		return resp, err
	}

	logger.Log("debug", "request handled", map[string]interface{}{
		"request": typeName(request),
	})
	return resp, nil
}
