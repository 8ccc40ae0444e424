package log

// Logger is a leveled, structured logger.
// keysAndValues are alternating keys and values, e.g. "method", m, "status", 200.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
	// Fatal logs and may terminate the program.
	Fatal(msg string, keysAndValues ...any)

	// WithKV returns a logger that adds key=value to every entry.
	WithKV(key string, value any) Logger
	// GetAllKV returns the pairs added with WithKV.
	GetAllKV() []any
	// WithName returns a logger named after a component; names nest with dots.
	WithName(name string) Logger
	Name() string
	// AddCallerSkip skips extra frames when reporting the caller.
	AddCallerSkip(skip int) Logger
}

// Level is the severity of a log entry.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelFatal Level = "fatal"
)

// SpanEventRecorder records log entries onto a trace span.
type SpanEventRecorder interface {
	TraceID() string
	SpanID() string
	RecordEvent(name string, keysAndValues ...any)
	RecordError(name string, keysAndValues ...any)
}
