package log

var _ Logger = SpanLogger{}

// SpanLogger writes to a wrapped Logger and mirrors each entry onto a span.
type SpanLogger struct {
	lg  Logger
	ser SpanEventRecorder
}

// NewSpanLogger wraps lg. One caller frame is skipped for the wrapper itself.
func NewSpanLogger(lg Logger, ser SpanEventRecorder) Logger {
	return SpanLogger{lg: lg.AddCallerSkip(1), ser: ser}
}

func (sl SpanLogger) Debug(msg string, keysAndValues ...any) {
	sl.ser.RecordEvent(msg, sl.spanKV(LevelDebug, keysAndValues)...)
	sl.lg.Debug(msg, sl.logKV(keysAndValues)...)
}

func (sl SpanLogger) Info(msg string, keysAndValues ...any) {
	sl.ser.RecordEvent(msg, sl.spanKV(LevelInfo, keysAndValues)...)
	sl.lg.Info(msg, sl.logKV(keysAndValues)...)
}

func (sl SpanLogger) Warn(msg string, keysAndValues ...any) {
	sl.ser.RecordEvent(msg, sl.spanKV(LevelWarn, keysAndValues)...)
	sl.lg.Warn(msg, sl.logKV(keysAndValues)...)
}

func (sl SpanLogger) Error(msg string, keysAndValues ...any) {
	sl.ser.RecordError(msg, sl.spanKV(LevelError, keysAndValues)...)
	sl.lg.Error(msg, sl.logKV(keysAndValues)...)
}

func (sl SpanLogger) Fatal(msg string, keysAndValues ...any) {
	sl.ser.RecordError(msg, sl.spanKV(LevelFatal, keysAndValues)...)
	sl.lg.Fatal(msg, sl.logKV(keysAndValues)...)
}

func (sl SpanLogger) WithKV(key string, value any) Logger {
	return SpanLogger{lg: sl.lg.WithKV(key, value), ser: sl.ser}
}

func (sl SpanLogger) GetAllKV() []any { return sl.lg.GetAllKV() }

func (sl SpanLogger) WithName(name string) Logger {
	return SpanLogger{lg: sl.lg.WithName(name), ser: sl.ser}
}

func (sl SpanLogger) Name() string { return sl.lg.Name() }

func (sl SpanLogger) AddCallerSkip(skip int) Logger {
	return SpanLogger{lg: sl.lg.AddCallerSkip(skip), ser: sl.ser}
}

// logKV prefixes the entry with the trace and span IDs.
func (sl SpanLogger) logKV(keysAndValues []any) []any {
	return append([]any{"traceId", sl.ser.TraceID(), "spanId", sl.ser.SpanID()}, keysAndValues...)
}

// spanKV prefixes the event with level, component and the logger's persistent pairs.
func (sl SpanLogger) spanKV(level Level, keysAndValues []any) []any {
	kv := append([]any{"level", string(level), "component", sl.lg.Name()}, sl.lg.GetAllKV()...)
	return append(kv, keysAndValues...)
}
