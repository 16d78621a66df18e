package logging

import (
	"time"
)

// LoopLogger wraps a Logger adding contextual cloning helpers and domain
// convenience methods for the instruction loop. It is cheap to copy via the
// With* methods; the wrapped Logger is shared.
type LoopLogger struct {
	base      Logger
	component string
	sessionID string
	attrs     []any
}

// NewLoopLogger wraps l. A nil logger is replaced by NoOpLogger.
func NewLoopLogger(l Logger) *LoopLogger {
	if l == nil {
		l = NoOpLogger{}
	}
	return &LoopLogger{base: l}
}

func (l *LoopLogger) clone() *LoopLogger {
	nl := *l
	nl.attrs = append([]any(nil), l.attrs...)
	return &nl
}

// WithContext adds a key/value attribute that will be attached to every log entry.
func (l *LoopLogger) WithContext(key string, value any) *LoopLogger {
	nl := l.clone()
	nl.attrs = append(nl.attrs, key, value)
	return nl
}

// WithComponent sets the logical component (agent, model, publish, etc.).
func (l *LoopLogger) WithComponent(c string) *LoopLogger {
	nl := l.clone()
	nl.component = c
	return nl
}

// WithSession attaches the session identifier.
func (l *LoopLogger) WithSession(sid string) *LoopLogger {
	nl := l.clone()
	nl.sessionID = sid
	return nl
}

func (l *LoopLogger) buildArgs(args []any) []any {
	out := make([]any, 0, len(l.attrs)+len(args)+4)
	if l.component != "" {
		out = append(out, "component", l.component)
	}
	if l.sessionID != "" {
		out = append(out, "session_id", l.sessionID)
	}
	out = append(out, l.attrs...)
	return append(out, args...)
}

// Debug logs at debug level.
func (l *LoopLogger) Debug(msg string, args ...any) { l.base.Debug(msg, l.buildArgs(args)...) }

// Info logs at info level.
func (l *LoopLogger) Info(msg string, args ...any) { l.base.Info(msg, l.buildArgs(args)...) }

// Warn logs at warn level.
func (l *LoopLogger) Warn(msg string, args ...any) { l.base.Warn(msg, l.buildArgs(args)...) }

// Error logs at error level.
func (l *LoopLogger) Error(msg string, args ...any) { l.base.Error(msg, l.buildArgs(args)...) }

// LogModelCall records model call latency and success.
func (l *LoopLogger) LogModelCall(provider string, dur time.Duration, err error) {
	if err != nil {
		l.Error("Model call failed", "provider", provider, "duration", dur, "error", err.Error())
		return
	}
	l.Info("Model call completed", "provider", provider, "duration", dur)
}

// LogExecution records a code execution round.
func (l *LoopLogger) LogExecution(round int, dur time.Duration, err error) {
	if err != nil {
		l.Error("Code execution failed", "round", round, "duration", dur, "error", err.Error())
		return
	}
	l.Info("Code execution completed", "round", round, "duration", dur)
}

// LogPublish records the outcome of a publish upload. A zero status means the
// request never produced a response.
func (l *LoopLogger) LogPublish(status int, dur time.Duration, err error) {
	if err != nil {
		l.Error("Publish failed", "status", status, "duration", dur, "error", err.Error())
		return
	}
	l.Info("Publish completed", "status", status, "duration", dur)
}

// StartTimer returns a closure that logs the elapsed duration when invoked.
func (l *LoopLogger) StartTimer(op string) func() {
	start := time.Now()
	return func() { l.Debug("Operation completed", "operation", op, "duration", time.Since(start)) }
}
