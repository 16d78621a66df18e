// Package logging provides a minimal logging interface and adapters for codeloop.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the agent, model client and publisher use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - LoopLogger adding session/component context and loop specific helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LogLevelDebug, Format: "json"})
//	a, err := codeloop.New(cfg, func(o *codeloop.Options) { o.Logger = logger })
package logging
