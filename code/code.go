// Package code defines the execution collaborator: something that runs a code
// fragment and captures a structured, JSON-serializable result. The package
// also ships LocalExecutor, a subprocess based implementation.
package code

import "context"

// Result is the structured outcome of one execution. Its shape is owned by
// the executor; callers only serialize it.
type Result map[string]any

// Executor defines the interface for executing code snippets.
type Executor interface {
	// Execute runs the given code and returns its captured result. Failures of
	// the code itself are reported inside Result; a non-nil error means the
	// executor could not run the code at all.
	Execute(ctx context.Context, code string) (Result, error)

	// SetEnv registers an environment variable made available to executed code.
	// Registering an existing name overwrites it.
	SetEnv(name, value, description string)

	// Clear drops registered environment variables and any accumulated state.
	Clear()
}

// Binding is a registered environment variable.
type Binding struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	Description string `json:"description"`
}
