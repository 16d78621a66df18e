package code

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"
)

// sensitiveEnvPatterns are case-insensitive suffixes for inherited environment
// variables that are not passed to executed code. Registered bindings are
// always passed.
var sensitiveEnvPatterns = []string{
	"_API_KEY",
	"_SECRET",
	"_TOKEN",
	"_PASSWORD",
	"_CREDENTIAL",
}

func isSensitiveEnvVar(name string) bool {
	upper := strings.ToUpper(name)
	for _, pattern := range sensitiveEnvPatterns {
		if strings.HasSuffix(upper, pattern) {
			return true
		}
	}
	return false
}

func filterEnvironment(environ []string) []string {
	filtered := make([]string, 0, len(environ))
	for _, kv := range environ {
		name, _, ok := strings.Cut(kv, "=")
		if !ok || isSensitiveEnvVar(name) {
			continue
		}
		filtered = append(filtered, kv)
	}
	return filtered
}

// Record is one entry of the executor's history.
type Record struct {
	Code     string        `json:"code"`
	Result   Result        `json:"result"`
	Duration time.Duration `json:"duration"`
}

// LocalOptions configures a LocalExecutor.
type LocalOptions struct {
	// Interpreter is the command that reads the program from stdin.
	Interpreter []string
	// WorkDir is the working directory of executed code (default: current).
	WorkDir string
	// Timeout bounds a single execution; zero means no limit.
	Timeout time.Duration
	// Environ supplies the inherited environment (default: os.Environ).
	Environ func() []string
}

// LocalExecutor runs code in a child interpreter process on the local machine.
// It is not a security boundary.
type LocalExecutor struct {
	opts    LocalOptions
	mu      sync.Mutex
	env     map[string]Binding
	history []Record
}

// NewLocalExecutor creates a LocalExecutor. Defaults: python3 reading from
// stdin, current working directory, no timeout.
func NewLocalExecutor(optFns ...func(o *LocalOptions)) *LocalExecutor {
	opts := LocalOptions{
		Interpreter: []string{"python3", "-"},
		Environ:     os.Environ,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &LocalExecutor{opts: opts, env: make(map[string]Binding)}
}

// SetEnv implements Executor.
func (e *LocalExecutor) SetEnv(name, value, description string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.env[name] = Binding{Name: name, Value: value, Description: description}
}

// Env returns the registered bindings sorted by name.
func (e *LocalExecutor) Env() []Binding {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Binding, 0, len(e.env))
	for _, b := range e.env {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// History returns a copy of the executions performed since the last Clear.
func (e *LocalExecutor) History() []Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Record, len(e.history))
	copy(out, e.history)
	return out
}

// Clear implements Executor.
func (e *LocalExecutor) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.env = make(map[string]Binding)
	e.history = nil
}

// Execute implements Executor. The result carries stdout, stderr and
// returncode; a timed out run additionally sets timeout=true.
func (e *LocalExecutor) Execute(ctx context.Context, code string) (Result, error) {
	if len(e.opts.Interpreter) == 0 {
		return nil, errors.New("code: no interpreter configured")
	}

	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, e.opts.Interpreter[0], e.opts.Interpreter[1:]...)
	cmd.Dir = e.opts.WorkDir
	cmd.Stdin = strings.NewReader(code)
	cmd.Env = e.environment()
	cmd.WaitDelay = 500 * time.Millisecond

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	dur := time.Since(start)

	result := Result{
		"stdout":     stdout.String(),
		"stderr":     stderr.String(),
		"returncode": 0,
	}

	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			result["returncode"] = -1
			result["timeout"] = true
		case errors.As(err, &exitErr):
			result["returncode"] = exitErr.ExitCode()
		default:
			return nil, fmt.Errorf("code: run %s: %w", e.opts.Interpreter[0], err)
		}
	}

	e.mu.Lock()
	e.history = append(e.history, Record{Code: code, Result: result, Duration: dur})
	e.mu.Unlock()

	return result, nil
}

func (e *LocalExecutor) environment() []string {
	environ := os.Environ
	if e.opts.Environ != nil {
		environ = e.opts.Environ
	}
	env := filterEnvironment(environ())
	for _, b := range e.Env() {
		env = append(env, b.Name+"="+b.Value)
	}
	return env
}
