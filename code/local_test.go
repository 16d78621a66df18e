package code

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newShellExecutor(optFns ...func(o *LocalOptions)) *LocalExecutor {
	fns := append([]func(o *LocalOptions){func(o *LocalOptions) {
		o.Interpreter = []string{"sh", "-s"}
		o.Environ = func() []string { return []string{"PATH=/usr/bin:/bin", "OPENAI_API_KEY=sk-secret"} }
	}}, optFns...)
	return NewLocalExecutor(fns...)
}

func TestLocalExecutor_CapturesOutput(t *testing.T) {
	e := newShellExecutor()

	res, err := e.Execute(context.Background(), "echo hello\necho oops 1>&2")
	require.NoError(t, err)

	assert.Equal(t, "hello\n", res["stdout"])
	assert.Equal(t, "oops\n", res["stderr"])
	assert.Equal(t, 0, res["returncode"])
	assert.Len(t, e.History(), 1)
}

func TestLocalExecutor_FailureIsAResultNotAnError(t *testing.T) {
	e := newShellExecutor()

	res, err := e.Execute(context.Background(), "exit 3")
	require.NoError(t, err)
	assert.Equal(t, 3, res["returncode"])
}

func TestLocalExecutor_Environment(t *testing.T) {
	e := newShellExecutor()
	e.SetEnv("WEATHER_KEY", "abc", "weather key")
	e.SetEnv("WEATHER_KEY", "def", "weather key")

	res, err := e.Execute(context.Background(), `echo "$WEATHER_KEY:$OPENAI_API_KEY"`)
	require.NoError(t, err)

	assert.Equal(t, "def:\n", res["stdout"])
	assert.Equal(t, []Binding{{Name: "WEATHER_KEY", Value: "def", Description: "weather key"}}, e.Env())
}

func TestLocalExecutor_Timeout(t *testing.T) {
	e := newShellExecutor(func(o *LocalOptions) { o.Timeout = 50 * time.Millisecond })

	res, err := e.Execute(context.Background(), "exec sleep 5")
	require.NoError(t, err)
	assert.Equal(t, true, res["timeout"])
	assert.Equal(t, -1, res["returncode"])
}

func TestLocalExecutor_MissingInterpreter(t *testing.T) {
	e := NewLocalExecutor(func(o *LocalOptions) { o.Interpreter = []string{"definitely-not-an-interpreter-xyz"} })

	_, err := e.Execute(context.Background(), "print(1)")
	assert.Error(t, err)
	assert.Empty(t, e.History())
}

func TestLocalExecutor_ClearIsIdempotent(t *testing.T) {
	e := newShellExecutor()
	e.SetEnv("A", "1", "a")
	_, err := e.Execute(context.Background(), "true")
	require.NoError(t, err)

	e.Clear()
	assert.Empty(t, e.Env())
	assert.Empty(t, e.History())

	assert.NotPanics(t, e.Clear)
	assert.Empty(t, e.Env())
	assert.Empty(t, e.History())
}

func TestFilterEnvironment(t *testing.T) {
	got := filterEnvironment([]string{"HOME=/root", "GITHUB_TOKEN=x", "db_password=y", "malformed"})
	assert.Equal(t, []string{"HOME=/root"}, got)
}
