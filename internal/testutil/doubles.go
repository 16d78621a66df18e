package testutil

import (
	"context"
	"sync"

	"github.com/hupe1980/codeloop/code"
	"github.com/hupe1980/codeloop/model"
	"github.com/hupe1980/codeloop/publish"
)

// ScriptedExecutor is a code.Executor returning scripted results in order.
// Once the script is exhausted it returns an empty successful result.
type ScriptedExecutor struct {
	mu      sync.Mutex
	results []code.Result
	errs    map[int]error
	Calls   []string
	Env     map[string]code.Binding
	Clears  int
}

var _ code.Executor = (*ScriptedExecutor)(nil)

// NewScriptedExecutor creates an executor replying with results.
func NewScriptedExecutor(results ...code.Result) *ScriptedExecutor {
	return &ScriptedExecutor{results: results, errs: map[int]error{}, Env: map[string]code.Binding{}}
}

// AddResult appends a scripted result (chainable).
func (e *ScriptedExecutor) AddResult(r code.Result) *ScriptedExecutor {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.results = append(e.results, r)
	return e
}

// FailOn makes the call with the given zero-based index return err.
func (e *ScriptedExecutor) FailOn(call int, err error) *ScriptedExecutor {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errs[call] = err
	return e
}

// Execute implements code.Executor.
func (e *ScriptedExecutor) Execute(_ context.Context, src string) (code.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	call := len(e.Calls)
	e.Calls = append(e.Calls, src)
	if err, ok := e.errs[call]; ok {
		return nil, err
	}
	if len(e.results) == 0 {
		return code.Result{"stdout": "", "stderr": "", "returncode": 0}, nil
	}
	r := e.results[0]
	e.results = e.results[1:]
	return r, nil
}

// SetEnv implements code.Executor.
func (e *ScriptedExecutor) SetEnv(name, value, description string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Env[name] = code.Binding{Name: name, Value: value, Description: description}
}

// Clear implements code.Executor.
func (e *ScriptedExecutor) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Env = map[string]code.Binding{}
	e.Clears++
}

// Kind tags a line written to a RecordingSink.
type Kind string

const (
	KindStatus   Kind = "status"
	KindSuccess  Kind = "success"
	KindWarn     Kind = "warn"
	KindMarkdown Kind = "markdown"
)

// Line is one output of a RecordingSink.
type Line struct {
	Kind Kind
	Text string
}

// RecordingSink is a console.Sink keeping every call in memory.
type RecordingSink struct {
	mu      sync.Mutex
	Lines   []Line
	Saved   map[string]bool // path -> clear flag
	SaveErr error
	HTML    string
}

// NewRecordingSink creates a sink whose ExportHTML returns html.
func NewRecordingSink(html string) *RecordingSink {
	return &RecordingSink{Saved: map[string]bool{}, HTML: html}
}

func (s *RecordingSink) add(k Kind, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Lines = append(s.Lines, Line{Kind: k, Text: text})
}

func (s *RecordingSink) Status(text string)  { s.add(KindStatus, text) }
func (s *RecordingSink) Success(text string) { s.add(KindSuccess, text) }
func (s *RecordingSink) Warn(text string)    { s.add(KindWarn, text) }
func (s *RecordingSink) Markdown(md string)  { s.add(KindMarkdown, md) }

func (s *RecordingSink) save(path string, clear bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.Saved[path] = clear
	return nil
}

func (s *RecordingSink) SaveSVG(path string, clear bool) error  { return s.save(path, clear) }
func (s *RecordingSink) SaveHTML(path string, clear bool) error { return s.save(path, clear) }
func (s *RecordingSink) ExportHTML(bool) string                 { return s.HTML }

// Texts returns the text of every line of kind k.
func (s *RecordingSink) Texts(k Kind) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, l := range s.Lines {
		if l.Kind == k {
			out = append(out, l.Text)
		}
	}
	return out
}

// Confirmer records confirmation requests and answers with Answer.
type Confirmer struct {
	Answer   bool
	Warnings []string
	Prompts  []string
}

// Confirm implements confirm.Confirmer.
func (c *Confirmer) Confirm(warning, prompt string) bool {
	c.Warnings = append(c.Warnings, warning)
	c.Prompts = append(c.Prompts, prompt)
	return c.Answer
}

// Uploader is a scripted publish uploader.
type Uploader struct {
	Result   *publish.Result
	Err      error
	Requests []publish.Request
}

// Upload records req and returns the scripted answer.
func (u *Uploader) Upload(_ context.Context, req publish.Request) (*publish.Result, error) {
	u.Requests = append(u.Requests, req)
	return u.Result, u.Err
}

// Send is one call observed by a RecordingClient.
type Send struct {
	Text string
	Opts model.SendOptions
}

// RecordingClient wraps a model.Client and keeps the arguments of every Send.
type RecordingClient struct {
	model.Client
	mu    sync.Mutex
	Sends []Send
}

var _ model.Client = (*RecordingClient)(nil)

// NewRecordingClient wraps c.
func NewRecordingClient(c model.Client) *RecordingClient {
	return &RecordingClient{Client: c}
}

// Send implements model.Client.
func (c *RecordingClient) Send(ctx context.Context, text string, opts model.SendOptions) (string, error) {
	c.mu.Lock()
	c.Sends = append(c.Sends, Send{Text: text, Opts: opts})
	c.mu.Unlock()
	return c.Client.Send(ctx, text, opts)
}

// SystemPrompts returns the SystemPrompt option of every Send, in order.
func (c *RecordingClient) SystemPrompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.Sends))
	for _, s := range c.Sends {
		out = append(out, s.Opts.SystemPrompt)
	}
	return out
}
