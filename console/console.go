// Package console renders loop output for the operator and keeps an optional
// plain-text recording that can be exported as an HTML or SVG document.
package console

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// ErrNotRecording is returned by the Save methods of a Console created with
// recording disabled.
var ErrNotRecording = errors.New("console: recording is disabled")

// Sink is the output contract used by the agent.
type Sink interface {
	// Status prints a progress heading.
	Status(text string)
	// Success prints a positive outcome.
	Success(text string)
	// Warn prints a failure or a refusal.
	Warn(text string)
	// Markdown renders md for the terminal.
	Markdown(md string)
	SaveSVG(path string, clear bool) error
	SaveHTML(path string, clear bool) error
	// ExportHTML returns the recording as an HTML document.
	ExportHTML(clear bool) string
}

var (
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

// Options configures a Console.
type Options struct {
	Output io.Writer
	// Record keeps a copy of everything printed for export.
	Record bool
	// WordWrap is the markdown wrap width; zero disables wrapping.
	WordWrap int
	// Style is a glamour standard style ("dark", "light", "notty", ...).
	// Empty selects one from the terminal.
	Style string
	// Title is used as the exported document title.
	Title string
}

// Console implements Sink on a terminal writer.
type Console struct {
	mu       sync.Mutex
	out      io.Writer
	record   bool
	recorded strings.Builder
	renderer *glamour.TermRenderer
	title    string
}

var _ Sink = (*Console)(nil)

// New creates a Console. Defaults: stdout, recording on, wrap at 80.
func New(optFns ...func(o *Options)) *Console {
	opts := Options{
		Output:   os.Stdout,
		Record:   true,
		WordWrap: 80,
		Title:    "codeloop",
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	styleOpt := glamour.WithAutoStyle()
	if opts.Style != "" {
		styleOpt = glamour.WithStandardStyle(opts.Style)
	}
	// A renderer that fails to build leaves markdown printed verbatim.
	renderer, _ := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(opts.WordWrap))

	return &Console{
		out:      opts.Output,
		record:   opts.Record,
		renderer: renderer,
		title:    opts.Title,
	}
}

// Recording reports whether output is being recorded.
func (c *Console) Recording() bool { return c.record }

// Status implements Sink.
func (c *Console) Status(text string) {
	c.emit(text, statusStyle.Render(text))
}

// Print prints text without styling.
func (c *Console) Print(text string) {
	c.emit(text, text)
}

// Success implements Sink.
func (c *Console) Success(text string) {
	c.emit(text, successStyle.Render(text))
}

// Warn implements Sink.
func (c *Console) Warn(text string) {
	c.emit(text, warnStyle.Render(text))
}

// Markdown implements Sink. The recording keeps the markdown source.
func (c *Console) Markdown(md string) {
	rendered := md
	if c.renderer != nil {
		if out, err := c.renderer.Render(md); err == nil {
			rendered = strings.TrimRight(out, "\n")
		}
	}
	c.emit(md, rendered)
}

func (c *Console) emit(plain, styled string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, styled)
	if c.record {
		c.recorded.WriteString(plain)
		c.recorded.WriteByte('\n')
	}
}

// Text returns the recorded plain text.
func (c *Console) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recorded.String()
}

// take returns the recording and optionally resets it.
func (c *Console) take(clear bool) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	text := c.recorded.String()
	if clear {
		c.recorded.Reset()
	}
	return text
}
