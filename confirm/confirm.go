// Package confirm asks the operator to approve destructive operations.
package confirm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Confirmer runs a two-stage confirmation: it shows warning, then prompt, and
// reports whether the operator answered with the confirmation phrase.
type Confirmer interface {
	Confirm(warning, prompt string) bool
}

// Func adapts a function to Confirmer.
type Func func(warning, prompt string) bool

// Confirm implements Confirmer.
func (f Func) Confirm(warning, prompt string) bool { return f(warning, prompt) }

// Always returns a Confirmer that answers yes without asking.
func Always(yes bool) Confirmer {
	return Func(func(string, string) bool { return yes })
}

// Options configures a Prompter.
type Options struct {
	Input  io.Reader
	Output io.Writer
	// Phrase is the answer that confirms (case-insensitive, default "y").
	Phrase string
}

// Prompter reads the answer from a line-oriented reader.
type Prompter struct {
	mu     sync.Mutex
	in     *bufio.Reader
	out    io.Writer
	phrase string
}

// NewPrompter creates a Prompter on stdin/stdout. A *bufio.Reader input is
// used as is, so a caller reading commands from the same reader shares its
// buffer with the Prompter.
func NewPrompter(optFns ...func(o *Options)) *Prompter {
	opts := Options{Input: os.Stdin, Output: os.Stdout, Phrase: "y"}
	for _, fn := range optFns {
		fn(&opts)
	}
	in, ok := opts.Input.(*bufio.Reader)
	if !ok {
		in = bufio.NewReader(opts.Input)
	}
	return &Prompter{
		in:     in,
		out:    opts.Output,
		phrase: opts.Phrase,
	}
}

// Confirm implements Confirmer. EOF or a read error counts as a refusal.
func (p *Prompter) Confirm(warning, prompt string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintln(p.out, warning)
	fmt.Fprint(p.out, prompt+": ")

	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(p.out)
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), p.phrase)
}
