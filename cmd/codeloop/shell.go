package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hupe1980/codeloop/agent"
	"github.com/hupe1980/codeloop/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

const shellHelp = `Commands:
  <instruction>           run an instruction
  @<model> <instruction>  run an instruction with a specific model
  /chat <prompt>          ask without running code
  /step                   continue from the last reply
  /clear                  forget the conversation
  /reset [path]           reload the configuration and start over
  /save <file> [--clear]  export the console as .svg or .html
  /publish [title]        upload the console as HTML
  /use <model>            switch the default model
  /stats                  show session metrics
  /help                   show this help
  /exit                   leave the shell`

var errExit = errors.New("exit")

type shellOptions struct {
	Input      io.Reader
	Output     io.Writer
	Gatherer   prometheus.Gatherer
	ConfigPath string
	Prompt     string
}

// shell is a line oriented front end over an agent. Commands are read from a
// single buffered reader that confirmation prompts may share.
type shell struct {
	agent *agent.Agent
	in    *bufio.Reader
	opts  shellOptions
}

func newShell(a *agent.Agent, optFns ...func(o *shellOptions)) *shell {
	opts := shellOptions{
		Input:  os.Stdin,
		Output: os.Stdout,
		Prompt: ">>> ",
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	in, ok := opts.Input.(*bufio.Reader)
	if !ok {
		in = bufio.NewReader(opts.Input)
	}
	return &shell{agent: a, in: in, opts: opts}
}

// Run reads commands until EOF, /exit or context cancellation. Command
// errors are printed and do not end the shell.
func (s *shell) Run(ctx context.Context) error {
	for {
		fmt.Fprint(s.opts.Output, s.opts.Prompt)
		raw, err := s.in.ReadString('\n')
		if err != nil && raw == "" {
			fmt.Fprintln(s.opts.Output)
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		err = s.dispatch(ctx, line)
		if errors.Is(err, errExit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(s.opts.Output, "error: %v\n", err)
		}
	}
}

func (s *shell) dispatch(ctx context.Context, line string) error {
	if strings.HasPrefix(line, "@") {
		name, instruction, _ := strings.Cut(line[1:], " ")
		instruction = strings.TrimSpace(instruction)
		if name == "" || instruction == "" {
			return errors.New("usage: @<model> <instruction>")
		}
		return s.agent.Run(ctx, instruction, agent.RunOptions{Provider: name})
	}
	if !strings.HasPrefix(line, "/") {
		return s.agent.Run(ctx, line, agent.RunOptions{})
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/exit", "/quit":
		return errExit
	case "/help":
		fmt.Fprintln(s.opts.Output, shellHelp)
	case "/chat":
		if arg == "" {
			return errors.New("usage: /chat <prompt>")
		}
		return s.agent.Chat(ctx, arg)
	case "/step":
		return s.agent.Step(ctx)
	case "/clear":
		s.agent.Clear()
	case "/reset":
		path := arg
		if path == "" {
			path = s.opts.ConfigPath
		}
		return s.agent.Reset(path)
	case "/save":
		fields := strings.Fields(arg)
		if len(fields) == 0 {
			return errors.New("usage: /save <file> [--clear]")
		}
		clearAfter := len(fields) > 1 && fields[1] == "--clear"
		s.agent.Save(fields[0], clearAfter)
	case "/publish":
		s.agent.Publish(ctx, arg, "")
	case "/use":
		if arg == "" {
			return errors.New("usage: /use <model>")
		}
		return s.agent.Use(arg)
	case "/stats":
		return s.stats()
	default:
		return fmt.Errorf("unknown command %s, try /help", cmd)
	}
	return nil
}

func (s *shell) stats() error {
	if s.opts.Gatherer == nil {
		fmt.Fprintln(s.opts.Output, "metrics are disabled")
		return nil
	}
	samples, err := metrics.Summarize(s.opts.Gatherer)
	if err != nil {
		return err
	}
	for _, sm := range samples {
		name := sm.Name
		if sm.Labels != "" {
			name += "{" + sm.Labels + "}"
		}
		fmt.Fprintf(s.opts.Output, "%-60s %g\n", name, sm.Value)
	}
	return nil
}
