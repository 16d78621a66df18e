// Package codeloop provides a high-level façade that wires a configuration
// into a ready-to-run agent.Agent: model providers, a local code executor,
// a recording console and the publish uploader. Most applications interact
// with this package by:
//  1. Loading a configuration with config.Load
//  2. Creating an agent with New
//  3. Calling Run, Chat, Step, Save or Publish on the returned agent
//
// Every collaborator can be replaced through Options; unset ones get the
// defaults described on Options.
package codeloop

import (
	"fmt"
	"io"
	"os"
	"sort"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/hupe1980/codeloop/agent"
	"github.com/hupe1980/codeloop/code"
	"github.com/hupe1980/codeloop/config"
	"github.com/hupe1980/codeloop/confirm"
	"github.com/hupe1980/codeloop/console"
	"github.com/hupe1980/codeloop/logging"
	"github.com/hupe1980/codeloop/metrics"
	"github.com/hupe1980/codeloop/model"
	"github.com/hupe1980/codeloop/model/anthropic"
	"github.com/hupe1980/codeloop/model/gollm"
	"github.com/hupe1980/codeloop/model/openai"
)

// Options configures the agent built by New.
type Options struct {
	// Output receives console output and the completion bell (default stdout).
	Output io.Writer
	// Console overrides the default lipgloss/glamour console.
	Console console.Sink
	// Confirmer overrides the stdin confirmation prompt used by Reset.
	Confirmer confirm.Confirmer
	// Executor overrides the local subprocess executor.
	Executor code.Executor
	// Providers replaces the providers built from the configuration.
	Providers []model.Provider
	// Loader re-reads the configuration on Reset (default config.Load).
	Loader func(path string) (*config.Config, error)
	// Logger (defaults to NoOp logger if nil)
	Logger  logging.Logger
	Metrics *metrics.Metrics
}

// New creates an agent for cfg.
func New(cfg *config.Config, optFns ...func(o *Options)) (*agent.Agent, error) {
	opts := Options{
		Output: os.Stdout,
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Console == nil {
		opts.Console = console.New(func(o *console.Options) {
			o.Output = opts.Output
			o.Record = cfg.Record
		})
	}
	if opts.Executor == nil {
		opts.Executor = NewExecutor(cfg)
	}

	return agent.New(cfg, func(o *agent.Options) {
		o.NewModel = func(c *config.Config) (model.Client, error) {
			return NewModel(c, opts.Providers, opts.Metrics)
		}
		o.Executor = opts.Executor
		o.Console = opts.Console
		o.Confirmer = opts.Confirmer
		o.Logger = opts.Logger
		o.Metrics = opts.Metrics
		o.Bell = opts.Output
		if opts.Loader != nil {
			o.Loader = opts.Loader
		}
	})
}

// NewModel builds the conversation over the configured providers. When
// providers is non-empty it is used instead of cfg.LLM.
func NewModel(cfg *config.Config, providers []model.Provider, m *metrics.Metrics) (model.Client, error) {
	if len(providers) == 0 {
		var err error
		if providers, err = BuildProviders(cfg); err != nil {
			return nil, err
		}
	}

	return model.NewConversation(providers, func(o *model.Options) {
		if cfg.MaxTokens > 0 {
			o.MaxTokens = cfg.MaxTokens
		}
		o.Default = cfg.DefaultLLM()
		o.Observer = m.RecordModelCall
	})
}

// BuildProviders creates one provider per enabled cfg.LLM entry, in name
// order.
func BuildProviders(cfg *config.Config) ([]model.Provider, error) {
	names := make([]string, 0, len(cfg.LLM))
	for name, l := range cfg.LLM {
		if l.Enabled() {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	providers := make([]model.Provider, 0, len(names))
	for _, name := range names {
		p, err := buildProvider(name, cfg.LLM[name], cfg.MaxTokens)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, nil
}

func buildProvider(name string, l config.LLM, maxTokens int) (model.Provider, error) {
	switch l.Type {
	case "", config.TypeOpenAI:
		return openai.NewProvider(func(o *openai.Options) {
			o.Name = name
			o.APIKey = l.APIKey
			o.BaseURL = l.BaseURL
			if l.Model != "" {
				o.Model = l.Model
			}
			if l.Temperature != 0 {
				o.Temperature = l.Temperature
			}
		}), nil
	case config.TypeAnthropic:
		return anthropic.NewProvider(func(o *anthropic.Options) {
			o.Name = name
			o.APIKey = l.APIKey
			o.BaseURL = l.BaseURL
			if l.Model != "" {
				o.Model = anthropicsdk.Model(l.Model)
			}
			if l.Temperature != 0 {
				o.Temperature = l.Temperature
			}
		}), nil
	case config.TypeGollm:
		return gollm.NewProvider(l.Backend, func(o *gollm.Options) {
			o.Name = name
			o.APIKey = l.APIKey
			if l.Model != "" {
				o.Model = l.Model
			}
			if maxTokens > 0 {
				o.MaxTokens = maxTokens
			}
			if l.Temperature != 0 {
				o.Temperature = l.Temperature
			}
		})
	default:
		return nil, fmt.Errorf("%w: llm %q: unknown type %q", config.ErrInvalidConfig, name, l.Type)
	}
}

// NewExecutor creates the local executor described by cfg.Executor.
func NewExecutor(cfg *config.Config) *code.LocalExecutor {
	return code.NewLocalExecutor(func(o *code.LocalOptions) {
		if len(cfg.Executor.Interpreter) > 0 {
			o.Interpreter = cfg.Executor.Interpreter
		}
		o.WorkDir = cfg.Executor.WorkDir
		o.Timeout = cfg.Executor.Timeout
	})
}
