// Package gollm provides a model.Provider backed by github.com/teilomillet/gollm,
// giving access to every backend gollm supports (ollama, groq, mistral, ...).
// gollm takes a single prompt, so the conversation is flattened into one text.
package gollm

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/codeloop/model"
	"github.com/teilomillet/gollm"
)

// Options configures the gollm provider.
type Options struct {
	// Name is the provider name used for selection (default: the backend).
	Name        string
	Backend     string
	Model       string
	APIKey      string
	MaxTokens   int
	Temperature float64
	Extra       []gollm.ConfigOption
}

// Provider adapts a gollm.LLM to model.Provider.
type Provider struct {
	name string
	llm  gollm.LLM
}

// NewProvider creates a Provider for the given gollm backend.
func NewProvider(backend string, optFns ...func(o *Options)) (*Provider, error) {
	opts := Options{
		Backend:     backend,
		Model:       "gpt-4o-mini",
		MaxTokens:   4096,
		Temperature: 0.7,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Name == "" {
		opts.Name = opts.Backend
	}

	cfg := []gollm.ConfigOption{
		gollm.SetProvider(opts.Backend),
		gollm.SetModel(opts.Model),
		gollm.SetMaxTokens(opts.MaxTokens),
		gollm.SetTemperature(opts.Temperature),
		gollm.SetMaxRetries(0),
		gollm.SetLogLevel(gollm.LogLevelWarn),
	}
	if opts.APIKey != "" {
		cfg = append(cfg, gollm.SetAPIKey(opts.APIKey))
	}
	cfg = append(cfg, opts.Extra...)

	llm, err := gollm.NewLLM(cfg...)
	if err != nil {
		return nil, fmt.Errorf("gollm %s: %w", opts.Backend, err)
	}
	return &Provider{name: opts.Name, llm: llm}, nil
}

// NewProviderFromLLM wraps an existing gollm.LLM.
func NewProviderFromLLM(name string, llm gollm.LLM) *Provider {
	return &Provider{name: name, llm: llm}
}

// Name implements model.Provider.
func (p *Provider) Name() string { return p.name }

// Complete implements model.Provider.
func (p *Provider) Complete(ctx context.Context, req model.Request) (string, error) {
	out, err := p.llm.Generate(ctx, buildPrompt(req))
	if err != nil {
		return "", fmt.Errorf("gollm generate: %w", err)
	}
	return out, nil
}

func buildPrompt(req model.Request) *gollm.Prompt {
	var opts []gollm.PromptOption
	if req.System != "" {
		opts = append(opts, gollm.WithSystemPrompt(req.System, gollm.CacheTypeEphemeral))
	}
	if req.MaxTokens > 0 {
		opts = append(opts, gollm.WithMaxLength(req.MaxTokens))
	}
	return gollm.NewPrompt(flatten(req.Messages), opts...)
}

// flatten joins the turns into a single prompt. Earlier assistant turns are
// tagged so the model can tell them apart from the user's.
func flatten(history []model.Message) string {
	parts := make([]string, 0, len(history))
	for _, m := range history {
		if m.Role == model.RoleAssistant {
			if m.Content != "" {
				parts = append(parts, "[Assistant]: "+m.Content)
			}
			continue
		}
		parts = append(parts, m.Content)
	}
	return strings.Join(parts, "\n")
}
