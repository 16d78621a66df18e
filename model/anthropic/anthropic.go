// Package anthropic provides a model.Provider for the Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/hupe1980/codeloop/model"
)

// Options configures the Anthropic provider.
type Options struct {
	// Name is the provider name used for selection (default "anthropic").
	Name        string
	Model       anthropic.Model
	Temperature float64
	// MaxTokens overrides the per-request limit when non-zero.
	MaxTokens  int64
	APIKey     string
	BaseURL    string
	MaxRetries int
}

// Provider wraps the Anthropic Messages API behind model.Provider.
type Provider struct {
	client *anthropic.Client
	opts   Options
}

func defaultOptions() Options {
	return Options{
		Name:        "anthropic",
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxRetries:  2,
	}
}

// NewProvider creates a Provider with its own client.
func NewProvider(optFns ...func(o *Options)) *Provider {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	clientOpts := []option.RequestOption{option.WithMaxRetries(opts.MaxRetries)}
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}

	client := anthropic.NewClient(clientOpts...)
	return &Provider{client: &client, opts: opts}
}

// NewProviderFromClient creates a Provider from an existing client.
func NewProviderFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Provider {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Provider{client: client, opts: opts}
}

// Name implements model.Provider.
func (p *Provider) Name() string { return p.opts.Name }

// Complete implements model.Provider. Text blocks of the reply are joined.
func (p *Provider) Complete(ctx context.Context, req model.Request) (string, error) {
	maxTokens := p.opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = int64(req.MaxTokens)
	}
	if maxTokens == 0 {
		maxTokens = 4096
	}

	params := anthropic.MessageNewParams{
		Model:       p.opts.Model,
		Messages:    buildMessages(req.Messages),
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(p.opts.Temperature),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic api error: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}
	return sb.String(), nil
}

func buildMessages(history []model.Message) []anthropic.MessageParam {
	messages := make([]anthropic.MessageParam, 0, len(history))
	for _, m := range history {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == model.RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(block))
			continue
		}
		messages = append(messages, anthropic.NewUserMessage(block))
	}
	return messages
}
