// Package openai provides a model.Provider backed by the OpenAI Chat
// Completions API. Any OpenAI compatible endpoint can be targeted through
// Options.BaseURL.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/codeloop/model"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Options configure the OpenAI provider.
type Options struct {
	// Name is the provider name used for selection (default "openai").
	Name                string
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	APIKey              string
	BaseURL             string
	MaxRetries          int
}

// Provider implements model.Provider on top of the official OpenAI client.
type Provider struct {
	client *openai.Client
	opts   Options
}

func defaultOptions() Options {
	return Options{
		Name:        "openai",
		Model:       openai.ChatModelGPT4oMini,
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

	client := openai.NewClient(clientOpts...)
	return &Provider{client: &client, opts: opts}
}

// NewProviderFromClient creates a Provider from an existing client.
func NewProviderFromClient(client *openai.Client, optFns ...func(o *Options)) *Provider {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Provider{client: client, opts: opts}
}

// Name implements model.Provider.
func (p *Provider) Name() string { return p.opts.Name }

// Complete implements model.Provider.
func (p *Provider) Complete(ctx context.Context, req model.Request) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, p.buildParams(req))
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *Provider) buildParams(req model.Request) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case model.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	maxTokens := p.opts.MaxCompletionTokens
	if maxTokens == 0 {
		maxTokens = int64(req.MaxTokens)
	}

	params := openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       p.opts.Model,
		Temperature: openai.Float(p.opts.Temperature),
	}
	if maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(maxTokens)
	}
	return params
}
