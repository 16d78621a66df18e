package model

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrNoProvider is returned when a Conversation has no provider to send to.
	ErrNoProvider = errors.New("model: no provider configured")
	// ErrUnknownProvider is returned when a provider name is not registered.
	ErrUnknownProvider = errors.New("model: unknown provider")
)

// Role identifies the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the conversation history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request captures the normalized model input handed to a Provider.
type Request struct {
	System    string    `json:"system,omitempty"` // System prompt, empty when none was set
	Messages  []Message `json:"messages"`         // User / assistant turns, oldest first
	MaxTokens int       `json:"max_tokens"`
}

// Provider is the minimal interface a model backend implements. Complete
// returns the reply text; an empty string means the model produced nothing.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// SendOptions configures a single Send call.
type SendOptions struct {
	// SystemPrompt is attached to the conversation when non-empty.
	SystemPrompt string
	// Provider selects a named provider for this call only.
	Provider string
}

// Client is the model collaborator contract used by the agent.
type Client interface {
	Send(ctx context.Context, text string, opts SendOptions) (string, error)
	History() []Message
	Clear()
	LastMessage() (string, bool)
	Use(name string) error
}

// Observer is notified after every provider call.
type Observer func(provider string, err error)

// Options configures a Conversation.
type Options struct {
	MaxTokens int
	// Default names the provider used when Send does not select one. When
	// empty, the first registered provider is used.
	Default  string
	Observer Observer
}

// Conversation implements Client on top of one or more named Providers that
// share a single history.
type Conversation struct {
	mu        sync.Mutex
	providers map[string]Provider
	order     []string
	current   string
	maxTokens int
	observer  Observer
	history   []Message
}

// NewConversation creates a Conversation over the given providers.
func NewConversation(providers []Provider, optFns ...func(o *Options)) (*Conversation, error) {
	opts := Options{MaxTokens: 4096}
	for _, fn := range optFns {
		fn(&opts)
	}

	c := &Conversation{
		providers: make(map[string]Provider, len(providers)),
		maxTokens: opts.MaxTokens,
		observer:  opts.Observer,
	}
	for _, p := range providers {
		if _, dup := c.providers[p.Name()]; !dup {
			c.order = append(c.order, p.Name())
		}
		c.providers[p.Name()] = p
	}
	if len(c.order) == 0 {
		return nil, ErrNoProvider
	}

	c.current = c.order[0]
	if opts.Default != "" {
		if err := c.Use(opts.Default); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Providers returns the registered provider names in registration order.
func (c *Conversation) Providers() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.order...)
}

// Current returns the name of the provider used by default.
func (c *Conversation) Current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Use switches the default provider.
func (c *Conversation) Use(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.providers[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	c.current = name
	return nil
}

// Send appends text as a user turn, asks the selected provider for a reply and
// records the exchange. The history is only updated when the provider
// succeeds; an empty reply records the user turn alone.
func (c *Conversation) Send(ctx context.Context, text string, opts SendOptions) (string, error) {
	c.mu.Lock()
	name := c.current
	if opts.Provider != "" {
		name = opts.Provider
	}
	p, ok := c.providers[name]
	if !ok {
		c.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}

	pending := make([]Message, 0, 3)
	if opts.SystemPrompt != "" {
		pending = append(pending, Message{Role: RoleSystem, Content: opts.SystemPrompt})
	}
	pending = append(pending, Message{Role: RoleUser, Content: text})
	req := buildRequest(append(append([]Message(nil), c.history...), pending...), c.maxTokens)
	observer := c.observer
	c.mu.Unlock()

	out, err := p.Complete(ctx, req)
	if observer != nil {
		observer(name, err)
	}
	if err != nil {
		return "", fmt.Errorf("model %s: %w", name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history, pending...)
	if out != "" {
		c.history = append(c.history, Message{Role: RoleAssistant, Content: out})
	}
	return out, nil
}

// buildRequest folds system messages into Request.System. The latest system
// message wins.
func buildRequest(history []Message, maxTokens int) Request {
	req := Request{MaxTokens: maxTokens, Messages: make([]Message, 0, len(history))}
	for _, m := range history {
		if m.Role == RoleSystem {
			req.System = m.Content
			continue
		}
		req.Messages = append(req.Messages, m)
	}
	return req
}

// History returns a copy of the conversation history.
func (c *Conversation) History() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.history...)
}

// Clear drops the conversation history. The default provider is kept.
func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = nil
}

// LastMessage returns the most recent assistant message.
func (c *Conversation) LastMessage() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.history) - 1; i >= 0; i-- {
		if c.history[i].Role == RoleAssistant {
			return c.history[i].Content, true
		}
	}
	return "", false
}
