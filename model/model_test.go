package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConversation_NoProvider(t *testing.T) {
	_, err := NewConversation(nil)
	assert.ErrorIs(t, err, ErrNoProvider)
}

func TestNewConversation_UnknownDefault(t *testing.T) {
	_, err := NewConversation([]Provider{NewMockProvider("a")}, func(o *Options) { o.Default = "b" })
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestConversation_SendRecordsHistory(t *testing.T) {
	p := NewMockProvider("mock", "first reply", "second reply")
	c, err := NewConversation([]Provider{p}, func(o *Options) { o.MaxTokens = 1024 })
	require.NoError(t, err)

	out, err := c.Send(context.Background(), "hello", SendOptions{SystemPrompt: "be brief"})
	require.NoError(t, err)
	assert.Equal(t, "first reply", out)

	out, err = c.Send(context.Background(), "again", SendOptions{})
	require.NoError(t, err)
	assert.Equal(t, "second reply", out)

	assert.Equal(t, []Message{
		{Role: RoleSystem, Content: "be brief"},
		{Role: RoleUser, Content: "hello"},
		{Role: RoleAssistant, Content: "first reply"},
		{Role: RoleUser, Content: "again"},
		{Role: RoleAssistant, Content: "second reply"},
	}, c.History())

	reqs := p.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "be brief", reqs[0].System)
	assert.Equal(t, 1024, reqs[0].MaxTokens)
	assert.Equal(t, []Message{{Role: RoleUser, Content: "hello"}}, reqs[0].Messages)
	// The system prompt stays part of the conversation context.
	assert.Equal(t, "be brief", reqs[1].System)
	assert.Len(t, reqs[1].Messages, 3)

	last, ok := c.LastMessage()
	assert.True(t, ok)
	assert.Equal(t, "second reply", last)
}

func TestConversation_ErrorLeavesHistoryUntouched(t *testing.T) {
	p := NewMockProvider("mock", "ok")
	p.FailOn(0, errors.New("rate limited"))
	var observed []error
	c, err := NewConversation([]Provider{p}, func(o *Options) {
		o.Observer = func(_ string, err error) { observed = append(observed, err) }
	})
	require.NoError(t, err)

	_, err = c.Send(context.Background(), "hello", SendOptions{SystemPrompt: "sys"})
	assert.EqualError(t, err, "model mock: rate limited")
	assert.Empty(t, c.History())
	assert.Len(t, observed, 1)
}

func TestConversation_EmptyReply(t *testing.T) {
	c, err := NewConversation([]Provider{NewMockProvider("mock")})
	require.NoError(t, err)

	out, err := c.Send(context.Background(), "hello", SendOptions{})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Len(t, c.History(), 1)

	_, ok := c.LastMessage()
	assert.False(t, ok)
}

func TestConversation_ProviderSelection(t *testing.T) {
	a := NewMockProvider("a", "from a", "from a again")
	b := NewMockProvider("b", "from b")
	c, err := NewConversation([]Provider{a, b})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, c.Providers())
	assert.Equal(t, "a", c.Current())

	out, err := c.Send(context.Background(), "x", SendOptions{Provider: "b"})
	require.NoError(t, err)
	assert.Equal(t, "from b", out)
	assert.Equal(t, "a", c.Current(), "per-call selection does not switch the default")

	out, err = c.Send(context.Background(), "y", SendOptions{})
	require.NoError(t, err)
	assert.Equal(t, "from a", out)

	require.NoError(t, c.Use("b"))
	assert.ErrorIs(t, c.Use("zzz"), ErrUnknownProvider)

	_, err = c.Send(context.Background(), "z", SendOptions{Provider: "zzz"})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestConversation_ClearIsIdempotent(t *testing.T) {
	c, err := NewConversation([]Provider{NewMockProvider("mock", "r")})
	require.NoError(t, err)
	_, err = c.Send(context.Background(), "hello", SendOptions{})
	require.NoError(t, err)

	c.Clear()
	assert.Empty(t, c.History())
	c.Clear()
	assert.Empty(t, c.History())
}
