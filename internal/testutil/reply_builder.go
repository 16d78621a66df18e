package testutil

import "strings"

// ReplyBuilder provides a fluent helper for composing model replies in tests.
// Example:
//
//	text := NewReplyBuilder().Text("Counting files.").Run("print(3)").Build()
//
// Segments are joined with newlines in the order they were added.
type ReplyBuilder struct {
	segments []string
}

// NewReplyBuilder creates an empty builder.
func NewReplyBuilder() *ReplyBuilder { return &ReplyBuilder{} }

// Text appends a prose paragraph (chainable).
func (b *ReplyBuilder) Text(t string) *ReplyBuilder {
	b.segments = append(b.segments, t)
	return b
}

// Run appends a runnable ```run fence around code (chainable).
func (b *ReplyBuilder) Run(code string) *ReplyBuilder {
	b.segments = append(b.segments, "```run\n"+code+"\n```")
	return b
}

// Fence appends a non-runnable fence with the given info string (chainable).
func (b *ReplyBuilder) Fence(lang, body string) *ReplyBuilder {
	b.segments = append(b.segments, "```"+lang+"\n"+body+"\n```")
	return b
}

// Build returns the reply text.
func (b *ReplyBuilder) Build() string { return strings.Join(b.segments, "\n") }
