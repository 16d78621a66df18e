package model

import (
	"context"
	"sync"
)

// MockProvider is a lightweight in-memory Provider useful for tests & examples.
// It replays scripted replies in order and records every request.
type MockProvider struct {
	name     string
	mu       sync.Mutex
	replies  []string
	errs     map[int]error
	requests []Request
}

// NewMockProvider constructs a MockProvider replying with the given texts.
// Once the script is exhausted it replies with an empty string.
func NewMockProvider(name string, replies ...string) *MockProvider {
	return &MockProvider{name: name, replies: replies, errs: map[int]error{}}
}

// AddReply appends a scripted reply.
func (m *MockProvider) AddReply(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, text)
}

// FailOn makes the call with the given zero-based index return err.
func (m *MockProvider) FailOn(call int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[call] = err
}

// Name implements Provider.
func (m *MockProvider) Name() string { return m.name }

// Complete implements Provider.
func (m *MockProvider) Complete(_ context.Context, req Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	call := len(m.requests)
	m.requests = append(m.requests, req)
	if err, ok := m.errs[call]; ok {
		return "", err
	}
	if len(m.replies) == 0 {
		return "", nil
	}
	out := m.replies[0]
	m.replies = m.replies[1:]
	return out, nil
}

// Requests returns the requests received so far.
func (m *MockProvider) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}
