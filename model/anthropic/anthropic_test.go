package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hupe1980/codeloop/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Complete(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "ak-test", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude",` +
			`"content":[{"type":"text","text":"part one, "},{"type":"text","text":"part two"}],` +
			`"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":2}}`))
	}))
	defer srv.Close()

	p := NewProvider(func(o *Options) {
		o.APIKey = "ak-test"
		o.BaseURL = srv.URL + "/"
		o.MaxRetries = 0
	})
	assert.Equal(t, "anthropic", p.Name())

	out, err := p.Complete(context.Background(), model.Request{
		System:    "sys",
		MaxTokens: 512,
		Messages: []model.Message{
			{Role: model.RoleUser, Content: "hi"},
			{Role: model.RoleAssistant, Content: "hey"},
			{Role: model.RoleUser, Content: "more"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "part one, part two", out)

	assert.EqualValues(t, 512, body["max_tokens"])
	system, ok := body["system"].([]any)
	require.True(t, ok)
	assert.Equal(t, "sys", system[0].(map[string]any)["text"])
	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 3)
	assert.Equal(t, "assistant", msgs[1].(map[string]any)["role"])
}

func TestProvider_NoSystemBlock(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_2","type":"message","role":"assistant","model":"claude",` +
			`"content":[],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":0}}`))
	}))
	defer srv.Close()

	p := NewProvider(func(o *Options) {
		o.APIKey = "k"
		o.BaseURL = srv.URL + "/"
		o.MaxRetries = 0
	})
	out, err := p.Complete(context.Background(), model.Request{Messages: []model.Message{{Role: model.RoleUser, Content: "x"}}})
	require.NoError(t, err)
	assert.Empty(t, out)
	_, hasSystem := body["system"]
	assert.False(t, hasSystem)
	assert.EqualValues(t, 4096, body["max_tokens"])
}
