package openai

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
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini",` +
			`"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"hello there"}}]}`))
	}))
	defer srv.Close()

	p := NewProvider(func(o *Options) {
		o.APIKey = "sk-test"
		o.BaseURL = srv.URL + "/v1/"
		o.MaxRetries = 0
		o.Name = "gpt"
	})
	assert.Equal(t, "gpt", p.Name())

	out, err := p.Complete(context.Background(), model.Request{
		System:    "be brief",
		MaxTokens: 256,
		Messages: []model.Message{
			{Role: model.RoleUser, Content: "hi"},
			{Role: model.RoleAssistant, Content: "hey"},
			{Role: model.RoleUser, Content: "again"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello there", out)

	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 4)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "assistant", msgs[2].(map[string]any)["role"])
	assert.EqualValues(t, 256, body["max_completion_tokens"])
}

func TestProvider_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"m","choices":[]}`))
	}))
	defer srv.Close()

	p := NewProvider(func(o *Options) {
		o.APIKey = "k"
		o.BaseURL = srv.URL + "/"
		o.MaxRetries = 0
	})
	_, err := p.Complete(context.Background(), model.Request{Messages: []model.Message{{Role: model.RoleUser, Content: "x"}}})
	assert.EqualError(t, err, "openai: no choices returned")
}

func TestProvider_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	p := NewProvider(func(o *Options) {
		o.APIKey = "k"
		o.BaseURL = srv.URL + "/"
		o.MaxRetries = 0
	})
	_, err := p.Complete(context.Background(), model.Request{Messages: []model.Message{{Role: model.RoleUser, Content: "x"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai api error")
}
