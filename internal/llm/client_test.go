package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenAI(serverURL string, maxRetries int) *OpenAIProvider {
	p := NewOpenAIProvider(OpenAIConfig{
		APIKey:  "test-key",
		Model:   "gpt-4-turbo",
		BaseURL: serverURL,
	}, 0.3, 5*time.Second, maxRetries)
	p.retryDelay = time.Millisecond
	return p
}

func TestOpenAIComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4-turbo", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		require.NotNil(t, req.ResponseFormat)
		assert.Equal(t, "json_object", req.ResponseFormat.Type)

		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"model": "gpt-4-turbo",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"keywords\": [\"a\"]}"}}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	defer server.Close()

	provider := newTestOpenAI(server.URL, 0)
	resp, err := provider.Complete(context.Background(), Request{
		Messages: []Message{
			{Role: "system", Content: "You extract keywords."},
			{Role: "user", Content: "extract"},
		},
		JSONMode: true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"keywords": ["a"]}`, resp.Content)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
}

func TestOpenAIComplete_RetriesTransient(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error": {"message": "overloaded", "type": "server_error"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "ok"}}]}`))
	}))
	defer server.Close()

	provider := newTestOpenAI(server.URL, 2)
	resp, err := provider.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, int32(2), calls.Load())
}

func TestOpenAIComplete_TerminalError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "bad key", "type": "invalid_request_error"}}`))
	}))
	defer server.Close()

	provider := newTestOpenAI(server.URL, 3)
	_, err := provider.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.False(t, apiErr.IsTransient())
	// Terminal errors must not be retried.
	assert.Equal(t, int32(1), calls.Load())
}

func TestAnthropicComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicAPIVersion, r.Header.Get("anthropic-version"))

		var req messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "You select papers.", req.System)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)

		_, _ = w.Write([]byte(`{
			"id": "msg-1",
			"model": "test-model",
			"content": [{"type": "text", "text": "{\"selected_papers\": []}"}],
			"usage": {"input_tokens": 20, "output_tokens": 8}
		}`))
	}))
	defer server.Close()

	provider := NewAnthropicProvider(AnthropicConfig{
		APIKey:  "test-key",
		Model:   "test-model",
		BaseURL: server.URL,
	}, 0.3, 5*time.Second, 0)

	resp, err := provider.Complete(context.Background(), Request{
		Messages: []Message{
			{Role: "system", Content: "You select papers."},
			{Role: "user", Content: "select"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"selected_papers": []}`, resp.Content)
	assert.Equal(t, 28, resp.Usage.TotalTokens)
}

func TestFactory(t *testing.T) {
	client, err := New(FactoryConfig{Provider: "openai"})
	require.NoError(t, err)
	assert.Equal(t, "openai", client.Provider())

	client, err = New(FactoryConfig{Provider: "anthropic", Anthropic: AnthropicConfig{Model: "m"}})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", client.Provider())

	_, err = New(FactoryConfig{Provider: "cohere"})
	require.Error(t, err)
}

func TestIsTransientError(t *testing.T) {
	assert.True(t, isTransientError(&APIError{StatusCode: 0}))
	assert.True(t, isTransientError(&APIError{StatusCode: 429}))
	assert.True(t, isTransientError(&APIError{StatusCode: 503}))
	assert.False(t, isTransientError(&APIError{StatusCode: 400}))
	assert.False(t, isTransientError(assert.AnError))
}
