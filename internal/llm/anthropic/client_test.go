package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/AlexGustafsson/lyrebird/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChat(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("Anthropic-Version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet-4-20250514",
			"content": [{"type": "text", "text": "[Verse]"}, {"type": "text", "text": "hello"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`))
	}))
	defer server.Close()

	client := NewClient("test-key", "", &Options{BaseURL: server.URL + "/"})

	res, err := client.Chat(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "You are a lyricist."},
			{Role: llm.RoleUser, Content: "write a song"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "[Verse]\nhello", res.Message.Content)
	assert.Equal(t, "claude-sonnet-4-20250514", res.Model)
	assert.Equal(t, DefaultModel, received["model"])
	assert.EqualValues(t, DefaultMaxTokens, received["max_tokens"])
	assert.Equal(t, []any{
		map[string]any{"type": "text", "text": "You are a lyricist."},
	}, received["system"])
	assert.Equal(t, []any{
		map[string]any{
			"role":    "user",
			"content": []any{map[string]any{"type": "text", "text": "write a song"}},
		},
	}, received["messages"])
	assert.NotContains(t, received, "temperature")
}

func TestChatOptions(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "msg_1", "type": "message", "role": "assistant", "model": "claude-3-5-haiku-latest", "content": [{"type": "text", "text": "la"}]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", "claude-3-5-haiku-latest", &Options{BaseURL: server.URL + "/"})

	_, err := client.Chat(context.Background(), &llm.ChatRequest{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: "write a song"}},
		MaxTokens:   64,
		Temperature: 0.5,
	})
	require.NoError(t, err)

	assert.Equal(t, "claude-3-5-haiku-latest", received["model"])
	assert.EqualValues(t, 64, received["max_tokens"])
	assert.EqualValues(t, 0.5, received["temperature"])
	assert.NotContains(t, received, "system")
}

func TestChatError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"type": "error", "error": {"type": "authentication_error", "message": "invalid x-api-key"}}`))
	}))
	defer server.Close()

	client := NewClient("bad-key", "", &Options{BaseURL: server.URL + "/"})

	_, err := client.Chat(context.Background(), llm.UserPrompt("write a song"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid x-api-key")
}

func TestChatIsNotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"type": "error", "error": {"type": "api_error", "message": "internal error"}}`))
	}))
	defer server.Close()

	client := NewClient("test-key", "", &Options{BaseURL: server.URL + "/"})

	_, err := client.Chat(context.Background(), llm.UserPrompt("write a song"))
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestChatEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "msg_1", "type": "message", "role": "assistant", "content": []}`))
	}))
	defer server.Close()

	client := NewClient("test-key", "", &Options{BaseURL: server.URL + "/"})

	_, err := client.Chat(context.Background(), llm.UserPrompt("write a song"))
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
}

func TestChatLive(t *testing.T) {
	apiKey, ok := os.LookupEnv("ANTHROPIC_API_KEY")
	if !ok {
		t.Skip("ANTHROPIC_API_KEY not set")
	}

	client := NewClient(apiKey, "", nil)

	res, err := client.Chat(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{
			{
				Role:    llm.RoleSystem,
				Content: "Add the numbers provided by the user. Respond only with the sum, nothing else.",
			},
			{
				Role:    llm.RoleUser,
				Content: "1 2",
			},
		},
		MaxTokens: 16,
	})
	require.NoError(t, err)

	assert.Equal(t, "3", res.Message.Content)
}
