package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/AlexGustafsson/lyrebird/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChat(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/"+DefaultModel+":generateContent"), r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "[Intro]\n"}, {"text": "Neon lights"}]}}],
			"modelVersion": "gemini-2.5-flash-001"
		}`))
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), "test-key", "", &Options{BaseURL: server.URL})
	require.NoError(t, err)

	res, err := client.Chat(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "You are a lyricist."},
			{Role: llm.RoleUser, Content: "write a song"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "[Intro]\nNeon lights", res.Message.Content)
	assert.Equal(t, "gemini-2.5-flash-001", res.Model)
	assert.Contains(t, received, "systemInstruction")
}

func TestChatNoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), "test-key", "", &Options{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Chat(context.Background(), llm.UserPrompt("write a song"))
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
}

func TestChatLive(t *testing.T) {
	apiKey, ok := os.LookupEnv("GEMINI_API_KEY")
	if !ok {
		t.Skip("GEMINI_API_KEY not set")
	}

	client, err := NewClient(context.Background(), apiKey, "", nil)
	require.NoError(t, err)

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
	})
	require.NoError(t, err)

	assert.Equal(t, "3", strings.TrimSpace(res.Message.Content))
}
