package llm

import (
	"context"
	"errors"
)

var (
	// ErrMissingCredential is returned when a provider requires an API key but
	// none was supplied.
	ErrMissingCredential = errors.New("missing credential")
	// ErrEmptyResponse is returned when a provider responds without any text.
	ErrEmptyResponse = errors.New("empty response")
)

// Client is a client for a text generation provider. A call to Chat performs
// a single request. Clients don't retry and don't stream.
type Client interface {
	Chat(context.Context, *ChatRequest) (*ChatResponse, error)
}

type ChatRequest struct {
	Messages []Message
	// MaxTokens limits the number of generated tokens. Zero uses the provider's
	// default.
	MaxTokens int
	// Temperature controls randomness. Zero uses the provider's default.
	Temperature float64
}

type ChatResponse struct {
	Message Message
	// Model is the model that produced the response, if known.
	Model string
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	// RoleSystem specifies that the message is from the system iteself.
	RoleSystem Role = "system"
	// RoleAssistant specifies that the message is from the assistant / LLM.
	RoleAssistant Role = "assistant"
	// RoleUser specifies that the message is from an end-user.
	RoleUser Role = "user"
)

// UserPrompt returns a request consisting of a single user message.
func UserPrompt(prompt string) *ChatRequest {
	return &ChatRequest{
		Messages: []Message{
			{
				Role:    RoleUser,
				Content: prompt,
			},
		},
	}
}

// SplitSystem returns the concatenated system messages and the remaining
// messages, for providers that take the system prompt separately.
func SplitSystem(messages []Message) (string, []Message) {
	system := ""
	rest := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}
