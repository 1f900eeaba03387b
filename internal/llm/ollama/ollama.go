package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AlexGustafsson/lyrebird/internal/llm"
	ollama "github.com/ollama/ollama/api"
)

var _ llm.Client = (*Client)(nil)

const DefaultModel = "llama3.1"

// DefaultURL is the address of a locally running Ollama server.
var DefaultURL = &url.URL{Scheme: "http", Host: "localhost:11434"}

type Client struct {
	client    *ollama.Client
	model     string
	keepAlive time.Duration
}

type Options struct {
	KeepAlive time.Duration
	// HTTPClient defaults to a new http.Client.
	HTTPClient *http.Client
}

// NewClient returns a client for the Ollama server at base. An empty model
// uses DefaultModel.
func NewClient(base *url.URL, model string, options *Options) *Client {
	if base == nil {
		base = DefaultURL
	}

	if model == "" {
		model = DefaultModel
	}

	keepAlive := time.Duration(0)
	httpClient := &http.Client{}
	if options != nil {
		keepAlive = options.KeepAlive
		if options.HTTPClient != nil {
			httpClient = options.HTTPClient
		}
	}

	return &Client{
		client:    ollama.NewClient(base, httpClient),
		model:     model,
		keepAlive: keepAlive,
	}
}

// Chat implements llm.Client.
func (c *Client) Chat(ctx context.Context, r *llm.ChatRequest) (*llm.ChatResponse, error) {
	messages := make([]ollama.Message, len(r.Messages))
	for i, m := range r.Messages {
		messages[i] = ollama.Message{
			Role:    string(m.Role),
			Content: m.Content,
		}
	}

	stream := false
	keepAlive := ollama.Duration{Duration: 0}
	if c.keepAlive > 0 {
		keepAlive = ollama.Duration{Duration: c.keepAlive}
	}

	options := make(map[string]any)
	if r.MaxTokens > 0 {
		options["num_predict"] = r.MaxTokens
	}
	if r.Temperature > 0 {
		options["temperature"] = r.Temperature
	}

	req := &ollama.ChatRequest{
		Model:     c.model,
		Messages:  messages,
		Stream:    &stream,
		KeepAlive: &keepAlive,
		Options:   options,
	}

	// With streaming disabled the server responds once, but the API is
	// callback based either way
	var builder strings.Builder
	model := c.model
	err := c.client.Chat(ctx, req, func(res ollama.ChatResponse) error {
		builder.WriteString(res.Message.Content)
		if res.Model != "" {
			model = res.Model
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}

	if strings.TrimSpace(builder.String()) == "" {
		return nil, llm.ErrEmptyResponse
	}

	return &llm.ChatResponse{
		Message: llm.Message{
			// Assume assistant role
			Role:    llm.RoleAssistant,
			Content: builder.String(),
		},
		Model: model,
	}, nil
}
