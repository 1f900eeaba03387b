package anthropic

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/AlexGustafsson/lyrebird/internal/llm"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

var _ llm.Client = (*Client)(nil)

const (
	DefaultModel = "claude-sonnet-4-20250514"
	// DefaultMaxTokens is used when a request sets no limit. The Messages API
	// requires one.
	DefaultMaxTokens = 1000
)

// Client performs requests towards Anthropic's Messages API.
type Client struct {
	client *anthropic.Client
	model  string
}

type Options struct {
	// BaseURL overrides the API's base URL.
	BaseURL string
	// HTTPClient defaults to the SDK's client.
	HTTPClient *http.Client
}

// NewClient returns a new Client using the specified API key. An empty model
// uses DefaultModel.
func NewClient(apiKey string, model string, options *Options) *Client {
	if model == "" {
		model = DefaultModel
	}

	// One request per generation, never retried
	requestOptions := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if options != nil {
		if options.BaseURL != "" {
			requestOptions = append(requestOptions, option.WithBaseURL(options.BaseURL))
		}
		if options.HTTPClient != nil {
			requestOptions = append(requestOptions, option.WithHTTPClient(options.HTTPClient))
		}
	}

	client := anthropic.NewClient(requestOptions...)
	return &Client{
		client: &client,
		model:  model,
	}
}

// Chat implements llm.Client. System messages are sent as the system prompt.
func (c *Client) Chat(ctx context.Context, r *llm.ChatRequest) (*llm.ChatResponse, error) {
	system, rest := llm.SplitSystem(r.Messages)

	messages := make([]anthropic.MessageParam, 0, len(rest))
	for _, m := range rest {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == llm.RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(block))
		} else {
			messages = append(messages, anthropic.NewUserMessage(block))
		}
	}

	maxTokens := r.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages:  messages,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if r.Temperature > 0 {
		params.Temperature = anthropic.Float(r.Temperature)
	}

	res, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}

	parts := make([]string, 0, len(res.Content))
	for _, block := range res.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}

	text := strings.Join(parts, "\n")
	if strings.TrimSpace(text) == "" {
		return nil, llm.ErrEmptyResponse
	}

	return &llm.ChatResponse{
		Message: llm.Message{
			Role:    llm.RoleAssistant,
			Content: text,
		},
		Model: string(res.Model),
	}, nil
}
