package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/AlexGustafsson/lyrebird/internal/llm"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var _ llm.Client = (*Client)(nil)

const DefaultModel = "gpt-4o-mini"

// Client performs requests towards OpenAI's chat completion API.
type Client struct {
	client *openai.Client
	model  string
}

type Options struct {
	// BaseURL overrides the API's base URL, for compatible servers.
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

	client := openai.NewClient(requestOptions...)
	return &Client{
		client: &client,
		model:  model,
	}
}

// Chat implements llm.Client.
func (c *Client) Chat(ctx context.Context, r *llm.ChatRequest) (*llm.ChatResponse, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(r.Messages))
	for _, m := range r.Messages {
		switch m.Role {
		case llm.RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case llm.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: messages,
	}
	if r.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(r.MaxTokens))
	}
	if r.Temperature > 0 {
		params.Temperature = openai.Float(r.Temperature)
	}

	res, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}

	if len(res.Choices) == 0 || strings.TrimSpace(res.Choices[0].Message.Content) == "" {
		return nil, llm.ErrEmptyResponse
	}

	return &llm.ChatResponse{
		Message: llm.Message{
			Role:    llm.RoleAssistant,
			Content: res.Choices[0].Message.Content,
		},
		Model: res.Model,
	}, nil
}
