package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/AlexGustafsson/lyrebird/internal/llm"
	"google.golang.org/genai"
)

var _ llm.Client = (*Client)(nil)

const DefaultModel = "gemini-2.5-flash"

// Client performs requests towards Google's Gemini API.
type Client struct {
	client *genai.Client
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
func NewClient(ctx context.Context, apiKey string, model string, options *Options) (*Client, error) {
	if model == "" {
		model = DefaultModel
	}

	config := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if options != nil {
		config.HTTPClient = options.HTTPClient
		config.HTTPOptions.BaseURL = options.BaseURL
	}

	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		client: client,
		model:  model,
	}, nil
}

// Chat implements llm.Client.
func (c *Client) Chat(ctx context.Context, r *llm.ChatRequest) (*llm.ChatResponse, error) {
	system, rest := llm.SplitSystem(r.Messages)

	contents := make([]*genai.Content, len(rest))
	for i, m := range rest {
		// Gemini uses "user" and "model"
		contents[i] = &genai.Content{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: m.Content}},
		}
		if m.Role == llm.RoleAssistant {
			contents[i].Role = genai.RoleModel
		}
	}

	config := &genai.GenerateContentConfig{}
	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}
	if r.MaxTokens > 0 {
		config.MaxOutputTokens = int32(r.MaxTokens)
	}
	if r.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(r.Temperature))
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return nil, llm.ErrEmptyResponse
	}

	var builder strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && !part.Thought {
			builder.WriteString(part.Text)
		}
	}

	if strings.TrimSpace(builder.String()) == "" {
		return nil, llm.ErrEmptyResponse
	}

	model := result.ModelVersion
	if model == "" {
		model = c.model
	}

	return &llm.ChatResponse{
		Message: llm.Message{
			Role:    llm.RoleAssistant,
			Content: builder.String(),
		},
		Model: model,
	}, nil
}
