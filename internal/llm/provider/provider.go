package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AlexGustafsson/lyrebird/internal/llm"
	"github.com/AlexGustafsson/lyrebird/internal/llm/anthropic"
	"github.com/AlexGustafsson/lyrebird/internal/llm/demo"
	"github.com/AlexGustafsson/lyrebird/internal/llm/gemini"
	"github.com/AlexGustafsson/lyrebird/internal/llm/ollama"
	"github.com/AlexGustafsson/lyrebird/internal/llm/openai"
)

var ErrUnknownProvider = errors.New("unknown provider")

// Name identifies a provider.
type Name string

const (
	Gemini    Name = "gemini"
	OpenAI    Name = "openai"
	Anthropic Name = "anthropic"
	Ollama    Name = "ollama"
	Demo      Name = "demo"
)

// Names lists all providers.
var Names = []Name{Gemini, OpenAI, Anthropic, Ollama, Demo}

// ParseName parses a provider name, case insensitively.
func ParseName(value string) (Name, error) {
	for _, name := range Names {
		if strings.EqualFold(strings.TrimSpace(value), string(name)) {
			return name, nil
		}
	}

	return "", fmt.Errorf("%w: %s (allowed: gemini, openai, anthropic, ollama, demo)", ErrUnknownProvider, value)
}

// RequiresCredential returns whether the provider needs an API key.
func (n Name) RequiresCredential() bool {
	switch n {
	case Ollama, Demo:
		return false
	default:
		return true
	}
}

// DefaultModel returns the model used when none is configured.
func (n Name) DefaultModel() string {
	switch n {
	case Gemini:
		return gemini.DefaultModel
	case OpenAI:
		return openai.DefaultModel
	case Anthropic:
		return anthropic.DefaultModel
	case Ollama:
		return ollama.DefaultModel
	case Demo:
		return demo.Model
	}
	return ""
}

// Factory creates clients for providers.
type Factory struct {
	// Model overrides the provider's default model.
	Model string
	// OllamaURL is the address of the Ollama server. Defaults to
	// ollama.DefaultURL.
	OllamaURL *url.URL
	// BaseURL overrides the API base URL of hosted providers.
	BaseURL string
	// DemoDelay is the simulated latency of the demo provider.
	DemoDelay time.Duration
	// HTTPClient is used for all requests, if set.
	HTTPClient *http.Client
}

// NewClient returns a client for the named provider using the credential.
// Returns llm.ErrMissingCredential if the provider requires a credential
// and none is given.
func (f *Factory) NewClient(ctx context.Context, name Name, credential string) (llm.Client, error) {
	if name.RequiresCredential() && strings.TrimSpace(credential) == "" {
		return nil, fmt.Errorf("%w: provider %s requires an API key", llm.ErrMissingCredential, name)
	}

	switch name {
	case Gemini:
		client, err := gemini.NewClient(ctx, credential, f.Model, &gemini.Options{
			BaseURL:    f.BaseURL,
			HTTPClient: f.HTTPClient,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case OpenAI:
		return openai.NewClient(credential, f.Model, &openai.Options{
			BaseURL:    f.BaseURL,
			HTTPClient: f.HTTPClient,
		}), nil
	case Anthropic:
		return anthropic.NewClient(credential, f.Model, &anthropic.Options{
			BaseURL:    f.BaseURL,
			HTTPClient: f.HTTPClient,
		}), nil
	case Ollama:
		return ollama.NewClient(f.OllamaURL, f.Model, &ollama.Options{
			HTTPClient: f.HTTPClient,
		}), nil
	case Demo:
		return demo.NewClient(f.DemoDelay), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
}

// ModelFor returns the model a client created for the provider will use.
func (f *Factory) ModelFor(name Name) string {
	if f.Model != "" && name != Demo {
		return f.Model
	}
	return name.DefaultModel()
}
