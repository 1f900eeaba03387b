package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/AlexGustafsson/lyrebird/internal/llm"
	"github.com/AlexGustafsson/lyrebird/internal/llm/provider"
	"github.com/AlexGustafsson/lyrebird/internal/lyrics"
	"github.com/AlexGustafsson/lyrebird/internal/state"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
)

var (
	// ErrBusy is returned when a generation is already outstanding.
	ErrBusy = errors.New("a generation is already in progress")
	// ErrGeneration is returned when the provider call fails.
	ErrGeneration = errors.New("generation failed")
)

// Factory creates provider clients.
type Factory interface {
	NewClient(ctx context.Context, name provider.Name, credential string) (llm.Client, error)
	ModelFor(name provider.Name) string
}

var _ Factory = (*provider.Factory)(nil)

// Options configures a Generator.
type Options struct {
	// Provider defaults to gemini.
	Provider provider.Name
	// Credential is used when a request doesn't carry its own.
	Credential string
	// DemoMode uses the demo provider when no credential is available.
	DemoMode bool
	// Timeout bounds a provider call. Zero means no timeout.
	Timeout time.Duration
	// MaxTokens limits the generated output. Zero uses the provider's default.
	MaxTokens int
	// Metrics is optional.
	Metrics *state.Metrics
}

// Generator generates lyrics, one request at a time.
type Generator struct {
	factory Factory
	options Options
	busy    atomic.Bool
}

// New returns a Generator creating provider clients with factory. Options may
// be nil.
func New(factory Factory, options *Options) *Generator {
	generator := &Generator{
		factory: factory,
	}
	if options != nil {
		generator.options = *options
	}
	if generator.options.Provider == "" {
		generator.options.Provider = provider.Gemini
	}
	return generator
}

// Busy returns whether a generation is outstanding.
func (g *Generator) Busy() bool {
	return g.busy.Load()
}

// DemoAvailable returns whether a request without its own credential would be
// served by the demo provider.
func (g *Generator) DemoAvailable() bool {
	return g.options.DemoMode && g.options.Provider.RequiresCredential() && strings.TrimSpace(g.options.Credential) == ""
}

// Generate validates the request, builds the prompt, calls the provider and
// renders the response. The credential overrides the configured one if set.
//
// The provider call is not cancelled when ctx is, as requests can't be
// aborted once issued. It is bounded by Options.Timeout only.
func (g *Generator) Generate(ctx context.Context, request lyrics.GenerationRequest, credential string) (*lyrics.GenerationResult, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	name := g.options.Provider
	if strings.TrimSpace(credential) == "" {
		credential = g.options.Credential
	}
	if name.RequiresCredential() && strings.TrimSpace(credential) == "" {
		if !g.options.DemoMode {
			return nil, fmt.Errorf("%w: provider %s requires an API key", llm.ErrMissingCredential, name)
		}
		name = provider.Demo
	}

	if !g.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer g.busy.Store(false)

	id := uuid.NewString()
	log := slog.With(slog.String("id", id), slog.String("provider", string(name)))

	client, err := g.factory.NewClient(ctx, name, credential)
	if err != nil {
		if errors.Is(err, llm.ErrMissingCredential) {
			return nil, err
		}
		log.Error("Failed to create provider client", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	prompt := lyrics.Build(request)
	log.Debug("Generating lyrics", slog.String("prompt", prompt))

	callCtx := context.WithoutCancel(ctx)
	if g.options.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(callCtx, g.options.Timeout)
		defer cancel()
	}

	chatRequest := llm.UserPrompt(prompt)
	chatRequest.MaxTokens = g.options.MaxTokens

	if g.options.Metrics != nil {
		g.options.Metrics.ActiveGenerations.Inc()
		defer g.options.Metrics.ActiveGenerations.Dec()
	}

	start := time.Now()
	res, err := client.Chat(callCtx, chatRequest)
	duration := time.Since(start)
	if err != nil {
		log.Error("Failed to generate lyrics", slog.Any("error", err), slog.Duration("duration", duration))
		g.observe(name, state.OutcomeFailure, duration)
		sentry.CaptureException(err)
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	outcome := state.OutcomeSuccess
	if name == provider.Demo {
		outcome = state.OutcomeDemo
	}
	g.observe(name, outcome, duration)

	model := res.Model
	if model == "" {
		model = g.factory.ModelFor(name)
	}

	log.Info("Generated lyrics", slog.String("model", model), slog.Duration("duration", duration))

	return &lyrics.GenerationResult{
		ID:          id,
		RawText:     res.Message.Content,
		DisplayText: lyrics.Render(res.Message.Content),
		Demo:        name == provider.Demo,
		Provider:    string(name),
		Model:       model,
		Duration:    duration,
	}, nil
}

func (g *Generator) observe(name provider.Name, outcome string, duration time.Duration) {
	if g.options.Metrics != nil {
		g.options.Metrics.ObserveGeneration(string(name), outcome, duration)
	}
}
