package generator

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/AlexGustafsson/lyrebird/internal/llm"
	"github.com/AlexGustafsson/lyrebird/internal/llm/demo"
	"github.com/AlexGustafsson/lyrebird/internal/llm/provider"
	"github.com/AlexGustafsson/lyrebird/internal/lyrics"
	"github.com/AlexGustafsson/lyrebird/internal/state"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	chat func(context.Context, *llm.ChatRequest) (*llm.ChatResponse, error)
}

func (c *fakeClient) Chat(ctx context.Context, r *llm.ChatRequest) (*llm.ChatResponse, error) {
	return c.chat(ctx, r)
}

type fakeFactory struct {
	mutex       sync.Mutex
	client      llm.Client
	calls       int
	names       []provider.Name
	credentials []string
}

func (f *fakeFactory) NewClient(ctx context.Context, name provider.Name, credential string) (llm.Client, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	f.calls++
	f.names = append(f.names, name)
	f.credentials = append(f.credentials, credential)
	if name == provider.Demo {
		return demo.NewClient(0), nil
	}
	return f.client, nil
}

func (f *fakeFactory) ModelFor(name provider.Name) string {
	return name.DefaultModel()
}

func respondWith(text string) *fakeClient {
	return &fakeClient{chat: func(ctx context.Context, r *llm.ChatRequest) (*llm.ChatResponse, error) {
		return &llm.ChatResponse{Message: llm.Message{Role: llm.RoleAssistant, Content: text}}, nil
	}}
}

func TestGenerate(t *testing.T) {
	var prompt string
	factory := &fakeFactory{client: &fakeClient{chat: func(ctx context.Context, r *llm.ChatRequest) (*llm.ChatResponse, error) {
		prompt = r.Messages[0].Content
		return &llm.ChatResponse{Message: llm.Message{Role: llm.RoleAssistant, Content: "[Verse]\nhello"}, Model: "test-model"}, nil
	}}}

	generator := New(factory, &Options{Provider: provider.OpenAI, Credential: "configured"})

	result, err := generator.Generate(context.Background(), lyrics.GenerationRequest{Genre: "Jazz", Theme: "heartbreak"}, "")
	require.NoError(t, err)

	assert.Equal(t, "[Verse]\nhello", result.RawText)
	assert.Equal(t, lyrics.Render("[Verse]\nhello"), result.DisplayText)
	assert.Equal(t, "test-model", result.Model)
	assert.Equal(t, string(provider.OpenAI), result.Provider)
	assert.False(t, result.Demo)
	assert.NotEmpty(t, result.ID)

	assert.Equal(t, lyrics.Build(lyrics.GenerationRequest{Genre: "Jazz", Theme: "heartbreak"}), prompt)
	assert.Equal(t, []string{"configured"}, factory.credentials)
	assert.False(t, generator.Busy())
}

func TestNewWithoutOptions(t *testing.T) {
	factory := &fakeFactory{client: respondWith("ok")}
	generator := New(factory, nil)

	assert.False(t, generator.DemoAvailable())

	result, err := generator.Generate(context.Background(), lyrics.GenerationRequest{Genre: "Rock"}, "key")
	require.NoError(t, err)
	assert.Equal(t, string(provider.Gemini), result.Provider)
	assert.Equal(t, []provider.Name{provider.Gemini}, factory.names)
}

func TestGenerateRequestCredentialWins(t *testing.T) {
	factory := &fakeFactory{client: respondWith("ok")}
	generator := New(factory, &Options{Provider: provider.Gemini, Credential: "configured"})

	_, err := generator.Generate(context.Background(), lyrics.GenerationRequest{Mood: "calm"}, "user-supplied")
	require.NoError(t, err)

	assert.Equal(t, []string{"user-supplied"}, factory.credentials)
}

func TestGenerateRejectsEmptyRequestBeforeCall(t *testing.T) {
	factory := &fakeFactory{client: respondWith("ok")}
	generator := New(factory, &Options{Provider: provider.Gemini, Credential: "key"})

	result, err := generator.Generate(context.Background(), lyrics.GenerationRequest{Language: lyrics.LanguageEnglish}, "")
	assert.ErrorIs(t, err, lyrics.ErrNoDescription)
	assert.Nil(t, result)
	assert.Equal(t, 0, factory.calls)
	assert.Equal(t, MessageNoDescription, UserMessage(err))
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
}

func TestGenerateMissingCredential(t *testing.T) {
	factory := &fakeFactory{client: respondWith("ok")}
	generator := New(factory, &Options{Provider: provider.Gemini, DemoMode: false})

	_, err := generator.Generate(context.Background(), lyrics.GenerationRequest{Genre: "Rock"}, "")
	assert.ErrorIs(t, err, llm.ErrMissingCredential)
	assert.Equal(t, 0, factory.calls)
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
}

func TestGenerateDemoMode(t *testing.T) {
	factory := &fakeFactory{client: respondWith("should not be used")}
	metrics := state.NewMetrics()
	generator := New(factory, &Options{Provider: provider.Gemini, DemoMode: true, Metrics: metrics})

	assert.True(t, generator.DemoAvailable())

	result, err := generator.Generate(context.Background(), lyrics.GenerationRequest{Genre: "City Pop"}, "")
	require.NoError(t, err)

	assert.True(t, result.Demo)
	assert.Equal(t, demo.Fixture, result.RawText)
	assert.Equal(t, demo.Model, result.Model)
	assert.Equal(t, []provider.Name{provider.Demo}, factory.names)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Generations.WithLabelValues(string(provider.Demo), state.OutcomeDemo)))
}

func TestGenerateProviderFailure(t *testing.T) {
	factory := &fakeFactory{client: &fakeClient{chat: func(ctx context.Context, r *llm.ChatRequest) (*llm.ChatResponse, error) {
		return nil, errors.New("connection refused")
	}}}
	metrics := state.NewMetrics()
	generator := New(factory, &Options{Provider: provider.Gemini, Credential: "key", Metrics: metrics})

	request, err := lyrics.NewRequest("K-Pop", "night in the city", "dreamy", "", "Standard")
	require.NoError(t, err)

	result, err := generator.Generate(context.Background(), request, "")
	assert.ErrorIs(t, err, ErrGeneration)
	assert.Nil(t, result)
	assert.Equal(t, MessageGeneration, UserMessage(err))
	assert.Equal(t, http.StatusBadGateway, StatusCode(err))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Generations.WithLabelValues(string(provider.Gemini), state.OutcomeFailure)))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.ActiveGenerations))
	assert.False(t, generator.Busy())
}

func TestGenerateRejectsConcurrentRequest(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	factory := &fakeFactory{client: &fakeClient{chat: func(ctx context.Context, r *llm.ChatRequest) (*llm.ChatResponse, error) {
		close(started)
		<-release
		return &llm.ChatResponse{Message: llm.Message{Content: "done"}}, nil
	}}}
	generator := New(factory, &Options{Provider: provider.Gemini, Credential: "key"})

	done := make(chan error, 1)
	go func() {
		_, err := generator.Generate(context.Background(), lyrics.GenerationRequest{Genre: "Jazz"}, "")
		done <- err
	}()

	<-started
	assert.True(t, generator.Busy())

	_, err := generator.Generate(context.Background(), lyrics.GenerationRequest{Genre: "Rock"}, "")
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, http.StatusTooManyRequests, StatusCode(err))

	close(release)
	require.NoError(t, <-done)
	assert.False(t, generator.Busy())

	// The flag is released, so new requests are accepted
	factory.client = respondWith("again")
	_, err = generator.Generate(context.Background(), lyrics.GenerationRequest{Genre: "Rock"}, "")
	assert.NoError(t, err)
}

func TestGenerateIsNotCancelledByCaller(t *testing.T) {
	factory := &fakeFactory{client: &fakeClient{chat: func(ctx context.Context, r *llm.ChatRequest) (*llm.ChatResponse, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(50 * time.Millisecond):
			return &llm.ChatResponse{Message: llm.Message{Content: "finished"}}, nil
		}
	}}}
	generator := New(factory, &Options{Provider: provider.Gemini, Credential: "key"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := generator.Generate(ctx, lyrics.GenerationRequest{Genre: "Jazz"}, "")
	require.NoError(t, err)
	assert.Equal(t, "finished", result.RawText)
}

func TestGenerateTimeout(t *testing.T) {
	factory := &fakeFactory{client: &fakeClient{chat: func(ctx context.Context, r *llm.ChatRequest) (*llm.ChatResponse, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}}
	generator := New(factory, &Options{Provider: provider.Gemini, Credential: "key", Timeout: 10 * time.Millisecond})

	_, err := generator.Generate(context.Background(), lyrics.GenerationRequest{Genre: "Jazz"}, "")
	assert.ErrorIs(t, err, ErrGeneration)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
