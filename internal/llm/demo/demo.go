// Package demo implements an llm.Client that always responds with a fixed
// fixture. It is used when no provider credential is available.
package demo

import (
	"context"
	"time"

	"github.com/AlexGustafsson/lyrebird/internal/llm"
)

var _ llm.Client = (*Client)(nil)

// Model is the model name reported by the demo client.
const Model = "demo"

// Fixture is the response of the demo client.
const Fixture = `**[Style Prompt]**
Upbeat City Pop, Female Vocals, Groovy Bassline, 80s Retro Vibe, 120 BPM

**[Lyrics]**
[Intro]
(Synthesizer Solo)
Yeah...
Neon lights calling...

[Verse 1]
어두운 골목길을 지나
화려한 불빛 속으로 dive
오늘 밤은 아무 생각 마
Just feel the rhythm, feel the vibe

[Pre-Chorus]
심장이 뛰는 소리가 들려? (Can you hear it?)
멈출 수 없는 이 기분 (So high)

[Chorus]
춤을 춰, 도시의 별들 아래
We keep on dancing through the night
이 순간이 영원하길 바래
Shining so bright, holding you tight

[Interlude]
(Saxophone Solo)

[Verse 2]
차가운 바람도 우릴 못 막아
네 손을 잡고 어디든 갈게
복잡한 세상은 잠시 잊어
음악 속에 우리 둘만 남게

[Chorus]
춤을 춰, 도시의 별들 아래
We keep on dancing through the night
이 순간이 영원하길 바래
Shining so bright, holding you tight

[Bridge]
시간이 멈춘 듯해
새벽이 올 때까지
Don't stop the music
Oh yeah!

[Outro]
Fade out...
Just you and me...
(End)`

type Client struct {
	delay time.Duration
}

// NewClient returns a client that responds with Fixture after delay.
func NewClient(delay time.Duration) *Client {
	return &Client{delay: delay}
}

// Chat implements llm.Client.
func (c *Client) Chat(ctx context.Context, r *llm.ChatRequest) (*llm.ChatResponse, error) {
	if c.delay > 0 {
		timer := time.NewTimer(c.delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return &llm.ChatResponse{
		Message: llm.Message{
			Role:    llm.RoleAssistant,
			Content: Fixture,
		},
		Model: Model,
	}, nil
}
