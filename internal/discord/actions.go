package discord

import (
	"strings"
	"unicode/utf8"

	"github.com/AlexGustafsson/lyrebird/internal/generator"
	"github.com/AlexGustafsson/lyrebird/internal/lyrics"
	"github.com/bwmarrin/discordgo"
)

// maxMessageLength is the maximum number of characters of a Discord message.
const maxMessageLength = 2000

const (
	demoNotice       = "-# This is a demo response. The bot has no API key configured."
	attachmentNotice = "The lyrics are too long for a message, so here they are as a file."
)

func LyricsAction(ctx *Context, conn *Conn) (*discordgo.WebhookParams, error) {
	genre, _ := ctx.String("genre")
	theme, _ := ctx.String("theme")
	mood, _ := ctx.String("mood")
	language, _ := ctx.String("language")
	structure, _ := ctx.String("structure")

	request, err := lyrics.NewRequest(genre, theme, mood, language, structure)
	if err != nil {
		return &discordgo.WebhookParams{Content: generator.UserMessage(err)}, nil
	}

	result, err := conn.Generator().Generate(ctx, request, "")
	if err != nil {
		return &discordgo.WebhookParams{Content: generator.UserMessage(err)}, nil
	}

	return lyricsReply(result, request.Language), nil
}

// lyricsReply formats a result as a message, or as a file attachment if it
// doesn't fit in one.
func lyricsReply(result *lyrics.GenerationResult, language lyrics.Language) *discordgo.WebhookParams {
	content := lyrics.RenderWith(lyrics.MarkdownStyle, result.RawText)
	if result.Demo {
		content = demoNotice + "\n\n" + content
	}

	if utf8.RuneCountInString(content) <= maxMessageLength {
		return &discordgo.WebhookParams{Content: content}
	}

	params := &discordgo.WebhookParams{
		Content: attachmentNotice,
		Files: []*discordgo.File{
			{
				Name:        lyrics.Filename(language),
				ContentType: "text/plain; charset=utf-8",
				Reader:      strings.NewReader(lyrics.RenderWith(lyrics.PlainStyle, result.RawText)),
			},
		},
	}
	if result.Demo {
		params.Content = demoNotice + "\n\n" + params.Content
	}
	return params
}
