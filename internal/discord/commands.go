package discord

import (
	"github.com/AlexGustafsson/lyrebird/internal/lyrics"
	"github.com/bwmarrin/discordgo"
)

// Command is a slash command.
type Command struct {
	Name        string
	Description string
	Options     []Option
	// Action handles an invocation. The returned params are sent as a followup
	// to the deferred response.
	Action func(*Context, *Conn) (*discordgo.WebhookParams, error)
}

// Option is a string option of a command.
type Option struct {
	Name        string
	Description string
	Required    bool
	Choices     []Choice
}

type Choice struct {
	Name  string
	Value string
}

func (c Command) applicationCommand() *discordgo.ApplicationCommand {
	options := make([]*discordgo.ApplicationCommandOption, len(c.Options))
	for i, o := range c.Options {
		options[i] = &discordgo.ApplicationCommandOption{
			Name:        o.Name,
			Description: o.Description,
			Type:        discordgo.ApplicationCommandOptionString,
			Required:    o.Required,
		}
		if len(o.Choices) == 0 {
			options[i].MaxLength = lyrics.MaxFieldLength
		}
		for _, choice := range o.Choices {
			options[i].Choices = append(options[i].Choices, &discordgo.ApplicationCommandOptionChoice{
				Name:  choice.Name,
				Value: choice.Value,
			})
		}
	}

	return &discordgo.ApplicationCommand{
		Name:        c.Name,
		Description: c.Description,
		Options:     options,
	}
}

var commands = []Command{
	{
		Name:        "lyrics",
		Description: "Write song lyrics with a style prompt for Suno",
		Options: []Option{
			{Name: "genre", Description: "Genre, such as K-Pop or City Pop"},
			{Name: "theme", Description: "What the song is about"},
			{Name: "mood", Description: "Mood, such as dreamy or upbeat"},
			{Name: "language", Description: "Language of the lyrics", Choices: languageChoices()},
			{Name: "structure", Description: "Song structure", Choices: structureChoices()},
		},
		Action: LyricsAction,
	},
}

func languageChoices() []Choice {
	choices := make([]Choice, len(lyrics.Languages))
	for i, language := range lyrics.Languages {
		choices[i] = Choice{Name: language.Label(), Value: string(language)}
	}
	return choices
}

func structureChoices() []Choice {
	choices := make([]Choice, len(lyrics.Structures))
	for i, structure := range lyrics.Structures {
		choices[i] = Choice{Name: structure.Label(), Value: string(structure)}
	}
	return choices
}
