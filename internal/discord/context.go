package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Context holds the context of a command invocation.
type Context struct {
	context.Context
	event *discordgo.InteractionCreate
}

// String returns a string parameter by key.
func (c *Context) String(key string) (string, bool) {
	options := c.event.ApplicationCommandData().Options

	for _, option := range options {
		if option.Name == key && option.Type == discordgo.ApplicationCommandOptionString {
			return option.StringValue(), true
		}
	}

	return "", false
}

// UserID returns the id of the user that invoked the command.
func (c *Context) UserID() string {
	if c.event.Member != nil && c.event.Member.User != nil {
		return c.event.Member.User.ID
	}
	if c.event.User != nil {
		return c.event.User.ID
	}
	return ""
}
