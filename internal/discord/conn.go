package discord

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AlexGustafsson/lyrebird/internal/generator"
	"github.com/bwmarrin/discordgo"
)

// commandTimeout bounds a command invocation. Interaction tokens are valid
// for 15 minutes.
const commandTimeout = 10 * time.Minute

// Conn is a Discord bot connection.
type Conn struct {
	generator *generator.Generator
	discord   *discordgo.Session

	commands map[string]Command
}

type Options struct {
	// Debug enables discordgo's debug logging.
	Debug bool
}

// Dial connects to Discord. Returns the open connection or an error if
// connecting fails.
func Dial(token string, generator *generator.Generator, options *Options) (*Conn, error) {
	if options == nil {
		options = &Options{}
	}

	conn := &Conn{
		generator: generator,

		commands: make(map[string]Command),
	}

	var err error
	conn.discord, err = discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}

	if options.Debug {
		conn.discord.LogLevel = discordgo.LogDebug
	}

	conn.discord.Identify.Intents = discordgo.IntentGuilds

	if err := conn.discord.Open(); err != nil {
		return nil, err
	}

	if err := conn.registerCommands(); err != nil {
		conn.discord.Close()
		return nil, err
	}
	conn.pruneCommands()

	conn.discord.AddHandler(conn.handleCommandInvocation)

	slog.Info("Bot started")
	return conn, nil
}

// registerCommands registers all commands globally.
func (c *Conn) registerCommands() error {
	applicationID := c.discord.State.User.ID
	for _, command := range commands {
		slog.Debug("Registering command", slog.String("name", command.Name))
		if _, err := c.discord.ApplicationCommandCreate(applicationID, "", command.applicationCommand()); err != nil {
			return fmt.Errorf("failed to register command %s: %w", command.Name, err)
		}
		c.commands[command.Name] = command
	}
	return nil
}

// pruneCommands removes registered commands that are no longer served, such
// as those of earlier versions. Failures are logged and otherwise ignored.
func (c *Conn) pruneCommands() {
	registered, err := c.discord.ApplicationCommands(c.discord.State.Application.ID, "")
	if err != nil {
		slog.Warn("Failed to list application commands, not pruning", slog.Any("error", err))
		return
	}

	for _, command := range registered {
		if _, ok := c.commands[command.Name]; ok {
			continue
		}

		slog.Debug("Removing stale command", slog.String("name", command.Name), slog.String("id", command.ID))
		if err := c.discord.ApplicationCommandDelete(command.ApplicationID, "", command.ID); err != nil {
			slog.Warn("Failed to remove stale command", slog.String("name", command.Name), slog.Any("error", err))
		}
	}
}

// handleCommandInvocation handles a command being invocated.
func (c *Conn) handleCommandInvocation(session *discordgo.Session, event *discordgo.InteractionCreate) {
	if event.Type != discordgo.InteractionApplicationCommand {
		return
	}

	commandName := event.ApplicationCommandData().Name
	slog.Debug("Got command request", slog.String("name", commandName))

	command, ok := c.commands[commandName]
	if !ok {
		slog.Warn("Got command interaction for unknown command", slog.String("name", commandName))
		return
	}

	// Acknowledge the command immediately. This will respond to the action that
	// the bot is "thinking". The reply is sent as a followup once the command
	// succeeds or fails
	if err := session.InteractionRespond(event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		slog.Error("Failed to acknowledge command", slog.Any("error", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	invocation := &Context{
		Context: ctx,
		event:   event,
	}

	reply, err := command.Action(invocation, c)
	if err != nil {
		slog.Error("Failed to handle command", slog.String("name", commandName), slog.String("user", invocation.UserID()), slog.Any("error", err))
		reply = &discordgo.WebhookParams{
			Content: "An error occured. Try again in a little while.",
		}
	}

	if _, err := session.FollowupMessageCreate(event.Interaction, false, reply); err != nil {
		slog.Error("Failed to send reply", slog.Any("error", err))
	}
}

// Generator returns the generator serving commands.
func (c *Conn) Generator() *generator.Generator {
	return c.generator
}

// Close closes the connection.
func (c *Conn) Close() error {
	return c.discord.Close()
}
