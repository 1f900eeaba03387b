package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/AlexGustafsson/lyrebird/internal/generator"
	"github.com/AlexGustafsson/lyrebird/internal/llm/provider"
	"github.com/AlexGustafsson/lyrebird/internal/lyrics"
	"github.com/AlexGustafsson/lyrebird/internal/state"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lyrics",
	Short: "Generate song lyrics with a style prompt for Suno",
	Long: `lyrics generates structured song lyrics and a style prompt, ready to be
pasted into Suno or Udio.

At least one of --genre, --theme or --mood is required. Without an API key,
and unless demo mode is disabled, a demo response is printed.

Examples:
  lyrics --genre "City Pop" --theme "dancing under neon signs" --mood dreamy
  lyrics --genre Jazz --language english --structure ballad --output song.txt
  lyrics --provider ollama --model llama3.1 --mood melancholic --raw`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runGenerate,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringP("genre", "g", "", "Genre, such as K-Pop or City Pop")
	flags.StringP("theme", "t", "", "What the song is about")
	flags.StringP("mood", "m", "", "Mood, such as dreamy or upbeat")
	flags.StringP("language", "l", string(lyrics.LanguageKorean), "Language of the lyrics (korean, english)")
	flags.StringP("structure", "s", "", "Song structure (standard, hiphop, ballad, experimental)")
	flags.String("provider", "", "Provider (gemini, openai, anthropic, ollama, demo). Defaults to the configured provider")
	flags.String("model", "", "Model. Defaults to the provider's default model")
	flags.String("api-key", "", "Provider API key. Defaults to LYREBIRD_API_KEY")
	flags.StringP("output", "o", "", "Write to a file instead of stdout")
	flags.Bool("raw", false, "Write the unprocessed model output")
	flags.String("config", os.Getenv("LYREBIRD_CONFIG"), "Path to a YAML config file")
	flags.BoolP("verbose", "v", false, "Enable debug logging")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	genre, _ := flags.GetString("genre")
	theme, _ := flags.GetString("theme")
	mood, _ := flags.GetString("mood")
	language, _ := flags.GetString("language")
	structure, _ := flags.GetString("structure")
	providerName, _ := flags.GetString("provider")
	model, _ := flags.GetString("model")
	apiKey, _ := flags.GetString("api-key")
	output, _ := flags.GetString("output")
	raw, _ := flags.GetBool("raw")
	configPath, _ := flags.GetString("config")
	verbose, _ := flags.GetBool("verbose")

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	config, err := state.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if providerName != "" {
		config.Provider = providerName
	}
	if model != "" {
		config.Model = model
	}

	name, err := provider.ParseName(config.Provider)
	if err != nil {
		return err
	}

	factory, err := config.Factory()
	if err != nil {
		return err
	}

	request, err := lyrics.NewRequest(genre, theme, mood, language, structure)
	if err != nil {
		return errors.New(generator.UserMessage(err))
	}

	lyricsGenerator := generator.New(factory, &generator.Options{
		Provider:   name,
		Credential: config.APIKey,
		DemoMode:   config.DemoMode,
		Timeout:    config.Timeout,
	})

	result, err := lyricsGenerator.Generate(cmd.Context(), request, apiKey)
	if err != nil {
		slog.Debug("Generation failed", slog.Any("error", err))
		return errors.New(generator.UserMessage(err))
	}

	text := lyrics.RenderWith(lyrics.PlainStyle, result.RawText)
	if raw {
		text = result.RawText
	}

	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		file, err := os.Create(output)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}

	if _, err := io.WriteString(w, text+"\n"); err != nil {
		return err
	}

	if result.Demo {
		fmt.Fprintln(cmd.ErrOrStderr(), "This is a demo response. Set --api-key or LYREBIRD_API_KEY to generate lyrics.")
	}

	return nil
}

func main() {
	// A .env file is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error: failed to read .env: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
