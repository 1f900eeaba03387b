package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlexGustafsson/lyrebird/internal/discord"
	"github.com/AlexGustafsson/lyrebird/internal/generator"
	"github.com/AlexGustafsson/lyrebird/internal/llm/provider"
	"github.com/AlexGustafsson/lyrebird/internal/state"
	"github.com/AlexGustafsson/lyrebird/internal/web"
	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func run(ctx context.Context, config *state.Config) error {
	name, err := provider.ParseName(config.Provider)
	if err != nil {
		return err
	}

	factory, err := config.Factory()
	if err != nil {
		return err
	}

	metrics := state.NewMetrics()

	lyricsGenerator := generator.New(factory, &generator.Options{
		Provider:   name,
		Credential: config.APIKey,
		DemoMode:   config.DemoMode,
		Timeout:    config.Timeout,
		Metrics:    metrics,
	})

	var routerOptions web.Options
	if config.Prometheus.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			metrics,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		routerOptions.Metrics = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}

	if config.DiscordBotToken != "" {
		level, _ := config.Level()
		conn, err := discord.Dial(config.DiscordBotToken, lyricsGenerator, &discord.Options{Debug: level == slog.LevelDebug})
		if err != nil {
			slog.Error("Failed to start Discord bot", slog.Any("error", err))
			return err
		}
		defer conn.Close()
	}

	server := &http.Server{
		Addr:              config.HTTP.Address,
		Handler:           web.NewRouter(lyricsGenerator, &routerOptions),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("Serving HTTP", slog.String("address", server.Addr), slog.String("provider", string(name)), slog.Bool("demoMode", config.DemoMode))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		slog.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Graceful shutdown failed, forcing close", slog.Any("error", err))
			server.Close()
			return err
		}
	}

	return nil
}

var rootCmd = &cobra.Command{
	Use:   "lyrebird",
	Short: "Serve the lyrics generator over HTTP and Discord",
	Long: `lyrebird serves the lyrics generator web page and JSON API. The Discord
bot is started when a bot token is configured.

Configuration is read from the YAML file given by --config, if any, and from
LYREBIRD_* environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.Flags().String("config", os.Getenv("LYREBIRD_CONFIG"), "Path to a YAML config file")
}

func runServe(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	config, err := state.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level, err := config.Level()
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	if config.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              config.SentryDSN,
			AttachStacktrace: true,
			BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
				// Never forward user credentials
				if event.Request != nil {
					delete(event.Request.Headers, http.CanonicalHeaderKey(web.CredentialHeader))
					event.Request.Data = ""
				}
				return event
			},
		})
		if err != nil {
			return fmt.Errorf("failed to initialize sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	if err := run(cmd.Context(), config); err != nil {
		sentry.CaptureException(err)
		return err
	}

	return nil
}

func main() {
	// A .env file is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
		os.Exit(1)
	}

	// Exit on SIGINT or SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		abort := make(chan os.Signal, 1)
		signal.Notify(abort, syscall.SIGINT, syscall.SIGTERM)
		caught := 0
		for {
			<-abort
			caught++
			if caught == 1 {
				slog.Info("Caught signal, exiting gracefully")
				cancel()
			} else {
				slog.Info("Caught signal, exiting now")
				os.Exit(1)
			}
		}
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("Program was unsuccessful", slog.Any("error", err))
		os.Exit(1)
	}
}
