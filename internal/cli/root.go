// Package cli implements the command-line interface for socialnuke.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kekst/socialnuke/pkg/account"
	"github.com/kekst/socialnuke/pkg/chrome"
	"github.com/kekst/socialnuke/pkg/discord"
	"github.com/kekst/socialnuke/pkg/platform"
	"github.com/kekst/socialnuke/pkg/reddit"
)

var (
	// Global flags
	chromePort     int
	configDir      string
	verbose        bool
	redditClientID string

	// Build info (set via SetVersion)
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

// SetVersion sets the build version info from main.go ldflags.
func SetVersion(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
}

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "socialnuke",
	Short: "Bulk-delete or export your own messages on social platforms",
	Long: `socialnuke purges or dumps your own content on social platforms,
one target at a time, under the platform's rate limits.

Supported platforms:
  discord   DMs and guild messages (token captured from your browser)
  reddit    Your posts and comments (OAuth login)

Prerequisites:
  For Discord login: Chrome/Chromium running with remote debugging enabled
  (chrome --remote-debugging-port=9222) and a logged-in Discord tab.

Quick Start:
  # Log in to a platform
  socialnuke login discord

  # See what you could purge
  socialnuke targets discord

  # Delete your messages in a DM or guild
  socialnuke purge discord

  # Export instead of deleting
  socialnuke dump discord`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().IntVar(&chromePort, "chrome-port", 9222, "Chrome DevTools Protocol port")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", defaultConfigDir(), "Config directory path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&redditClientID, "reddit-client-id", os.Getenv("SOCIALNUKE_REDDIT_CLIENT_ID"), "Reddit installed-app client ID")
}

func defaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/socialnuke"
	}
	return fmt.Sprintf("%s/.config/socialnuke", home)
}

// app bundles what every command needs: the logger, the platform
// registry, and the account store.
type app struct {
	log      *slog.Logger
	registry *platform.Registry
	store    *account.Store
}

func newApp() (*app, error) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	store, err := account.Open(configDir)
	if err != nil {
		return nil, err
	}

	registry := platform.NewRegistry(
		discord.New(discord.WithTokenFlow(discordTokenFlow)),
		reddit.New(reddit.WithTokenFlow(reddit.NewTokenFlow(reddit.AuthConfig{
			ClientID: redditClientID,
		}))),
	)

	return &app{log: log, registry: registry, store: store}, nil
}

// platformArg resolves the platform named by the first positional arg.
func (a *app) platformArg(args []string) (platform.Platform, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("platform argument required (one of: %v)", a.registry.Keys())
	}
	p := a.registry.Get(args[0])
	if p == nil {
		return nil, fmt.Errorf("unknown platform %q (one of: %v)", args[0], a.registry.Keys())
	}
	return p, nil
}

// discordTokenFlow captures a Discord user token by watching the API
// traffic of a login tab in the user's own browser.
func discordTokenFlow(ctx context.Context) (string, error) {
	session, err := chrome.Connect(ctx, &chrome.Config{
		DebugPort: chromePort,
		Timeout:   30 * time.Second,
	})
	if err != nil {
		return "", fmt.Errorf("is Chrome running with --remote-debugging-port=%d? %w", chromePort, err)
	}
	defer session.Close()

	fmt.Println("Opening Discord in your browser. Log in if you are not already;")
	fmt.Println("the token is captured from the first API call the page makes.")

	return session.CaptureToken(ctx, "https://discord.com/login", "https://discord.com/api")
}
