// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/autobrr/gazelle/internal/buildinfo"
	"github.com/autobrr/gazelle/internal/config"
	"github.com/autobrr/gazelle/internal/services/gazelle"
)

func main() {
	config.InitDefaultLogger(buildinfo.Version)

	rootCmd := NewRootCommand()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// globalFlags are shared by every command that loads the configuration.
type globalFlags struct {
	configDir string
	dataDir   string
}

func NewRootCommand() *cobra.Command {
	var flags globalFlags

	var rootCmd = &cobra.Command{
		Use:   "gazelle",
		Short: "Authenticated search requests for Gazelle trackers",
		Long: `gazelle - logs in to a Gazelle based private tracker, caches the
session cookies and builds (or runs) ajax.php browse requests.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Version = buildinfo.Version

	rootCmd.PersistentFlags().StringVar(&flags.configDir, "config-dir", "",
		"config directory or file path (default is OS-specific: ~/.config/gazelle/ or %APPDATA%\\gazelle\\)")
	rootCmd.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "",
		"data directory for the cookie database (default is next to config file)")

	rootCmd.AddCommand(RunSearchCommand(&flags))
	rootCmd.AddCommand(RunRecentCommand(&flags))
	rootCmd.AddCommand(RunLoginCommand(&flags))
	rootCmd.AddCommand(RunLogoutCommand(&flags))
	rootCmd.AddCommand(RunStatusCommand(&flags))
	rootCmd.AddCommand(RunGenerateConfigCommand(&flags))
	rootCmd.AddCommand(RunVersionCommand())

	return rootCmd
}

// outputFlags controls how chains and pages are printed.
type outputFlags struct {
	format      string
	execute     bool
	showCookies bool
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.format, "output", "o", "text", "output format: text, json or yaml")
	cmd.Flags().BoolVar(&o.execute, "execute", false, "run the requests and print the raw responses")
	cmd.Flags().BoolVar(&o.showCookies, "show-cookies", false, "print session cookie values instead of redacting them")
}

func RunSearchCommand(flags *globalFlags) *cobra.Command {
	var (
		out    outputFlags
		kind   string
		term   string
		cats   []int
		imdbID string
		artist string
		label  string
		album  string
	)

	command := &cobra.Command{
		Use:   "search",
		Short: "Build or run a browse request for search criteria",
		Example: `  gazelle search --type movie --term "blade runner" --imdb tt0083658
  gazelle search --type music --artist "Aphex Twin" --cat 3000 --execute -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(out.format)
			if err != nil {
				return err
			}

			criteria, err := buildCriteria(kind, gazelle.BaseCriteria{SearchTerm: term, Categories: cats}, imdbID, artist, label, album)
			if err != nil {
				return err
			}

			app, err := newApplication(cmd.Context(), flags, false)
			if err != nil {
				return err
			}
			defer app.Close()

			if out.execute {
				pages, err := app.indexer.Search(cmd.Context(), criteria)
				if err != nil {
					return err
				}
				return renderPages(cmd.OutOrStdout(), format, pages, out.showCookies)
			}

			chain, err := app.indexer.Generator().GetSearchRequests(cmd.Context(), criteria)
			if err != nil {
				return err
			}
			return renderChain(cmd.OutOrStdout(), format, chain, out.showCookies)
		},
	}

	out.register(command)
	command.Flags().StringVar(&kind, "type", "basic", "criteria type: movie, tv, music, book or basic")
	command.Flags().StringVar(&term, "term", "", "free text search term")
	command.Flags().IntSliceVar(&cats, "cat", nil, "Torznab category ids (repeatable)")
	command.Flags().StringVar(&imdbID, "imdb", "", "IMDb id (movie and tv)")
	command.Flags().StringVar(&artist, "artist", "", "artist name (music)")
	command.Flags().StringVar(&label, "label", "", "record label (music)")
	command.Flags().StringVar(&album, "album", "", "album or group name (music)")

	return command
}

func RunRecentCommand(flags *globalFlags) *cobra.Command {
	var out outputFlags

	command := &cobra.Command{
		Use:   "recent",
		Short: "Build or run the latest uploads request",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(out.format)
			if err != nil {
				return err
			}

			app, err := newApplication(cmd.Context(), flags, false)
			if err != nil {
				return err
			}
			defer app.Close()

			if out.execute {
				pages, err := app.indexer.Recent(cmd.Context())
				if err != nil {
					return err
				}
				return renderPages(cmd.OutOrStdout(), format, pages, out.showCookies)
			}

			chain, err := app.indexer.Generator().GetRecentRequests(cmd.Context())
			if err != nil {
				return err
			}
			return renderChain(cmd.OutOrStdout(), format, chain, out.showCookies)
		},
	}

	out.register(command)

	return command
}

func RunLoginCommand(flags *globalFlags) *cobra.Command {
	command := &cobra.Command{
		Use:   "login",
		Short: "Start a fresh tracker session",
		Long: `Discard any cached session and log in again.

The password is read from the configuration, GAZELLE__PASSWORD or
GAZELLE__PASSWORD_FILE. When none is set you are prompted for it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(cmd.Context(), flags, true)
			if err != nil {
				return err
			}
			defer app.Close()

			session := app.indexer.Session()
			if err := session.Reset(cmd.Context()); err != nil {
				return err
			}
			if _, err := session.Authenticate(cmd.Context()); err != nil {
				return err
			}

			record, err := app.cookies.Get(cmd.Context(), app.indexer.Name())
			if err != nil {
				return err
			}

			cmd.Printf("Logged in to %s\n", app.indexer.Name())
			if record != nil && record.ExpiresAt != nil {
				cmd.Printf("Session cookies: %s (expires %s)\n", strings.Join(record.Cookies.Names(), ", "), record.ExpiresAt.Format(time.RFC3339))
			}
			return nil
		},
	}

	return command
}

func RunLogoutCommand(flags *globalFlags) *cobra.Command {
	command := &cobra.Command{
		Use:   "logout",
		Short: "Forget the cached tracker session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			db, cookies, err := openCookieStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			name, err := indexerName(cfg.Config)
			if err != nil {
				return err
			}

			if err := cookies.Delete(cmd.Context(), name); err != nil {
				return err
			}

			cmd.Printf("Session for %s cleared\n", name)
			return nil
		},
	}

	return command
}

func RunStatusCommand(flags *globalFlags) *cobra.Command {
	var format string

	command := &cobra.Command{
		Use:   "status",
		Short: "Show cached tracker sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := parseOutputFormat(format)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			db, cookies, err := openCookieStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			records, err := cookies.List(cmd.Context())
			if err != nil {
				return err
			}

			return renderStatus(cmd.OutOrStdout(), outFormat, records, time.Now())
		},
	}

	command.Flags().StringVarP(&format, "output", "o", "text", "output format: text, json or yaml")

	return command
}

func RunVersionCommand() *cobra.Command {
	var command = &cobra.Command{
		Use:   "version",
		Short: "Print the version of gazelle",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), buildinfo.Info())
		},
	}

	return command
}

func RunGenerateConfigCommand(flags *globalFlags) *cobra.Command {
	command := &cobra.Command{
		Use:   "generate-config",
		Short: "Generate a default configuration file",
		Long: `Generate a default configuration file.

If no --config-dir is specified, uses the OS-specific default location:
- Linux/macOS: ~/.config/gazelle/config.toml
- Windows: %APPDATA%\gazelle\config.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir := flags.configDir
			var configPath string
			if configDir != "" {
				if strings.HasSuffix(strings.ToLower(configDir), ".toml") {
					configPath = configDir
				} else if info, err := os.Stat(configDir); err == nil && !info.IsDir() {
					configPath = configDir
				} else {
					configPath = filepath.Join(configDir, "config.toml")
				}
			} else {
				configPath = filepath.Join(config.GetDefaultConfigDir(), "config.toml")
			}

			if _, err := os.Stat(configPath); err == nil {
				cmd.Printf("Configuration file already exists at: %s\n", configPath)
				cmd.Println("Skipping generation to avoid overwriting existing configuration.")
				return nil
			}

			if err := config.WriteDefaultConfig(configPath); err != nil {
				return fmt.Errorf("failed to create configuration file: %w", err)
			}

			cmd.Printf("Configuration file created successfully at: %s\n", configPath)
			return nil
		},
	}

	return command
}

func readPassword(prompt string) (string, error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprint(os.Stderr, prompt)
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(password), nil
	}

	fmt.Fprint(os.Stderr, prompt)
	var password string
	if _, err := fmt.Scanln(&password); err != nil {
		return "", fmt.Errorf("failed to read password from stdin: %w", err)
	}
	return password, nil
}
