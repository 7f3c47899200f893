// winkb CLI entry point
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/batalabs/winkb/internal/app"
	"github.com/batalabs/winkb/internal/config"
	"github.com/batalabs/winkb/internal/provider"
	"github.com/batalabs/winkb/internal/store"
	"github.com/batalabs/winkb/internal/tui"
)

var version = "dev"

func init() {
	if version != "dev" {
		return
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
}

func init() {
	// Query the background color before Bubble Tea owns stdin so the
	// terminal's reply does not land in the input stream.
	_ = lipgloss.HasDarkBackground()
}

var settingsFile bool

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "winkb",
		Short:        "A Windows 11 style on-screen keyboard for the terminal",
		Version:      version,
		SilenceUsage: true,
		RunE:         runKeyboard,
	}
	root.PersistentFlags().BoolVar(&settingsFile, "settings-file", false,
		"keep settings in a JSON file instead of the SQLite store")
	root.AddCommand(newGenerateCmd(), newConfigCmd())
	return root
}

// session bundles the pieces every command needs.
type session struct {
	log      *config.Logger
	settings *config.SettingsStore
	closer   io.Closer
}

func openSession() (*session, error) {
	logger := config.NewLogger()
	if settingsFile {
		return &session{log: logger, settings: config.NewSettingsStore(config.NewFileBlobStore(), logger)}, nil
	}
	st, err := store.OpenStore()
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return &session{log: logger, settings: config.NewSettingsStore(st, logger), closer: st}, nil
}

func (s *session) Close() {
	if s.closer != nil {
		if err := s.closer.Close(); err != nil {
			s.log.Printf("close store: %v", err)
		}
	}
	s.log.Close()
}

func newRegistry(log *config.Logger) *provider.Registry {
	reg := provider.NewRegistry(config.FallbackAPIKey)
	reg.SetLogger(log)
	return reg
}

func runKeyboard(cmd *cobra.Command, args []string) error {
	sess, err := openSession()
	if err != nil {
		return err
	}
	defer sess.Close()
	defer provider.CloseIdleConnections()

	state := app.New(sess.settings, sess.log)
	m := tui.NewModel(state, newRegistry(sess.log), tui.SystemClipboard, sess.log)

	opts := []tea.ProgramOption{tea.WithMouseAllMotion()}
	if state.Settings.WindowLayer == "always-on-top" {
		opts = append(opts, tea.WithAltScreen())
	}

	// Start on a fresh line so the first frame does not overlap the prompt.
	fmt.Println()

	p := tea.NewProgram(m, opts...)
	tui.SetProgram(p)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("winkb failed: %w", err)
	}
	return nil
}

func newGenerateCmd() *cobra.Command {
	var providerID, model, endpoint string
	cmd := &cobra.Command{
		Use:   "generate <prompt...>",
		Short: "Generate a PowerShell command from a description",
		Long: `Generate a PowerShell command from a natural-language description
using the configured AI provider.

Examples:
  winkb generate list all running services
  winkb generate --provider openai --model gpt-4o find large files`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()
			defer provider.CloseIdleConnections()

			cfg := provider.ConfigFromSettings(sess.settings.Load().AI)
			if providerID != "" {
				cfg.Provider = providerID
			}
			if model != "" {
				cfg.Model = model
			}
			if endpoint != "" {
				cfg.Endpoint = endpoint
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := newRegistry(sess.log).GenerateCommand(ctx, strings.Join(args, " "), cfg)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&providerID, "provider", "", "override the configured provider ("+strings.Join(config.KnownProviders, ", ")+")")
	cmd.Flags().StringVar(&model, "model", "", "override the configured model")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "override the configured endpoint")
	return cmd
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config [list|display|input|ai|get <key>|set <key> <value>|reset]",
		Short: "Show or change settings",
		Long: `Show or change settings.

Examples:
  winkb config
  winkb config ai
  winkb config get display.theme
  winkb config set display.theme cyber
  winkb config set ai.api_key sk-...
  winkb config reset`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			s := sess.settings.Load()
			out, err := config.ExecuteConfigAction(sess.settings, &s, args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}
