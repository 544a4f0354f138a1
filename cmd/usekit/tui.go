package main

import (
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/vango-dev/usekit/internal/demo"
	"github.com/vango-dev/usekit/pkg/host"
)

func tuiCmd(flags *globalFlags) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Run the interactive hook demo",
		Long: `Run the interactive hook demo in the terminal.

Each tab is a small component built from one hook. The terminal stands
in for the browser: mouse drags move the resize bar, and switching away
from the terminal window blurs it (in terminals that report focus).

Examples:
  usekit tui
  usekit tui --log-file=.usekit/tui.log --log-level=debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			// The screen belongs to the TUI; logs go to a file or nowhere.
			var logOut io.Writer = io.Discard
			if logFile != "" {
				if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
					return err
				}
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return err
				}
				defer f.Close()
				logOut = f
			}
			logger := newLogger(cfg.Log, logOut)

			storage, closeStorage, err := openStorage(cmd.Context(), cfg.Storage, logger)
			if err != nil {
				return err
			}
			defer closeStorage()

			env := host.NewEnv()
			env.Storage = storage
			env.Logger = logger

			swrConfig := cfg.SWR.Apply()
			model := demo.New(demo.Options{Env: env, SWR: &swrConfig})
			defer model.Close()

			p := tea.NewProgram(model,
				tea.WithAltScreen(),
				tea.WithMouseCellMotion(),
				tea.WithReportFocus(),
				tea.WithContext(cmd.Context()),
			)
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "Write logs to this file")

	return cmd
}
