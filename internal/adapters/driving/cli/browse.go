package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/epistle-sh/epistle/internal/adapters/driving/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse mail in the terminal UI",
	Long: `Launch the interactive terminal user interface.

Controls:
  ↑/k, ↓/j - Move
  Enter    - Open mailbox / message
  Esc      - Back
  d        - Mark message deleted
  r        - Refresh
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	// Recover to get a stack trace instead of a corrupted terminal.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if mailboxService == nil || messageService == nil {
		return errors.New("services not configured")
	}
	defer watchConfig()()

	app, err := tui.NewApp(&tui.Ports{
		Mailboxes: mailboxService,
		Messages:  messageService,
	})
	if err != nil {
		return err
	}
	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
