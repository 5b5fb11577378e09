package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <mailbox>",
	Short: "Request a mailbox checkpoint",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Connect, authenticate and report",
	Long: `Connect to the configured server, authenticate and run a NOOP.
Useful to verify the config before anything else.`,
	Args: cobra.NoArgs,
	RunE: runPing,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(pingCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	if mailboxService == nil {
		return errors.New("mailbox service not configured")
	}

	if _, err := mailboxService.Select(cmd.Context(), args[0]); err != nil {
		return err
	}
	if err := mailboxService.Check(cmd.Context()); err != nil {
		return err
	}
	cmd.Printf("Checkpoint of %s requested.\n", args[0])
	return nil
}

func runPing(cmd *cobra.Command, _ []string) error {
	if sessionManager == nil {
		return errors.New("session manager not configured")
	}

	session, err := sessionManager.Get(cmd.Context())
	if err != nil {
		return err
	}
	if err := session.Noop(cmd.Context()); err != nil {
		return err
	}
	cmd.Println("Connection OK.")
	return nil
}
