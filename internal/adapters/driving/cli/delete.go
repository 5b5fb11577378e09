package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/epistle-sh/epistle/internal/core/domain"
)

var deleteExpunge bool

var deleteCmd = &cobra.Command{
	Use:   "delete <mailbox> <seqset>",
	Short: "Mark messages deleted",
	Long: `Mark a sequence set \Deleted. The messages stay in the mailbox
until an expunge; pass --expunge to remove them immediately.`,
	Args: cobra.ExactArgs(2),
	RunE: runDelete,
}

var expungeCmd = &cobra.Command{
	Use:   "expunge <mailbox>",
	Short: "Permanently remove deleted messages",
	Long:  `Remove all messages marked \Deleted from a mailbox.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runExpunge,
}

var flagCmd = &cobra.Command{
	Use:   "flag <mailbox> <seqset> <action> <flag...>",
	Short: "Change message flags",
	Long: `Apply a flag change to a sequence set.

Actions: +FLAGS (add), -FLAGS (remove), FLAGS (replace).

Examples:
  epistle flag INBOX 1:3 +FLAGS \Seen
  epistle flag INBOX 7 -FLAGS \Flagged`,
	Args: cobra.MinimumNArgs(4),
	RunE: runFlag,
}

func init() {
	deleteCmd.Flags().BoolVar(&deleteExpunge, "expunge", false, "expunge after marking")
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(expungeCmd)
	rootCmd.AddCommand(flagCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	if messageService == nil {
		return errors.New("message service not configured")
	}

	expunged, err := messageService.Delete(cmd.Context(), args[0], args[1], deleteExpunge)
	if err != nil {
		return err
	}

	if !deleteExpunge {
		cmd.Printf("Marked %s deleted in %s.\n", args[1], args[0])
		return nil
	}
	cmd.Printf("Expunged %d message(s) from %s.\n", len(expunged), args[0])
	return nil
}

func runExpunge(cmd *cobra.Command, args []string) error {
	if messageService == nil {
		return errors.New("message service not configured")
	}

	expunged, err := messageService.Expunge(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	cmd.Printf("Expunged %d message(s) from %s.\n", len(expunged), args[0])
	return nil
}

func runFlag(cmd *cobra.Command, args []string) error {
	if messageService == nil {
		return errors.New("message service not configured")
	}

	action := domain.StoreAction(args[2])
	if !action.IsValid() {
		return fmt.Errorf("%w: action %q (want +FLAGS, -FLAGS or FLAGS)", domain.ErrInvalidInput, args[2])
	}

	if err := messageService.Flag(cmd.Context(), args[0], args[1], action, args[3:]...); err != nil {
		return err
	}
	cmd.Printf("Updated flags on %s in %s.\n", args[1], args[0])
	return nil
}
