package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/epistle-sh/epistle/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status <mailbox> [item...]",
	Short: "Show mailbox counters without selecting it",
	Long: `Query a mailbox for its counters.

Items: MESSAGES, UIDNEXT, UIDVALIDITY, UNSEEN, DELETED, SIZE.
With no items given, all are queried.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if mailboxService == nil {
		return errors.New("mailbox service not configured")
	}

	mailbox := args[0]
	items := args[1:]

	status, err := mailboxService.Status(cmd.Context(), mailbox, items)
	if err != nil {
		return err
	}

	cmd.Printf("%s:\n", status.Name)
	show := func(item domain.StatusItem) bool {
		if len(items) == 0 {
			return true
		}
		for _, name := range items {
			if strings.EqualFold(name, string(item)) {
				return true
			}
		}
		return false
	}

	if show(domain.StatusMessages) {
		cmd.Printf("  messages:    %d\n", status.Exists)
	}
	if show(domain.StatusUnseen) {
		cmd.Printf("  unseen:      %d\n", status.Unseen)
	}
	if show(domain.StatusDeleted) {
		cmd.Printf("  deleted:     %d\n", status.Deleted)
	}
	if show(domain.StatusUIDNext) {
		cmd.Printf("  uidnext:     %d\n", status.UIDNext)
	}
	if show(domain.StatusUIDValidity) {
		cmd.Printf("  uidvalidity: %d\n", status.UIDValidity)
	}
	if show(domain.StatusSize) {
		cmd.Printf("  size:        %d\n", status.Size)
	}
	return nil
}
