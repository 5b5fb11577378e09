package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

var (
	mailboxesRef     string
	mailboxesPattern string
	mailboxesAll     bool
)

var mailboxesCmd = &cobra.Command{
	Use:   "mailboxes",
	Short: "List mailboxes on the server",
	Long: `List the mailboxes on the server, sorted by name.

Mailboxes marked \Noselect cannot hold messages and are skipped
unless --all is given.`,
	Args: cobra.NoArgs,
	RunE: runMailboxes,
}

func init() {
	mailboxesCmd.Flags().StringVar(&mailboxesRef, "ref", "", "list reference (folder prefix)")
	mailboxesCmd.Flags().StringVarP(&mailboxesPattern, "pattern", "p", "*", "mailbox name pattern")
	mailboxesCmd.Flags().BoolVarP(&mailboxesAll, "all", "a", false, "include non-selectable mailboxes")
	rootCmd.AddCommand(mailboxesCmd)
}

func runMailboxes(cmd *cobra.Command, _ []string) error {
	if mailboxService == nil {
		return errors.New("mailbox service not configured")
	}

	mailboxes, err := mailboxService.List(cmd.Context(), mailboxesRef, mailboxesPattern)
	if err != nil {
		return err
	}

	if len(mailboxes) == 0 {
		cmd.Println("No mailboxes found.")
		return nil
	}

	for _, mb := range mailboxes {
		if !mailboxesAll && !mb.Selectable() {
			continue
		}
		if len(mb.Attributes) > 0 {
			cmd.Printf("%s  (%s)\n", mb.Name, strings.Join(mb.Attributes, " "))
		} else {
			cmd.Println(mb.Name)
		}
	}
	return nil
}
