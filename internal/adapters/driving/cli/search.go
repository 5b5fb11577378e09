package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <mailbox> [criteria...]",
	Short: "Search a mailbox",
	Long: `Search a mailbox with IMAP SEARCH criteria and print the
matching sequence numbers.

Examples:
  epistle search INBOX UNSEEN
  epistle search INBOX FROM alice@example.com SINCE 1-Jan-2026
  epistle search Archive SUBJECT invoice

With no criteria, ALL is used.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if messageService == nil {
		return errors.New("message service not configured")
	}

	mailbox := args[0]
	criteria := args[1:]

	nums, err := messageService.Search(cmd.Context(), mailbox, criteria...)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(nums) == 0 {
		cmd.Println("No matches.")
		return nil
	}

	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = fmt.Sprintf("%d", n)
	}
	cmd.Printf("%d matches: %s\n", len(nums), strings.Join(parts, " "))
	return nil
}
