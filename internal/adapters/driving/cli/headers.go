package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/epistle-sh/epistle/internal/core/domain"
)

var headersCached bool

var headersCmd = &cobra.Command{
	Use:   "headers <mailbox> [seqset]",
	Short: "List message headers",
	Long: `Fetch and list decoded message headers for a sequence set.

The sequence set uses IMAP syntax: "3", "1:10", "1,5,9" or "1:*".
With no sequence set, 1:* is fetched. Fetched headers are stored in
the local cache; --cached lists the cache without connecting.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runHeaders,
}

func init() {
	headersCmd.Flags().BoolVar(&headersCached, "cached", false, "list locally cached headers only")
	rootCmd.AddCommand(headersCmd)
}

func runHeaders(cmd *cobra.Command, args []string) error {
	if messageService == nil {
		return errors.New("message service not configured")
	}

	mailbox := args[0]

	if headersCached {
		cached, err := messageService.CachedHeaders(cmd.Context(), mailbox)
		if err != nil {
			return err
		}
		if len(cached) == 0 {
			cmd.Println("Cache is empty.")
			return nil
		}
		for _, h := range cached {
			printEnvelope(cmd, h.Envelope)
		}
		return nil
	}

	seqSet := "1:*"
	if len(args) == 2 {
		seqSet = args[1]
	}

	envelopes, err := messageService.Headers(cmd.Context(), mailbox, seqSet)
	if err != nil {
		return err
	}
	if len(envelopes) == 0 {
		cmd.Println("No messages.")
		return nil
	}
	for _, envelope := range envelopes {
		printEnvelope(cmd, envelope)
	}
	return nil
}

func printEnvelope(cmd *cobra.Command, e domain.Envelope) {
	marker := " "
	if !e.HasFlag(domain.FlagSeen) {
		marker = "N"
	}
	if e.HasFlag(domain.FlagDeleted) {
		marker = "D"
	}
	subject := e.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	cmd.Printf("%s %4d  %-30s  %s\n", marker, e.SeqNum, truncate(e.From, 30), subject)
}

// truncate shortens s to max runes, marking the cut with an ellipsis.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max-3])) + "..."
}
