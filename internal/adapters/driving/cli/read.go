package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/epistle-sh/epistle/internal/core/domain"
)

var readCmd = &cobra.Command{
	Use:   "read <mailbox> <seqnum>",
	Short: "Read one message",
	Long: `Fetch one message, decode its headers and print the plain-text
body. For multipart messages the text/plain part is preferred; an
HTML-only message is reduced to its text.`,
	Args: cobra.ExactArgs(2),
	RunE: runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)
}

func runRead(cmd *cobra.Command, args []string) error {
	if messageService == nil {
		return errors.New("message service not configured")
	}

	seqNum, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil || seqNum == 0 {
		return fmt.Errorf("%w: sequence number %q", domain.ErrInvalidInput, args[1])
	}

	rendered, err := messageService.Read(cmd.Context(), args[0], uint32(seqNum))
	if err != nil {
		return err
	}

	e := rendered.Envelope
	cmd.Printf("From:    %s\n", e.From)
	cmd.Printf("To:      %s\n", e.To)
	cmd.Printf("Date:    %s\n", e.Date)
	cmd.Printf("Subject: %s\n", e.Subject)
	if rendered.FromHTML {
		cmd.Println("(body extracted from HTML)")
	}
	cmd.Println()
	cmd.Println(rendered.Body)
	return nil
}
