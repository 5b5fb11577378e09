package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/epistle-sh/epistle/internal/core/domain"
)

var interactCmd = &cobra.Command{
	Use:   "interact",
	Short: "Interactive command prompt",
	Long: `Open a prompt that runs mail commands against one session,
keeping the connection and mailbox selection between commands.

Type "help" at the prompt for the command list.`,
	Args: cobra.NoArgs,
	RunE: runInteract,
}

func init() {
	rootCmd.AddCommand(interactCmd)
}

const interactHelp = `Commands:
  mailboxes                 list mailboxes
  select <mailbox>          select a mailbox
  status <mailbox>          show mailbox counters
  search <criteria...>      search the selected mailbox
  headers <seqset>          list headers in the selected mailbox
  read <seqnum>             read one message
  flag <seqset> <action> <flag...>
                            change flags (+FLAGS, -FLAGS or FLAGS)
  delete <seqset>           mark messages deleted
  expunge                   remove deleted messages
  check                     request a checkpoint
  help                      show this help
  quit                      leave the prompt`

func runInteract(cmd *cobra.Command, _ []string) error {
	if messageService == nil || mailboxService == nil {
		return errors.New("services not configured")
	}
	defer watchConfig()()

	scanner := bufio.NewScanner(cmd.InOrStdin())
	selected := ""

	cmd.Println(`Type "help" for commands, "quit" to leave.`)
	for {
		cmd.Print("epistle> ")
		if !scanner.Scan() {
			cmd.Println()
			return scanner.Err()
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		verb, args := strings.ToLower(fields[0]), fields[1:]

		if verb == "quit" || verb == "exit" {
			return nil
		}

		done, err := runInteractCommand(cmd, verb, args, &selected)
		if err != nil {
			cmd.Printf("error: %v\n", err)
		}
		if done {
			return nil
		}
	}
}

//nolint:gocyclo // One case per prompt command.
func runInteractCommand(cmd *cobra.Command, verb string, args []string, selected *string) (bool, error) {
	ctx := cmd.Context()

	needMailbox := func() error {
		if *selected == "" {
			return domain.ErrNoMailboxSelected
		}
		return nil
	}

	switch verb {
	case "help":
		cmd.Println(interactHelp)

	case "mailboxes", "list":
		mailboxes, err := mailboxService.List(ctx, "", "*")
		if err != nil {
			return false, err
		}
		for _, mb := range mailboxes {
			cmd.Println(mb.Name)
		}

	case "select":
		if len(args) != 1 {
			return false, fmt.Errorf("%w: usage: select <mailbox>", domain.ErrInvalidInput)
		}
		status, err := mailboxService.Select(ctx, args[0])
		if err != nil {
			return false, err
		}
		*selected = args[0]
		cmd.Printf("%s selected, %d message(s)\n", status.Name, status.Exists)

	case "status":
		if len(args) != 1 {
			return false, fmt.Errorf("%w: usage: status <mailbox>", domain.ErrInvalidInput)
		}
		return false, runStatus(cmd, args)

	case "search":
		if err := needMailbox(); err != nil {
			return false, err
		}
		return false, runSearch(cmd, append([]string{*selected}, args...))

	case "headers":
		if err := needMailbox(); err != nil {
			return false, err
		}
		seqSet := "1:*"
		if len(args) > 0 {
			seqSet = args[0]
		}
		envelopes, err := messageService.Headers(ctx, *selected, seqSet)
		if err != nil {
			return false, err
		}
		for _, envelope := range envelopes {
			printEnvelope(cmd, envelope)
		}

	case "read":
		if err := needMailbox(); err != nil {
			return false, err
		}
		if len(args) != 1 {
			return false, fmt.Errorf("%w: usage: read <seqnum>", domain.ErrInvalidInput)
		}
		if _, err := strconv.ParseUint(args[0], 10, 32); err != nil {
			return false, fmt.Errorf("%w: sequence number %q", domain.ErrInvalidInput, args[0])
		}
		return false, runRead(cmd, []string{*selected, args[0]})

	case "flag", "store":
		if err := needMailbox(); err != nil {
			return false, err
		}
		if len(args) < 3 {
			return false, fmt.Errorf("%w: usage: flag <seqset> <action> <flag...>", domain.ErrInvalidInput)
		}
		action := domain.StoreAction(args[1])
		if !action.IsValid() {
			return false, fmt.Errorf("%w: action %q (want +FLAGS, -FLAGS or FLAGS)", domain.ErrInvalidInput, args[1])
		}
		if err := messageService.Flag(ctx, *selected, args[0], action, args[2:]...); err != nil {
			return false, err
		}
		cmd.Printf("Updated flags on %s.\n", args[0])

	case "delete":
		if err := needMailbox(); err != nil {
			return false, err
		}
		if len(args) != 1 {
			return false, fmt.Errorf("%w: usage: delete <seqset>", domain.ErrInvalidInput)
		}
		if _, err := messageService.Delete(ctx, *selected, args[0], false); err != nil {
			return false, err
		}
		cmd.Printf("Marked %s deleted.\n", args[0])

	case "expunge":
		if err := needMailbox(); err != nil {
			return false, err
		}
		expunged, err := messageService.Expunge(ctx, *selected)
		if err != nil {
			return false, err
		}
		cmd.Printf("Expunged %d message(s).\n", len(expunged))

	case "check":
		if err := needMailbox(); err != nil {
			return false, err
		}
		if err := mailboxService.Check(ctx); err != nil {
			return false, err
		}
		cmd.Println("Checkpoint requested.")

	default:
		return false, fmt.Errorf("%w: unknown command %q (try: help)", domain.ErrInvalidInput, verb)
	}
	return false, nil
}
