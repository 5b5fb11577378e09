package tui

import "errors"

// ErrMissingMailboxService is returned when the mailbox service is not provided.
var ErrMissingMailboxService = errors.New("tui: mailbox service is required")

// ErrMissingMessageService is returned when the message service is not provided.
var ErrMissingMessageService = errors.New("tui: message service is required")
