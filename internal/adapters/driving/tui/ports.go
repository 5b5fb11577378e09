// Package tui provides an interactive terminal mail browser.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/epistle-sh/epistle/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
type Ports struct {
	// Mailboxes provides mailbox listing and selection.
	Mailboxes driving.MailboxService

	// Messages provides header listing, reading and deletion.
	Messages driving.MessageService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Mailboxes == nil {
		return ErrMissingMailboxService
	}
	if p.Messages == nil {
		return ErrMissingMessageService
	}
	return nil
}
