// Package messages defines Bubbletea message types for the TUI.
// Messages represent events flowing through the Elm architecture.
package messages

import (
	"github.com/epistle-sh/epistle/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMailboxes is the mailbox list.
	ViewMailboxes ViewType = iota
	// ViewHeaders is the message list of one mailbox.
	ViewHeaders
	// ViewReader shows one message body.
	ViewReader
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMailboxes:
		return "mailboxes"
	case ViewHeaders:
		return "headers"
	case ViewReader:
		return "reader"
	default:
		return "unknown"
	}
}

// MailboxesLoaded carries the mailbox list from the service.
type MailboxesLoaded struct {
	Mailboxes []domain.MailboxInfo
	Err       error
}

// MailboxSelected signals a mailbox was opened.
type MailboxSelected struct {
	Name string
}

// HeadersLoaded carries the envelope list for one mailbox.
type HeadersLoaded struct {
	Mailbox   string
	Envelopes []domain.Envelope
	Err       error
}

// MessageSelected signals a message was opened for reading.
type MessageSelected struct {
	Mailbox string
	SeqNum  uint32
}

// MessageLoaded carries one rendered message body.
type MessageLoaded struct {
	SeqNum   uint32
	Rendered *domain.RenderedMessage
	Err      error
}

// MessageDeleted signals a message was marked \Deleted.
type MessageDeleted struct {
	SeqNum uint32
	Err    error
}
