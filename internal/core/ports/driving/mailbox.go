package driving

import (
	"context"

	"github.com/epistle-sh/epistle/internal/core/domain"
)

// MailboxService exposes mailbox-level operations on an open session.
type MailboxService interface {
	// List returns the mailboxes under reference matching pattern,
	// sorted by name.
	List(ctx context.Context, reference, pattern string) ([]domain.MailboxInfo, error)

	// Status queries a mailbox for the given status items. Item names
	// are validated against the RFC 9051 set before hitting the wire.
	Status(ctx context.Context, mailbox string, items []string) (*domain.MailboxStatus, error)

	// Select opens a mailbox and returns its state.
	Select(ctx context.Context, mailbox string) (*domain.MailboxStatus, error)

	// Check requests a checkpoint of the selected mailbox.
	Check(ctx context.Context) error
}
