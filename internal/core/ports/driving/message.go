package driving

import (
	"context"

	"github.com/epistle-sh/epistle/internal/core/domain"
)

// MessageService exposes message-level operations. Every call selects
// the named mailbox first; the session tracks the current selection
// and skips redundant SELECTs.
type MessageService interface {
	// Search returns the sequence numbers matching the criteria.
	Search(ctx context.Context, mailbox string, criteria ...string) ([]uint32, error)

	// Headers fetches flags and headers for a sequence set, decodes
	// the envelopes and refreshes the header cache.
	Headers(ctx context.Context, mailbox, seqSet string) ([]domain.Envelope, error)

	// CachedHeaders returns the locally cached envelopes for a mailbox
	// without touching the server.
	CachedHeaders(ctx context.Context, mailbox string) ([]domain.CachedHeader, error)

	// Read fetches one full message and renders it to text.
	Read(ctx context.Context, mailbox string, seqNum uint32) (*domain.RenderedMessage, error)

	// Flag applies a STORE action to a sequence set.
	Flag(ctx context.Context, mailbox, seqSet string, action domain.StoreAction, flags ...string) error

	// Delete marks a sequence set \Deleted and, when expunge is true,
	// expunges the mailbox. Returns the expunged sequence numbers.
	Delete(ctx context.Context, mailbox, seqSet string, expunge bool) ([]uint32, error)

	// Expunge removes \Deleted messages from the mailbox.
	Expunge(ctx context.Context, mailbox string) ([]uint32, error)
}
