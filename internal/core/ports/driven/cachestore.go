package driven

import (
	"context"

	"github.com/epistle-sh/epistle/internal/core/domain"
)

// HeaderCacheStore persists fetched message summaries so repeated
// listings can be served without a server round trip.
type HeaderCacheStore interface {
	// Save stores or updates one cached header. Entries are keyed by
	// (account, mailbox, sequence number).
	Save(ctx context.Context, header domain.CachedHeader) error

	// List returns the cached headers for a mailbox ordered by
	// sequence number.
	List(ctx context.Context, account, mailbox string) ([]domain.CachedHeader, error)

	// Purge drops all cached headers for a mailbox. Sequence numbers
	// shift on expunge, so the cache is invalidated wholesale.
	Purge(ctx context.Context, account, mailbox string) error
}
