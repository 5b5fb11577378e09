package driven

import (
	"context"

	"github.com/epistle-sh/epistle/internal/core/domain"
)

// FetchItem is a message data item name for a FETCH command.
type FetchItem string

const (
	// FetchFlags requests the message flags.
	FetchFlags FetchItem = "FLAGS"

	// FetchHeader requests the RFC 822 header.
	FetchHeader FetchItem = "RFC822.HEADER"

	// FetchFull requests the entire RFC 822 message.
	FetchFull FetchItem = "RFC822"
)

// FetchedMessage is the data returned for one message by FETCH.
// Header and Body are raw octets as sent by the server; parsing and
// decoding happen in the message package.
type FetchedMessage struct {
	// SeqNum is the message sequence number.
	SeqNum uint32

	// Flags are the message flags, when FLAGS was requested.
	Flags []string

	// Header is the raw RFC 822 header, when RFC822.HEADER was requested.
	Header []byte

	// Body is the full raw message, when RFC822 was requested.
	Body []byte
}

// MailSession is an authenticated IMAP session. Implementations are
// not safe for concurrent use; callers serialise commands.
type MailSession interface {
	// Select opens a mailbox read-write and returns its state.
	Select(ctx context.Context, mailbox string) (*domain.MailboxStatus, error)

	// List returns the mailboxes under reference matching pattern.
	// An empty reference with pattern "*" lists the whole namespace.
	List(ctx context.Context, reference, pattern string) ([]domain.MailboxInfo, error)

	// Status queries a mailbox without selecting it.
	Status(ctx context.Context, mailbox string, items []domain.StatusItem) (*domain.MailboxStatus, error)

	// Search returns the sequence numbers matching the criteria in the
	// selected mailbox. Charset may be empty.
	Search(ctx context.Context, charset string, criteria ...string) ([]uint32, error)

	// Fetch retrieves the given data items for a sequence set in the
	// selected mailbox.
	Fetch(ctx context.Context, seqSet string, items ...FetchItem) ([]FetchedMessage, error)

	// Store changes message flags for a sequence set in the selected mailbox.
	Store(ctx context.Context, seqSet string, action domain.StoreAction, flags ...string) error

	// Expunge permanently removes \Deleted messages from the selected
	// mailbox and returns the expunged sequence numbers.
	Expunge(ctx context.Context) ([]uint32, error)

	// Check requests a server checkpoint of the selected mailbox.
	Check(ctx context.Context) error

	// Noop pings the server, giving it a chance to send updates.
	Noop(ctx context.Context) error

	// Logout ends the session politely.
	Logout(ctx context.Context) error

	// Close tears down the connection without a LOGOUT exchange.
	Close() error
}

// SessionDialer establishes authenticated sessions for an account.
type SessionDialer interface {
	// Dial connects, consumes the greeting and authenticates.
	Dial(ctx context.Context, account domain.Account) (MailSession, error)
}
